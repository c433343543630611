package wire

import (
	"sync"

	"auric/crypto"
	"auric/seria"
)

// HashCacher memoizes the Blake2B256 hash of a Traversable's encoding.
// Embed it in a Message and have Hash() call HashCacher.Hash(m); the
// encode-and-hash work happens at most once per message instance.
type HashCacher struct {
	hash crypto.Hash
	once sync.Once
	err  error
}

func (h *HashCacher) Hash(t seria.Traversable) (crypto.Hash, error) {
	h.once.Do(func() {
		buf, err := seria.EncodeToBytes(t)
		if err != nil {
			h.err = err
			return
		}
		h.hash = crypto.Blake2B256(buf)
	})
	return h.hash, h.err
}
