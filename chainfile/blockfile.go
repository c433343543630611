// Package chainfile implements the append-only block store: blocks.bin
// holds the raw concatenated encoding of every block ever accepted, and
// blockindexes.bin holds a parallel fixed-width height->location index.
// Random lookups in normal operation go through the leveldb-backed
// store.BlockIndexEntry instead; blockindexes.bin exists so the chain can
// be walked and verified without a database, and so it can be exported
// wholesale with "auricd export-blocks".
package chainfile

import (
	"io"
	"os"
	"sync"

	"auric/core"
	"auric/seria"

	"github.com/pkg/errors"
)

// BlockFile is the blocks.bin handle: an append-only log of
// seria-encoded core.Block values. Callers locate a block by the
// (offset, length) pair recorded for it in the index.
type BlockFile struct {
	mu   sync.Mutex
	f    *os.File
	size int64
}

// OpenBlockFile opens (creating if needed) the blocks.bin file at path.
func OpenBlockFile(path string) (*BlockFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, errors.Wrap(err, "error opening block file")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "error statting block file")
	}
	return &BlockFile{f: f, size: info.Size()}, nil
}

// Append encodes block and writes it to the end of the file, returning
// the byte offset and length callers must record in a block index entry
// to read it back later.
func (bf *BlockFile) Append(block *core.Block) (offset uint64, length uint32, err error) {
	buf, err := seria.EncodeToBytes(block)
	if err != nil {
		return 0, 0, errors.Wrap(err, "error encoding block")
	}

	bf.mu.Lock()
	defer bf.mu.Unlock()
	n, err := bf.f.WriteAt(buf, bf.size)
	if err != nil {
		return 0, 0, errors.Wrap(err, "error writing block")
	}
	offset = uint64(bf.size)
	bf.size += int64(n)
	return offset, uint32(n), nil
}

// ReadAt decodes the block stored at the given offset/length.
func (bf *BlockFile) ReadAt(offset uint64, length uint32, limits seria.Limits) (*core.Block, error) {
	buf := make([]byte, length)
	if _, err := bf.f.ReadAt(buf, int64(offset)); err != nil {
		return nil, errors.Wrap(err, "error reading block")
	}
	block := new(core.Block)
	if err := seria.DecodeFromBytes(buf, block, limits); err != nil {
		return nil, errors.Wrap(err, "error decoding block")
	}
	return block, nil
}

// ReadRawAt returns the undecoded bytes stored at offset/length, for
// callers (like the block syncer) that only need to relay the encoding
// on to a peer rather than construct a core.Block from it.
func (bf *BlockFile) ReadRawAt(offset uint64, length uint32) ([]byte, error) {
	buf := make([]byte, length)
	if _, err := bf.f.ReadAt(buf, int64(offset)); err != nil {
		return nil, errors.Wrap(err, "error reading block")
	}
	return buf, nil
}

// Size returns the current length of blocks.bin.
func (bf *BlockFile) Size() int64 {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	return bf.size
}

// NewSectionReader returns a plain io.Reader over the block stored at
// offset/length, for copying into another blocks.bin during export
// without an intermediate decode/re-encode.
func (bf *BlockFile) NewSectionReader(offset uint64, length uint32) io.Reader {
	return io.NewSectionReader(bf.f, int64(offset), int64(length))
}

func (bf *BlockFile) Close() error {
	return bf.f.Close()
}
