package chainfile

import (
	"encoding/binary"
	"os"
	"sync"

	"auric/core"

	"github.com/pkg/errors"
)

// IndexRecord is one fixed-width record of blockindexes.bin: everything
// needed to locate and verify the block at a given height without
// touching leveldb.
type IndexRecord struct {
	Height    uint64
	ID        core.Hash
	PrevID    core.Hash
	Offset    uint64
	Length    uint32
	Timestamp uint64
}

// recordLen is height(8) + ID(32) + PrevID(32) + Offset(8) + Length(4) +
// Timestamp(8).
const recordLen = 8 + 32 + 32 + 8 + 4 + 8

// IndexFile is the blockindexes.bin handle: a flat array of IndexRecord,
// one per height, addressed by height*recordLen the same way the
// teacher's blob package addresses a fixed-size sector by id*SectorBytes.
type IndexFile struct {
	mu sync.Mutex
	f  *os.File
}

// OpenIndexFile opens (creating if needed) the blockindexes.bin file at
// path.
func OpenIndexFile(path string) (*IndexFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, errors.Wrap(err, "error opening block index file")
	}
	return &IndexFile{f: f}, nil
}

// WriteRecord writes rec at its height's slot, overwriting whatever was
// there (used both for first-write and for reorg rewrites of a height).
func (idx *IndexFile) WriteRecord(rec IndexRecord) error {
	buf := marshalRecord(rec)
	idx.mu.Lock()
	defer idx.mu.Unlock()
	_, err := idx.f.WriteAt(buf, int64(rec.Height)*recordLen)
	return errors.Wrap(err, "error writing block index record")
}

// ReadRecord reads the record stored for height.
func (idx *IndexFile) ReadRecord(height uint64) (IndexRecord, error) {
	buf := make([]byte, recordLen)
	idx.mu.Lock()
	_, err := idx.f.ReadAt(buf, int64(height)*recordLen)
	idx.mu.Unlock()
	if err != nil {
		return IndexRecord{}, errors.Wrap(err, "error reading block index record")
	}
	return unmarshalRecord(buf), nil
}

// Count returns how many height slots blockindexes.bin currently holds.
func (idx *IndexFile) Count() (uint64, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	info, err := idx.f.Stat()
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()) / recordLen, nil
}

func (idx *IndexFile) Close() error {
	return idx.f.Close()
}

func marshalRecord(rec IndexRecord) []byte {
	buf := make([]byte, recordLen)
	binary.BigEndian.PutUint64(buf[0:8], rec.Height)
	copy(buf[8:40], rec.ID[:])
	copy(buf[40:72], rec.PrevID[:])
	binary.BigEndian.PutUint64(buf[72:80], rec.Offset)
	binary.BigEndian.PutUint32(buf[80:84], rec.Length)
	binary.BigEndian.PutUint64(buf[84:92], rec.Timestamp)
	return buf
}

func unmarshalRecord(buf []byte) IndexRecord {
	var rec IndexRecord
	rec.Height = binary.BigEndian.Uint64(buf[0:8])
	copy(rec.ID[:], buf[8:40])
	copy(rec.PrevID[:], buf[40:72])
	rec.Offset = binary.BigEndian.Uint64(buf[72:80])
	rec.Length = binary.BigEndian.Uint32(buf[80:84])
	rec.Timestamp = binary.BigEndian.Uint64(buf[84:92])
	return rec
}
