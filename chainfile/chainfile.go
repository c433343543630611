package chainfile

import (
	"path/filepath"

	"auric/core"
	"auric/seria"

	"github.com/pkg/errors"
)

const (
	BlocksFileName  = "blocks.bin"
	IndexesFileName = "blockindexes.bin"
)

// ChainFile is the open blocks.bin/blockindexes.bin pair for one data
// directory's chain/ folder.
type ChainFile struct {
	Blocks  *BlockFile
	Indexes *IndexFile
}

// Open opens both chain files under dir, creating them if this is a
// fresh data directory.
func Open(dir string) (*ChainFile, error) {
	blocks, err := OpenBlockFile(filepath.Join(dir, BlocksFileName))
	if err != nil {
		return nil, err
	}
	indexes, err := OpenIndexFile(filepath.Join(dir, IndexesFileName))
	if err != nil {
		blocks.Close()
		return nil, err
	}
	return &ChainFile{Blocks: blocks, Indexes: indexes}, nil
}

// AppendBlock writes block to blocks.bin and records its location in
// blockindexes.bin at height, returning the index record written.
func (cf *ChainFile) AppendBlock(height uint64, block *core.Block) (IndexRecord, error) {
	id, err := block.ID()
	if err != nil {
		return IndexRecord{}, errors.Wrap(err, "error hashing block")
	}
	offset, length, err := cf.Blocks.Append(block)
	if err != nil {
		return IndexRecord{}, err
	}
	rec := IndexRecord{
		Height:    height,
		ID:        id,
		PrevID:    block.Header.PrevID,
		Offset:    offset,
		Length:    length,
		Timestamp: block.Header.Timestamp,
	}
	if err := cf.Indexes.WriteRecord(rec); err != nil {
		return IndexRecord{}, err
	}
	return rec, nil
}

// ReadBlock reads the block stored at height, consulting blockindexes.bin
// for its location in blocks.bin.
func (cf *ChainFile) ReadBlock(height uint64, limits seria.Limits) (*core.Block, error) {
	rec, err := cf.Indexes.ReadRecord(height)
	if err != nil {
		return nil, err
	}
	return cf.Blocks.ReadAt(rec.Offset, rec.Length, limits)
}

func (cf *ChainFile) Close() error {
	berr := cf.Blocks.Close()
	ierr := cf.Indexes.Close()
	if berr != nil {
		return berr
	}
	return ierr
}
