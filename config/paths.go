package config

import (
	"github.com/mitchellh/go-homedir"
	"os"
	"path"
)

const (
	// ChainPath holds the append-only blocks.bin and blockindexes.bin
	// files written by the chainfile package.
	ChainPath = "chain"
	DBPath    = "db"
	LockFile  = "LOCK"
)

func ExpandHomePath(path string) string {
	res, err := homedir.Expand(path)
	if err != nil {
		panic(err)
	}
	return res
}

func ExpandChainPath(homePath string) string {
	return path.Join(homePath, ChainPath)
}

func InitChainDir(homePath string) error {
	p := ExpandChainPath(homePath)
	return os.MkdirAll(p, 0700)
}

func ExpandDBPath(homePath string) string {
	return path.Join(homePath, DBPath)
}

func InitDBDir(homePath string) error {
	p := ExpandDBPath(homePath)
	return os.MkdirAll(p, 0700)
}

func ExpandLockPath(homePath string) string {
	return path.Join(homePath, LockFile)
}
