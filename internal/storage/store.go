package storage

import (
	"errors"
	"fmt"
)

var (
	// DefaultDir is the root folder for the file based storage implementations.
	DefaultDir = "file-storage"
)

// Shard creates a new storage implementation for the given shard.
type Shard func(shard string) (Persistence, error)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key is the storage key for a library blob e.g. the feature export of a scan
// or the classification map built from it.
type Key struct {
	Hash    int64  `json:"hash"`
	Library string `json:"library"`
	Label   string `json:"label"`
}

func (k Key) Path() string {
	return fmt.Sprintf("%s_%v_%s", k.Library, k.Hash, k.Label)
}

// Persistence stores and loads arbitrary values under a key.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}
