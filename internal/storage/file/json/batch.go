package json

import (
	"fmt"
	"path/filepath"

	"github.com/drakos74/free-music/internal/storage"
	"github.com/rs/zerolog/log"
)

// BlobStorage keeps every key as a json file under <path>/<table>/<shard>.
type BlobStorage struct {
	path  string
	table string
	shard string
	debug bool
}

// BlobShard creates blob storages under the given root, one folder per shard.
func BlobShard(root, table string) storage.Shard {
	return func(shard string) (storage.Persistence, error) {
		if shard == "" {
			return nil, fmt.Errorf("empty shard for table '%s'", table)
		}
		return NewJsonBlob(table, shard, false).WithPath(root), nil
	}
}

// table has the same schema
// shard is a logical split e.g. one per library
func NewJsonBlob(table, shard string, debug bool) *BlobStorage {
	return &BlobStorage{
		table: table,
		shard: shard,
		path:  storage.DefaultDir,
		debug: debug,
	}
}

// WithPath overrides the root folder of the storage.
func (s *BlobStorage) WithPath(path string) *BlobStorage {
	s.path = path
	return s
}

func (s BlobStorage) dir() string {
	return filepath.Join(s.path, s.table, s.shard)
}

func (s BlobStorage) Store(k storage.Key, value interface{}) error {
	err := Save(s.dir(), k.Path(), value)
	if err == nil && s.debug {
		log.Info().Str("path", s.dir()).Str("file", k.Path()).Msg("stored json file")
	}
	return err
}

func (s BlobStorage) Load(k storage.Key, value interface{}) error {
	return Load(s.dir(), k.Path(), value)
}
