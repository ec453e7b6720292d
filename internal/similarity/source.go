package similarity

import (
	"context"
	"fmt"

	"github.com/drakos74/free-music/internal/math/som"
	"github.com/drakos74/free-music/internal/storage"
	"github.com/rs/zerolog/log"
)

// FeatureSource provides the items of the library.
type FeatureSource interface {
	Items(ctx context.Context) ([]Item, error)
}

// StaticSource serves a fixed set of items.
type StaticSource []Item

func (s StaticSource) Items(ctx context.Context) ([]Item, error) {
	return s, ctx.Err()
}

// BlobSource loads the grouped features of the library from a storage blob.
type BlobSource struct {
	store  storage.Persistence
	key    storage.Key
	layout som.Layout
}

// NewBlobSource creates a source reading the given key of the store.
func NewBlobSource(store storage.Persistence, key storage.Key, layout som.Layout) *BlobSource {
	return &BlobSource{
		store:  store,
		key:    key,
		layout: layout,
	}
}

func (b *BlobSource) Items(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var grouped []GroupedItem
	if err := b.store.Load(b.key, &grouped); err != nil {
		return nil, fmt.Errorf("could not load features '%s': %w", b.key.Path(), err)
	}
	log.Debug().Str("key", b.key.Path()).Int("items", len(grouped)).Msg("loaded features")
	return Assemble(b.layout, grouped)
}
