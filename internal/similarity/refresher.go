package similarity

import (
	"context"
	"fmt"
	"sync"

	"github.com/drakos74/free-music/internal/buffer"
	"github.com/rs/zerolog/log"
)

// historySize is the number of builds the refresher remembers.
const historySize = 10

// Refresher rebuilds the searcher from its source and swaps it in on success
// e.g. after every scan of the library.
type Refresher struct {
	mutex    *sync.RWMutex
	config   Config
	source   FeatureSource
	searcher *Searcher
	build    func(s *Searcher) *Searcher
	history  *buffer.Ring[Stats]
}

// NewRefresher creates a new refresher for the given config and source.
func NewRefresher(cfg Config, source FeatureSource) (*Refresher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Refresher{
		mutex:  new(sync.RWMutex),
		config: cfg,
		source: source,
		build: func(s *Searcher) *Searcher {
			return s
		},
		history: buffer.NewRing[Stats](historySize),
	}, nil
}

// WithSetup applies the given setup to every searcher before it is built.
func (r *Refresher) WithSetup(setup func(s *Searcher) *Searcher) *Refresher {
	r.build = setup
	return r
}

// Searcher returns the current searcher, nil before the first successful refresh.
func (r *Refresher) Searcher() *Searcher {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.searcher
}

// Refresh builds a new searcher from the source.
// The current searcher is kept if anything fails.
func (r *Refresher) Refresh(ctx context.Context) error {
	items, err := r.source.Items(ctx)
	if err != nil {
		return fmt.Errorf("could not load items: %w", err)
	}
	searcher, err := NewSearcher(r.config)
	if err != nil {
		return err
	}
	searcher = r.build(searcher)
	if err := searcher.Build(ctx, items); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.searcher = searcher
	if stats, ok := searcher.Stats(); ok {
		r.history.Push(stats)
	}
	return nil
}

// History returns the stats of the latest successful builds, oldest first.
func (r *Refresher) History() []Stats {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.history.Get()
}

// Run refreshes on every trigger until the context is done.
func (r *Refresher) Run(ctx context.Context, trigger <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping similarity refresher")
			return
		case _, ok := <-trigger:
			if !ok {
				log.Info().Msg("similarity refresher trigger closed")
				return
			}
			if err := r.Refresh(ctx); err != nil {
				log.Error().Err(err).Msg("could not refresh similarity searcher")
			}
		}
	}
}
