package similarity

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/drakos74/free-music/internal/math/som"
	"github.com/drakos74/free-music/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Query kinds reported to the metrics.
const (
	QueryItems  = "items"
	QuerySet    = "set"
	QueryGroups = "groups"
)

// Stats describes the latest build of the searcher.
type Stats struct {
	ID       string    `json:"id"`
	Built    time.Time `json:"built"`
	Items    int       `json:"items"`
	Cells    int       `json:"cells"`
	Occupied int       `json:"occupied"`
	Mean     float64   `json:"mean"`
	Median   float64   `json:"median"`
}

// model is the immutable outcome of a build.
type model struct {
	stats          Stats
	normalizer     *som.DataNormalizer
	network        *som.Network
	classification *som.Matrix[[]string]
	positions      map[string]som.Position
	threshold      float64
}

// Searcher finds similar tracks through a self organizing map trained on their features.
type Searcher struct {
	mutex   *sync.RWMutex
	config  Config
	layout  som.Layout
	metrics *metrics.Metrics
	model   *model
}

// NewSearcher creates a new searcher for the given config.
// The searcher answers empty results until it is built.
func NewSearcher(cfg Config) (*Searcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Searcher{
		mutex:   new(sync.RWMutex),
		config:  cfg,
		layout:  cfg.Layout(),
		metrics: metrics.Observer,
	}, nil
}

// WithMetrics reports to the given metrics instead of the process wide ones.
func (s *Searcher) WithMetrics(m *metrics.Metrics) *Searcher {
	s.metrics = m
	return s
}

// Config returns the searcher config.
func (s *Searcher) Config() Config {
	return s.config
}

// Layout returns the feature layout item vectors are expected in.
func (s *Searcher) Layout() som.Layout {
	return s.layout
}

// Build trains a new map on the given items and swaps it in.
// The previous map keeps answering queries until the new one is ready.
func (s *Searcher) Build(ctx context.Context, items []Item) (err error) {
	start := time.Now()
	defer func() {
		s.metrics.Build(start, err)
	}()

	m, err := s.train(ctx, items)
	if err != nil {
		log.Error().Err(err).Int("items", len(items)).Msg("could not build similarity searcher")
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.model = m
	s.metrics.Classification(m.stats.Items, m.stats.Occupied, m.stats.Mean, m.stats.Median)
	log.Info().
		Str("id", m.stats.ID).
		Int("items", m.stats.Items).
		Int("occupied", m.stats.Occupied).
		Float64("mean", m.stats.Mean).
		Float64("median", m.stats.Median).
		Dur("duration", time.Since(start)).
		Msg("similarity searcher ready")
	return nil
}

func (s *Searcher) train(ctx context.Context, items []Item) (*model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dim := s.layout.Dim()
	items, err := usable(items, dim)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no items with features: %w", som.ErrEmptyCorpus)
	}

	samples := make([]som.Vector, len(items))
	for i, item := range items {
		samples[i] = item.Features.Copy()
	}

	normalizer := som.NewDataNormalizer(dim)
	if err := normalizer.ComputeNormalizationFactors(samples); err != nil {
		return nil, fmt.Errorf("could not compute normalization factors: %w", err)
	}
	for _, v := range samples {
		if err := normalizer.NormalizeData(v); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	network, err := som.NewNetwork(s.config.Width, s.config.Height, dim)
	if err != nil {
		return nil, err
	}
	if err := network.SetDataWeights(s.layout.Weights()); err != nil {
		return nil, err
	}

	log.Info().
		Int("items", len(samples)).
		Int("width", s.config.Width).
		Int("height", s.config.Height).
		Int("iterations", s.config.Iterations).
		Msg("training network")
	opts := s.config.trainOptions()
	if err := network.Initialize(opts.Init, samples); err != nil {
		return nil, fmt.Errorf("could not initialize network: %w", err)
	}
	err = network.TrainWith(samples, s.config.Iterations, s.config.TrainSchedule(), func(iteration som.Iteration) {
		s.metrics.Iteration()
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("could not train network: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := &model{
		normalizer:     normalizer,
		network:        network,
		classification: som.NewMatrix[[]string](s.config.Width, s.config.Height),
		positions:      make(map[string]som.Position, len(items)),
		stats: Stats{
			ID:     uuid.New().String(),
			Built:  time.Now(),
			Items:  len(items),
			Cells:  s.config.Width * s.config.Height,
			Mean:   network.ComputeRefVectorsDistanceMean(),
			Median: network.ComputeRefVectorsDistanceMedian(),
		},
	}
	m.threshold = m.stats.Median
	if s.config.Threshold == ThresholdMean {
		m.threshold = m.stats.Mean
	}

	for i, item := range items {
		p, err := network.ClosestRefVectorPosition(samples[i])
		if err != nil {
			return nil, err
		}
		cell := m.classification.Ref(p)
		if len(*cell) == 0 {
			m.stats.Occupied++
		}
		*cell = append(*cell, item.ID)
		m.positions[item.ID] = p
	}
	return m, nil
}

// Built reports if the searcher can answer queries.
func (s *Searcher) Built() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.model != nil
}

// SimilarItems returns up to n items similar to the given one, closest first.
// Items sharing the cell come first, then the items of the cells closest to it.
func (s *Searcher) SimilarItems(id string, n int) []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := s.similar(id, n, nil)
	var known bool
	if s.model != nil {
		_, known = s.model.positions[id]
	}
	if !known {
		s.metrics.Query(QueryItems, metrics.Unknown)
		return result
	}
	s.observe(QueryItems, result)
	return result
}

// similar expects the read lock to be held.
func (s *Searcher) similar(id string, n int, skip map[string]struct{}) []string {
	result := make([]string, 0)
	if s.model == nil || n <= 0 {
		return result
	}
	p, ok := s.model.positions[id]
	if !ok {
		return result
	}

	collect := func(p som.Position) bool {
		for _, other := range s.model.classification.Get(p) {
			if other == id {
				continue
			}
			if _, ok := skip[other]; ok {
				continue
			}
			result = append(result, other)
			if len(result) == n {
				return true
			}
		}
		return false
	}

	if collect(p) {
		return result
	}
	visited := som.NewPositionSet(p)
	for s.config.MaxCells == 0 || visited.Len() < s.config.MaxCells {
		next, ok := s.model.network.ClosestRefVectorPositionFrom(visited, s.model.threshold)
		if !ok {
			break
		}
		visited.Add(next)
		if collect(next) {
			break
		}
	}
	return result
}

func (s *Searcher) observe(kind string, result []string) {
	if len(result) == 0 {
		s.metrics.Query(kind, metrics.Miss)
		return
	}
	s.metrics.Query(kind, metrics.Hit)
}

// Position returns the cell the item was classified in.
func (s *Searcher) Position(id string) (som.Position, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.model == nil {
		return som.Position{}, false
	}
	p, ok := s.model.positions[id]
	return p, ok
}

// Cell returns the items classified in the given cell.
func (s *Searcher) Cell(p som.Position) []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.model == nil || !s.model.classification.Contains(p) {
		return []string{}
	}
	return append([]string{}, s.model.classification.Get(p)...)
}

// Classification returns a snapshot of the occupied cells.
func (s *Searcher) Classification() map[som.Position][]string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	cells := make(map[som.Position][]string)
	if s.model == nil {
		return cells
	}
	s.model.classification.Each(func(p som.Position, ids []string) bool {
		if len(ids) > 0 {
			cells[p] = append([]string{}, ids...)
		}
		return true
	})
	return cells
}

// Stats returns the description of the latest build.
func (s *Searcher) Stats() (Stats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.model == nil {
		return Stats{}, false
	}
	return s.model.stats, true
}

// Dump writes the normalization factors and the classification map.
func (s *Searcher) Dump(w io.Writer) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.model == nil {
		return fmt.Errorf("nothing to dump: %w", som.ErrNotReady)
	}
	if _, err := fmt.Fprintln(w, "normalization factors:"); err != nil {
		return err
	}
	if err := s.model.normalizer.Dump(w); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "classification map:"); err != nil {
		return err
	}
	var err error
	s.model.classification.Each(func(p som.Position, ids []string) bool {
		if len(ids) == 0 {
			return true
		}
		if _, err = fmt.Fprintln(w, p.String()); err != nil {
			return false
		}
		for _, id := range ids {
			if _, err = fmt.Fprintf(w, " - %s\n", id); err != nil {
				return false
			}
		}
		return true
	})
	return err
}

// CellReport lists the items of an occupied cell.
type CellReport struct {
	Position som.Position `json:"position"`
	Items    []string     `json:"items"`
}

// Report is the serializable outcome of a build.
type Report struct {
	Stats         Stats        `json:"stats"`
	Normalization []som.Range  `json:"normalization"`
	Cells         []CellReport `json:"cells"`
}

// Report summarizes the latest build, cells in row-major order.
func (s *Searcher) Report() (Report, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.model == nil {
		return Report{}, fmt.Errorf("no build to report: %w", som.ErrNotReady)
	}
	report := Report{
		Stats:         s.model.stats,
		Normalization: s.model.normalizer.Factors(),
		Cells:         make([]CellReport, 0, s.model.stats.Occupied),
	}
	s.model.classification.Each(func(p som.Position, ids []string) bool {
		if len(ids) > 0 {
			report.Cells = append(report.Cells, CellReport{
				Position: p,
				Items:    append([]string{}, ids...),
			})
		}
		return true
	})
	return report, nil
}
