package similarity

import (
	"fmt"

	"github.com/drakos74/free-music/internal/math/som"
	"github.com/rs/zerolog/log"
)

// Item is a track of the library with its feature vector.
type Item struct {
	ID       string     `json:"id"`
	Features som.Vector `json:"features"`
}

// GroupedItem is a track with its features keyed by descriptor name
// as exported by the feature extractor.
type GroupedItem struct {
	ID       string               `json:"id"`
	Features map[string][]float64 `json:"features"`
}

// Assemble builds the feature vectors of the given items according to the layout.
// Items without any features are kept with an empty vector and skipped at build time.
func Assemble(layout som.Layout, grouped []GroupedItem) ([]Item, error) {
	items := make([]Item, 0, len(grouped))
	for _, g := range grouped {
		if len(g.Features) == 0 {
			items = append(items, Item{ID: g.ID})
			continue
		}
		v, err := layout.Assemble(g.Features)
		if err != nil {
			return nil, fmt.Errorf("could not assemble features for '%s': %w", g.ID, err)
		}
		items = append(items, Item{ID: g.ID, Features: v})
	}
	return items, nil
}

// usable filters out the items without features and checks the vectors of the rest.
func usable(items []Item, dim int) ([]Item, error) {
	result := make([]Item, 0, len(items))
	ids := make(map[string]struct{}, len(items))
	var skipped int
	for _, item := range items {
		if len(item.Features) == 0 {
			skipped++
			continue
		}
		if err := som.CheckVector(item.Features, dim); err != nil {
			return nil, fmt.Errorf("item '%s': %w", item.ID, err)
		}
		if _, ok := ids[item.ID]; ok {
			return nil, fmt.Errorf("duplicate item '%s': %w", item.ID, som.ErrConfiguration)
		}
		ids[item.ID] = struct{}{}
		result = append(result, item)
	}
	if skipped > 0 {
		log.Info().Int("skipped", skipped).Int("items", len(result)).Msg("skipping items without features")
	}
	return result, nil
}
