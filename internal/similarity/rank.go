package similarity

import "sort"

// groupSpread is how many similar items are sampled per requested group.
const groupSpread = 5

// SimilarItemsForSet returns up to n items similar to the given set of items
// e.g. the tracks of a play queue. Items found for more seeds rank first.
// The seeds themselves are never part of the result.
func (s *Searcher) SimilarItemsForSet(ids []string, n int) []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := s.similarForSet(ids, n)
	s.observe(QuerySet, result)
	return result
}

// similarForSet expects the read lock to be held.
func (s *Searcher) similarForSet(ids []string, n int) []string {
	if n <= 0 {
		return []string{}
	}
	seeds := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seeds[id] = struct{}{}
	}
	found := make([]string, 0)
	for _, id := range ids {
		found = append(found, s.similar(id, n, seeds)...)
	}
	return truncate(rankByOccurrence(found), n)
}

// SimilarGroups returns up to n groups e.g. artists or releases close to the ones
// of the given items. groupOf resolves the groups an item belongs to.
// The groups of the given items are excluded.
func (s *Searcher) SimilarGroups(ids []string, n int, groupOf func(id string) []string) []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	result := make([]string, 0)
	if n > 0 && groupOf != nil {
		own := make(map[string]struct{})
		for _, id := range ids {
			for _, g := range groupOf(id) {
				own[g] = struct{}{}
			}
		}
		groups := make([]string, 0)
		for _, id := range s.similarForSet(ids, n*groupSpread) {
			for _, g := range groupOf(id) {
				if _, ok := own[g]; ok {
					continue
				}
				groups = append(groups, g)
			}
		}
		result = truncate(rankByOccurrence(groups), n)
	}
	s.observe(QueryGroups, result)
	return result
}

// rankByOccurrence de-duplicates the values, most frequent first.
// Equally frequent values keep the order of their first occurrence.
func rankByOccurrence(values []string) []string {
	counts := make(map[string]int, len(values))
	unique := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := counts[v]; !ok {
			unique = append(unique, v)
		}
		counts[v]++
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return counts[unique[i]] > counts[unique[j]]
	})
	return unique
}

func truncate(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
