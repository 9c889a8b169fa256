package view

import (
	"sync"

	"github.com/Eraal/Lost-and-Found-sub001/internal/model"
)

// RecommendationSet is the in-memory working set of surfaced
// recommendations. The refresher replaces it wholesale each cycle; the
// action coordinator removes entries optimistically once the server has
// accepted a confirm or dismiss. Safe for concurrent use.
type RecommendationSet struct {
	mu   sync.RWMutex
	recs []model.Recommendation
}

// NewRecommendationSet returns an empty working set.
func NewRecommendationSet() *RecommendationSet {
	return &RecommendationSet{}
}

// Replace swaps in a freshly aggregated list. The input is copied so later
// removals cannot reach back into the caller's slice.
func (s *RecommendationSet) Replace(recs []model.Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = make([]model.Recommendation, len(recs))
	copy(s.recs, recs)
}

// Remove drops every recommendation naming the given found item. Removal is
// keyed by counterpart found-item id, matching the dedup key.
func (s *RecommendationSet) Remove(foundItemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.recs[:0]
	for _, r := range s.recs {
		if r.FoundItemID != foundItemID {
			kept = append(kept, r)
		}
	}
	s.recs = kept
}

// List returns a copy of the current working set.
func (s *RecommendationSet) List() []model.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Recommendation, len(s.recs))
	copy(out, s.recs)
	return out
}

// Len returns the current size of the working set.
func (s *RecommendationSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}
