package view

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Eraal/Lost-and-Found-sub001/internal/model"
	"github.com/Eraal/Lost-and-Found-sub001/pkg/lostfound"
)

// Aggregator defaults. MinScore is the confidence floor below which the
// matcher's suggestions are noise; FanoutCap bounds how many of the caller's
// own items trigger a candidate search per refresh; CandidateLimit is passed
// through to each search request.
const (
	DefaultMinScore       = lostfound.Score(0.5)
	DefaultFanoutCap      = 6
	DefaultCandidateLimit = 5
)

// CandidateSearcher is the single matcher operation the aggregator needs.
// *lostfound* clients satisfy it.
type CandidateSearcher interface {
	SearchCandidates(ctx context.Context, itemID int64, limit int) ([]lostfound.Candidate, error)
}

// Aggregator builds the deduplicated recommendation list from per-item
// candidate searches.
type Aggregator struct {
	Search         CandidateSearcher
	MinScore       lostfound.Score
	FanoutCap      int
	CandidateLimit int
}

// NewAggregator creates an Aggregator with the documented defaults.
func NewAggregator(search CandidateSearcher) *Aggregator {
	return &Aggregator{
		Search:         search,
		MinScore:       DefaultMinScore,
		FanoutCap:      DefaultFanoutCap,
		CandidateLimit: DefaultCandidateLimit,
	}
}

// BuildRecommendations issues one candidate search per source item (capped
// at FanoutCap per kind, all in parallel), filters by MinScore, and dedupes
// by counterpart found-item id keeping the higher score. A failed search
// contributes an empty chunk; it never fails the aggregate. The result is
// in insertion order: lost-sourced chunks in input order, then
// found-sourced, first occurrence of each found item keeping its slot.
func (a *Aggregator) BuildRecommendations(ctx context.Context, lost, found []lostfound.Item) []model.Recommendation {
	lost = capItems(lost, a.FanoutCap)
	found = capItems(found, a.FanoutCap)
	if len(lost) == 0 && len(found) == 0 {
		return nil
	}

	chunks := make([][]model.Recommendation, len(lost)+len(found))
	g, gctx := errgroup.WithContext(ctx)

	for i, item := range lost {
		i, item := i, item
		g.Go(func() error {
			chunks[i] = a.searchOne(gctx, item, lostfound.KindLost)
			return nil
		})
	}
	for i, item := range found {
		i, item := i, item
		g.Go(func() error {
			chunks[len(lost)+i] = a.searchOne(gctx, item, lostfound.KindFound)
			return nil
		})
	}
	// Join barrier: every search has settled before aggregation. Workers
	// never return errors, they swallow them into empty chunks.
	_ = g.Wait()

	var out []model.Recommendation
	index := make(map[int64]int)
	for _, chunk := range chunks {
		for _, rec := range chunk {
			if j, ok := index[rec.FoundItemID]; ok {
				// Higher score wins; ties keep the first encountered.
				if rec.Score > out[j].Score {
					out[j] = rec
				}
				continue
			}
			index[rec.FoundItemID] = len(out)
			out = append(out, rec)
		}
	}
	return out
}

// searchOne fetches and filters candidates for a single source item. The
// source item fills in whichever side of the pair the matcher left nil.
func (a *Aggregator) searchOne(ctx context.Context, item lostfound.Item, kind lostfound.ItemKind) []model.Recommendation {
	candidates, err := a.Search.SearchCandidates(ctx, item.ID, a.CandidateLimit)
	if err != nil {
		zap.L().Warn("view: candidate search failed",
			zap.Int64("item_id", item.ID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return nil
	}

	var recs []model.Recommendation
	for _, c := range candidates {
		if c.Score < a.MinScore {
			continue
		}
		rec := model.Recommendation{
			LostItemID:    valueOr(c.LostItemID, 0),
			FoundItemID:   valueOr(c.FoundItemID, 0),
			Title:         c.Item.Title,
			Score:         c.Score,
			Location:      c.Item.Location,
			OccurredOn:    c.Item.OccurredOn,
			PhotoURL:      c.Item.PhotoURL,
			CandidateKind: c.Item.Kind,
		}
		if rec.Title == "" {
			rec.Title = "Potential match"
		}
		switch kind {
		case lostfound.KindLost:
			if c.LostItemID == nil {
				rec.LostItemID = item.ID
			}
			if rec.CandidateKind == "" {
				rec.CandidateKind = lostfound.KindFound
			}
		case lostfound.KindFound:
			if c.FoundItemID == nil {
				rec.FoundItemID = item.ID
			}
			if rec.CandidateKind == "" {
				rec.CandidateKind = lostfound.KindLost
			}
		}
		recs = append(recs, rec)
	}
	return recs
}

func capItems(items []lostfound.Item, n int) []lostfound.Item {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func valueOr(p *int64, fallback int64) int64 {
	if p != nil {
		return *p
	}
	return fallback
}
