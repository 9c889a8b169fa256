package view

import (
	"context"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eraal/Lost-and-Found-sub001/pkg/lostfound"
)

// fakeSearcher serves canned candidates per item id and records calls.
type fakeSearcher struct {
	mu        sync.Mutex
	byItem    map[int64][]lostfound.Candidate
	errByItem map[int64]error
	calls     []int64
}

func (f *fakeSearcher) SearchCandidates(_ context.Context, itemID int64, _ int) ([]lostfound.Candidate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, itemID)
	f.mu.Unlock()
	if err := f.errByItem[itemID]; err != nil {
		return nil, err
	}
	return f.byItem[itemID], nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func i64(v int64) *int64 { return &v }

func candidate(lostID, foundID int64, score lostfound.Score, title string) lostfound.Candidate {
	return lostfound.Candidate{
		LostItemID:  i64(lostID),
		FoundItemID: i64(foundID),
		Score:       score,
		Item:        lostfound.CandidateItem{ID: foundID, Kind: lostfound.KindFound, Title: title},
	}
}

func items(kind lostfound.ItemKind, ids ...int64) []lostfound.Item {
	out := make([]lostfound.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, lostfound.Item{ID: id, Kind: kind})
	}
	return out
}

func TestBuildRecommendations_SingleCandidate(t *testing.T) {
	search := &fakeSearcher{byItem: map[int64][]lostfound.Candidate{
		1: {candidate(1, 101, 0.82, "Black Wallet")},
	}}
	agg := NewAggregator(search)

	recs := agg.BuildRecommendations(context.Background(), items(lostfound.KindLost, 1), nil)

	require.Len(t, recs, 1)
	assert.Equal(t, int64(1), recs[0].LostItemID)
	assert.Equal(t, int64(101), recs[0].FoundItemID)
	assert.Equal(t, 82, recs[0].Score.Percent())
	assert.Equal(t, "Black Wallet", recs[0].Title)
}

func TestBuildRecommendations_ThresholdExcludes(t *testing.T) {
	search := &fakeSearcher{byItem: map[int64][]lostfound.Candidate{
		1: {
			candidate(1, 101, 0.49, "just below"),
			candidate(1, 102, 0.5, "at threshold"),
			candidate(1, 103, 0.91, "well above"),
		},
	}}
	agg := NewAggregator(search)

	recs := agg.BuildRecommendations(context.Background(), items(lostfound.KindLost, 1), nil)

	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.GreaterOrEqual(t, float64(r.Score), 0.5)
	}
}

func TestBuildRecommendations_DedupeKeepsHigherScore(t *testing.T) {
	// Found item 200 reachable via two lost items with different scores.
	search := &fakeSearcher{byItem: map[int64][]lostfound.Candidate{
		1: {candidate(1, 200, 0.6, "via lost 1")},
		2: {candidate(2, 200, 0.8, "via lost 2")},
	}}
	agg := NewAggregator(search)

	recs := agg.BuildRecommendations(context.Background(), items(lostfound.KindLost, 1, 2), nil)

	require.Len(t, recs, 1)
	assert.Equal(t, lostfound.Score(0.8), recs[0].Score)
	assert.Equal(t, int64(2), recs[0].LostItemID)
}

func TestBuildRecommendations_DedupeTieKeepsFirst(t *testing.T) {
	search := &fakeSearcher{byItem: map[int64][]lostfound.Candidate{
		1: {candidate(1, 200, 0.7, "first")},
		2: {candidate(2, 200, 0.7, "second")},
	}}
	agg := NewAggregator(search)

	recs := agg.BuildRecommendations(context.Background(), items(lostfound.KindLost, 1, 2), nil)

	require.Len(t, recs, 1)
	assert.Equal(t, "first", recs[0].Title)
	assert.Equal(t, int64(1), recs[0].LostItemID)
}

func TestBuildRecommendations_NeverDuplicatesFoundItem(t *testing.T) {
	// Same found item surfaced from a lost-sourced and a found-sourced
	// search.
	search := &fakeSearcher{byItem: map[int64][]lostfound.Candidate{
		1:  {candidate(1, 300, 0.55, "lost-sourced")},
		50: {candidate(7, 300, 0.65, "found-sourced")},
	}}
	agg := NewAggregator(search)

	recs := agg.BuildRecommendations(context.Background(),
		items(lostfound.KindLost, 1), items(lostfound.KindFound, 50))

	require.Len(t, recs, 1)
	assert.Equal(t, lostfound.Score(0.65), recs[0].Score)

	seen := map[int64]bool{}
	for _, r := range recs {
		assert.False(t, seen[r.FoundItemID], "duplicate found item %d", r.FoundItemID)
		seen[r.FoundItemID] = true
	}
}

func TestBuildRecommendations_PartialFailureTolerated(t *testing.T) {
	search := &fakeSearcher{
		byItem: map[int64][]lostfound.Candidate{
			2: {candidate(2, 201, 0.75, "survivor")},
		},
		errByItem: map[int64]error{
			1: eris.New("matcher unavailable"),
		},
	}
	agg := NewAggregator(search)

	recs := agg.BuildRecommendations(context.Background(), items(lostfound.KindLost, 1, 2), nil)

	require.Len(t, recs, 1)
	assert.Equal(t, "survivor", recs[0].Title)
}

func TestBuildRecommendations_NoSourceItemsNoRequests(t *testing.T) {
	search := &fakeSearcher{}
	agg := NewAggregator(search)

	recs := agg.BuildRecommendations(context.Background(), nil, nil)

	assert.Empty(t, recs)
	assert.Zero(t, search.callCount())
}

func TestBuildRecommendations_FanoutCap(t *testing.T) {
	search := &fakeSearcher{byItem: map[int64][]lostfound.Candidate{}}
	agg := NewAggregator(search)

	recs := agg.BuildRecommendations(context.Background(),
		items(lostfound.KindLost, 1, 2, 3, 4, 5, 6, 7, 8), nil)

	assert.Empty(t, recs)
	assert.Equal(t, DefaultFanoutCap, search.callCount())
}

func TestBuildRecommendations_NilCounterpartFilledFromSource(t *testing.T) {
	// Matcher resolved only the found side; the lost side is the source
	// item itself.
	search := &fakeSearcher{byItem: map[int64][]lostfound.Candidate{
		9: {{
			FoundItemID: i64(400),
			Score:       0.9,
			Item:        lostfound.CandidateItem{ID: 400, Title: "Umbrella"},
		}},
	}}
	agg := NewAggregator(search)

	recs := agg.BuildRecommendations(context.Background(), items(lostfound.KindLost, 9), nil)

	require.Len(t, recs, 1)
	assert.Equal(t, int64(9), recs[0].LostItemID)
	assert.Equal(t, int64(400), recs[0].FoundItemID)
	assert.Equal(t, lostfound.KindFound, recs[0].CandidateKind)
}

func TestBuildRecommendations_StableOrder(t *testing.T) {
	search := &fakeSearcher{byItem: map[int64][]lostfound.Candidate{
		1: {candidate(1, 201, 0.7, "a"), candidate(1, 202, 0.6, "b")},
		2: {candidate(2, 203, 0.9, "c")},
	}}
	agg := NewAggregator(search)

	first := agg.BuildRecommendations(context.Background(), items(lostfound.KindLost, 1, 2), nil)
	for i := 0; i < 5; i++ {
		again := agg.BuildRecommendations(context.Background(), items(lostfound.KindLost, 1, 2), nil)
		assert.Equal(t, first, again)
	}
	require.Len(t, first, 3)
	assert.Equal(t, []int64{201, 202, 203}, []int64{first[0].FoundItemID, first[1].FoundItemID, first[2].FoundItemID})
}
