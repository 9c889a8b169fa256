package reconcile

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eraal/Lost-and-Found-sub001/internal/model"
	"github.com/Eraal/Lost-and-Found-sub001/internal/view"
	"github.com/Eraal/Lost-and-Found-sub001/pkg/lostfound"
)

// fakeAPI records call order and lets tests fail or stall specific steps.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	upsertErr     error
	transitionErr error
	claimErr      error

	// block, when non-nil, stalls UpsertMatch until closed. started gets a
	// non-blocking send when a stalled upsert begins.
	block   chan struct{}
	started chan struct{}

	matches map[string]*lostfound.Match
	nextID  int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{matches: make(map[string]*lostfound.Match), nextID: 1}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) UpsertMatch(_ context.Context, lostID, foundID int64, score lostfound.Score) (*lostfound.Match, error) {
	if f.block != nil {
		if f.started != nil {
			select {
			case f.started <- struct{}{}:
			default:
			}
		}
		<-f.block
	}
	f.record("upsert")
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%d/%d", lostID, foundID)
	if m, ok := f.matches[key]; ok {
		return m, nil
	}
	m := &lostfound.Match{
		ID:           f.nextID,
		LostItemID:   lostID,
		FoundItemID:  foundID,
		ScorePercent: score.Percent(),
		Status:       lostfound.MatchPending,
	}
	f.nextID++
	f.matches[key] = m
	return m, nil
}

func (f *fakeAPI) ConfirmMatch(_ context.Context, matchID int64) (*lostfound.Match, error) {
	f.record("confirm")
	if f.transitionErr != nil {
		return nil, f.transitionErr
	}
	return &lostfound.Match{ID: matchID, Status: lostfound.MatchConfirmed}, nil
}

func (f *fakeAPI) DismissMatch(_ context.Context, matchID int64) (*lostfound.Match, error) {
	f.record("dismiss")
	if f.transitionErr != nil {
		return nil, f.transitionErr
	}
	return &lostfound.Match{ID: matchID, Status: lostfound.MatchDismissed}, nil
}

func (f *fakeAPI) ApproveClaim(_ context.Context, claimID int64, _ string) (*lostfound.Claim, error) {
	f.record("approve")
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	return &lostfound.Claim{ID: claimID, Status: lostfound.ClaimApproved}, nil
}

func (f *fakeAPI) RejectClaim(_ context.Context, claimID int64, _ string) (*lostfound.Claim, error) {
	f.record("reject")
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	return &lostfound.Claim{ID: claimID, Status: lostfound.ClaimRejected}, nil
}

func workingSet(foundIDs ...int64) *view.RecommendationSet {
	set := view.NewRecommendationSet()
	recs := make([]model.Recommendation, 0, len(foundIDs))
	for _, id := range foundIDs {
		recs = append(recs, model.Recommendation{LostItemID: 1, FoundItemID: id, Score: 0.8})
	}
	set.Replace(recs)
	return set
}

func TestConfirmMatch_UpsertsThenConfirmsAndRemoves(t *testing.T) {
	api := newFakeAPI()
	recs := workingSet(100, 200)
	coord := New(api, recs)

	err := coord.ConfirmMatch(context.Background(), 1, 100, 0.82)

	require.NoError(t, err)
	assert.Equal(t, []string{"upsert", "confirm"}, api.callLog())

	list := recs.List()
	require.Len(t, list, 1)
	assert.Equal(t, int64(200), list[0].FoundItemID)
}

func TestDismissMatch_RemovesOnSuccess(t *testing.T) {
	api := newFakeAPI()
	recs := workingSet(100)
	coord := New(api, recs)

	err := coord.DismissMatch(context.Background(), 1, 100, 0.6)

	require.NoError(t, err)
	assert.Equal(t, []string{"upsert", "dismiss"}, api.callLog())
	assert.Zero(t, recs.Len())
}

func TestConfirmMatch_UpsertFailureLeavesWorkingSet(t *testing.T) {
	api := newFakeAPI()
	api.upsertErr = eris.New("service unavailable")
	recs := workingSet(100)
	coord := New(api, recs)

	err := coord.ConfirmMatch(context.Background(), 1, 100, 0.82)

	require.Error(t, err)
	assert.Equal(t, 1, recs.Len(), "failed action must not remove the recommendation")
	assert.Equal(t, []string{"upsert"}, api.callLog(), "transition must not run after a failed upsert")
}

func TestConfirmMatch_TransitionFailureLeavesWorkingSet(t *testing.T) {
	api := newFakeAPI()
	api.transitionErr = eris.New("conflict")
	recs := workingSet(100)
	coord := New(api, recs)

	err := coord.ConfirmMatch(context.Background(), 1, 100, 0.82)

	require.Error(t, err)
	assert.Equal(t, 1, recs.Len())
	// The upsert persisted a pending match; the same pair stays actionable.
	api.transitionErr = nil
	require.NoError(t, coord.ConfirmMatch(context.Background(), 1, 100, 0.82))
	assert.Zero(t, recs.Len())
}

func TestConfirmMatch_BusyGuardBlocksSameTarget(t *testing.T) {
	api := newFakeAPI()
	api.block = make(chan struct{})
	api.started = make(chan struct{}, 1)
	coord := New(api, workingSet(100))

	done := make(chan error, 1)
	go func() {
		done <- coord.ConfirmMatch(context.Background(), 1, 100, 0.8)
	}()

	// Wait until the first action holds the guard, then probe it.
	<-api.started
	assert.ErrorIs(t, coord.DismissMatch(context.Background(), 1, 100, 0.8), ErrActionInFlight)

	close(api.block)
	require.NoError(t, <-done)

	// Guard released after completion.
	api.block = nil
	assert.NotErrorIs(t, coord.DismissMatch(context.Background(), 1, 100, 0.8), ErrActionInFlight)
}

func TestConfirmMatch_UnrelatedTargetsProceed(t *testing.T) {
	api := newFakeAPI()
	api.block = make(chan struct{})
	coord := New(api, workingSet(100, 200))

	done := make(chan error, 1)
	go func() {
		done <- coord.ConfirmMatch(context.Background(), 1, 100, 0.8)
	}()

	// A different pair is not blocked by the in-flight action. Its upsert
	// also stalls on block, so run it concurrently and release both.
	other := make(chan error, 1)
	go func() {
		other <- coord.ConfirmMatch(context.Background(), 2, 200, 0.7)
	}()

	close(api.block)
	require.NoError(t, <-done)
	require.NoError(t, <-other)
}

func TestApproveClaim(t *testing.T) {
	api := newFakeAPI()
	coord := New(api, nil)

	claim, err := coord.ApproveClaim(context.Background(), 42, "verified in person")

	require.NoError(t, err)
	assert.Equal(t, lostfound.ClaimApproved, claim.Status)
	assert.Equal(t, []string{"approve"}, api.callLog())
}

func TestRejectClaim_ErrorPropagates(t *testing.T) {
	api := newFakeAPI()
	api.claimErr = eris.New("forbidden")
	coord := New(api, nil)

	_, err := coord.RejectClaim(context.Background(), 42, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected claim 42")
	assert.Contains(t, err.Error(), "forbidden")
}

func TestClaimActions_BusyGuardPerClaim(t *testing.T) {
	api := newFakeAPI()
	coord := New(api, nil)

	// Simulate an in-flight action by holding the key directly through a
	// stalled call.
	api.block = make(chan struct{})
	blocked := make(chan error, 1)
	go func() {
		// Claim actions do not stall on block; reuse a match action to
		// verify key namespaces are separate instead.
		blocked <- coord.ConfirmMatch(context.Background(), 5, 5, 0.9)
	}()

	// A claim with the same numeric id is a different target.
	_, err := coord.ApproveClaim(context.Background(), 5, "")
	assert.NoError(t, err)

	close(api.block)
	require.NoError(t, <-blocked)
}
