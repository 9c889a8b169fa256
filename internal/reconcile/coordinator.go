// Package reconcile executes user and admin actions against the Lost &
// Found service and folds the results back into local view state.
package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Eraal/Lost-and-Found-sub001/internal/view"
	"github.com/Eraal/Lost-and-Found-sub001/pkg/lostfound"
)

// ErrActionInFlight is returned when an action targets a match pair or
// claim that already has an action in flight from this client.
var ErrActionInFlight = eris.New("reconcile: action already in flight for this target")

// API is the slice of the Lost & Found client the coordinator drives.
type API interface {
	UpsertMatch(ctx context.Context, lostItemID, foundItemID int64, score lostfound.Score) (*lostfound.Match, error)
	ConfirmMatch(ctx context.Context, matchID int64) (*lostfound.Match, error)
	DismissMatch(ctx context.Context, matchID int64) (*lostfound.Match, error)
	ApproveClaim(ctx context.Context, claimID int64, adminNote string) (*lostfound.Claim, error)
	RejectClaim(ctx context.Context, claimID int64, adminNote string) (*lostfound.Claim, error)
}

// Coordinator guards and executes claim/match actions. Each target (match
// pair or claim id) admits one in-flight action at a time; unrelated
// targets proceed concurrently. Local state only changes after the server
// call succeeds, so a failure leaves everything exactly as it was.
type Coordinator struct {
	api  API
	recs *view.RecommendationSet

	mu   sync.Mutex
	busy map[string]struct{}
}

// New creates a Coordinator. recs may be nil when no recommendation
// working set is in play (e.g. the admin claims queue).
func New(api API, recs *view.RecommendationSet) *Coordinator {
	return &Coordinator{
		api:  api,
		recs: recs,
		busy: make(map[string]struct{}),
	}
}

func matchKey(lostItemID, foundItemID int64) string {
	return fmt.Sprintf("match:%d:%d", lostItemID, foundItemID)
}

func claimKey(claimID int64) string {
	return fmt.Sprintf("claim:%d", claimID)
}

// acquire marks a target busy. Returns false if it already was.
func (c *Coordinator) acquire(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, inFlight := c.busy[key]; inFlight {
		return false
	}
	c.busy[key] = struct{}{}
	return true
}

func (c *Coordinator) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.busy, key)
}

// ConfirmMatch persists the pair (create-if-absent) and transitions it to
// confirmed. On success the recommendation for the found item leaves the
// working set immediately; no follow-up fetch is needed.
func (c *Coordinator) ConfirmMatch(ctx context.Context, lostItemID, foundItemID int64, score lostfound.Score) error {
	return c.transitionMatch(ctx, lostItemID, foundItemID, score, lostfound.MatchConfirmed, c.api.ConfirmMatch)
}

// DismissMatch persists the pair and transitions it to dismissed, removing
// the recommendation on success.
func (c *Coordinator) DismissMatch(ctx context.Context, lostItemID, foundItemID int64, score lostfound.Score) error {
	return c.transitionMatch(ctx, lostItemID, foundItemID, score, lostfound.MatchDismissed, c.api.DismissMatch)
}

func (c *Coordinator) transitionMatch(
	ctx context.Context,
	lostItemID, foundItemID int64,
	score lostfound.Score,
	target lostfound.MatchStatus,
	transition func(context.Context, int64) (*lostfound.Match, error),
) error {
	key := matchKey(lostItemID, foundItemID)
	if !c.acquire(key) {
		return ErrActionInFlight
	}
	defer c.release(key)

	log := zap.L().With(
		zap.String("action_id", uuid.New().String()),
		zap.Int64("lost_item_id", lostItemID),
		zap.Int64("found_item_id", foundItemID),
		zap.String("target_status", string(target)),
	)

	// Upsert first: the matcher may only have produced an ephemeral scored
	// suggestion, not a persisted row. A failure after this point leaves a
	// pending match that the same upsert path re-discovers next time.
	match, err := c.api.UpsertMatch(ctx, lostItemID, foundItemID, score)
	if err != nil {
		return eris.Wrap(err, "reconcile: upsert match")
	}

	if _, err := transition(ctx, match.ID); err != nil {
		return eris.Wrapf(err, "reconcile: %s match %d", target, match.ID)
	}

	if c.recs != nil {
		c.recs.Remove(foundItemID)
	}
	log.Info("reconcile: match transitioned", zap.Int64("match_id", match.ID))
	return nil
}

// ApproveClaim transitions the claim's raw status to approved. Item status
// is the service's to change; the new value shows up on the next refresh.
func (c *Coordinator) ApproveClaim(ctx context.Context, claimID int64, adminNote string) (*lostfound.Claim, error) {
	return c.transitionClaim(ctx, claimID, adminNote, lostfound.ClaimApproved, c.api.ApproveClaim)
}

// RejectClaim transitions the claim's raw status to rejected.
func (c *Coordinator) RejectClaim(ctx context.Context, claimID int64, adminNote string) (*lostfound.Claim, error) {
	return c.transitionClaim(ctx, claimID, adminNote, lostfound.ClaimRejected, c.api.RejectClaim)
}

func (c *Coordinator) transitionClaim(
	ctx context.Context,
	claimID int64,
	adminNote string,
	target lostfound.ClaimStatus,
	transition func(context.Context, int64, string) (*lostfound.Claim, error),
) (*lostfound.Claim, error) {
	key := claimKey(claimID)
	if !c.acquire(key) {
		return nil, ErrActionInFlight
	}
	defer c.release(key)

	claim, err := transition(ctx, claimID, adminNote)
	if err != nil {
		return nil, eris.Wrapf(err, "reconcile: %s claim %d", target, claimID)
	}

	zap.L().Info("reconcile: claim transitioned",
		zap.String("action_id", uuid.New().String()),
		zap.Int64("claim_id", claimID),
		zap.String("status", string(claim.Status)),
	)
	return claim, nil
}
