// Package refresh re-derives the client's view state on a timer and on
// demand, keeping the last-known-good snapshot through partial failures.
package refresh

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Eraal/Lost-and-Found-sub001/internal/model"
	"github.com/Eraal/Lost-and-Found-sub001/internal/store"
	"github.com/Eraal/Lost-and-Found-sub001/internal/view"
	"github.com/Eraal/Lost-and-Found-sub001/pkg/lostfound"
)

// Source is the slice of the Lost & Found client the refresher reads from.
type Source interface {
	ListItems(ctx context.Context, filter lostfound.ItemFilter) ([]lostfound.Item, error)
	ListClaims(ctx context.Context, filter lostfound.ClaimFilter) ([]lostfound.Claim, error)
	view.CandidateSearcher
}

// Options configure a Refresher.
type Options struct {
	// ViewKey names the logical view, e.g. "user:42" or "admin". Used as
	// the snapshot cache key.
	ViewKey string
	// OwnerID scopes items and claims to one user. Zero means unscoped
	// (admin views). Identity is passed in explicitly; the refresher never
	// reads ambient session state.
	OwnerID int64
	// Interval between timed refreshes.
	Interval time.Duration
	// Cache, when non-nil, persists the last-known-good snapshot and seeds
	// the initial one.
	Cache store.Store
}

// Refresher re-fetches the raw collections and re-runs derivation over
// them. Both the interval timer and Refresh() feed the same routine. Every
// cycle gets a monotonic generation; a cycle that has been superseded by a
// newer one discards its result instead of writing stale state.
type Refresher struct {
	source Source
	agg    *view.Aggregator
	recs   *view.RecommendationSet
	opts   Options

	gen     atomic.Uint64
	trigger chan struct{}

	mu      sync.RWMutex
	snap    model.Snapshot
	hasSnap bool
}

// New creates a Refresher. The aggregator's searcher should be the same
// client so candidate fetches share the rate limit.
func New(source Source, agg *view.Aggregator, recs *view.RecommendationSet, opts Options) *Refresher {
	if opts.Interval <= 0 {
		opts.Interval = 60 * time.Second
	}
	return &Refresher{
		source:  source,
		agg:     agg,
		recs:    recs,
		opts:    opts,
		trigger: make(chan struct{}, 1),
	}
}

// Snapshot returns the last-known-good snapshot. ok is false until the
// first refresh (or cache seed) completes.
func (r *Refresher) Snapshot() (model.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap, r.hasSnap
}

// Refresh requests an immediate refresh. Non-blocking; a request while one
// is already queued coalesces.
func (r *Refresher) Refresh() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run drives the refresher until ctx is cancelled. It seeds from the cache,
// performs one immediate refresh, then serves timer and manual triggers.
// Triggers that arrive while a refresh is in flight start a new cycle; the
// generation counter ensures only the newest cycle's result lands.
func (r *Refresher) Run(ctx context.Context) error {
	r.seedFromCache(ctx)

	go r.refresh(ctx)

	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			go r.refresh(ctx)
		case <-r.trigger:
			go r.refresh(ctx)
		}
	}
}

func (r *Refresher) seedFromCache(ctx context.Context) {
	if r.opts.Cache == nil {
		return
	}
	cached, err := r.opts.Cache.GetSnapshot(ctx, r.opts.ViewKey)
	if err != nil {
		zap.L().Warn("refresh: cache seed failed", zap.String("view", r.opts.ViewKey), zap.Error(err))
		return
	}
	if cached == nil {
		return
	}
	r.mu.Lock()
	r.snap = *cached
	r.hasSnap = true
	r.mu.Unlock()
	if r.recs != nil {
		r.recs.Replace(cached.Recommendations)
	}
}

// refresh runs one full fetch+derive cycle under a fresh generation.
func (r *Refresher) refresh(ctx context.Context) {
	gen := r.gen.Add(1)
	snap := r.buildSnapshot(ctx)
	r.apply(gen, snap)
}

// buildSnapshot fetches the raw collections in parallel and derives the
// view. Read failures are swallowed per collection: the failed collection
// keeps its last-known-good value and the error lands in Snapshot.Error,
// so derivation code downstream never sees a failed read.
func (r *Refresher) buildSnapshot(ctx context.Context) model.Snapshot {
	prev, _ := r.Snapshot()

	var (
		lost, found []lostfound.Item
		claims      []lostfound.Claim
		errsMu      sync.Mutex
		readErrs    []string
	)
	fail := func(what string, err error) {
		zap.L().Warn("refresh: read failed", zap.String("view", r.opts.ViewKey), zap.String("collection", what), zap.Error(err))
		errsMu.Lock()
		readErrs = append(readErrs, what+": "+err.Error())
		errsMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := r.source.ListItems(gctx, lostfound.ItemFilter{Kind: lostfound.KindLost, OwnerID: r.opts.OwnerID})
		if err != nil {
			fail("lost items", err)
			items = prev.LostItems
		}
		lost = items
		return nil
	})
	g.Go(func() error {
		items, err := r.source.ListItems(gctx, lostfound.ItemFilter{Kind: lostfound.KindFound, OwnerID: r.opts.OwnerID})
		if err != nil {
			fail("found items", err)
			items = prev.FoundItems
		}
		found = items
		return nil
	})
	g.Go(func() error {
		list, err := r.source.ListClaims(gctx, lostfound.ClaimFilter{ClaimantUserID: r.opts.OwnerID, Limit: 500})
		if err != nil {
			fail("claims", err)
			for _, cv := range prev.Claims {
				list = append(list, cv.Claim)
			}
		}
		claims = list
		return nil
	})
	_ = g.Wait()

	snap := model.Snapshot{
		FetchedAt:  time.Now().UTC(),
		LostItems:  lost,
		FoundItems: found,
		Claims:     view.BuildClaimList(claims, view.ClaimListFilter{}),
		Stats:      view.BuildStats(lost, found),
		Error:      strings.Join(readErrs, "; "),
	}
	if r.agg != nil {
		snap.Recommendations = r.agg.BuildRecommendations(ctx, lost, found)
	}
	return snap
}

// apply installs a cycle's snapshot unless a newer cycle has started.
func (r *Refresher) apply(gen uint64, snap model.Snapshot) {
	r.mu.Lock()
	if r.gen.Load() != gen {
		r.mu.Unlock()
		zap.L().Debug("refresh: stale cycle discarded",
			zap.String("view", r.opts.ViewKey),
			zap.Uint64("gen", gen),
		)
		return
	}
	r.snap = snap
	r.hasSnap = true
	r.mu.Unlock()

	if r.recs != nil {
		r.recs.Replace(snap.Recommendations)
	}
	r.persist(snap)

	zap.L().Info("refresh: snapshot updated",
		zap.String("view", r.opts.ViewKey),
		zap.Int("claims", len(snap.Claims)),
		zap.Int("recommendations", len(snap.Recommendations)),
		zap.String("read_errors", snap.Error),
	)
}

func (r *Refresher) persist(snap model.Snapshot) {
	if r.opts.Cache == nil {
		return
	}
	// Persist with its own deadline; the refresh ctx may already be gone.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.opts.Cache.SaveSnapshot(ctx, r.opts.ViewKey, snap); err != nil {
		zap.L().Warn("refresh: snapshot persist failed",
			zap.String("view", r.opts.ViewKey),
			zap.Error(eris.Wrap(err, "refresh: save snapshot")),
		)
	}
}

// RefreshOnce runs a single synchronous cycle, for one-shot CLI commands.
func (r *Refresher) RefreshOnce(ctx context.Context) (model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.Snapshot{}, eris.Wrap(err, "refresh: context")
	}
	gen := r.gen.Add(1)
	snap := r.buildSnapshot(ctx)
	r.apply(gen, snap)
	return snap, nil
}
