package main

import (
	"context"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Eraal/Lost-and-Found-sub001/internal/config"
	"github.com/Eraal/Lost-and-Found-sub001/internal/refresh"
	"github.com/Eraal/Lost-and-Found-sub001/internal/store"
	"github.com/Eraal/Lost-and-Found-sub001/internal/view"
	"github.com/Eraal/Lost-and-Found-sub001/pkg/lostfound"
)

// env bundles the wired application components for a command invocation.
type env struct {
	client lostfound.Client
	store  store.Store
}

func newClient(cfg *config.Config) lostfound.Client {
	return lostfound.NewClient(cfg.API.BaseURL,
		lostfound.WithToken(cfg.API.Token),
		lostfound.WithRateLimit(cfg.API.RateLimit),
	)
}

func newAggregator(cfg *config.Config, client lostfound.Client) *view.Aggregator {
	agg := view.NewAggregator(client)
	if cfg.Match.MinScore > 0 {
		agg.MinScore = lostfound.Score(cfg.Match.MinScore)
	}
	if cfg.Match.FanoutCap > 0 {
		agg.FanoutCap = cfg.Match.FanoutCap
	}
	if cfg.Match.CandidateLimit > 0 {
		agg.CandidateLimit = cfg.Match.CandidateLimit
	}
	return agg
}

// initEnv wires the client and opens the snapshot cache.
func initEnv(ctx context.Context) (*env, error) {
	st, err := store.NewSQLite(cfg.Cache.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open snapshot cache")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate snapshot cache")
	}
	return &env{client: newClient(cfg), store: st}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		zap.L().Warn("close snapshot cache", zap.Error(err))
	}
}

// newRefresher builds a refresher for a user or admin view.
func (e *env) newRefresher(ownerID int64, recs *view.RecommendationSet) *refresh.Refresher {
	viewKey := "admin"
	interval := time.Duration(cfg.Refresh.AdminIntervalSecs) * time.Second
	if ownerID != 0 {
		viewKey = "user:" + strconv.FormatInt(ownerID, 10)
		interval = time.Duration(cfg.Refresh.UserIntervalSecs) * time.Second
	}
	return refresh.New(e.client, newAggregator(cfg, e.client), recs, refresh.Options{
		ViewKey:  viewKey,
		OwnerID:  ownerID,
		Interval: interval,
		Cache:    e.store,
	})
}
