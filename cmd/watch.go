package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Eraal/Lost-and-Found-sub001/internal/view"
)

var watchUserID int64

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the service and keep the derived snapshot fresh",
	Long:  "Runs the refresh loop (30s for a user view, 60s for the admin view) until interrupted, caching the last-known-good snapshot locally.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		recs := view.NewRecommendationSet()
		refresher := env.newRefresher(watchUserID, recs)

		zap.L().Info("watch: starting refresh loop", zap.Int64("user", watchUserID))
		if err := refresher.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().Int64Var(&watchUserID, "user", 0, "user id to watch (0 = admin view)")
	rootCmd.AddCommand(watchCmd)
}
