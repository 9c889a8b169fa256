package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Eraal/Lost-and-Found-sub001/internal/model"
	"github.com/Eraal/Lost-and-Found-sub001/internal/reconcile"
	"github.com/Eraal/Lost-and-Found-sub001/pkg/lostfound"
)

var (
	recommendUserID int64
	matchLostID     int64
	matchFoundID    int64
	matchScorePct   int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Build smart-match recommendations for a user's reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		if recommendUserID == 0 {
			return eris.New("--user is required")
		}
		client := newClient(cfg)
		ctx := cmd.Context()

		lost, err := client.ListItems(ctx, lostfound.ItemFilter{Kind: lostfound.KindLost, OwnerID: recommendUserID})
		if err != nil {
			return eris.Wrap(err, "list lost items")
		}
		found, err := client.ListItems(ctx, lostfound.ItemFilter{Kind: lostfound.KindFound, OwnerID: recommendUserID})
		if err != nil {
			return eris.Wrap(err, "list found items")
		}

		recs := newAggregator(cfg, client).BuildRecommendations(ctx, lost, found)
		printRecommendations(cmd.OutOrStdout(), recs)
		return nil
	},
}

func printRecommendations(out io.Writer, recs []model.Recommendation) {
	if len(recs) == 0 {
		_, _ = fmt.Fprintln(out, "No matches above the confidence threshold.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LOST\tFOUND\tTITLE\tSCORE\tLOCATION\tDATE")
	for _, r := range recs {
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%d%%\t%s\t%s\n",
			r.LostItemID, r.FoundItemID, r.Title, r.Score.Percent(), r.Location, r.OccurredOn)
	}
	_ = w.Flush()
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Confirm or dismiss candidate matches",
}

var matchesConfirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Persist and confirm a match pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatchAction(cmd, true)
	},
}

var matchesDismissCmd = &cobra.Command{
	Use:   "dismiss",
	Short: "Persist and dismiss a match pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMatchAction(cmd, false)
	},
}

func runMatchAction(cmd *cobra.Command, confirm bool) error {
	if matchLostID == 0 || matchFoundID == 0 {
		return eris.New("--lost and --found are required")
	}

	coord := reconcile.New(newClient(cfg), nil)
	score := lostfound.FromPercent(matchScorePct)

	var err error
	if confirm {
		err = coord.ConfirmMatch(cmd.Context(), matchLostID, matchFoundID, score)
	} else {
		err = coord.DismissMatch(cmd.Context(), matchLostID, matchFoundID, score)
	}
	if err != nil {
		return err
	}

	verb := "confirmed"
	if !confirm {
		verb = "dismissed"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Match %d/%d %s\n", matchLostID, matchFoundID, verb)
	return nil
}

func init() {
	recommendCmd.Flags().Int64Var(&recommendUserID, "user", 0, "owner user id")

	for _, c := range []*cobra.Command{matchesConfirmCmd, matchesDismissCmd} {
		c.Flags().Int64Var(&matchLostID, "lost", 0, "lost item id")
		c.Flags().Int64Var(&matchFoundID, "found", 0, "found item id")
		c.Flags().IntVar(&matchScorePct, "score", 0, "match confidence percent (0-100)")
	}

	matchesCmd.AddCommand(matchesConfirmCmd, matchesDismissCmd)
	rootCmd.AddCommand(recommendCmd, matchesCmd)
}
