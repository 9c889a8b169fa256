package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/Eraal/Lost-and-Found-sub001/internal/model"
	"github.com/Eraal/Lost-and-Found-sub001/internal/reconcile"
	"github.com/Eraal/Lost-and-Found-sub001/internal/view"
	"github.com/Eraal/Lost-and-Found-sub001/pkg/lostfound"
)

var (
	claimsUserID int64
	claimsStatus string
	claimsSearch string
	claimNote    string
)

var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "Track and act on item claims",
}

var claimsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List claims with their derived statuses",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient(cfg)

		claims, err := client.ListClaims(cmd.Context(), lostfound.ClaimFilter{
			ClaimantUserID: claimsUserID,
			Limit:          500,
		})
		if err != nil {
			return eris.Wrap(err, "list claims")
		}

		filter := view.ClaimListFilter{Query: claimsSearch}
		if claimsStatus != "" && claimsStatus != "all" {
			filter.Status = model.UIStatus(claimsStatus)
		}
		list := view.BuildClaimList(claims, filter)
		counts := view.CountByStatus(claims)

		printClaims(cmd.OutOrStdout(), list, counts)
		return nil
	},
}

func printClaims(out io.Writer, list []model.ClaimView, counts map[model.UIStatus]int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CLAIM\tITEM\tTITLE\tSTATUS\tCREATED")
	for _, cv := range list {
		title := ""
		if cv.Claim.Item != nil {
			title = cv.Claim.Item.Title
		}
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
			cv.Claim.ID, cv.Claim.ItemID, title, cv.Status.Label(), cv.Claim.CreatedAt)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\n%d shown", len(list))
	for _, s := range model.UIStatuses {
		_, _ = fmt.Fprintf(out, " | %s %d", s.Label(), counts[s])
	}
	_, _ = fmt.Fprintln(out)
}

var claimsApproveCmd = &cobra.Command{
	Use:   "approve <claim-id>",
	Short: "Approve a claim (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClaimAction(cmd, args[0], true)
	},
}

var claimsRejectCmd = &cobra.Command{
	Use:   "reject <claim-id>",
	Short: "Reject a claim (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClaimAction(cmd, args[0], false)
	},
}

func runClaimAction(cmd *cobra.Command, rawID string, approve bool) error {
	claimID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return eris.Wrapf(err, "invalid claim id %q", rawID)
	}

	coord := reconcile.New(newClient(cfg), nil)

	var claim *lostfound.Claim
	if approve {
		claim, err = coord.ApproveClaim(cmd.Context(), claimID, claimNote)
	} else {
		claim, err = coord.RejectClaim(cmd.Context(), claimID, claimNote)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Claim %d is now %s\n", claim.ID, claim.Status)
	return nil
}

func init() {
	claimsListCmd.Flags().Int64Var(&claimsUserID, "user", 0, "claimant user id (0 = all claims)")
	claimsListCmd.Flags().StringVar(&claimsStatus, "status", "all", "filter by derived status (pending|approved|rejected|returned)")
	claimsListCmd.Flags().StringVar(&claimsSearch, "search", "", "search by item title or claim id")

	claimsApproveCmd.Flags().StringVar(&claimNote, "note", "", "admin note attached to the decision")
	claimsRejectCmd.Flags().StringVar(&claimNote, "note", "", "admin note attached to the decision")

	claimsCmd.AddCommand(claimsListCmd, claimsApproveCmd, claimsRejectCmd)
	rootCmd.AddCommand(claimsCmd)
}
