package view

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/Eraal/Lost-and-Found-sub001/internal/model"
	"github.com/Eraal/Lost-and-Found-sub001/pkg/lostfound"
)

var foldCaser = cases.Fold()

// ClaimListFilter narrows BuildClaimList. An empty Status means all
// statuses; Query matches case-folded against item title, claim id and
// item id.
type ClaimListFilter struct {
	Status model.UIStatus
	Query  string
}

// BuildClaimList derives statuses for every claim, applies the filter and
// returns the result newest-first by creation time.
func BuildClaimList(claims []lostfound.Claim, filter ClaimListFilter) []model.ClaimView {
	query := foldCaser.String(strings.TrimSpace(filter.Query))

	out := make([]model.ClaimView, 0, len(claims))
	for _, c := range claims {
		cv := model.ClaimView{Claim: c, Status: DeriveClaimStatus(c, c.Item)}
		if filter.Status != "" && cv.Status != filter.Status {
			continue
		}
		if query != "" && !claimMatches(c, query) {
			continue
		}
		out = append(out, cv)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Claim.CreatedAt > out[j].Claim.CreatedAt
	})
	return out
}

func claimMatches(c lostfound.Claim, foldedQuery string) bool {
	if c.Item != nil && strings.Contains(foldCaser.String(c.Item.Title), foldedQuery) {
		return true
	}
	return strings.Contains(strconv.FormatInt(c.ID, 10), foldedQuery) ||
		strings.Contains(strconv.FormatInt(c.ItemID, 10), foldedQuery)
}

// CountByStatus tallies claims per derived status. Every derivable status
// is present in the result, zero included.
func CountByStatus(claims []lostfound.Claim) map[model.UIStatus]int {
	counts := make(map[model.UIStatus]int, len(model.UIStatuses))
	for _, s := range model.UIStatuses {
		counts[s] = 0
	}
	for _, c := range claims {
		counts[DeriveClaimStatus(c, c.Item)]++
	}
	return counts
}

// BuildStats derives the dashboard aggregates from a user's reports.
// Active means the item is still in play (not closed or returned).
func BuildStats(lost, found []lostfound.Item) model.Stats {
	stats := model.Stats{TotalReports: len(lost) + len(found)}
	for _, items := range [][]lostfound.Item{lost, found} {
		for _, it := range items {
			status := itemStatus(&it)
			if status.Closed() {
				stats.SuccessfulReturns++
			} else {
				stats.ActiveReports++
			}
			if status == lostfound.ItemMatched {
				stats.MatchesFound++
			}
		}
	}
	return stats
}
