// Package model holds the derived, display-side types of the client core.
// Nothing here is persisted by the service; every value is recomputed from
// the raw collections on each refresh.
package model

import (
	"time"

	"github.com/Eraal/Lost-and-Found-sub001/pkg/lostfound"
)

// UIStatus is the single user-facing claim status derived from the raw
// claim status and the referenced item's lifecycle status.
type UIStatus string

const (
	StatusPending  UIStatus = "pending"
	StatusApproved UIStatus = "approved"
	StatusRejected UIStatus = "rejected"
	StatusReturned UIStatus = "returned"
)

// UIStatuses lists every derivable status, in lifecycle order.
var UIStatuses = []UIStatus{StatusPending, StatusApproved, StatusRejected, StatusReturned}

// Label returns the display label for the status.
func (s UIStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusReturned:
		return "Returned"
	}
	return "Unknown"
}

// Badge is the display badge derived from an item's backend status and kind.
type Badge string

const (
	BadgeMissing   Badge = "missing"
	BadgeUnclaimed Badge = "unclaimed"
	BadgeMatched   Badge = "matched"
	BadgeClaimed   Badge = "claimed"
)

// Label returns the display label for the badge. The switch is exhaustive
// over the Badge constants so a new server-side status shows up as Unknown
// instead of silently reusing another label.
func (b Badge) Label() string {
	switch b {
	case BadgeMissing:
		return "Missing"
	case BadgeUnclaimed:
		return "Unclaimed"
	case BadgeMatched:
		return "Matched"
	case BadgeClaimed:
		return "Claimed"
	}
	return "Unknown"
}

// Recommendation is an ephemeral candidate pairing surfaced to the user.
// It lives only for the duration of a refresh cycle and is removed from the
// working set the moment the user confirms or dismisses it.
type Recommendation struct {
	LostItemID    int64             `json:"lostItemId"`
	FoundItemID   int64             `json:"foundItemId"`
	Title         string            `json:"title"`
	Score         lostfound.Score   `json:"score"`
	Location      string            `json:"location,omitempty"`
	OccurredOn    string            `json:"occurredOn,omitempty"`
	PhotoURL      string            `json:"photoUrl,omitempty"`
	CandidateKind lostfound.ItemKind `json:"candidateType"`
}

// ClaimView pairs a raw claim with its derived status.
type ClaimView struct {
	Claim  lostfound.Claim `json:"claim"`
	Status UIStatus        `json:"status"`
}

// Stats are the dashboard aggregates derived from a user's item reports.
type Stats struct {
	TotalReports      int `json:"totalReports"`
	ActiveReports     int `json:"activeReports"`
	MatchesFound      int `json:"matchesFound"`
	SuccessfulReturns int `json:"successfulReturns"`
}

// Snapshot is one fully derived view over the raw collections. The refresher
// replaces it atomically; a failed refresh leaves the previous snapshot in
// place and records the error.
type Snapshot struct {
	FetchedAt       time.Time        `json:"fetchedAt"`
	LostItems       []lostfound.Item `json:"lostItems"`
	FoundItems      []lostfound.Item `json:"foundItems"`
	Claims          []ClaimView      `json:"claims"`
	Recommendations []Recommendation `json:"recommendations"`
	Stats           Stats            `json:"stats"`
	Error           string           `json:"error,omitempty"`
}
