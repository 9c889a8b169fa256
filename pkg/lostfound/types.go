package lostfound

// ItemKind distinguishes lost reports from found reports.
type ItemKind string

const (
	KindLost  ItemKind = "lost"
	KindFound ItemKind = "found"
)

// ItemStatus is the backend lifecycle status of an item. The service has
// emitted both "open"/"pending" and "closed"/"returned" spellings over time,
// so consumers should compare through the helper predicates below.
type ItemStatus string

const (
	ItemOpen     ItemStatus = "open"
	ItemPending  ItemStatus = "pending"
	ItemMatched  ItemStatus = "matched"
	ItemClaimed  ItemStatus = "claimed"
	ItemClosed   ItemStatus = "closed"
	ItemReturned ItemStatus = "returned"
)

// Closed reports whether the item has completed its lifecycle (handed back
// to its owner), under either spelling the backend uses.
func (s ItemStatus) Closed() bool {
	return s == ItemClosed || s == ItemReturned
}

// Item is a lost or found report record.
type Item struct {
	ID          int64      `json:"id"`
	Kind        ItemKind   `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	OccurredOn  string     `json:"occurredOn,omitempty"`
	ReportedAt  string     `json:"reportedAt,omitempty"`
	PhotoURL    string     `json:"photoUrl,omitempty"`
	Status      ItemStatus `json:"status,omitempty"`
	OwnerID     int64      `json:"ownerId,omitempty"`
}

// ClaimStatus is the raw persisted claim status. The service also emits
// statuses outside this set ("verified", "cancelled"); they pass through
// untouched and derivation treats them as pending.
type ClaimStatus string

const (
	ClaimRequested ClaimStatus = "requested"
	ClaimPending   ClaimStatus = "pending"
	ClaimApproved  ClaimStatus = "approved"
	ClaimRejected  ClaimStatus = "rejected"
)

// Claim is a user's ownership assertion against a found item.
type Claim struct {
	ID             int64       `json:"id"`
	ItemID         int64       `json:"itemId"`
	ClaimantUserID int64       `json:"claimantId"`
	Status         ClaimStatus `json:"status"`
	CreatedAt      string      `json:"createdAt,omitempty"`
	ApprovedAt     string      `json:"approvedAt,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	AdminNote      string      `json:"adminNote,omitempty"`
	MatchScore     *Score      `json:"matchScore,omitempty"`
	Item           *Item       `json:"item,omitempty"`
}

// MatchStatus is the workflow state of a persisted match row.
type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchConfirmed MatchStatus = "confirmed"
	MatchDismissed MatchStatus = "dismissed"
)

// Match is a persisted candidate pairing between a lost and a found item.
// Score is the percent form the service stores (see Score for the
// fraction/percent boundary).
type Match struct {
	ID           int64       `json:"id"`
	LostItemID   int64       `json:"lostItemId"`
	FoundItemID  int64       `json:"foundItemId"`
	ScorePercent int         `json:"score"`
	Status       MatchStatus `json:"status"`
	CreatedAt    string      `json:"createdAt,omitempty"`
}

// Candidate is one scored suggestion from the smart-search matcher. The
// matcher echoes whichever side of the pair it resolved; a nil id means the
// caller's own item fills that side.
type Candidate struct {
	LostItemID  *int64        `json:"lostItem"`
	FoundItemID *int64        `json:"foundItem"`
	Score       Score         `json:"score"`
	Item        CandidateItem `json:"candidate"`
}

// CandidateItem carries the denormalized display fields of the counterpart.
type CandidateItem struct {
	ID         int64      `json:"id"`
	Kind       ItemKind   `json:"type"`
	Title      string     `json:"title"`
	Location   string     `json:"location,omitempty"`
	OccurredOn string     `json:"occurredOn,omitempty"`
	Status     ItemStatus `json:"status,omitempty"`
	PhotoURL   string     `json:"photoUrl,omitempty"`
}

// ItemFilter narrows ListItems.
type ItemFilter struct {
	Kind    ItemKind
	OwnerID int64
	Status  ItemStatus
	Limit   int
}

// ClaimFilter narrows ListClaims.
type ClaimFilter struct {
	ClaimantUserID int64
	ItemID         int64
	Status         ClaimStatus
	Limit          int
}
