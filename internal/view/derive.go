package view

import (
	"strings"

	"github.com/Eraal/Lost-and-Found-sub001/internal/model"
	"github.com/Eraal/Lost-and-Found-sub001/pkg/lostfound"
)

// DeriveClaimStatus maps a raw claim and its referenced item to the single
// user-facing status. The rule order is load-bearing:
//
//  1. a rejected claim stays rejected even if the item was later closed
//     through another claim;
//  2. otherwise a closed/returned item means the claim reads as returned,
//     even when its raw status is still approved;
//  3. otherwise approved passes through;
//  4. anything else (requested, pending, verified, cancelled, absent)
//     reads as pending.
//
// item may be nil when the claim record carries no embedded item; rule 2 is
// then skipped. Pure and deterministic.
func DeriveClaimStatus(claim lostfound.Claim, item *lostfound.Item) model.UIStatus {
	raw := lostfound.ClaimStatus(strings.ToLower(string(claim.Status)))
	if raw == lostfound.ClaimRejected {
		return model.StatusRejected
	}
	if item != nil && itemStatus(item).Closed() {
		return model.StatusReturned
	}
	if raw == lostfound.ClaimApproved {
		return model.StatusApproved
	}
	return model.StatusPending
}

// DeriveItemBadge maps an item's backend status to its display badge.
// Items without an explicit claimed/matched status fall back by kind:
// lost reports read as Missing, found reports as Unclaimed.
func DeriveItemBadge(item lostfound.Item) model.Badge {
	switch itemStatus(&item) {
	case lostfound.ItemClaimed:
		return model.BadgeClaimed
	case lostfound.ItemMatched:
		return model.BadgeMatched
	}
	if item.Kind == lostfound.KindLost {
		return model.BadgeMissing
	}
	return model.BadgeUnclaimed
}

func itemStatus(item *lostfound.Item) lostfound.ItemStatus {
	return lostfound.ItemStatus(strings.ToLower(string(item.Status)))
}
