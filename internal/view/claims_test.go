package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eraal/Lost-and-Found-sub001/internal/model"
	"github.com/Eraal/Lost-and-Found-sub001/pkg/lostfound"
)

func testClaims() []lostfound.Claim {
	return []lostfound.Claim{
		{
			ID: 1, ItemID: 10, Status: lostfound.ClaimPending, CreatedAt: "2026-08-01T10:00:00Z",
			Item: &lostfound.Item{ID: 10, Title: "Black Wallet", Status: lostfound.ItemOpen},
		},
		{
			ID: 2, ItemID: 11, Status: lostfound.ClaimApproved, CreatedAt: "2026-08-10T10:00:00Z",
			Item: &lostfound.Item{ID: 11, Title: "Blue Umbrella", Status: lostfound.ItemOpen},
		},
		{
			ID: 3, ItemID: 12, Status: lostfound.ClaimApproved, CreatedAt: "2026-08-05T10:00:00Z",
			Item: &lostfound.Item{ID: 12, Title: "Laptop Charger", Status: lostfound.ItemReturned},
		},
		{
			ID: 4, ItemID: 13, Status: lostfound.ClaimRejected, CreatedAt: "2026-08-03T10:00:00Z",
			Item: &lostfound.Item{ID: 13, Title: "Student ID Card", Status: lostfound.ItemOpen},
		},
	}
}

func TestBuildClaimList_DerivesAndSortsNewestFirst(t *testing.T) {
	list := BuildClaimList(testClaims(), ClaimListFilter{})

	require.Len(t, list, 4)
	assert.Equal(t, int64(2), list[0].Claim.ID)
	assert.Equal(t, int64(3), list[1].Claim.ID)
	assert.Equal(t, int64(4), list[2].Claim.ID)
	assert.Equal(t, int64(1), list[3].Claim.ID)

	assert.Equal(t, model.StatusApproved, list[0].Status)
	assert.Equal(t, model.StatusReturned, list[1].Status)
	assert.Equal(t, model.StatusRejected, list[2].Status)
	assert.Equal(t, model.StatusPending, list[3].Status)
}

func TestBuildClaimList_StatusFilter(t *testing.T) {
	list := BuildClaimList(testClaims(), ClaimListFilter{Status: model.StatusReturned})

	require.Len(t, list, 1)
	assert.Equal(t, int64(3), list[0].Claim.ID)
}

func TestBuildClaimList_QueryMatchesTitleCaseFolded(t *testing.T) {
	list := BuildClaimList(testClaims(), ClaimListFilter{Query: "WALLET"})

	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].Claim.ID)
}

func TestBuildClaimList_QueryMatchesIDs(t *testing.T) {
	byClaimID := BuildClaimList(testClaims(), ClaimListFilter{Query: "4"})
	require.NotEmpty(t, byClaimID)

	byItemID := BuildClaimList(testClaims(), ClaimListFilter{Query: "12"})
	require.Len(t, byItemID, 1)
	assert.Equal(t, int64(3), byItemID[0].Claim.ID)
}

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus(testClaims())

	assert.Equal(t, 1, counts[model.StatusPending])
	assert.Equal(t, 1, counts[model.StatusApproved])
	assert.Equal(t, 1, counts[model.StatusRejected])
	assert.Equal(t, 1, counts[model.StatusReturned])

	// Every status is present even when zero.
	counts = CountByStatus(nil)
	for _, s := range model.UIStatuses {
		_, ok := counts[s]
		assert.True(t, ok, "missing status %s", s)
	}
}

func TestBuildStats(t *testing.T) {
	lost := []lostfound.Item{
		{ID: 1, Kind: lostfound.KindLost, Status: lostfound.ItemOpen},
		{ID: 2, Kind: lostfound.KindLost, Status: lostfound.ItemMatched},
	}
	found := []lostfound.Item{
		{ID: 3, Kind: lostfound.KindFound, Status: lostfound.ItemReturned},
		{ID: 4, Kind: lostfound.KindFound, Status: lostfound.ItemClosed},
		{ID: 5, Kind: lostfound.KindFound, Status: lostfound.ItemClaimed},
	}

	stats := BuildStats(lost, found)

	assert.Equal(t, 5, stats.TotalReports)
	assert.Equal(t, 3, stats.ActiveReports)
	assert.Equal(t, 1, stats.MatchesFound)
	assert.Equal(t, 2, stats.SuccessfulReturns)
}

func TestRecommendationSet_RemoveByFoundItem(t *testing.T) {
	set := NewRecommendationSet()
	set.Replace([]model.Recommendation{
		{LostItemID: 1, FoundItemID: 100},
		{LostItemID: 2, FoundItemID: 200},
	})

	set.Remove(100)

	list := set.List()
	require.Len(t, list, 1)
	assert.Equal(t, int64(200), list[0].FoundItemID)

	// Removing an absent id is a no-op.
	set.Remove(999)
	assert.Equal(t, 1, set.Len())
}

func TestRecommendationSet_ReplaceCopiesInput(t *testing.T) {
	input := []model.Recommendation{
		{FoundItemID: 1}, {FoundItemID: 2},
	}
	set := NewRecommendationSet()
	set.Replace(input)
	set.Remove(1)

	// Caller's slice is untouched by the removal.
	assert.Equal(t, int64(1), input[0].FoundItemID)
	assert.Equal(t, int64(2), input[1].FoundItemID)
}
