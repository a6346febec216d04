package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateStatus_LowVoteCountsStayNeutral(t *testing.T) {
	for _, total := range []int{0, 1, 5, 100} {
		status, _ := CandidateStatus(0, total)
		assert.Equal(t, StatusNeutral, status, "0 votes, total=%d", total)

		status, _ = CandidateStatus(1, total)
		assert.Equal(t, StatusNeutral, status, "1 vote, total=%d", total)
	}
}

func TestCandidateStatus_Thresholds(t *testing.T) {
	cases := []struct {
		votes, total int
		status       Status
		percentage   int
	}{
		{2, 8, StatusDisputed, 25},
		{5, 8, StatusDisputed, 62},
		{6, 8, StatusVerified, 75}, // boundary inclusive
		{8, 8, StatusVerified, 100},
		{2, 2, StatusVerified, 100},
		{2, 3, StatusDisputed, 66}, // truncated, not rounded
		{1, 3, StatusNeutral, 33},
		{0, 0, StatusNeutral, 0},
		{1, 1, StatusNeutral, 100},
	}
	for _, tc := range cases {
		status, pct := CandidateStatus(tc.votes, tc.total)
		assert.Equal(t, tc.status, status, "%d/%d", tc.votes, tc.total)
		assert.Equal(t, tc.percentage, pct, "%d/%d", tc.votes, tc.total)
	}
}

func TestAggregate_EmptyEvent(t *testing.T) {
	view := Aggregate(EventView{})
	assert.Equal(t, StatusEmpty, view.Status)
	assert.Zero(t, view.TotalVotes)
	assert.Empty(t, view.Candidates)
}

func TestAggregate_SingleVoteIsNeutral(t *testing.T) {
	view := Aggregate(EventView{Candidates: []CandidateView{{ReportID: 1, Votes: 1}}})
	assert.Equal(t, StatusNeutral, view.Status)
	assert.Equal(t, 1, view.TotalVotes)
	assert.Equal(t, StatusNeutral, view.Candidates[0].Status)
	assert.Equal(t, 100, view.Candidates[0].Percentage)
}

func TestAggregate_VerifiedWinnerResolvesEvent(t *testing.T) {
	view := Aggregate(EventView{Candidates: []CandidateView{
		{ReportID: 1, Votes: 0},
		{ReportID: 2, Votes: 2},
	}})
	assert.Equal(t, StatusResolved, view.Status)
	assert.Equal(t, 2, view.TotalVotes)
	// sorted by votes descending
	assert.Equal(t, uint(2), view.Candidates[0].ReportID)
	assert.Equal(t, StatusVerified, view.Candidates[0].Status)
	assert.Equal(t, StatusNeutral, view.Candidates[1].Status)
}

func TestAggregate_SplitVoteIsDisputed(t *testing.T) {
	view := Aggregate(EventView{Candidates: []CandidateView{
		{ReportID: 1, Votes: 2},
		{ReportID: 2, Votes: 1},
	}})
	assert.Equal(t, StatusDisputed, view.Status)
	assert.Equal(t, 3, view.TotalVotes)

	a, b := view.Candidates[0], view.Candidates[1]
	assert.Equal(t, uint(1), a.ReportID)
	assert.Equal(t, 66, a.Percentage)
	assert.Equal(t, StatusDisputed, a.Status)
	assert.Equal(t, 33, b.Percentage)
	assert.Equal(t, StatusNeutral, b.Status)
}

func TestAggregate_TiesKeepInputOrder(t *testing.T) {
	view := Aggregate(EventView{Candidates: []CandidateView{
		{ReportID: 7, Votes: 2},
		{ReportID: 8, Votes: 2},
		{ReportID: 9, Votes: 2},
	}})
	ids := []uint{view.Candidates[0].ReportID, view.Candidates[1].ReportID, view.Candidates[2].ReportID}
	assert.Equal(t, []uint{7, 8, 9}, ids)
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	in := []CandidateView{
		{ReportID: 1, Votes: 1},
		{ReportID: 2, Votes: 5},
	}
	Aggregate(EventView{Candidates: in})
	assert.Equal(t, uint(1), in[0].ReportID)
	assert.Equal(t, Status(""), in[0].Status)
}
