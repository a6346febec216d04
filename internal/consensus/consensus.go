// Package consensus turns per-candidate vote counts into trust
// classifications. Everything here is pure: the same (candidate, votes)
// pairs always produce the same view, regardless of when votes arrived.
package consensus

import "sort"

// Status classifies the crowd's confidence in a candidate or an event.
type Status string

const (
	StatusNeutral  Status = "neutral"
	StatusDisputed Status = "disputed"
	StatusVerified Status = "verified"
	StatusEmpty    Status = "empty"
	StatusResolved Status = "resolved"
)

// verifiedShare is the fraction of an event's votes a candidate needs
// (with at least two votes) to count as verified. Boundary inclusive.
const verifiedShare = 0.75

// CandidateView is the per-report slice of an event view. It is the only
// view model for candidates; every rendering path consumes it as-is.
type CandidateView struct {
	ReportID        uint   `json:"report_id"`
	WorkID          uint   `json:"work_id"`
	Title           string `json:"title"`
	Nickname        string `json:"nickname,omitempty"`
	WorkVerified    bool   `json:"work_verified"`
	ComposerID      uint   `json:"composer_id"`
	ComposerName    string `json:"composer_name"`
	MovementDetails string `json:"movement_details,omitempty"`
	IsFlagged       bool   `json:"is_flagged"`
	Votes           int    `json:"votes"`
	Percentage      int    `json:"percentage"`
	Status          Status `json:"status"`
}

// EventView aggregates every candidate of one exam event.
type EventView struct {
	EventID    uint            `json:"event_id"`
	Region     string          `json:"region"`
	Discipline string          `json:"discipline"`
	Year       int             `json:"year"`
	TotalVotes int             `json:"total_votes"`
	Status     Status          `json:"status"`
	Candidates []CandidateView `json:"candidates"`
}

// CandidateStatus computes the trust status and vote share for a single
// candidate given the event-wide vote total.
//
// The percentage truncates toward zero (2 of 3 votes reads as 66%, not 67%)
// and is 0 when the event has no votes at all. One lone vote is never enough
// to verify or dispute anything.
func CandidateStatus(votes, totalEventVotes int) (Status, int) {
	percentage := 0
	rate := 0.0
	if totalEventVotes > 0 {
		rate = float64(votes) / float64(totalEventVotes)
		percentage = int(rate * 100)
	}
	if votes < 2 {
		return StatusNeutral, percentage
	}
	if rate >= verifiedShare {
		return StatusVerified, percentage
	}
	return StatusDisputed, percentage
}

// Aggregate fills in per-candidate statuses and the event-level verdict,
// and orders candidates by vote count descending (ties keep input order).
// The input slice is not modified.
func Aggregate(view EventView) EventView {
	total := 0
	for _, c := range view.Candidates {
		total += c.Votes
	}

	out := make([]CandidateView, len(view.Candidates))
	copy(out, view.Candidates)
	hasVerified := false
	for i := range out {
		status, pct := CandidateStatus(out[i].Votes, total)
		out[i].Status = status
		out[i].Percentage = pct
		if status == StatusVerified {
			hasVerified = true
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Votes > out[j].Votes
	})

	view.Candidates = out
	view.TotalVotes = total
	switch {
	case total == 0:
		view.Status = StatusEmpty
	case total == 1:
		view.Status = StatusNeutral
	case hasVerified:
		view.Status = StatusResolved
	default:
		view.Status = StatusDisputed
	}
	return view
}
