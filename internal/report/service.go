// Package report implements the contribution pipeline: candidate upsert,
// the vote ledger and the read path that feeds the consensus calculator.
package report

import (
	"context"
	"fmt"

	"examrecord/internal/apperr"
	"examrecord/internal/config"
	"examrecord/internal/consensus"
	"examrecord/internal/logger"
	"examrecord/internal/resolver"
	"examrecord/internal/store/gormstore"
	"examrecord/internal/store/model"
)

// Scope describes how much of the work was reportedly performed.
type Scope string

const (
	ScopeWholeWork Scope = "Whole Work"
	ScopeMovement  Scope = "Movement"
	ScopeExcerpt   Scope = "Excerpt"
)

// ParseScope validates a submitted scope string. Empty means whole work.
func ParseScope(raw string) (Scope, error) {
	switch Scope(raw) {
	case "", ScopeWholeWork:
		return ScopeWholeWork, nil
	case ScopeMovement:
		return ScopeMovement, nil
	case ScopeExcerpt:
		return ScopeExcerpt, nil
	default:
		return "", apperr.BadInput(fmt.Sprintf("unknown scope %q", raw))
	}
}

// SubmitInput is one "work W was performed at event E" contribution.
type SubmitInput struct {
	EventID         uint
	Composer        resolver.ComposerInput
	Work            resolver.WorkInput
	Scope           Scope
	MovementDetails string
}

// SubmitResult reports whether the submission opened a new candidate or
// corroborated an existing one; either way a vote was attached (subject to
// the voting policy).
type SubmitResult struct {
	ReportID uint `json:"id"`
	Created  bool `json:"-"`
}

// Service glues resolver, candidate store and vote ledger into the
// per-request transactional pipeline.
type Service struct {
	store    *gormstore.Store
	resolver *resolver.Resolver
	policy   config.PolicyConfig
}

func NewService(store *gormstore.Store, res *resolver.Resolver, policy config.PolicyConfig) *Service {
	return &Service{store: store, resolver: res, policy: policy}
}

// Submit runs the whole resolve → upsert → vote sequence as one unit of
// work. Any failure, including cancellation, rolls back every row created
// along the way.
func (s *Service) Submit(ctx context.Context, userID uint, in SubmitInput) (SubmitResult, error) {
	scope, err := ParseScope(string(in.Scope))
	if err != nil {
		return SubmitResult{}, err
	}
	var result SubmitResult
	err = s.store.Transaction(ctx, func(tx *gormstore.Store) error {
		event, err := tx.EventByID(ctx, in.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return apperr.NotFound("event")
		}
		composer, err := s.resolver.ResolveComposer(ctx, tx, in.Composer)
		if err != nil {
			return err
		}
		work, err := s.resolver.ResolveWork(ctx, tx, in.Work, composer.ID)
		if err != nil {
			return err
		}
		rep, created, err := s.upsertCandidate(ctx, tx, event.ID, work.ID, userID, scope, in.MovementDetails)
		if err != nil {
			return err
		}
		if err := s.attachVote(ctx, tx, userID, rep.ID); err != nil {
			return err
		}
		result = SubmitResult{ReportID: rep.ID, Created: created}
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}
	return result, nil
}

// upsertCandidate enforces at-most-one open candidate per (event, work).
// An existing report wins untouched: the first reporter owns the narrative,
// later contributors only corroborate. A lost create race is folded into
// the same outcome.
func (s *Service) upsertCandidate(ctx context.Context, tx *gormstore.Store, eventID, workID, userID uint, scope Scope, details string) (*model.Report, bool, error) {
	existing, err := tx.ReportByEventWork(ctx, eventID, workID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	rep := &model.Report{
		UserID:          userID,
		EventID:         eventID,
		WorkID:          workID,
		MovementDetails: scopedDetails(scope, details),
	}
	if err := tx.CreateReport(ctx, rep); err != nil {
		if gormstore.IsDuplicate(err) {
			winner, rerr := tx.ReportByEventWork(ctx, eventID, workID)
			if rerr != nil {
				return nil, false, rerr
			}
			if winner == nil {
				return nil, false, err
			}
			logger.Debugf("candidate race lost for event=%d work=%d, corroborating report=%d", eventID, workID, winner.ID)
			return winner, false, nil
		}
		return nil, false, err
	}
	return rep, true, nil
}

// scopedDetails prefixes the free-text details with the scope unless the
// whole work was reported. An empty detail string keeps the bare prefix.
func scopedDetails(scope Scope, details string) string {
	if scope == ScopeWholeWork {
		return details
	}
	prefix := "[" + string(scope) + "] "
	if details == "" {
		return prefix
	}
	return prefix + details
}

// attachVote appends a vote unless the single-vote policy is on and the
// user already corroborated this report.
func (s *Service) attachVote(ctx context.Context, tx *gormstore.Store, userID, reportID uint) error {
	if s.policy.SingleVotePerUser {
		voted, err := tx.HasVote(ctx, userID, reportID)
		if err != nil {
			return err
		}
		if voted {
			return nil
		}
	}
	return tx.CreateVote(ctx, &model.Vote{UserID: userID, ReportID: reportID})
}

// CastVote appends a corroboration to the report and returns the refreshed
// view of the whole owning event: one vote shifts every sibling's share.
func (s *Service) CastVote(ctx context.Context, userID, reportID uint) (consensus.EventView, error) {
	var eventID uint
	err := s.store.Transaction(ctx, func(tx *gormstore.Store) error {
		rep, err := tx.ReportByID(ctx, reportID)
		if err != nil {
			return err
		}
		if rep == nil {
			return apperr.NotFound("report")
		}
		eventID = rep.EventID
		return s.attachVote(ctx, tx, userID, rep.ID)
	})
	if err != nil {
		return consensus.EventView{}, err
	}
	return s.viewByEventID(ctx, eventID)
}

// Flag marks the report for moderation. Idempotent; the candidate and its
// votes stay.
func (s *Service) Flag(ctx context.Context, reportID uint) (consensus.EventView, error) {
	var eventID uint
	err := s.store.Transaction(ctx, func(tx *gormstore.Store) error {
		rep, err := tx.ReportByID(ctx, reportID)
		if err != nil {
			return err
		}
		if rep == nil {
			return apperr.NotFound("report")
		}
		eventID = rep.EventID
		return tx.FlagReport(ctx, rep.ID)
	})
	if err != nil {
		return consensus.EventView{}, err
	}
	return s.viewByEventID(ctx, eventID)
}

// ViewForReport returns the owning event's current view without mutating
// anything. The transport uses it to re-render state for callers that still
// need to authenticate.
func (s *Service) ViewForReport(ctx context.Context, reportID uint) (consensus.EventView, error) {
	rep, err := s.store.ReportByID(ctx, reportID)
	if err != nil {
		return consensus.EventView{}, err
	}
	if rep == nil {
		return consensus.EventView{}, apperr.NotFound("report")
	}
	return s.viewByEventID(ctx, rep.EventID)
}

// ViewEvent resolves (region, discipline, year) to an event, creating it on
// first sight, and returns its aggregated view.
func (s *Service) ViewEvent(ctx context.Context, regionSlug, disciplineSlug string, year int) (consensus.EventView, error) {
	region, err := s.store.RegionBySlug(ctx, regionSlug)
	if err != nil {
		return consensus.EventView{}, err
	}
	if region == nil {
		return consensus.EventView{}, apperr.NotFound("region")
	}
	discipline, err := s.store.DisciplineBySlug(ctx, disciplineSlug)
	if err != nil {
		return consensus.EventView{}, err
	}
	if discipline == nil {
		return consensus.EventView{}, apperr.NotFound("discipline")
	}
	event, err := s.store.EventByTriple(ctx, year, region.ID, discipline.ID)
	if err != nil {
		return consensus.EventView{}, err
	}
	if event == nil {
		event = &model.ExamEvent{Year: year, RegionID: region.ID, DisciplineID: discipline.ID}
		if err := s.store.CreateEvent(ctx, event); err != nil {
			if !gormstore.IsDuplicate(err) {
				return consensus.EventView{}, err
			}
			event, err = s.store.EventByTriple(ctx, year, region.ID, discipline.ID)
			if err != nil {
				return consensus.EventView{}, err
			}
			if event == nil {
				return consensus.EventView{}, apperr.NotFound("event")
			}
		} else {
			logger.Infof("created exam event %s/%s/%d (id=%d)", regionSlug, disciplineSlug, year, event.ID)
		}
	}
	return s.assembleView(ctx, event, region.Slug, discipline.Slug)
}

func (s *Service) viewByEventID(ctx context.Context, eventID uint) (consensus.EventView, error) {
	event, err := s.store.EventByID(ctx, eventID)
	if err != nil {
		return consensus.EventView{}, err
	}
	if event == nil {
		return consensus.EventView{}, apperr.NotFound("event")
	}
	region, err := s.store.RegionByID(ctx, event.RegionID)
	if err != nil {
		return consensus.EventView{}, err
	}
	discipline, err := s.store.DisciplineByID(ctx, event.DisciplineID)
	if err != nil {
		return consensus.EventView{}, err
	}
	regionSlug, disciplineSlug := "", ""
	if region != nil {
		regionSlug = region.Slug
	}
	if discipline != nil {
		disciplineSlug = discipline.Slug
	}
	return s.assembleView(ctx, event, regionSlug, disciplineSlug)
}

func (s *Service) assembleView(ctx context.Context, event *model.ExamEvent, regionSlug, disciplineSlug string) (consensus.EventView, error) {
	rows, err := s.store.EventCandidates(ctx, event.ID)
	if err != nil {
		return consensus.EventView{}, err
	}
	candidates := make([]consensus.CandidateView, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, consensus.CandidateView{
			ReportID:        row.ReportID,
			WorkID:          row.WorkID,
			Title:           row.Title,
			Nickname:        row.Nickname,
			WorkVerified:    row.WorkVerified,
			ComposerID:      row.ComposerID,
			ComposerName:    row.ComposerName,
			MovementDetails: row.MovementDetails,
			IsFlagged:       row.IsFlagged,
			Votes:           row.Votes,
		})
	}
	return consensus.Aggregate(consensus.EventView{
		EventID:    event.ID,
		Region:     regionSlug,
		Discipline: disciplineSlug,
		Year:       event.Year,
		Candidates: candidates,
	}), nil
}
