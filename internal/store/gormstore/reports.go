package gormstore

import (
	"context"

	"examrecord/internal/store/model"
)

func (s *Store) ReportByID(ctx context.Context, id uint) (*model.Report, error) {
	var r model.Report
	ok, err := s.first(ctx, &r, "id = ?", id)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *Store) ReportByEventWork(ctx context.Context, eventID, workID uint) (*model.Report, error) {
	var r model.Report
	ok, err := s.first(ctx, &r, "event_id = ? AND work_id = ?", eventID, workID)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

func (s *Store) CreateReport(ctx context.Context, r *model.Report) error {
	return s.db.WithContext(ctx).Create(r).Error
}

// FlagReport marks the report. Flagging twice is a no-op; flags never
// delete anything.
func (s *Store) FlagReport(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&model.Report{}).
		Where("id = ?", id).
		Update("is_flagged", true).Error
}

// DeleteReport removes a report and its votes (moderation only; the normal
// pipeline never deletes).
func (s *Store) DeleteReport(ctx context.Context, id uint) error {
	if err := s.db.WithContext(ctx).Where("report_id = ?", id).Delete(&model.Vote{}).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Report{}).Error
}

func (s *Store) CreateVote(ctx context.Context, v *model.Vote) error {
	return s.db.WithContext(ctx).Create(v).Error
}

// HasVote reports whether the user already voted on the report. Only
// consulted when the single-vote policy is enabled.
func (s *Store) HasVote(ctx context.Context, userID, reportID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&model.Vote{}).
		Where("user_id = ? AND report_id = ?", userID, reportID).
		Count(&n).Error
	return n > 0, err
}

// CandidateRow is one report of an event joined with its work, composer and
// vote count. The consensus calculator consumes these rows; nothing walks
// entity relations at runtime.
type CandidateRow struct {
	ReportID        uint   `gorm:"column:report_id"`
	WorkID          uint   `gorm:"column:work_id"`
	Title           string `gorm:"column:title"`
	Nickname        string `gorm:"column:nickname"`
	WorkVerified    bool   `gorm:"column:work_verified"`
	ComposerID      uint   `gorm:"column:composer_id"`
	ComposerName    string `gorm:"column:composer_name"`
	MovementDetails string `gorm:"column:movement_details"`
	IsFlagged       bool   `gorm:"column:is_flagged"`
	Votes           int    `gorm:"column:votes"`
}

// EventCandidates returns the joined candidate rows for one event, in
// insertion order (report id ascending).
func (s *Store) EventCandidates(ctx context.Context, eventID uint) ([]CandidateRow, error) {
	var rows []CandidateRow
	err := s.db.WithContext(ctx).
		Table("reports").
		Select(`reports.id AS report_id,
			reports.movement_details AS movement_details,
			reports.is_flagged AS is_flagged,
			works.id AS work_id,
			works.title AS title,
			works.nickname AS nickname,
			works.is_verified AS work_verified,
			composers.id AS composer_id,
			composers.name AS composer_name,
			COUNT(votes.id) AS votes`).
		Joins("JOIN works ON works.id = reports.work_id").
		Joins("JOIN composers ON composers.id = works.composer_id").
		Joins("LEFT JOIN votes ON votes.report_id = reports.id").
		Where("reports.event_id = ?", eventID).
		Group("reports.id").
		Order("reports.id").
		Scan(&rows).Error
	return rows, err
}
