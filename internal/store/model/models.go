// Package model holds the gorm table definitions. Uniqueness lives in the
// schema on purpose: (year, region, discipline) on events, (event, work) on
// reports and the external-id columns are the backstop against concurrent
// duplicate creation.
package model

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	Email     string    `gorm:"column:email;uniqueIndex;not null"`
	Role      string    `gorm:"column:role;not null;default:Visitor"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (User) TableName() string { return "users" }

type Region struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;not null"`
	Slug string `gorm:"column:slug;uniqueIndex;not null"`
}

func (Region) TableName() string { return "regions" }

type Discipline struct {
	ID   uint   `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;not null"`
	Slug string `gorm:"column:slug;uniqueIndex;not null"`
}

func (Discipline) TableName() string { return "disciplines" }

type ExamEvent struct {
	ID           uint `gorm:"column:id;primaryKey"`
	Year         int  `gorm:"column:year;not null;uniqueIndex:uix_year_region_discipline"`
	RegionID     uint `gorm:"column:region_id;not null;uniqueIndex:uix_year_region_discipline"`
	DisciplineID uint `gorm:"column:discipline_id;not null;uniqueIndex:uix_year_region_discipline"`
}

func (ExamEvent) TableName() string { return "exam_events" }

// Composer keeps the external ids nullable: free-typed composers have
// neither, and a plain string column would collide on the empty value.
type Composer struct {
	ID            uint           `gorm:"column:id;primaryKey"`
	Name          string         `gorm:"column:name;not null"`
	WikidataID    *string        `gorm:"column:wikidata_id;uniqueIndex"`
	OpenopusID    *string        `gorm:"column:openopus_id;uniqueIndex"`
	IsVerified    bool           `gorm:"column:is_verified;not null;default:false"`
	AuthorityData datatypes.JSON `gorm:"column:authority_data"`
}

func (Composer) TableName() string { return "composers" }

type Work struct {
	ID         uint    `gorm:"column:id;primaryKey"`
	Title      string  `gorm:"column:title;not null"`
	Nickname   string  `gorm:"column:nickname"`
	OpenopusID *string `gorm:"column:openopus_id;uniqueIndex"`
	ComposerID uint    `gorm:"column:composer_id;not null"`
	IsVerified bool    `gorm:"column:is_verified;not null;default:false"`
}

func (Work) TableName() string { return "works" }

type Report struct {
	ID              uint      `gorm:"column:id;primaryKey"`
	UserID          uint      `gorm:"column:user_id;not null"`
	EventID         uint      `gorm:"column:event_id;not null;uniqueIndex:uix_event_work"`
	WorkID          uint      `gorm:"column:work_id;not null;uniqueIndex:uix_event_work"`
	MovementDetails string    `gorm:"column:movement_details"`
	IsFlagged       bool      `gorm:"column:is_flagged;not null;default:false"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (Report) TableName() string { return "reports" }

type Vote struct {
	ID        uint      `gorm:"column:id;primaryKey"`
	UserID    uint      `gorm:"column:user_id;not null"`
	ReportID  uint      `gorm:"column:report_id;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Vote) TableName() string { return "votes" }
