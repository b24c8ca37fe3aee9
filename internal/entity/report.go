package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	StatusPending    = "pending"
	StatusReviewed   = "reviewed"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// ReportStatuses lists every settable status. Any status may follow any other.
var ReportStatuses = []string{StatusPending, StatusReviewed, StatusInProgress, StatusResolved}

const (
	CategoryPhysical = "physical"
	CategoryVerbal   = "verbal"
	CategorySocial   = "social"
	CategoryCyber    = "cyber"
	CategorySexual   = "sexual"
	CategoryOther    = "other"
)

var ReportCategories = []string{CategoryPhysical, CategoryVerbal, CategorySocial, CategoryCyber, CategorySexual, CategoryOther}

// Location is a place an incident can be reported at.
type Location struct {
	Value string `json:"value"`
	Label string `json:"label"`
	// FreeText locations need the reporter to describe the place.
	FreeText bool `json:"free_text"`
}

var IncidentLocations = []Location{
	{Value: "classroom", Label: "Classroom"},
	{Value: "hallway", Label: "Hallway"},
	{Value: "cafeteria", Label: "Cafeteria"},
	{Value: "playground", Label: "Playground"},
	{Value: "restroom", Label: "Restroom"},
	{Value: "school_gate", Label: "School Gate"},
	{Value: "online", Label: "Online / Social Media"},
	{Value: "outside_campus", Label: "Outside Campus", FreeText: true},
	{Value: "others", Label: "Others", FreeText: true},
}

func FindLocation(value string) (Location, bool) {
	for _, l := range IncidentLocations {
		if l.Value == value {
			return l, true
		}
	}
	return Location{}, false
}

func IsValidStatus(s string) bool {
	return contains(ReportStatuses, s)
}

func IsValidCategory(s string) bool {
	return contains(ReportCategories, s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type Report struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	User         *User          `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	ReporterName *string        `gorm:"size:200" json:"reporter_name"`
	Category     string         `gorm:"size:20;not null;index" json:"category"`
	Details      string         `gorm:"type:text;not null" json:"details"`
	IncidentDate time.Time      `gorm:"type:date;not null" json:"incident_date"`
	Attachments  pq.StringArray `gorm:"type:text[]" json:"attachments"`
	Status       string         `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// IsAnonymous reports whether the submitter chose not to be identified.
func (r *Report) IsAnonymous() bool {
	return r.UserID == nil
}

// OwnedBy reports whether userID submitted r.
func (r *Report) OwnedBy(userID uuid.UUID) bool {
	return r.UserID != nil && *r.UserID == userID
}

const (
	AuthorStudent = "student"
	AuthorAdmin   = "admin"
)

// ReportComment is append-only; there is no edit or delete path.
type ReportComment struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"report_id"`
	Report     *Report    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AuthorID   *uuid.UUID `gorm:"type:uuid" json:"author_id"`
	AuthorRole string     `gorm:"size:20;not null" json:"author_role"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (c *ReportComment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
