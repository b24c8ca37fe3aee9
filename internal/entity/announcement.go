package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AnnouncementQuote        = "quote"
	AnnouncementReminder     = "reminder"
	AnnouncementAnnouncement = "announcement"
)

var AnnouncementTypes = []string{AnnouncementQuote, AnnouncementReminder, AnnouncementAnnouncement}

func IsValidAnnouncementType(s string) bool {
	return contains(AnnouncementTypes, s)
}

type Announcement struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Type       string    `gorm:"size:20;not null" json:"type"`
	ImageURL   *string   `gorm:"type:text" json:"image_url"`
	IsActive   bool      `gorm:"not null;index" json:"is_active"`
	LikesCount int       `gorm:"not null;default:0" json:"likes_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Announcement) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}

type AnnouncementLike struct {
	AnnouncementID uuid.UUID     `gorm:"type:uuid;primaryKey" json:"announcement_id"`
	Announcement   *Announcement `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID         uuid.UUID     `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	User           *User         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
}
