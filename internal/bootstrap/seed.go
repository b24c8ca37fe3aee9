package bootstrap

import (
	"log"

	"anoa.com/safereport/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Profile{},
		&entity.Report{},
		&entity.ReportComment{},
		&entity.Announcement{},
		&entity.AnnouncementLike{},
	)
}

// SeedAnnouncements inserts the starter feed when the table is empty.
func SeedAnnouncements(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Announcement{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	items := []entity.Announcement{
		{
			Title:    "You are not alone",
			Content:  "Speaking up takes courage. Every report is read by the guidance office.",
			Type:     entity.AnnouncementQuote,
			IsActive: true,
		},
		{
			Title:    "Reminder",
			Content:  "Reports can be submitted anonymously. Your name is never shown to other students.",
			Type:     entity.AnnouncementReminder,
			IsActive: true,
		},
		{
			Title:    "Guidance office hours",
			Content:  "The guidance office is open Monday to Friday, 7:30 AM to 4:00 PM.",
			Type:     entity.AnnouncementAnnouncement,
			IsActive: true,
		},
	}

	if err := db.Create(&items).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d announcements", len(items))
	return nil
}

// SeedDemoStudent creates a student account for local testing.
func SeedDemoStudent(db *gorm.DB) error {
	const email = "student@safereport.local"

	var count int64
	if err := db.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Demo student already exists, skipping seed")
		return nil
	}

	password := "Student#123"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	lrn := "100000000001"
	user := entity.User{
		Email:        email,
		PasswordHash: string(hashed),
		Profile: &entity.Profile{
			LRN:       &lrn,
			FirstName: "Demo",
			LastName:  "Student",
			Email:     email,
		},
	}

	if err := db.Create(&user).Error; err != nil {
		return err
	}

	log.Println("✅ Demo student seeded successfully")
	log.Printf("   Email: %s", email)
	log.Printf("   Password: %s", password)

	return nil
}
