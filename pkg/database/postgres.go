package database

import (
	"log"

	"github.com/sefazor/reelmint-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDatabase(databaseURL string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.CreditBalance{},
		&models.Project{},
		&models.Payment{},
		&models.Video{},
	); err != nil {
		return err
	}
	return markLegacyPlaceholders(db)
}

// markLegacyPlaceholders backfills the is_placeholder flag for video rows
// written by the old stubbed pipeline, which recorded example.com URLs
// instead of real artifacts. New code never writes such URLs.
func markLegacyPlaceholders(db *gorm.DB) error {
	return db.Exec(`
		UPDATE videos
		SET is_placeholder = true
		WHERE is_placeholder = false
		  AND (video_url LIKE '%storage.example.com%' OR video_url LIKE '%//example.com%')`,
	).Error
}
