package repository

import (
	"github.com/sefazor/reelmint-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) GetByProjectAndSession(projectID uint, sessionID string) (*models.Video, error) {
	var video models.Video
	err := r.db.Where("project_id = ? AND stripe_session_id = ?", projectID, sessionID).
		First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// Reserve inserts a placeholder row on the unique (project, session) key.
// The insert-if-absent makes the idempotency check atomic: exactly one
// concurrent caller observes created=true and proceeds to bill. Losers get
// the existing row back.
func (r *VideoRepository) Reserve(projectID uint, sessionID string) (*models.Video, bool, error) {
	video := models.Video{
		ProjectID:       projectID,
		StripeSessionID: sessionID,
		IsPlaceholder:   true,
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "stripe_session_id"}},
		DoNothing: true,
	}).Create(&video)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return &video, true, nil
	}

	existing, err := r.GetByProjectAndSession(projectID, sessionID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// Finalize flips a placeholder into a real artifact record in place,
// preserving its identity.
func (r *VideoRepository) Finalize(videoID uint, videoURL, storagePath string, durationSeconds int) error {
	return r.db.Model(&models.Video{}).
		Where("id = ?", videoID).
		Updates(map[string]interface{}{
			"video_url":        videoURL,
			"storage_path":     storagePath,
			"duration_seconds": durationSeconds,
			"is_placeholder":   false,
		}).Error
}

// Delete removes a reservation whose generation failed, so a retry starts
// from a clean slate.
func (r *VideoRepository) Delete(videoID uint) error {
	return r.db.Delete(&models.Video{}, videoID).Error
}
