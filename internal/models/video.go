package models

import (
	"time"
)

// Video records at most one billable generation per (project, session) pair;
// the composite unique index is the idempotency key.
//
// IsPlaceholder marks rows whose URL is not a real generated artifact: either
// a reservation inserted before generation starts, or a legacy stub from the
// pre-generation pipeline. Placeholder rows are finalized in place.
type Video struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ProjectID       uint      `json:"project_id" gorm:"not null;uniqueIndex:idx_videos_project_session"`
	StripeSessionID string    `json:"stripe_session_id" gorm:"not null;uniqueIndex:idx_videos_project_session"`
	VideoURL        string    `json:"video_url"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
	StoragePath     string    `json:"storage_path,omitempty"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	IsPlaceholder   bool      `json:"is_placeholder" gorm:"not null;default:false"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
