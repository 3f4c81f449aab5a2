package models

import (
	"time"
)

type ProjectStatus string

const (
	ProjectStatusDraft       ProjectStatus = "draft"
	ProjectStatusAssetsReady ProjectStatus = "assets_ready"
	ProjectStatusVideoReady  ProjectStatus = "video_ready"
)

// statusRank orders the project state machine. Transitions only move forward.
var statusRank = map[ProjectStatus]int{
	ProjectStatusDraft:       0,
	ProjectStatusAssetsReady: 1,
	ProjectStatusVideoReady:  2,
}

// Rank returns the position of the status in the draft → assets_ready →
// video_ready progression, or -1 for an unknown status.
func (s ProjectStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// AvatarSettings describes the generated presenter. All fields are optional;
// absent fields fall back to generic prompt phrasing.
type AvatarSettings struct {
	Gender     string `json:"gender,omitempty"`
	Ethnicity  string `json:"ethnicity,omitempty"`
	Background string `json:"background,omitempty"`
	Vibe       string `json:"vibe,omitempty"`
}

// IsZero reports whether no setting was provided.
func (a AvatarSettings) IsZero() bool {
	return a == AvatarSettings{}
}

type Project struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	UserID         uint            `json:"user_id" gorm:"not null;index"`
	ProductURL     string          `json:"product_url" gorm:"not null"`
	Status         ProjectStatus   `json:"status" gorm:"not null;default:'draft'"`
	AvatarSettings *AvatarSettings `json:"avatar_settings,omitempty" gorm:"type:json;serializer:json"`
	ScriptText     string          `json:"script_text,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AssetsReady reports whether prepare-assets completed for this project.
func (p *Project) AssetsReady() bool {
	return p.ScriptText != "" && p.AvatarSettings != nil
}
