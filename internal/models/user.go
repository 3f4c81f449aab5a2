package models

import (
	"time"
)

// User is created on first reference by external id and never deleted.
// ExternalID is the caller-supplied stable identity (e.g. a chat-session id).
type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ExternalID string    `json:"external_id" gorm:"unique;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreditBalance holds one row per user. Credits are consumed by successful
// video generations and granted by confirmed payments; the balance never
// goes negative.
type CreditBalance struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"unique;not null"`
	Credits   int       `json:"credits" gorm:"not null;default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}
