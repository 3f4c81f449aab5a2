package models

import (
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
)

// Payment tracks one Stripe checkout session. Created at checkout time with
// status pending; only webhook reconciliation moves it to paid or failed.
type Payment struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	UserID          uint          `json:"user_id" gorm:"not null;index"`
	ProjectID       *uint         `json:"project_id,omitempty"`
	StripeSessionID string        `json:"stripe_session_id" gorm:"unique;not null"`
	Status          PaymentStatus `json:"status" gorm:"not null;default:'pending'"`
	Plan            string        `json:"plan,omitempty"`
	Amount          int64         `json:"amount,omitempty"` // cents
	Currency        string        `json:"currency" gorm:"not null;default:'usd'"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
