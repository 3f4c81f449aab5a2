package models

type CreateCheckoutRequest struct {
	UserExternalID string `json:"userExternalId" validate:"required"`
	ProjectID      *uint  `json:"projectId"`
	Plan           string `json:"plan" validate:"required"`
}

type CheckoutSession struct {
	StripeSessionID string `json:"stripeSessionId"`
	CheckoutURL     string `json:"checkoutUrl"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

type CheckStatusRequest struct {
	StripeSessionID string `json:"stripeSessionId" validate:"required"`
}

type CheckoutStatus struct {
	Status           PaymentStatus `json:"status"`
	ProjectID        *uint         `json:"projectId"`
	UserExternalID   string        `json:"userExternalId"`
	CreditsRemaining int           `json:"creditsRemaining"`
}
