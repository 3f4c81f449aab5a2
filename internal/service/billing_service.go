package service

import (
	"errors"
	"fmt"

	"github.com/sefazor/reelmint-backend/internal/models"
	"github.com/sefazor/reelmint-backend/pkg/apperror"
	"github.com/sefazor/reelmint-backend/pkg/payment"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Plan defines a purchasable credit bundle.
type Plan struct {
	Name        string
	AmountCents int64
	Currency    string
	Credits     int
}

var plans = map[string]Plan{
	"single_video": {
		Name:        "Single Video",
		AmountCents: 1900,
		Currency:    "usd",
		Credits:     1,
	},
}

// PlanCredits returns how many credits a plan grants, 0 for unknown plans.
func PlanCredits(plan string) int {
	return plans[plan].Credits
}

// BillingService creates checkout sessions and answers payment status
// queries. It never mutates payment status; that is reconciliation's job.
type BillingService struct {
	checkout CheckoutProvider
	users    UserStore
	payments PaymentStore
	credits  CreditStore
	logger   *zap.Logger
}

func NewBillingService(checkout CheckoutProvider, users UserStore, payments PaymentStore, credits CreditStore, logger *zap.Logger) *BillingService {
	return &BillingService{
		checkout: checkout,
		users:    users,
		payments: payments,
		credits:  credits,
		logger:   logger.With(zap.String("component", "billing")),
	}
}

func (s *BillingService) CreateCheckout(userExternalID string, projectID *uint, planKey string) (*models.CheckoutSession, error) {
	plan, ok := plans[planKey]
	if !ok {
		return nil, apperror.Precondition(apperror.CodeInvalidPlan, fmt.Sprintf("invalid plan: %s", planKey))
	}

	user, err := s.users.GetOrCreate(userExternalID)
	if err != nil {
		return nil, apperror.Internal("failed to resolve user", err)
	}

	metadata := map[string]string{
		"user_id":          fmt.Sprintf("%d", user.ID),
		"user_external_id": userExternalID,
		"plan":             planKey,
	}
	if projectID != nil {
		metadata["project_id"] = fmt.Sprintf("%d", *projectID)
	}

	session, err := s.checkout.CreateCheckoutSession(payment.CheckoutParams{
		PlanName:        plan.Name,
		PlanDescription: fmt.Sprintf("Purchase %d video generation credit(s)", plan.Credits),
		AmountCents:     plan.AmountCents,
		Currency:        plan.Currency,
		Metadata:        metadata,
	})
	if err != nil {
		return nil, apperror.Upstream(apperror.CodeInternal, "failed to create checkout session", err)
	}

	if err := s.payments.Create(&models.Payment{
		UserID:          user.ID,
		ProjectID:       projectID,
		StripeSessionID: session.ID,
		Status:          models.PaymentStatusPending,
		Plan:            planKey,
		Amount:          plan.AmountCents,
		Currency:        plan.Currency,
	}); err != nil {
		return nil, apperror.Internal("failed to record payment", err)
	}

	s.logger.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.String("plan", planKey))

	return &models.CheckoutSession{
		StripeSessionID: session.ID,
		CheckoutURL:     session.URL,
		Amount:          plan.AmountCents,
		Currency:        plan.Currency,
	}, nil
}

func (s *BillingService) GetCheckoutStatus(sessionID string) (*models.CheckoutStatus, error) {
	pmt, err := s.payments.GetBySessionID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("payment not found")
	}
	if err != nil {
		return nil, apperror.Internal("failed to look up payment", err)
	}

	user, err := s.users.GetByID(pmt.UserID)
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}

	creditsRemaining, err := s.credits.Get(pmt.UserID)
	if err != nil {
		return nil, apperror.Internal("failed to read credit balance", err)
	}

	return &models.CheckoutStatus{
		Status:           pmt.Status,
		ProjectID:        pmt.ProjectID,
		UserExternalID:   user.ExternalID,
		CreditsRemaining: creditsRemaining,
	}, nil
}
