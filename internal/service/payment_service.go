package service

import (
	"encoding/json"

	"github.com/sefazor/reelmint-backend/pkg/apperror"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"
)

// PaymentService reconciles verified Stripe webhook events against the
// payment and credit ledgers. It is the only writer of payment status.
type PaymentService struct {
	payments PaymentStore
	credits  CreditStore
	logger   *zap.Logger
}

func NewPaymentService(payments PaymentStore, credits CreditStore, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		credits:  credits,
		logger:   logger.With(zap.String("component", "reconciliation")),
	}
}

// HandleStripeWebhook applies one verified event. Replays are no-ops: the
// paid transition reports whether this call was the first application, and
// credits are granted only then. Unrecognized event types are ignored.
func (s *PaymentService) HandleStripeWebhook(event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		session, err := decodeSession(event)
		if err != nil {
			return err
		}
		return s.applyPaid(session.ID)

	case "checkout.session.async_payment_failed":
		session, err := decodeSession(event)
		if err != nil {
			return err
		}
		s.logger.Warn("async payment failed", zap.String("session_id", session.ID))
		return s.payments.MarkFailed(session.ID)

	default:
		s.logger.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
		return nil
	}
}

func (s *PaymentService) applyPaid(sessionID string) error {
	first, err := s.payments.MarkPaid(sessionID)
	if err != nil {
		return apperror.Internal("failed to mark payment paid", err)
	}
	if !first {
		s.logger.Info("payment already settled, skipping", zap.String("session_id", sessionID))
		return nil
	}

	pmt, err := s.payments.GetBySessionID(sessionID)
	if err != nil {
		return apperror.Internal("failed to load payment after settlement", err)
	}

	if grant := PlanCredits(pmt.Plan); grant > 0 {
		if err := s.credits.Add(pmt.UserID, grant); err != nil {
			return apperror.Internal("failed to grant credits", err)
		}
		s.logger.Info("credits granted",
			zap.Uint("user_id", pmt.UserID),
			zap.Int("credits", grant),
			zap.String("session_id", sessionID))
	}

	s.logger.Info("payment settled", zap.String("session_id", sessionID))
	return nil
}

func decodeSession(event *stripe.Event) (*stripe.CheckoutSession, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, apperror.Wrap(400, apperror.CodeValidation, "malformed checkout session payload", err)
	}
	return &session, nil
}
