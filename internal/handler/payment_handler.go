package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/reelmint-backend/internal/models"
	"github.com/sefazor/reelmint-backend/internal/service"
	"github.com/sefazor/reelmint-backend/pkg/apperror"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	payments      *service.PaymentService
	webhookSecret string
	logger        *zap.Logger
}

func NewPaymentHandler(payments *service.PaymentService, webhookSecret string, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments:      payments,
		webhookSecret: webhookSecret,
		logger:        logger.With(zap.String("component", "webhook")),
	}
}

// HandleStripeWebhook verifies the event signature before any state is
// touched, then hands the decoded event to reconciliation.
func (h *PaymentHandler) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	if signatureHeader == "" {
		return c.Status(fiber.StatusBadRequest).
			JSON(models.ErrorResponse(apperror.CodeSignatureInvalid, "missing Stripe-Signature header"))
	}

	// API version mismatches between the SDK and the dashboard are tolerated.
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).
			JSON(models.ErrorResponse(apperror.CodeSignatureInvalid, "invalid webhook signature"))
	}

	h.logger.Info("webhook event received",
		zap.String("type", string(event.Type)),
		zap.String("event_id", event.ID))

	if err := h.payments.HandleStripeWebhook(&event); err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{"received": true})
}
