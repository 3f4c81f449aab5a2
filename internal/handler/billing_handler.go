package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/reelmint-backend/internal/models"
	"github.com/sefazor/reelmint-backend/internal/service"
	"github.com/sefazor/reelmint-backend/pkg/utils"
)

type BillingHandler struct {
	billing   *service.BillingService
	validator *utils.Validator
}

func NewBillingHandler(billing *service.BillingService, validator *utils.Validator) *BillingHandler {
	return &BillingHandler{
		billing:   billing,
		validator: validator,
	}
}

func (h *BillingHandler) CreateCheckout(c *fiber.Ctx) error {
	var req models.CreateCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	session, err := h.billing.CreateCheckout(req.UserExternalID, req.ProjectID, req.Plan)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(models.SuccessResponse(session, ""))
}

func (h *BillingHandler) CheckStatus(c *fiber.Ctx) error {
	var req models.CheckStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	status, err := h.billing.GetCheckoutStatus(req.StripeSessionID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(models.SuccessResponse(status, ""))
}
