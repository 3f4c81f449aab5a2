package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sefazor/reelmint-backend/internal/models"
	"github.com/sefazor/reelmint-backend/internal/service"
	"github.com/sefazor/reelmint-backend/pkg/apperror"
	"github.com/sefazor/reelmint-backend/pkg/utils"
)

type UGCHandler struct {
	pipeline  *service.PipelineService
	validator *utils.Validator
}

func NewUGCHandler(pipeline *service.PipelineService, validator *utils.Validator) *UGCHandler {
	return &UGCHandler{
		pipeline:  pipeline,
		validator: validator,
	}
}

func (h *UGCHandler) ScrapeProduct(c *fiber.Ctx) error {
	var req models.ScrapeProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "missing or invalid 'productUrl'")
	}

	result, err := h.pipeline.ScrapeProduct(c.Context(), req.ProductURL)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(models.SuccessResponse(result, ""))
}

func (h *UGCHandler) PrepareAssets(c *fiber.Ctx) error {
	var req models.PrepareAssetsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.pipeline.PrepareAssets(c.Context(), req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(models.SuccessResponse(result, ""))
}

func (h *UGCHandler) GenerateVideo(c *fiber.Ctx) error {
	var req models.GenerateVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.pipeline.GenerateVideo(c.Context(), req.ProjectID, req.StripeSessionID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(models.SuccessResponse(result, ""))
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).
		JSON(models.ErrorResponse(apperror.CodeValidation, message))
}

// sendError maps a typed service error to a transport response. Unclassified
// errors surface as 500 with a generic message.
func sendError(c *fiber.Ctx, err error) error {
	appErr := apperror.From(err)
	return c.Status(appErr.Status).JSON(models.ErrorResponse(appErr.Code, appErr.Message))
}
