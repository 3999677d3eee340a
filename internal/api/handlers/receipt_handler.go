package handlers

import (
	"io"

	"github.com/leonberkemeier/Receiptly/internal/dto"
	"github.com/leonberkemeier/Receiptly/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// maxUploadSize caps receipt uploads for analysis.
const maxUploadSize = 10 << 20

type ReceiptHandler struct {
	receiptService *service.ReceiptService
	analyzeService *service.AnalyzeService
	logger         *zap.Logger
}

func NewReceiptHandler(receiptService *service.ReceiptService, analyzeService *service.AnalyzeService, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		analyzeService: analyzeService,
		logger:         logger,
	}
}

// ListReceipts godoc
// @Summary List receipts
// @Description Receipts of the current user with their items, newest first
// @Tags receipts
// @Produce json
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Limit" default(100)
// @Security Bearer
// @Success 200 {array} dto.ReceiptResponse
// @Router /api/receipts/ [get]
func (h *ReceiptHandler) ListReceipts(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := queryPage(c)
	if err != nil {
		return respondError(c, h.logger, err, "Receipt", "list receipts")
	}

	receipts, err := h.receiptService.List(c.UserContext(), user, page)
	if err != nil {
		return respondError(c, h.logger, err, "Receipt", "list receipts")
	}
	return c.JSON(receipts)
}

// GetReceipt godoc
// @Summary Get a receipt
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID"
// @Security Bearer
// @Success 200 {object} dto.ReceiptResponse
// @Failure 404 {object} map[string]string
// @Router /api/receipts/{id} [get]
func (h *ReceiptHandler) GetReceipt(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	receipt, err := h.receiptService.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "Receipt", "get receipt")
	}
	return c.JSON(receipt)
}

// CreateReceipt godoc
// @Summary Create a receipt
// @Description Stores the receipt with its items and records the matching expense
// @Tags receipts
// @Accept json
// @Produce json
// @Param request body dto.ReceiptCreateRequest true "Receipt"
// @Security Bearer
// @Success 201 {object} dto.ReceiptResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/receipts/ [post]
func (h *ReceiptHandler) CreateReceipt(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ReceiptCreateRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	receipt, err := h.receiptService.Create(c.UserContext(), user, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Receipt", "create receipt")
	}
	return c.Status(fiber.StatusCreated).JSON(receipt)
}

// UpdateReceipt godoc
// @Summary Update a receipt
// @Description Only the supplied fields change
// @Tags receipts
// @Accept json
// @Produce json
// @Param id path string true "Receipt ID"
// @Param request body dto.ReceiptUpdateRequest true "Fields to change"
// @Security Bearer
// @Success 200 {object} dto.ReceiptResponse
// @Failure 404 {object} map[string]string
// @Router /api/receipts/{id} [put]
func (h *ReceiptHandler) UpdateReceipt(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ReceiptUpdateRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	receipt, err := h.receiptService.Update(c.UserContext(), user, c.Params("id"), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Receipt", "update receipt")
	}
	return c.JSON(receipt)
}

// DeleteReceipt godoc
// @Summary Delete a receipt
// @Description Deletes the receipt, its items and the transactions derived from it
// @Tags receipts
// @Param id path string true "Receipt ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /api/receipts/{id} [delete]
func (h *ReceiptHandler) DeleteReceipt(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.receiptService.Delete(c.UserContext(), user, c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "Receipt", "delete receipt")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AnalyzeReceipt godoc
// @Summary Analyze a receipt image
// @Description Runs OCR on the upload and returns an unsaved receipt draft
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Receipt image (jpg, png or pdf)"
// @Security Bearer
// @Success 200 {object} dto.AnalyzeReceiptResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/receipts/analyze [post]
func (h *ReceiptHandler) AnalyzeReceipt(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if !h.analyzeService.Enabled() {
		return respondError(c, h.logger, service.ErrAnalyzerDisabled, "Receipt", "analyze receipt")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image is required",
		})
	}
	if file.Size > maxUploadSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": "Image is too large",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize))
	if err != nil {
		return respondError(c, h.logger, err, "Receipt", "read upload")
	}

	resp, err := h.analyzeService.Analyze(c.UserContext(), user, data, file.Filename)
	if err != nil {
		return respondError(c, h.logger, err, "Receipt", "analyze receipt")
	}
	return c.JSON(resp)
}
