package handlers

import (
	"time"

	"github.com/leonberkemeier/Receiptly/internal/dto"
	"github.com/leonberkemeier/Receiptly/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	txService *service.TransactionService
	logger    *zap.Logger
}

func NewTransactionHandler(txService *service.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		txService: txService,
		logger:    logger,
	}
}

// ListTransactions godoc
// @Summary List transactions
// @Description Transactions of the current user, newest first
// @Tags transactions
// @Produce json
// @Param type query string false "income or expense"
// @Param category query string false "Category"
// @Param start_date query string false "Inclusive start date"
// @Param end_date query string false "Inclusive end date"
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Limit" default(100)
// @Security Bearer
// @Success 200 {array} dto.TransactionResponse
// @Router /api/transactions/ [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	page, err := queryPage(c)
	if err != nil {
		return respondError(c, h.logger, err, "Transaction", "list transactions")
	}
	start, end, err := queryDateRange(c)
	if err != nil {
		return respondError(c, h.logger, err, "Transaction", "list transactions")
	}

	txs, err := h.txService.List(c.UserContext(), user, service.TransactionQuery{
		Type:      c.Query("type"),
		Category:  c.Query("category"),
		StartDate: start,
		EndDate:   end,
		Page:      page,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Transaction", "list transactions")
	}
	return c.JSON(txs)
}

// GetStats godoc
// @Summary Transaction totals
// @Tags transactions
// @Produce json
// @Param start_date query string false "Inclusive start date"
// @Param end_date query string false "Inclusive end date"
// @Security Bearer
// @Success 200 {object} dto.TransactionStatsResponse
// @Router /api/transactions/stats [get]
func (h *TransactionHandler) GetStats(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	start, end, err := queryDateRange(c)
	if err != nil {
		return respondError(c, h.logger, err, "Transaction", "get transaction stats")
	}

	stats, err := h.txService.Stats(c.UserContext(), user, start, end)
	if err != nil {
		return respondError(c, h.logger, err, "Transaction", "get transaction stats")
	}
	return c.JSON(stats)
}

// GetMonthly godoc
// @Summary Monthly totals
// @Description Per-month totals for the last N months (N*31 days)
// @Tags transactions
// @Produce json
// @Param months query int false "Number of months (1-24)" default(12)
// @Security Bearer
// @Success 200 {array} dto.MonthlyStatsResponse
// @Failure 422 {object} map[string]string
// @Router /api/transactions/monthly [get]
func (h *TransactionHandler) GetMonthly(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	months, err := queryInt(c, "months", service.DefaultMonths)
	if err != nil {
		return respondError(c, h.logger, err, "Transaction", "get monthly stats")
	}

	monthly, err := h.txService.Monthly(c.UserContext(), user, months)
	if err != nil {
		return respondError(c, h.logger, err, "Transaction", "get monthly stats")
	}
	return c.JSON(monthly)
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	tx, err := h.txService.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "Transaction", "get transaction")
	}
	return c.JSON(tx)
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body dto.TransactionCreateRequest true "Transaction"
// @Security Bearer
// @Success 201 {object} dto.TransactionResponse
// @Failure 422 {object} map[string]string
// @Router /api/transactions/ [post]
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.TransactionCreateRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	tx, err := h.txService.Create(c.UserContext(), user, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Transaction", "create transaction")
	}
	return c.Status(fiber.StatusCreated).JSON(tx)
}

func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.TransactionUpdateRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	tx, err := h.txService.Update(c.UserContext(), user, c.Params("id"), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Transaction", "update transaction")
	}
	return c.JSON(tx)
}

func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.txService.Delete(c.UserContext(), user, c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "Transaction", "delete transaction")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func queryDateRange(c *fiber.Ctx) (start, end *time.Time, err error) {
	if start, err = queryDate(c, "start_date"); err != nil {
		return nil, nil, err
	}
	if end, err = queryDate(c, "end_date"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := service.ParseDate(raw)
	if err != nil {
		return nil, &service.ValidationError{Field: key, Message: err.Error()}
	}
	return &t, nil
}
