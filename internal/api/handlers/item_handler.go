package handlers

import (
	"github.com/leonberkemeier/Receiptly/internal/dto"
	"github.com/leonberkemeier/Receiptly/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ItemHandler struct {
	itemService *service.ItemService
	logger      *zap.Logger
}

func NewItemHandler(itemService *service.ItemService, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		logger:      logger,
	}
}

// ListItems godoc
// @Summary List items
// @Description Items of one receipt, or of all receipts of the current user
// @Tags items
// @Produce json
// @Param receipt_id query string false "Receipt ID"
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Limit" default(100)
// @Security Bearer
// @Success 200 {array} dto.ItemResponse
// @Router /api/items/ [get]
func (h *ItemHandler) ListItems(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	page, err := queryPage(c)
	if err != nil {
		return respondError(c, h.logger, err, "Item", "list items")
	}

	items, err := h.itemService.List(c.UserContext(), user, c.Query("receipt_id"), page)
	if err != nil {
		return respondError(c, h.logger, err, "Item", "list items")
	}
	return c.JSON(items)
}

func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	item, err := h.itemService.Get(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "Item", "get item")
	}
	return c.JSON(item)
}

// CreateItem godoc
// @Summary Add an item to a receipt
// @Tags items
// @Accept json
// @Produce json
// @Param request body dto.ItemCreateRequest true "Item"
// @Security Bearer
// @Success 201 {object} dto.ItemResponse
// @Failure 404 {object} map[string]string
// @Router /api/items/ [post]
func (h *ItemHandler) CreateItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ItemCreateRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	item, err := h.itemService.Create(c.UserContext(), user, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Item", "create item")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.ItemUpdateRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	item, err := h.itemService.Update(c.UserContext(), user, c.Params("id"), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Item", "update item")
	}
	return c.JSON(item)
}

func (h *ItemHandler) DeleteItem(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.itemService.Delete(c.UserContext(), user, c.Params("id")); err != nil {
		return respondError(c, h.logger, err, "Item", "delete item")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
