package service

import (
	"context"
	"strings"

	"github.com/leonberkemeier/Receiptly/internal/dto"
	"github.com/leonberkemeier/Receiptly/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemService manages line items. An item has no owner of its own; every
// access goes through the receipt it belongs to.
type ItemService struct {
	itemRepo    ItemStore
	receiptRepo ReceiptStore
	logger      *zap.Logger
}

func NewItemService(itemRepo ItemStore, receiptRepo ReceiptStore, logger *zap.Logger) *ItemService {
	return &ItemService{
		itemRepo:    itemRepo,
		receiptRepo: receiptRepo,
		logger:      logger,
	}
}

// List returns the items of one receipt, or of all the user's receipts when
// receiptID is empty.
func (s *ItemService) List(ctx context.Context, user models.User, receiptID string, page Page) ([]dto.ItemResponse, error) {
	page = page.normalized()

	var (
		items []*models.Item
		err   error
	)
	if receiptID == "" {
		items, err = s.itemRepo.ListByUserID(ctx, user.ID, page.Limit, page.Skip)
	} else {
		var receipt *models.Receipt
		receipt, err = s.ownedReceipt(ctx, user, receiptID)
		if err != nil {
			return nil, err
		}
		items, err = s.itemRepo.ListByReceiptID(ctx, receipt.ID, page.Limit, page.Skip)
	}
	if err != nil {
		return nil, err
	}

	out := make([]dto.ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, ToItemResponse(item))
	}
	return out, nil
}

func (s *ItemService) Get(ctx context.Context, user models.User, id string) (*dto.ItemResponse, error) {
	item, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

func (s *ItemService) Create(ctx context.Context, user models.User, req *dto.ItemCreateRequest) (*dto.ItemResponse, error) {
	if req.ReceiptID == "" {
		return nil, invalid("receiptId", "is required")
	}
	receipt, err := s.ownedReceipt(ctx, user, req.ReceiptID)
	if err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:        uuid.New(),
		ReceiptID: receipt.ID,
		Name:      req.Name,
		Price:     req.Price,
		Quantity:  req.Quantity,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	resp := ToItemResponse(item)
	return &resp, nil
}

// Update applies a partial patch. Moving the item to another receipt requires
// that receipt to belong to the user as well.
func (s *ItemService) Update(ctx context.Context, user models.User, id string, req *dto.ItemUpdateRequest) (*dto.ItemResponse, error) {
	item, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	patch := &models.ItemPatch{
		Name:     req.Name,
		Price:    req.Price,
		Quantity: req.Quantity,
	}
	if req.ReceiptID != nil && strings.TrimSpace(*req.ReceiptID) == "" {
		return nil, invalid("receiptId", "an item must belong to a receipt")
	}
	if req.ReceiptID != nil && *req.ReceiptID != item.ReceiptID.String() {
		target, err := s.ownedReceipt(ctx, user, *req.ReceiptID)
		if err != nil {
			return nil, err
		}
		patch.ReceiptID = &target.ID
	}

	if !patch.Empty() {
		if err := s.itemRepo.Update(ctx, item.ID, patch); err != nil {
			return nil, notFoundIfMissing(err)
		}
	}

	updated, err := s.itemRepo.GetByID(ctx, item.ID)
	if err != nil {
		return nil, notFoundIfMissing(err)
	}
	resp := ToItemResponse(updated)
	return &resp, nil
}

func (s *ItemService) Delete(ctx context.Context, user models.User, id string) error {
	item, err := s.getOwned(ctx, user, id)
	if err != nil {
		return err
	}
	return notFoundIfMissing(s.itemRepo.Delete(ctx, item.ID))
}

func (s *ItemService) getOwned(ctx context.Context, user models.User, rawID string) (*models.Item, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundIfMissing(err)
	}
	if _, err := s.ownedReceipt(ctx, user, item.ReceiptID.String()); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) ownedReceipt(ctx context.Context, user models.User, rawID string) (*models.Receipt, error) {
	return referencedReceipt(ctx, s.receiptRepo, user, rawID)
}

func ToItemResponse(item *models.Item) dto.ItemResponse {
	return dto.ItemResponse{
		ID:        item.ID.String(),
		ReceiptID: item.ReceiptID.String(),
		Name:      item.Name,
		Price:     item.Price,
		Quantity:  item.Quantity,
	}
}
