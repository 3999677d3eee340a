package service

import (
	"context"
	"time"

	"github.com/leonberkemeier/Receiptly/internal/dto"
	"github.com/leonberkemeier/Receiptly/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ledger is the part of the transaction ledger that receipts write to.
type Ledger interface {
	CreateFromReceipt(ctx context.Context, user models.User, receipt *models.Receipt) (*models.Transaction, error)
	DeleteByReceipt(ctx context.Context, userID, receiptID uuid.UUID) (int64, error)
}

type ReceiptService struct {
	receiptRepo ReceiptStore
	ledger      Ledger
	logger      *zap.Logger
	now         func() time.Time
}

func NewReceiptService(receiptRepo ReceiptStore, ledger Ledger, logger *zap.Logger) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		ledger:      ledger,
		logger:      logger,
		now:         time.Now,
	}
}

// List returns the user's receipts, newest first, each with its items.
func (s *ReceiptService) List(ctx context.Context, user models.User, page Page) ([]dto.ReceiptResponse, error) {
	page = page.normalized()
	receipts, err := s.receiptRepo.ListByUserID(ctx, user.ID, page.Limit, page.Skip)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ReceiptResponse, 0, len(receipts))
	for _, receipt := range receipts {
		out = append(out, ToReceiptResponse(receipt))
	}
	return out, nil
}

func (s *ReceiptService) Get(ctx context.Context, user models.User, id string) (*dto.ReceiptResponse, error) {
	receipt, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}
	resp := ToReceiptResponse(receipt)
	return &resp, nil
}

// Create stores the receipt with its items and then records the matching
// expense. A failure to record the expense is logged and otherwise ignored.
func (s *ReceiptService) Create(ctx context.Context, user models.User, req *dto.ReceiptCreateRequest) (*dto.ReceiptResponse, error) {
	now := s.now().UTC()
	receipt := &models.Receipt{
		ID:        uuid.New(),
		UserID:    user.ID,
		Date:      req.Date,
		Time:      req.Time,
		Total:     req.Total,
		ImageData: req.ImageData,
		Store:     req.Store,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     make([]*models.Item, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		receipt.Items = append(receipt.Items, &models.Item{
			ID:        uuid.New(),
			ReceiptID: receipt.ID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, err
	}

	s.logger.Info("Receipt created",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.Int("items", len(receipt.Items)),
	)

	if _, err := s.ledger.CreateFromReceipt(ctx, user, receipt); err != nil {
		s.logger.Warn("Failed to create transaction for receipt",
			zap.String("receipt_id", receipt.ID.String()),
			zap.Error(err),
		)
	}

	resp := ToReceiptResponse(receipt)
	return &resp, nil
}

func (s *ReceiptService) Update(ctx context.Context, user models.User, id string, req *dto.ReceiptUpdateRequest) (*dto.ReceiptResponse, error) {
	receipt, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	patch := &models.ReceiptPatch{
		Date:      req.Date,
		Time:      req.Time,
		Total:     req.Total,
		ImageData: req.ImageData,
		Store:     req.Store,
		Address:   req.Address,
	}
	if patch.Empty() {
		resp := ToReceiptResponse(receipt)
		return &resp, nil
	}

	if err := s.receiptRepo.Update(ctx, receipt.ID, patch); err != nil {
		return nil, notFoundIfMissing(err)
	}

	updated, err := s.receiptRepo.GetByID(ctx, receipt.ID)
	if err != nil {
		return nil, notFoundIfMissing(err)
	}
	resp := ToReceiptResponse(updated)
	return &resp, nil
}

// Delete removes the receipt and its items. Transactions derived from the
// receipt are removed first; if that fails the receipt is deleted anyway.
func (s *ReceiptService) Delete(ctx context.Context, user models.User, id string) error {
	receipt, err := s.getOwned(ctx, user, id)
	if err != nil {
		return err
	}

	removed, err := s.ledger.DeleteByReceipt(ctx, user.ID, receipt.ID)
	if err != nil {
		s.logger.Warn("Failed to delete transactions for receipt",
			zap.String("receipt_id", receipt.ID.String()),
			zap.Error(err),
		)
	} else if removed > 0 {
		s.logger.Debug("Deleted transactions for receipt",
			zap.String("receipt_id", receipt.ID.String()),
			zap.Int64("count", removed),
		)
	}

	if err := s.receiptRepo.Delete(ctx, receipt.ID); err != nil {
		return notFoundIfMissing(err)
	}

	s.logger.Info("Receipt deleted", zap.String("receipt_id", receipt.ID.String()))
	return nil
}

func (s *ReceiptService) getOwned(ctx context.Context, user models.User, rawID string) (*models.Receipt, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	receipt, err := s.receiptRepo.GetByID(ctx, id)
	return requireOwner(receipt, err, user.ID)
}

func ToReceiptResponse(receipt *models.Receipt) dto.ReceiptResponse {
	items := make([]dto.ItemResponse, 0, len(receipt.Items))
	for _, item := range receipt.Items {
		items = append(items, ToItemResponse(item))
	}

	return dto.ReceiptResponse{
		ID:        receipt.ID.String(),
		UserID:    receipt.UserID.String(),
		Date:      receipt.Date,
		Time:      receipt.Time,
		Total:     receipt.Total,
		ImageData: receipt.ImageData,
		Store:     receipt.Store,
		Address:   receipt.Address,
		CreatedAt: receipt.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: receipt.UpdatedAt.UTC().Format(time.RFC3339),
		Items:     items,
	}
}
