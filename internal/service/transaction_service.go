package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leonberkemeier/Receiptly/internal/dto"
	"github.com/leonberkemeier/Receiptly/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultMonths = 12
	MaxMonths     = 24
	// Monthly stats look back months*31 days rather than whole calendar months.
	daysPerMonth = 31
)

type TransactionQuery struct {
	Type      string
	Category  string
	StartDate *time.Time
	EndDate   *time.Time
	Page      Page
}

type TransactionService struct {
	txRepo      TransactionStore
	receiptRepo ReceiptStore
	logger      *zap.Logger
	now         func() time.Time
}

func NewTransactionService(txRepo TransactionStore, receiptRepo ReceiptStore, logger *zap.Logger) *TransactionService {
	return &TransactionService{
		txRepo:      txRepo,
		receiptRepo: receiptRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *TransactionService) List(ctx context.Context, user models.User, q TransactionQuery) ([]dto.TransactionResponse, error) {
	page := q.Page.normalized()
	filter := models.TransactionFilter{
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		Limit:     page.Limit,
		Offset:    page.Skip,
	}
	if q.Type != "" {
		txType := models.TransactionType(q.Type)
		if !txType.Valid() {
			return nil, invalid("type", "must be income or expense")
		}
		filter.Type = &txType
	}
	if q.Category != "" {
		filter.Category = &q.Category
	}

	transactions, err := s.txRepo.List(ctx, user.ID, filter)
	if err != nil {
		return nil, err
	}
	return toTransactionResponses(transactions), nil
}

func (s *TransactionService) Get(ctx context.Context, user models.User, id string) (*dto.TransactionResponse, error) {
	tx, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

func (s *TransactionService) Create(ctx context.Context, user models.User, req *dto.TransactionCreateRequest) (*dto.TransactionResponse, error) {
	txType := models.TransactionType(req.Type)
	if !txType.Valid() {
		return nil, invalid("type", "must be income or expense")
	}
	amount, err := validAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, invalid("category", "must not be empty")
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, invalid("date", err.Error())
	}
	receiptID, err := s.ownedReceiptID(ctx, user, req.ReceiptID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	tx := &models.Transaction{
		ID:          uuid.New(),
		UserID:      user.ID,
		Type:        txType,
		Amount:      amount,
		Category:    category,
		Description: req.Description,
		Date:        date,
		ReceiptID:   receiptID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	resp := ToTransactionResponse(tx)
	return &resp, nil
}

func (s *TransactionService) Update(ctx context.Context, user models.User, id string, req *dto.TransactionUpdateRequest) (*dto.TransactionResponse, error) {
	existing, err := s.getOwned(ctx, user, id)
	if err != nil {
		return nil, err
	}

	patch := &models.TransactionPatch{Description: req.Description}
	if req.Type != nil {
		txType := models.TransactionType(*req.Type)
		if !txType.Valid() {
			return nil, invalid("type", "must be income or expense")
		}
		patch.Type = &txType
	}
	if req.Amount != nil {
		amount, err := validAmount(*req.Amount)
		if err != nil {
			return nil, err
		}
		patch.Amount = &amount
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			return nil, invalid("category", "must not be empty")
		}
		patch.Category = &category
	}
	if req.Date != nil {
		date, err := ParseDate(*req.Date)
		if err != nil {
			return nil, invalid("date", err.Error())
		}
		patch.Date = &date
	}
	// an empty receiptId unlinks the transaction
	if req.ReceiptID != nil {
		receiptID, err := s.ownedReceiptID(ctx, user, req.ReceiptID)
		if err != nil {
			return nil, err
		}
		patch.ReceiptID = receiptID
		patch.ClearReceipt = receiptID == nil
	}

	if !patch.Empty() {
		if err := s.txRepo.Update(ctx, existing.ID, patch); err != nil {
			return nil, notFoundIfMissing(err)
		}
	}

	updated, err := s.txRepo.GetByID(ctx, existing.ID)
	if err != nil {
		return nil, notFoundIfMissing(err)
	}
	resp := ToTransactionResponse(updated)
	return &resp, nil
}

func (s *TransactionService) Delete(ctx context.Context, user models.User, id string) error {
	tx, err := s.getOwned(ctx, user, id)
	if err != nil {
		return err
	}
	return notFoundIfMissing(s.txRepo.Delete(ctx, tx.ID))
}

// CreateFromReceipt records the expense implied by a receipt. The receipt
// total becomes the amount; an unreadable receipt date falls back to now.
func (s *TransactionService) CreateFromReceipt(ctx context.Context, user models.User, receipt *models.Receipt) (*models.Transaction, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(receipt.Total))
	if err != nil {
		return nil, fmt.Errorf("receipt total %q is not a number: %w", receipt.Total, err)
	}
	amount, err = validAmount(amount)
	if err != nil {
		return nil, fmt.Errorf("receipt total %q: %w", receipt.Total, err)
	}

	now := s.now().UTC()
	date, err := ParseDate(receipt.Date)
	if err != nil {
		s.logger.Warn("Could not parse receipt date, using current time",
			zap.String("receipt_id", receipt.ID.String()),
			zap.String("date", receipt.Date),
		)
		date = now
	}

	description := "Receipt from " + date.Format("2006-01-02")
	receiptID := receipt.ID
	tx := &models.Transaction{
		ID:          uuid.New(),
		UserID:      user.ID,
		Type:        models.TransactionTypeExpense,
		Amount:      amount,
		Category:    models.CategoryReceipt,
		Description: &description,
		Date:        date,
		ReceiptID:   &receiptID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.txRepo.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.logger.Info("Transaction created from receipt",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("transaction_id", tx.ID.String()),
		zap.String("amount", amount.String()),
	)
	return tx, nil
}

// DeleteByReceipt removes the user's transactions that reference the receipt.
func (s *TransactionService) DeleteByReceipt(ctx context.Context, userID, receiptID uuid.UUID) (int64, error) {
	return s.txRepo.DeleteByReceipt(ctx, userID, receiptID)
}

// Stats aggregates every transaction of the user in the optional range.
func (s *TransactionService) Stats(ctx context.Context, user models.User, start, end *time.Time) (*dto.TransactionStatsResponse, error) {
	transactions, err := s.txRepo.List(ctx, user.ID, models.TransactionFilter{StartDate: start, EndDate: end})
	if err != nil {
		return nil, err
	}
	return summarize(transactions), nil
}

// Monthly returns per-month totals for roughly the last n months.
func (s *TransactionService) Monthly(ctx context.Context, user models.User, months int) ([]dto.MonthlyStatsResponse, error) {
	if months < 1 || months > MaxMonths {
		return nil, invalid("months", fmt.Sprintf("must be between 1 and %d", MaxMonths))
	}

	end := s.now()
	start := end.Add(-time.Duration(months*daysPerMonth) * 24 * time.Hour)

	transactions, err := s.txRepo.List(ctx, user.ID, models.TransactionFilter{
		StartDate: &start,
		EndDate:   &end,
		Ascending: true,
	})
	if err != nil {
		return nil, err
	}
	return groupMonthly(transactions), nil
}

func (s *TransactionService) getOwned(ctx context.Context, user models.User, rawID string) (*models.Transaction, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	tx, err := s.txRepo.GetByID(ctx, id)
	return requireOwner(tx, err, user.ID)
}

// ownedReceiptID validates an optional receipt reference on a transaction.
func (s *TransactionService) ownedReceiptID(ctx context.Context, user models.User, raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	receipt, err := referencedReceipt(ctx, s.receiptRepo, user, *raw)
	if err != nil {
		return nil, err
	}
	return &receipt.ID, nil
}

// maxAmount is the first value NUMERIC(12,2) cannot hold.
var maxAmount = decimal.New(1, 10)

// validAmount rounds to cents and rejects anything not strictly positive or
// too large for the amount column.
func validAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	rounded := amount.Round(2)
	if !rounded.IsPositive() {
		return decimal.Zero, invalid("amount", "must be greater than 0")
	}
	if rounded.GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, invalid("amount", "must be less than "+maxAmount.String())
	}
	return rounded, nil
}

func ToTransactionResponse(tx *models.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:          tx.ID.String(),
		UserID:      tx.UserID.String(),
		Type:        string(tx.Type),
		Amount:      tx.Amount.InexactFloat64(),
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date.UTC().Format(time.RFC3339),
		CreatedAt:   tx.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   tx.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if tx.ReceiptID != nil {
		receiptID := tx.ReceiptID.String()
		resp.ReceiptID = &receiptID
	}
	return resp
}

func toTransactionResponses(transactions []*models.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		out = append(out, ToTransactionResponse(tx))
	}
	return out
}
