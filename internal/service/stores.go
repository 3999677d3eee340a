package service

import (
	"context"

	"github.com/leonberkemeier/Receiptly/internal/models"

	"github.com/google/uuid"
)

// The stores below are implemented by the repository package against
// PostgreSQL and by storetest in memory.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type ReceiptStore interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Receipt, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.ReceiptPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ItemStore interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListByReceiptID(ctx context.Context, receiptID uuid.UUID, limit, offset int) ([]*models.Item, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Item, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.ItemPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.TransactionPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByReceipt(ctx context.Context, userID, receiptID uuid.UUID) (int64, error)
}
