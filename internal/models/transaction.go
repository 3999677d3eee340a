package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// CategoryReceipt is the category of expenses derived from receipts.
const CategoryReceipt = "Receipt"

type Transaction struct {
	ID          uuid.UUID       `db:"id"`
	UserID      uuid.UUID       `db:"user_id"`
	Type        TransactionType `db:"type"`
	Amount      decimal.Decimal `db:"amount"`
	Category    string          `db:"category"`
	Description *string         `db:"description"`
	Date        time.Time       `db:"date"`
	ReceiptID   *uuid.UUID      `db:"receipt_id"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (t *Transaction) OwnerID() uuid.UUID {
	return t.UserID
}

type TransactionPatch struct {
	Type        *TransactionType
	Amount      *decimal.Decimal
	Category    *string
	Description *string
	Date        *time.Time
	ReceiptID   *uuid.UUID
	// ClearReceipt unlinks the transaction from its receipt.
	ClearReceipt bool
}

func (p *TransactionPatch) Empty() bool {
	return p.Type == nil && p.Amount == nil && p.Category == nil &&
		p.Description == nil && p.Date == nil && p.ReceiptID == nil && !p.ClearReceipt
}

// TransactionFilter narrows a transaction listing. Zero values disable a
// filter; Limit 0 means no limit. The date range is inclusive.
type TransactionFilter struct {
	Type      *TransactionType
	Category  *string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
	Ascending bool
}

// Owned is implemented by entities that carry an owner id.
type Owned interface {
	OwnerID() uuid.UUID
}
