package repository

import (
	"context"
	"fmt"

	"github.com/leonberkemeier/Receiptly/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// amount is read back as text so decimal parsing never goes through float64.
var transactionColumns = []string{"id", "user_id", "type", "amount::text", "category", "description", "date", "receipt_id", "created_at", "updated_at"}

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	query := squirrel.Insert("transactions").
		Columns("id", "user_id", "type", "amount", "category", "description", "date", "receipt_id", "created_at", "updated_at").
		Values(tx.ID, tx.UserID, string(tx.Type), tx.Amount.String(), tx.Category, tx.Description, tx.Date, tx.ReceiptID, tx.CreatedAt, tx.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return translate(err)
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	tx, err := scanTransaction(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err)
	}
	return tx, nil
}

// List returns the user's transactions matching the filter, ordered by date.
func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error) {
	where := squirrel.And{squirrel.Eq{"user_id": userID}}
	if filter.Type != nil {
		where = append(where, squirrel.Eq{"type": string(*filter.Type)})
	}
	if filter.Category != nil {
		where = append(where, squirrel.Eq{"category": *filter.Category})
	}
	if filter.StartDate != nil {
		where = append(where, squirrel.GtOrEq{"date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		where = append(where, squirrel.LtOrEq{"date": *filter.EndDate})
	}

	order := "date DESC"
	if filter.Ascending {
		order = "date ASC"
	}

	query := squirrel.Select(transactionColumns...).
		From("transactions").
		Where(where).
		OrderBy(order).
		PlaceholderFormat(squirrel.Dollar)
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []*models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

func (r *TransactionRepository) Update(ctx context.Context, id uuid.UUID, patch *models.TransactionPatch) error {
	return execAffectingOne(ctx, r.db, transactionUpdateQuery(id, patch))
}

func transactionUpdateQuery(id uuid.UUID, patch *models.TransactionPatch) squirrel.UpdateBuilder {
	set := map[string]any{}
	if patch.Type != nil {
		set["type"] = string(*patch.Type)
	}
	if patch.Amount != nil {
		set["amount"] = patch.Amount.String()
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}
	if patch.ReceiptID != nil {
		set["receipt_id"] = *patch.ReceiptID
	} else if patch.ClearReceipt {
		set["receipt_id"] = nil
	}

	return squirrel.Update("transactions").
		SetMap(set).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)
}

func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("transactions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffectingOne(ctx, r.db, query)
}

// DeleteByReceipt removes the user's transactions linked to a receipt and
// returns how many were deleted.
func (r *TransactionRepository) DeleteByReceipt(ctx context.Context, userID, receiptID uuid.UUID) (int64, error) {
	query := squirrel.Delete("transactions").
		Where(squirrel.Eq{"user_id": userID, "receipt_id": receiptID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var (
		tx     models.Transaction
		txType string
		amount string
	)
	if err := row.Scan(
		&tx.ID, &tx.UserID, &txType, &amount, &tx.Category, &tx.Description, &tx.Date, &tx.ReceiptID, &tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	tx.Type = models.TransactionType(txType)
	tx.Amount = parsed

	return &tx, nil
}
