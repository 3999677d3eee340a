package repository

import (
	"context"
	"fmt"

	"github.com/leonberkemeier/Receiptly/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var receiptColumns = []string{"id", "user_id", "date", "time", "total", "image_data", "store", "address", "created_at", "updated_at"}

// execer is satisfied by both the pool and an open transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type ReceiptRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReceiptRepository(db *pgxpool.Pool, logger *zap.Logger) *ReceiptRepository {
	return &ReceiptRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the receipt and its items in one database transaction.
func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := squirrel.Insert("receipts").
		Columns(receiptColumns...).
		Values(receipt.ID, receipt.UserID, receipt.Date, receipt.Time, receipt.Total, receipt.ImageData,
			receipt.Store, receipt.Address, receipt.CreatedAt, receipt.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return translate(err)
	}

	if err := insertItems(ctx, tx, receipt.Items); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ReceiptRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Receipt, error) {
	query := squirrel.Select(receiptColumns...).
		From("receipts").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	receipt, err := scanReceipt(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err)
	}

	items, err := selectItems(ctx, r.db, squirrel.Eq{"receipt_id": id}, 0, 0)
	if err != nil {
		return nil, err
	}
	receipt.Items = items

	return receipt, nil
}

// ListByUserID returns the user's receipts, newest first, with their items.
func (r *ReceiptRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Receipt, error) {
	query := squirrel.Select(receiptColumns...).
		From("receipts").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := []*models.Receipt{}
	byID := make(map[uuid.UUID]*models.Receipt)
	ids := []uuid.UUID{}
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipt.Items = []*models.Item{}
		receipts = append(receipts, receipt)
		byID[receipt.ID] = receipt
		ids = append(ids, receipt.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return receipts, nil
	}

	items, err := selectItems(ctx, r.db, squirrel.Eq{"receipt_id": ids}, 0, 0)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if receipt, ok := byID[item.ReceiptID]; ok {
			receipt.Items = append(receipt.Items, item)
		}
	}

	return receipts, nil
}

func (r *ReceiptRepository) Update(ctx context.Context, id uuid.UUID, patch *models.ReceiptPatch) error {
	set := map[string]any{}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}
	if patch.Time != nil {
		set["time"] = *patch.Time
	}
	if patch.Total != nil {
		set["total"] = *patch.Total
	}
	if patch.ImageData != nil {
		set["image_data"] = *patch.ImageData
	}
	if patch.Store != nil {
		set["store"] = *patch.Store
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}

	query := squirrel.Update("receipts").
		SetMap(set).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffectingOne(ctx, r.db, query)
}

// Delete removes the receipt; its items go with it through ON DELETE CASCADE.
func (r *ReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("receipts").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffectingOne(ctx, r.db, query)
}

func scanReceipt(row pgx.Row) (*models.Receipt, error) {
	var receipt models.Receipt
	if err := row.Scan(
		&receipt.ID, &receipt.UserID, &receipt.Date, &receipt.Time, &receipt.Total, &receipt.ImageData,
		&receipt.Store, &receipt.Address, &receipt.CreatedAt, &receipt.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func execAffectingOne(ctx context.Context, db execer, query squirrel.Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
