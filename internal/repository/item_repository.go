package repository

import (
	"context"

	"github.com/leonberkemeier/Receiptly/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var itemColumns = []string{"items.id", "items.receipt_id", "items.name", "items.price", "items.quantity"}

// itemOrder is submission order; seq is filled by the database on insert.
const itemOrder = "items.seq"

type ItemRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewItemRepository(db *pgxpool.Pool, logger *zap.Logger) *ItemRepository {
	return &ItemRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	return insertItems(ctx, r.db, []*models.Item{item})
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	query := squirrel.Select(itemColumns...).
		From("items").
		Where(squirrel.Eq{"items.id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	item, err := scanItem(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (r *ItemRepository) ListByReceiptID(ctx context.Context, receiptID uuid.UUID, limit, offset int) ([]*models.Item, error) {
	return selectItems(ctx, r.db, squirrel.Eq{"items.receipt_id": receiptID}, limit, offset)
}

// ListByUserID returns items whose parent receipt belongs to the user,
// newest receipt first.
func (r *ItemRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Item, error) {
	return queryItems(ctx, r.db, userItemsQuery(userID, limit, offset))
}

func userItemsQuery(userID uuid.UUID, limit, offset int) squirrel.SelectBuilder {
	query := squirrel.Select(itemColumns...).
		From("items").
		Join("receipts ON receipts.id = items.receipt_id").
		Where(squirrel.Eq{"receipts.user_id": userID}).
		OrderBy("receipts.created_at DESC", itemOrder).
		PlaceholderFormat(squirrel.Dollar)
	return paginate(query, limit, offset)
}

func (r *ItemRepository) Update(ctx context.Context, id uuid.UUID, patch *models.ItemPatch) error {
	if patch.Empty() {
		_, err := r.GetByID(ctx, id)
		return err
	}

	set := map[string]any{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	if patch.ReceiptID != nil {
		set["receipt_id"] = *patch.ReceiptID
	}

	query := squirrel.Update("items").
		SetMap(set).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffectingOne(ctx, r.db, query)
}

func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("items").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execAffectingOne(ctx, r.db, query)
}

func insertItems(ctx context.Context, db execer, items []*models.Item) error {
	if len(items) == 0 {
		return nil
	}

	builder := squirrel.Insert("items").
		Columns("id", "receipt_id", "name", "price", "quantity").
		PlaceholderFormat(squirrel.Dollar)

	for _, item := range items {
		builder = builder.Values(item.ID, item.ReceiptID, item.Name, item.Price, item.Quantity)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, sql, args...)
	return translate(err)
}

func selectItems(ctx context.Context, db *pgxpool.Pool, where squirrel.Eq, limit, offset int) ([]*models.Item, error) {
	return queryItems(ctx, db, itemsQuery(where, limit, offset))
}

func itemsQuery(where squirrel.Eq, limit, offset int) squirrel.SelectBuilder {
	query := squirrel.Select(itemColumns...).
		From("items").
		Where(where).
		OrderBy(itemOrder).
		PlaceholderFormat(squirrel.Dollar)
	return paginate(query, limit, offset)
}

func paginate(query squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}
	return query
}

func queryItems(ctx context.Context, db *pgxpool.Pool, query squirrel.SelectBuilder) ([]*models.Item, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	if err := row.Scan(&item.ID, &item.ReceiptID, &item.Name, &item.Price, &item.Quantity); err != nil {
		return nil, err
	}
	return &item, nil
}
