package repository

import (
	"strings"
	"testing"

	"github.com/leonberkemeier/Receiptly/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemsQuery_OrdersBySubmission(t *testing.T) {
	receiptID := uuid.New()

	sql, args, err := itemsQuery(squirrel.Eq{"items.receipt_id": receiptID}, 0, 0).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE items.receipt_id = $1")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY items.seq"), sql)
	assert.Equal(t, []any{receiptID}, args)

	sql, _, err = itemsQuery(squirrel.Eq{"items.receipt_id": receiptID}, 10, 5).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "ORDER BY items.seq LIMIT 10 OFFSET 5")
}

func TestUserItemsQuery_NewestReceiptFirst(t *testing.T) {
	userID := uuid.New()

	sql, args, err := userItemsQuery(userID, 10, 5).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "JOIN receipts ON receipts.id = items.receipt_id")
	assert.Contains(t, sql, "WHERE receipts.user_id = $1")
	assert.Contains(t, sql, "ORDER BY receipts.created_at DESC, items.seq LIMIT 10 OFFSET 5")
	assert.Equal(t, []any{userID}, args)
}

func TestTransactionUpdateQuery_ReceiptLink(t *testing.T) {
	id := uuid.New()
	receiptID := uuid.New()

	sql, args, err := transactionUpdateQuery(id, &models.TransactionPatch{ReceiptID: &receiptID}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "receipt_id = $1")
	assert.Equal(t, []any{receiptID, id}, args)

	sql, args, err = transactionUpdateQuery(id, &models.TransactionPatch{ClearReceipt: true}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "receipt_id = $1")
	assert.Contains(t, sql, "updated_at = NOW()")
	require.Len(t, args, 2)
	assert.Nil(t, args[0])
	assert.Equal(t, id, args[1])

	category := "Food"
	sql, _, err = transactionUpdateQuery(id, &models.TransactionPatch{Category: &category}).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "receipt_id")
}
