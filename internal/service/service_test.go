package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leonberkemeier/Receiptly/internal/dto"
	"github.com/leonberkemeier/Receiptly/internal/models"
	"github.com/leonberkemeier/Receiptly/internal/storetest"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// LedgerTestSuite wires the receipt, item and transaction services to one
// in-memory database with two users.
type LedgerTestSuite struct {
	suite.Suite
	ctx          context.Context
	db           *storetest.DB
	receipts     *ReceiptService
	items        *ItemService
	transactions *TransactionService
	alice        models.User
	bob          models.User
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (s *LedgerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = storetest.New()
	logger := zap.NewNop()

	s.transactions = NewTransactionService(s.db.Transactions(), s.db.Receipts(), logger)
	s.receipts = NewReceiptService(s.db.Receipts(), s.transactions, logger)
	s.items = NewItemService(s.db.Items(), s.db.Receipts(), logger)

	s.alice = s.newUser("alice@example.com")
	s.bob = s.newUser("bob@example.com")
}

func (s *LedgerTestSuite) newUser(email string) models.User {
	user := models.User{ID: uuid.New(), Name: email, Email: email}
	require.NoError(s.T(), s.db.Users().Create(s.ctx, &user))
	return user
}

func (s *LedgerTestSuite) createReceipt(user models.User, total string, items ...string) *dto.ReceiptResponse {
	req := &dto.ReceiptCreateRequest{Date: "2024-01-15", Time: "14:30", Total: total}
	for _, name := range items {
		req.Items = append(req.Items, dto.ItemCreateRequest{Name: name, Price: "1.00", Quantity: "1"})
	}
	receipt, err := s.receipts.Create(s.ctx, user, req)
	require.NoError(s.T(), err)
	return receipt
}

func (s *LedgerTestSuite) createTransaction(user models.User, txType, amount, category, date string) *dto.TransactionResponse {
	tx, err := s.transactions.Create(s.ctx, user, &dto.TransactionCreateRequest{
		Type:     txType,
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Date:     date,
	})
	require.NoError(s.T(), err)
	return tx
}

func (s *LedgerTestSuite) TestCreateReceipt_ExampleScenario() {
	receipt, err := s.receipts.Create(s.ctx, s.alice, &dto.ReceiptCreateRequest{
		Date:  "2024-01-15",
		Time:  "14:30",
		Total: "25.99",
		Items: []dto.ItemCreateRequest{{Name: "Coffee", Price: "4.99", Quantity: "1"}},
	})
	require.NoError(s.T(), err)

	require.Len(s.T(), receipt.Items, 1)
	assert.Equal(s.T(), "Coffee", receipt.Items[0].Name)
	assert.Equal(s.T(), receipt.ID, receipt.Items[0].ReceiptID)
	assert.Equal(s.T(), "25.99", receipt.Total)

	txs := s.db.AllTransactions()
	require.Len(s.T(), txs, 1)
	tx := txs[0]
	assert.Equal(s.T(), models.TransactionTypeExpense, tx.Type)
	assert.True(s.T(), decimal.RequireFromString("25.99").Equal(tx.Amount))
	assert.Equal(s.T(), models.CategoryReceipt, tx.Category)
	assert.Equal(s.T(), s.alice.ID, tx.UserID)
	require.NotNil(s.T(), tx.ReceiptID)
	assert.Equal(s.T(), receipt.ID, tx.ReceiptID.String())
	assert.Equal(s.T(), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), tx.Date)
	require.NotNil(s.T(), tx.Description)
	assert.Equal(s.T(), "Receipt from 2024-01-15", *tx.Description)
}

func (s *LedgerTestSuite) TestCreateReceipt_LinksEveryItem() {
	receipt := s.createReceipt(s.alice, "10.00", "Milk", "Bread", "Eggs")

	fetched, err := s.receipts.Get(s.ctx, s.alice, receipt.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), fetched.Items, 3)
	for i, name := range []string{"Milk", "Bread", "Eggs"} {
		assert.Equal(s.T(), name, fetched.Items[i].Name)
		assert.Equal(s.T(), receipt.ID, fetched.Items[i].ReceiptID)
	}
}

func (s *LedgerTestSuite) TestCreateReceipt_NoItems() {
	receipt := s.createReceipt(s.alice, "3.50")
	assert.Empty(s.T(), receipt.Items)
	assert.NotNil(s.T(), receipt.Items)
}

func (s *LedgerTestSuite) TestCreateReceipt_LedgerFailureIsIgnored() {
	s.db.TransactionCreateErr = errors.New("ledger down")

	receipt := s.createReceipt(s.alice, "9.99", "Tea")
	assert.NotEmpty(s.T(), receipt.ID)
	assert.Empty(s.T(), s.db.AllTransactions())
}

func (s *LedgerTestSuite) TestCreateReceipt_NonNumericTotal() {
	receipt := s.createReceipt(s.alice, "about five euros")
	assert.Equal(s.T(), "about five euros", receipt.Total)
	assert.Empty(s.T(), s.db.AllTransactions())
}

func (s *LedgerTestSuite) TestCreateReceipt_UnparseableDateFallsBackToNow() {
	_, err := s.receipts.Create(s.ctx, s.alice, &dto.ReceiptCreateRequest{Date: "15/01/2024", Time: "14:30", Total: "5.00"})
	require.NoError(s.T(), err)

	txs := s.db.AllTransactions()
	require.Len(s.T(), txs, 1)
	assert.WithinDuration(s.T(), time.Now(), txs[0].Date, time.Minute)
}

func (s *LedgerTestSuite) TestListReceipts_OwnOnlyNewestFirst() {
	s.receipts.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	first := s.createReceipt(s.alice, "1.00")
	s.receipts.now = func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) }
	second := s.createReceipt(s.alice, "2.00")
	s.createReceipt(s.bob, "3.00")

	list, err := s.receipts.List(s.ctx, s.alice, Page{})
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), second.ID, list[0].ID)
	assert.Equal(s.T(), first.ID, list[1].ID)

	paged, err := s.receipts.List(s.ctx, s.alice, Page{Skip: 1, Limit: 1})
	require.NoError(s.T(), err)
	require.Len(s.T(), paged, 1)
	assert.Equal(s.T(), first.ID, paged[0].ID)
}

func (s *LedgerTestSuite) TestReceipt_CrossUserAccessIsNotFound() {
	receipt := s.createReceipt(s.alice, "5.00", "Bagel")

	_, err := s.receipts.Get(s.ctx, s.bob, receipt.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)

	total := "1.00"
	_, err = s.receipts.Update(s.ctx, s.bob, receipt.ID, &dto.ReceiptUpdateRequest{Total: &total})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	assert.ErrorIs(s.T(), s.receipts.Delete(s.ctx, s.bob, receipt.ID), ErrNotFound)

	_, err = s.receipts.Get(s.ctx, s.alice, receipt.ID)
	assert.NoError(s.T(), err)
}

func (s *LedgerTestSuite) TestReceipt_UnknownAndMalformedIDs() {
	_, err := s.receipts.Get(s.ctx, s.alice, uuid.NewString())
	assert.ErrorIs(s.T(), err, ErrNotFound)

	_, err = s.receipts.Get(s.ctx, s.alice, "not-a-uuid")
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *LedgerTestSuite) TestUpdateReceipt_PartialPatch() {
	receipt := s.createReceipt(s.alice, "5.00", "Bagel")
	store := "Corner Bakery"
	total := "6.00"

	updated, err := s.receipts.Update(s.ctx, s.alice, receipt.ID, &dto.ReceiptUpdateRequest{Total: &total, Store: &store})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "6.00", updated.Total)
	assert.Equal(s.T(), "2024-01-15", updated.Date)
	assert.Equal(s.T(), "14:30", updated.Time)
	require.NotNil(s.T(), updated.Store)
	assert.Equal(s.T(), store, *updated.Store)
	assert.Len(s.T(), updated.Items, 1)
}

func (s *LedgerTestSuite) TestUpdateReceipt_EmptyPatch() {
	receipt := s.createReceipt(s.alice, "5.00")
	updated, err := s.receipts.Update(s.ctx, s.alice, receipt.ID, &dto.ReceiptUpdateRequest{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), receipt.Total, updated.Total)
}

func (s *LedgerTestSuite) TestDeleteReceipt_RemovesItemsAndTransactions() {
	receipt := s.createReceipt(s.alice, "25.99", "Coffee", "Cake")
	other := s.createReceipt(s.alice, "1.00", "Gum")
	manual := s.createTransaction(s.alice, "income", "100", "Salary", "2024-01-01")
	require.Len(s.T(), s.db.AllTransactions(), 3)
	require.Equal(s.T(), 3, s.db.ItemCount())

	require.NoError(s.T(), s.receipts.Delete(s.ctx, s.alice, receipt.ID))

	_, err := s.receipts.Get(s.ctx, s.alice, receipt.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Equal(s.T(), 1, s.db.ItemCount())

	remaining := s.db.AllTransactions()
	require.Len(s.T(), remaining, 2)
	for _, tx := range remaining {
		if tx.ReceiptID != nil {
			assert.Equal(s.T(), other.ID, tx.ReceiptID.String())
		} else {
			assert.Equal(s.T(), manual.ID, tx.ID.String())
		}
	}
}

func (s *LedgerTestSuite) TestDeleteReceipt_SucceedsWhenCleanupFails() {
	receipt := s.createReceipt(s.alice, "25.99", "Coffee")
	s.db.DeleteByReceiptErr = errors.New("cleanup failed")

	require.NoError(s.T(), s.receipts.Delete(s.ctx, s.alice, receipt.ID))

	_, err := s.receipts.Get(s.ctx, s.alice, receipt.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Equal(s.T(), 0, s.db.ItemCount())
	// the derived transaction survives as the documented inconsistency
	assert.Len(s.T(), s.db.AllTransactions(), 1)
}

func (s *LedgerTestSuite) TestItems_ListScopedToOwner() {
	aliceReceipt := s.createReceipt(s.alice, "5.00", "Apple", "Pear")
	s.createReceipt(s.bob, "5.00", "Plum")

	all, err := s.items.List(s.ctx, s.alice, "", Page{})
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 2)
	for _, item := range all {
		assert.Equal(s.T(), aliceReceipt.ID, item.ReceiptID)
	}

	byReceipt, err := s.items.List(s.ctx, s.alice, aliceReceipt.ID, Page{Limit: 1})
	require.NoError(s.T(), err)
	assert.Len(s.T(), byReceipt, 1)

	_, err = s.items.List(s.ctx, s.bob, aliceReceipt.ID, Page{})
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *LedgerTestSuite) TestItems_CRUD() {
	receipt := s.createReceipt(s.alice, "5.00")

	created, err := s.items.Create(s.ctx, s.alice, &dto.ItemCreateRequest{Name: "Soap", Price: "2.50", Quantity: "2", ReceiptID: receipt.ID})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), receipt.ID, created.ReceiptID)

	got, err := s.items.Get(s.ctx, s.alice, created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Soap", got.Name)

	price := "2.00"
	updated, err := s.items.Update(s.ctx, s.alice, created.ID, &dto.ItemUpdateRequest{Price: &price})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "2.00", updated.Price)
	assert.Equal(s.T(), "2", updated.Quantity)

	require.NoError(s.T(), s.items.Delete(s.ctx, s.alice, created.ID))
	_, err = s.items.Get(s.ctx, s.alice, created.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *LedgerTestSuite) TestItems_CreateRequiresOwnedReceipt() {
	bobReceipt := s.createReceipt(s.bob, "5.00")

	_, err := s.items.Create(s.ctx, s.alice, &dto.ItemCreateRequest{Name: "Soap", ReceiptID: bobReceipt.ID})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	_, err = s.items.Create(s.ctx, s.alice, &dto.ItemCreateRequest{Name: "Soap"})
	assert.True(s.T(), IsValidation(err))
}

func (s *LedgerTestSuite) TestItems_CrossUserAccessIsNotFound() {
	receipt := s.createReceipt(s.alice, "5.00", "Apple")
	itemID := receipt.Items[0].ID

	_, err := s.items.Get(s.ctx, s.bob, itemID)
	assert.ErrorIs(s.T(), err, ErrNotFound)

	name := "Stolen"
	_, err = s.items.Update(s.ctx, s.bob, itemID, &dto.ItemUpdateRequest{Name: &name})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	assert.ErrorIs(s.T(), s.items.Delete(s.ctx, s.bob, itemID), ErrNotFound)
}

func (s *LedgerTestSuite) TestItems_ReassignVerifiesTargetReceipt() {
	source := s.createReceipt(s.alice, "5.00", "Apple")
	target := s.createReceipt(s.alice, "7.00")
	foreign := s.createReceipt(s.bob, "9.00")
	itemID := source.Items[0].ID

	_, err := s.items.Update(s.ctx, s.alice, itemID, &dto.ItemUpdateRequest{ReceiptID: &foreign.ID})
	assert.ErrorIs(s.T(), err, ErrNotFound)
	got, err := s.items.Get(s.ctx, s.alice, itemID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), source.ID, got.ReceiptID)

	moved, err := s.items.Update(s.ctx, s.alice, itemID, &dto.ItemUpdateRequest{ReceiptID: &target.ID})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), target.ID, moved.ReceiptID)
}

func (s *LedgerTestSuite) TestTransactions_RejectNonPositiveAmounts() {
	for _, amount := range []string{"0", "-5", "0.004"} {
		_, err := s.transactions.Create(s.ctx, s.alice, &dto.TransactionCreateRequest{
			Type:     "expense",
			Amount:   decimal.RequireFromString(amount),
			Category: "Food",
			Date:     "2024-01-01",
		})
		assert.True(s.T(), IsValidation(err), "amount %s", amount)
	}
	assert.Empty(s.T(), s.db.AllTransactions())

	tx := s.createTransaction(s.alice, "expense", "10", "Food", "2024-01-01")
	zero := decimal.Zero
	_, err := s.transactions.Update(s.ctx, s.alice, tx.ID, &dto.TransactionUpdateRequest{Amount: &zero})
	assert.True(s.T(), IsValidation(err))

	got, err := s.transactions.Get(s.ctx, s.alice, tx.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 10.0, got.Amount)
}

func (s *LedgerTestSuite) TestTransactions_CreateValidation() {
	base := dto.TransactionCreateRequest{
		Type:     "expense",
		Amount:   decimal.RequireFromString("1.50"),
		Category: "Food",
		Date:     "2024-01-01",
	}

	cases := map[string]func(*dto.TransactionCreateRequest){
		"type":     func(r *dto.TransactionCreateRequest) { r.Type = "transfer" },
		"category": func(r *dto.TransactionCreateRequest) { r.Category = "   " },
		"date":     func(r *dto.TransactionCreateRequest) { r.Date = "yesterday" },
	}
	for field, mutate := range cases {
		req := base
		mutate(&req)
		_, err := s.transactions.Create(s.ctx, s.alice, &req)
		var verr *ValidationError
		require.ErrorAs(s.T(), err, &verr, field)
		assert.Equal(s.T(), field, verr.Field)
	}

	bobReceipt := s.createReceipt(s.bob, "1.00")
	req := base
	req.ReceiptID = &bobReceipt.ID
	_, err := s.transactions.Create(s.ctx, s.alice, &req)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *LedgerTestSuite) TestTransactions_UpdateAndDelete() {
	tx := s.createTransaction(s.alice, "expense", "10", "Food", "2024-01-01")

	category := "Groceries"
	txType := "income"
	updated, err := s.transactions.Update(s.ctx, s.alice, tx.ID, &dto.TransactionUpdateRequest{Category: &category, Type: &txType})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Groceries", updated.Category)
	assert.Equal(s.T(), "income", updated.Type)
	assert.Equal(s.T(), 10.0, updated.Amount)

	assert.ErrorIs(s.T(), s.transactions.Delete(s.ctx, s.bob, tx.ID), ErrNotFound)
	require.NoError(s.T(), s.transactions.Delete(s.ctx, s.alice, tx.ID))
	_, err = s.transactions.Get(s.ctx, s.alice, tx.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *LedgerTestSuite) TestTransactions_ListFilters() {
	s.createTransaction(s.alice, "expense", "10", "Food", "2024-01-05")
	s.createTransaction(s.alice, "expense", "20", "Rent", "2024-02-01")
	s.createTransaction(s.alice, "income", "100", "Salary", "2024-02-15")
	s.createTransaction(s.bob, "expense", "99", "Food", "2024-01-06")

	all, err := s.transactions.List(s.ctx, s.alice, TransactionQuery{})
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), "Salary", all[0].Category, "newest first")

	expenses, err := s.transactions.List(s.ctx, s.alice, TransactionQuery{Type: "expense"})
	require.NoError(s.T(), err)
	assert.Len(s.T(), expenses, 2)

	food, err := s.transactions.List(s.ctx, s.alice, TransactionQuery{Category: "Food"})
	require.NoError(s.T(), err)
	require.Len(s.T(), food, 1)
	assert.Equal(s.T(), 10.0, food[0].Amount)

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	ranged, err := s.transactions.List(s.ctx, s.alice, TransactionQuery{StartDate: &start, EndDate: &end})
	require.NoError(s.T(), err)
	assert.Len(s.T(), ranged, 2, "range is inclusive on both ends")

	_, err = s.transactions.List(s.ctx, s.alice, TransactionQuery{Type: "bogus"})
	assert.True(s.T(), IsValidation(err))
}

func (s *LedgerTestSuite) TestTransactions_Stats() {
	s.createTransaction(s.alice, "income", "1000.50", "Salary", "2024-01-01")
	s.createTransaction(s.alice, "expense", "200.25", "Rent", "2024-01-02")
	s.createTransaction(s.alice, "expense", "0.25", "Gum", "2024-03-02")
	s.createTransaction(s.bob, "income", "5", "Gift", "2024-01-01")

	stats, err := s.transactions.Stats(s.ctx, s.alice, nil, nil)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), &dto.TransactionStatsResponse{
		TotalIncome:      1000.50,
		TotalExpenses:    200.50,
		NetBalance:       800.00,
		TransactionCount: 3,
		IncomeCount:      1,
		ExpenseCount:     2,
	}, stats)

	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	january, err := s.transactions.Stats(s.ctx, s.alice, nil, &end)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, january.TransactionCount)
	assert.Equal(s.T(), 200.25, january.TotalExpenses)
}

func (s *LedgerTestSuite) TestTransactions_Monthly() {
	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	s.transactions.now = func() time.Time { return now }

	s.createTransaction(s.alice, "expense", "10", "Food", "2024-06-01")
	s.createTransaction(s.alice, "income", "500", "Salary", "2024-04-30")
	s.createTransaction(s.alice, "expense", "5", "Food", "2024-04-02")
	s.createTransaction(s.alice, "expense", "7.5", "Food", "2024-06-15")
	s.createTransaction(s.alice, "expense", "1", "Old", "2023-01-01")

	monthly, err := s.transactions.Monthly(s.ctx, s.alice, 3)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []dto.MonthlyStatsResponse{
		{Year: 2024, Month: 4, TotalIncome: 500, TotalExpenses: 5, NetBalance: 495, TransactionCount: 2},
		{Year: 2024, Month: 6, TotalIncome: 0, TotalExpenses: 17.5, NetBalance: -17.5, TransactionCount: 2},
	}, monthly)

	for _, months := range []int{0, 25, -1} {
		_, err := s.transactions.Monthly(s.ctx, s.alice, months)
		assert.True(s.T(), IsValidation(err), "months %d", months)
	}
}

func (s *LedgerTestSuite) TestTransactions_MonthlyUsesThirtyOneDayMonths() {
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	s.transactions.now = func() time.Time { return now }

	// 31 days before March 31 is February 29
	s.createTransaction(s.alice, "expense", "1", "Edge", "2024-02-29")
	s.createTransaction(s.alice, "expense", "1", "Outside", "2024-02-28")

	monthly, err := s.transactions.Monthly(s.ctx, s.alice, 1)
	require.NoError(s.T(), err)
	require.Len(s.T(), monthly, 1)
	assert.Equal(s.T(), 2, monthly[0].Month)
	assert.Equal(s.T(), 1, monthly[0].TransactionCount)
}

func (s *LedgerTestSuite) TestItems_KeepSubmissionOrder() {
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.receipts.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	older := s.createReceipt(s.alice, "3.00", "Zucchini", "Apple", "Mango")
	s.createReceipt(s.alice, "2.00", "Yoghurt", "Bread")

	names := func(items []dto.ItemResponse) []string {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.Name)
		}
		return out
	}

	fetched, err := s.receipts.Get(s.ctx, s.alice, older.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"Zucchini", "Apple", "Mango"}, names(fetched.Items))

	byReceipt, err := s.items.List(s.ctx, s.alice, older.ID, Page{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"Zucchini", "Apple", "Mango"}, names(byReceipt))

	all, err := s.items.List(s.ctx, s.alice, "", Page{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"Yoghurt", "Bread", "Zucchini", "Apple", "Mango"}, names(all))
}

func (s *LedgerTestSuite) TestItems_UpdateCannotDetachFromReceipt() {
	receipt := s.createReceipt(s.alice, "1.00", "Milk")
	itemID := receipt.Items[0].ID

	for _, raw := range []string{"", "   "} {
		_, err := s.items.Update(s.ctx, s.alice, itemID, &dto.ItemUpdateRequest{ReceiptID: &raw})
		var verr *ValidationError
		require.ErrorAs(s.T(), err, &verr, "receiptId %q", raw)
		assert.Equal(s.T(), "receiptId", verr.Field)
	}

	item, err := s.items.Get(s.ctx, s.alice, itemID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), receipt.ID, item.ReceiptID)
}

func (s *LedgerTestSuite) TestItems_ForeignReceiptReportsReceipt() {
	receipt := s.createReceipt(s.alice, "1.00", "Milk")
	bobReceipt := s.createReceipt(s.bob, "1.00")

	_, err := s.items.Update(s.ctx, s.alice, receipt.Items[0].ID, &dto.ItemUpdateRequest{ReceiptID: &bobReceipt.ID})
	assert.ErrorIs(s.T(), err, ErrReceiptNotFound)

	_, err = s.items.Create(s.ctx, s.alice, &dto.ItemCreateRequest{Name: "Tea", ReceiptID: "not-a-uuid"})
	assert.ErrorIs(s.T(), err, ErrReceiptNotFound)

	_, err = s.items.Get(s.ctx, s.alice, uuid.NewString())
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.NotErrorIs(s.T(), err, ErrReceiptNotFound)
}

func (s *LedgerTestSuite) TestTransactions_EmptyReceiptIDUnlinks() {
	receipt := s.createReceipt(s.alice, "12.00")
	linked, err := s.transactions.Create(s.ctx, s.alice, &dto.TransactionCreateRequest{
		Type:      "expense",
		Amount:    decimal.RequireFromString("12"),
		Category:  "Food",
		Date:      "2024-01-01",
		ReceiptID: &receipt.ID,
	})
	require.NoError(s.T(), err)
	require.NotNil(s.T(), linked.ReceiptID)

	empty := ""
	updated, err := s.transactions.Update(s.ctx, s.alice, linked.ID, &dto.TransactionUpdateRequest{ReceiptID: &empty})
	require.NoError(s.T(), err)
	assert.Nil(s.T(), updated.ReceiptID)

	got, err := s.transactions.Get(s.ctx, s.alice, linked.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), got.ReceiptID)
	assert.Equal(s.T(), 12.0, got.Amount)

	// The receipt no longer owns the transaction, so deleting it keeps the row.
	require.NoError(s.T(), s.receipts.Delete(s.ctx, s.alice, receipt.ID))
	_, err = s.transactions.Get(s.ctx, s.alice, linked.ID)
	assert.NoError(s.T(), err)
}

func (s *LedgerTestSuite) TestTransactions_ForeignReceiptReportsReceipt() {
	bobReceipt := s.createReceipt(s.bob, "1.00")
	_, err := s.transactions.Create(s.ctx, s.alice, &dto.TransactionCreateRequest{
		Type:      "expense",
		Amount:    decimal.RequireFromString("1"),
		Category:  "Food",
		Date:      "2024-01-01",
		ReceiptID: &bobReceipt.ID,
	})
	assert.ErrorIs(s.T(), err, ErrReceiptNotFound)

	_, err = s.transactions.Get(s.ctx, s.alice, uuid.NewString())
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.NotErrorIs(s.T(), err, ErrReceiptNotFound)
}

func (s *LedgerTestSuite) TestTransactions_AmountUpperBound() {
	largest := s.createTransaction(s.alice, "income", "9999999999.99", "Salary", "2024-01-01")
	assert.Equal(s.T(), 9999999999.99, largest.Amount)

	for _, amount := range []string{"10000000000", "9999999999.995", "1e12"} {
		_, err := s.transactions.Create(s.ctx, s.alice, &dto.TransactionCreateRequest{
			Type:     "income",
			Amount:   decimal.RequireFromString(amount),
			Category: "Salary",
			Date:     "2024-01-01",
		})
		var verr *ValidationError
		require.ErrorAs(s.T(), err, &verr, "amount %s", amount)
		assert.Equal(s.T(), "amount", verr.Field)
	}

	huge := decimal.RequireFromString("10000000000")
	_, err := s.transactions.Update(s.ctx, s.alice, largest.ID, &dto.TransactionUpdateRequest{Amount: &huge})
	assert.True(s.T(), IsValidation(err))
	assert.Len(s.T(), s.db.AllTransactions(), 1)

	// An oversized receipt total keeps the receipt but skips the ledger entry.
	s.createReceipt(s.alice, "10000000000")
	assert.Len(s.T(), s.db.AllTransactions(), 1)
}

func TestGroupMonthly_SortsAcrossYears(t *testing.T) {
	tx := func(txType models.TransactionType, amount string, date time.Time) *models.Transaction {
		return &models.Transaction{Type: txType, Amount: decimal.RequireFromString(amount), Date: date}
	}

	groups := groupMonthly([]*models.Transaction{
		tx(models.TransactionTypeExpense, "3", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)),
		tx(models.TransactionTypeIncome, "8", time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)),
		tx(models.TransactionTypeExpense, "2", time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)),
	})

	require.Len(t, groups, 2)
	assert.Equal(t, 2023, groups[0].Year)
	assert.Equal(t, 12, groups[0].Month)
	assert.Equal(t, 8.0, groups[0].TotalIncome)
	assert.Equal(t, 2024, groups[1].Year)
	assert.Equal(t, 1, groups[1].Month)
	assert.Equal(t, 5.0, groups[1].TotalExpenses)
	assert.Equal(t, -5.0, groups[1].NetBalance)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, &dto.TransactionStatsResponse{}, summarize(nil))
}
