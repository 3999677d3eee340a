// Package storetest provides in-memory implementations of the repositories
// for service and handler tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/leonberkemeier/Receiptly/internal/models"
	"github.com/leonberkemeier/Receiptly/internal/repository"

	"github.com/google/uuid"
)

// DB is a shared in-memory database. Receipt deletion cascades to items the
// way the real schema does; transactions are left alone. Items keep insertion
// order like the seq column.
type DB struct {
	mu           sync.Mutex
	users        map[uuid.UUID]models.User
	receipts     map[uuid.UUID]models.Receipt
	items        map[uuid.UUID]models.Item
	transactions map[uuid.UUID]models.Transaction
	itemOrder    []uuid.UUID

	// Injected failures.
	DeleteByReceiptErr   error
	TransactionCreateErr error
	PingErr              error
}

func New() *DB {
	return &DB{
		users:        map[uuid.UUID]models.User{},
		receipts:     map[uuid.UUID]models.Receipt{},
		items:        map[uuid.UUID]models.Item{},
		transactions: map[uuid.UUID]models.Transaction{},
	}
}

func (db *DB) Users() *Users               { return &Users{db: db} }
func (db *DB) Receipts() *Receipts         { return &Receipts{db: db} }
func (db *DB) Items() *Items               { return &Items{db: db} }
func (db *DB) Transactions() *Transactions { return &Transactions{db: db} }

func (db *DB) Ping(context.Context) error {
	return db.PingErr
}

// AllTransactions returns every stored transaction regardless of owner.
func (db *DB) AllTransactions() []models.Transaction {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]models.Transaction, 0, len(db.transactions))
	for _, tx := range db.transactions {
		out = append(out, tx)
	}
	return out
}

// ItemCount returns the number of stored items regardless of owner.
func (db *DB) ItemCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.items)
}

type Users struct{ db *DB }

func (s *Users) Create(_ context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	s.db.users[user.ID] = *user
	return nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, user := range s.db.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Users) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

// Delete removes a user; used to test tokens of users that no longer exist.
func (s *Users) Delete(id uuid.UUID) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.users, id)
}

type Receipts struct{ db *DB }

func (s *Receipts) Create(_ context.Context, receipt *models.Receipt) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	stored := *receipt
	stored.Items = nil
	s.db.receipts[receipt.ID] = stored
	for _, item := range receipt.Items {
		s.db.putItem(*item)
	}
	return nil
}

func (s *Receipts) GetByID(_ context.Context, id uuid.UUID) (*models.Receipt, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	receipt, ok := s.db.receipts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	receipt.Items = s.db.itemsOf(id)
	return &receipt, nil
}

func (s *Receipts) ListByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*models.Receipt, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	receipts := []*models.Receipt{}
	for _, receipt := range s.db.receipts {
		if receipt.UserID == userID {
			r := receipt
			r.Items = s.db.itemsOf(r.ID)
			receipts = append(receipts, &r)
		}
	}
	sort.SliceStable(receipts, func(i, j int) bool {
		return receipts[i].CreatedAt.After(receipts[j].CreatedAt)
	})
	return page(receipts, limit, offset), nil
}

func (s *Receipts) Update(_ context.Context, id uuid.UUID, patch *models.ReceiptPatch) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	receipt, ok := s.db.receipts[id]
	if !ok {
		return repository.ErrNotFound
	}
	setIf(&receipt.Date, patch.Date)
	setIf(&receipt.Time, patch.Time)
	setIf(&receipt.Total, patch.Total)
	if patch.ImageData != nil {
		receipt.ImageData = patch.ImageData
	}
	if patch.Store != nil {
		receipt.Store = patch.Store
	}
	if patch.Address != nil {
		receipt.Address = patch.Address
	}
	receipt.UpdatedAt = time.Now()
	s.db.receipts[id] = receipt
	return nil
}

func (s *Receipts) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.receipts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.receipts, id)
	for itemID, item := range s.db.items {
		if item.ReceiptID == id {
			delete(s.db.items, itemID)
		}
	}
	return nil
}

type Items struct{ db *DB }

func (s *Items) Create(_ context.Context, item *models.Item) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.putItem(*item)
	return nil
}

func (s *Items) GetByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	item, ok := s.db.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (s *Items) ListByReceiptID(_ context.Context, receiptID uuid.UUID, limit, offset int) ([]*models.Item, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return page(s.db.itemsOf(receiptID), limit, offset), nil
}

func (s *Items) ListByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*models.Item, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	items := []*models.Item{}
	for _, id := range s.db.itemOrder {
		item, ok := s.db.items[id]
		if !ok {
			continue
		}
		if receipt, ok := s.db.receipts[item.ReceiptID]; ok && receipt.UserID == userID {
			items = append(items, &item)
		}
	}
	// newest receipt first, submission order within a receipt
	sort.SliceStable(items, func(i, j int) bool {
		return s.db.receipts[items[i].ReceiptID].CreatedAt.After(s.db.receipts[items[j].ReceiptID].CreatedAt)
	})
	return page(items, limit, offset), nil
}

func (s *Items) Update(_ context.Context, id uuid.UUID, patch *models.ItemPatch) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	item, ok := s.db.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	setIf(&item.Name, patch.Name)
	setIf(&item.Price, patch.Price)
	setIf(&item.Quantity, patch.Quantity)
	setIf(&item.ReceiptID, patch.ReceiptID)
	s.db.items[id] = item
	return nil
}

func (s *Items) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.items, id)
	return nil
}

type Transactions struct{ db *DB }

func (s *Transactions) Create(_ context.Context, tx *models.Transaction) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.db.TransactionCreateErr != nil {
		return s.db.TransactionCreateErr
	}
	s.db.transactions[tx.ID] = *tx
	return nil
}

func (s *Transactions) GetByID(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	tx, ok := s.db.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &tx, nil
}

func (s *Transactions) List(_ context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []*models.Transaction{}
	for _, tx := range s.db.transactions {
		if tx.UserID != userID {
			continue
		}
		if filter.Type != nil && tx.Type != *filter.Type {
			continue
		}
		if filter.Category != nil && tx.Category != *filter.Category {
			continue
		}
		if filter.StartDate != nil && tx.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && tx.Date.After(*filter.EndDate) {
			continue
		}
		t := tx
		out = append(out, &t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if filter.Ascending {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Date.After(out[j].Date)
	})
	return page(out, filter.Limit, filter.Offset), nil
}

func (s *Transactions) Update(_ context.Context, id uuid.UUID, patch *models.TransactionPatch) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	tx, ok := s.db.transactions[id]
	if !ok {
		return repository.ErrNotFound
	}
	setIf(&tx.Type, patch.Type)
	setIf(&tx.Amount, patch.Amount)
	setIf(&tx.Category, patch.Category)
	setIf(&tx.Date, patch.Date)
	if patch.Description != nil {
		tx.Description = patch.Description
	}
	if patch.ReceiptID != nil {
		tx.ReceiptID = patch.ReceiptID
	} else if patch.ClearReceipt {
		tx.ReceiptID = nil
	}
	tx.UpdatedAt = time.Now()
	s.db.transactions[id] = tx
	return nil
}

func (s *Transactions) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.transactions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.db.transactions, id)
	return nil
}

func (s *Transactions) DeleteByReceipt(_ context.Context, userID, receiptID uuid.UUID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if s.db.DeleteByReceiptErr != nil {
		return 0, s.db.DeleteByReceiptErr
	}
	var n int64
	for id, tx := range s.db.transactions {
		if tx.UserID == userID && tx.ReceiptID != nil && *tx.ReceiptID == receiptID {
			delete(s.db.transactions, id)
			n++
		}
	}
	return n, nil
}

func (db *DB) putItem(item models.Item) {
	if _, exists := db.items[item.ID]; !exists {
		db.itemOrder = append(db.itemOrder, item.ID)
	}
	db.items[item.ID] = item
}

func (db *DB) itemsOf(receiptID uuid.UUID) []*models.Item {
	items := []*models.Item{}
	for _, id := range db.itemOrder {
		if item, ok := db.items[id]; ok && item.ReceiptID == receiptID {
			items = append(items, &item)
		}
	}
	return items
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return in[:0]
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
