package models

import "github.com/google/uuid"

type Item struct {
	ID        uuid.UUID `db:"id"`
	ReceiptID uuid.UUID `db:"receipt_id"`
	Name      string    `db:"name"`
	Price     string    `db:"price"`
	Quantity  string    `db:"quantity"`
}

type ItemPatch struct {
	Name      *string
	Price     *string
	Quantity  *string
	ReceiptID *uuid.UUID
}

func (p *ItemPatch) Empty() bool {
	return p.Name == nil && p.Price == nil && p.Quantity == nil && p.ReceiptID == nil
}
