package models

import (
	"time"

	"github.com/google/uuid"
)

// Receipt keeps date, time and total exactly as the client sent them.
type Receipt struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Date      string    `db:"date"`
	Time      string    `db:"time"`
	Total     string    `db:"total"`
	ImageData *string   `db:"image_data"`
	Store     *string   `db:"store"`
	Address   *string   `db:"address"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Items     []*Item   `db:"-"`
}

func (r *Receipt) OwnerID() uuid.UUID {
	return r.UserID
}

// ReceiptPatch holds the fields of a partial update; nil means unchanged.
type ReceiptPatch struct {
	Date      *string
	Time      *string
	Total     *string
	ImageData *string
	Store     *string
	Address   *string
}

// Empty reports whether the patch changes nothing.
func (p *ReceiptPatch) Empty() bool {
	return p.Date == nil && p.Time == nil && p.Total == nil &&
		p.ImageData == nil && p.Store == nil && p.Address == nil
}
