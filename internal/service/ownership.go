package service

import (
	"context"
	"errors"

	"github.com/leonberkemeier/Receiptly/internal/models"
	"github.com/leonberkemeier/Receiptly/internal/repository"

	"github.com/google/uuid"
)

// requireOwner folds "missing" and "owned by someone else" into ErrNotFound so
// callers cannot probe for ids belonging to other users.
func requireOwner[T models.Owned](resource T, err error, userID uuid.UUID) (T, error) {
	var zero T
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	if resource.OwnerID() != userID {
		return zero, ErrNotFound
	}
	return resource, nil
}

// notFoundIfMissing maps repository.ErrNotFound from a mutation onto ErrNotFound.
func notFoundIfMissing(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// parseID treats a malformed id like an unknown one.
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return id, nil
}

// referencedReceipt resolves a receipt id taken from a request body.
func referencedReceipt(ctx context.Context, receipts ReceiptStore, user models.User, raw string) (*models.Receipt, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrReceiptNotFound
	}
	receipt, err := receipts.GetByID(ctx, id)
	receipt, err = requireOwner(receipt, err, user.ID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrReceiptNotFound
	}
	return receipt, err
}
