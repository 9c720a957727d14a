// Package repository provides the registration store.  The store is the
// only shared mutable resource in the service: the register handler appends
// one record per verified payment and the admin endpoints read it back.
package repository

import (
	"context"
	"errors"

	"github.com/brajcamp/camp-registration/internal/model"
)

// ErrEmptyRecord is returned when an append is attempted with a record
// missing its identifiers.  Handlers should translate this into a 400.
var ErrEmptyRecord = errors.New("registration record missing id or payment ids")

// RegistrationStore is the contract the rest of the service depends on.
// Records are append-only; there is no update or delete.  Implementations
// must be safe for concurrent use.
type RegistrationStore interface {
	// Append stores one completed registration.  It performs no
	// deduplication: appending twice stores two records.
	Append(ctx context.Context, rec *model.RegistrationRecord) error
	// List returns all records in insertion order.
	List(ctx context.Context) ([]model.RegistrationRecord, error)
	// Stats aggregates the store for the admin dashboard.
	Stats(ctx context.Context) (model.RegistrationStats, error)
}

func validate(rec *model.RegistrationRecord) error {
	if rec == nil || rec.ID == "" || rec.Payment.OrderID == "" || rec.Payment.PaymentID == "" {
		return ErrEmptyRecord
	}
	return nil
}
