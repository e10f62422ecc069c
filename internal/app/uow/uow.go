package uow

import (
	"context"

	domainlistings "staynest/internal/domain/listings"
	domainreservation "staynest/internal/domain/reservation"
)

// UnitOfWork coordinates repositories inside a transaction boundary. The
// booking commit path relies on the implementation to make "read current
// reservations, then write the new one" an atomically-isolated unit; without
// that, two concurrent commits for overlapping dates can both pass validation.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Reservations() domainreservation.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
