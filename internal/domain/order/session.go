package order

import (
	"context"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
)

// Session is a unit of work. Every repository it hands out reads and writes
// within the same transaction; nothing is durable until Commit. Rollback
// after Commit is a no-op.
type Session interface {
	Orders() Repository
	Services() catalog.Repository
	Discounts() discount.Repository
	Users() identity.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWork opens sessions.
type UnitOfWork interface {
	Begin(ctx context.Context) (Session, error)
}

// UnitOfWorkFunc adapts a function to UnitOfWork.
type UnitOfWorkFunc func(ctx context.Context) (Session, error)

// Begin calls f(ctx).
func (f UnitOfWorkFunc) Begin(ctx context.Context) (Session, error) {
	return f(ctx)
}
