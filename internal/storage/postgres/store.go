package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/order"
)

var (
	_ order.UnitOfWork = (*Store)(nil)
	_ order.Session    = (*Session)(nil)
)

// Store opens transactional sessions on a pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Store over pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Begin starts a transaction and returns a session bound to it.
func (s *Store) Begin(ctx context.Context) (order.Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "begin transaction")
	}
	return &Session{tx: tx}, nil
}

// Session is a single transaction. Repositories obtained from it share the
// transaction.
type Session struct {
	tx pgx.Tx
}

func (s *Session) Orders() order.Repository       { return NewOrderRepository(s.tx) }
func (s *Session) Services() catalog.Repository   { return NewCatalogRepository(s.tx) }
func (s *Session) Discounts() discount.Repository { return NewDiscountRepository(s.tx) }
func (s *Session) Users() identity.Repository     { return NewIdentityRepository(s.tx) }

// Commit commits the transaction.
func (s *Session) Commit(ctx context.Context) error {
	if err := s.tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// Rollback aborts the transaction. It is safe to call after Commit.
func (s *Session) Rollback(ctx context.Context) error {
	if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return errors.Wrap(err, "rollback")
	}
	return nil
}
