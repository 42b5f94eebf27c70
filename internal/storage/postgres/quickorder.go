package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/quickorder"
)

const (
	insertQuickOrderSQL = `INSERT INTO quick_orders (customer_name, phone, service_id, created_at)
		VALUES ($1, $2, $3, $4) RETURNING id`

	listQuickOrdersByCustomerSQL = `SELECT id, customer_name, phone, service_id, created_at
		FROM quick_orders WHERE customer_name = $1 ORDER BY created_at, id`
)

var _ quickorder.Repository = (*QuickOrderRepository)(nil)

// QuickOrderRepository implements quickorder.Repository backed by PostgreSQL.
type QuickOrderRepository struct {
	db DBTX
}

// NewQuickOrderRepository returns a QuickOrderRepository that uses db.
func NewQuickOrderRepository(db DBTX) *QuickOrderRepository {
	return &QuickOrderRepository{db: db}
}

// Create inserts q and sets its ID.
func (r *QuickOrderRepository) Create(ctx context.Context, q *quickorder.QuickOrder) error {
	err := r.db.QueryRow(ctx, insertQuickOrderSQL, q.CustomerName, q.Phone, q.ServiceID, q.CreatedAt).Scan(&q.ID)
	if err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return apperr.NotFound("service", q.ServiceID)
		}
		return fmt.Errorf("creating quick order: %w", err)
	}
	return nil
}

// ListByCustomer returns quick orders left under an exact customer name.
func (r *QuickOrderRepository) ListByCustomer(ctx context.Context, customerName string) ([]quickorder.QuickOrder, error) {
	rows, err := r.db.Query(ctx, listQuickOrdersByCustomerSQL, customerName)
	if err != nil {
		return nil, fmt.Errorf("listing quick orders: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (quickorder.QuickOrder, error) {
		var q quickorder.QuickOrder
		err := row.Scan(&q.ID, &q.CustomerName, &q.Phone, &q.ServiceID, &q.CreatedAt)
		return q, err
	})
}
