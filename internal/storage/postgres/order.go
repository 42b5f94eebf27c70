package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (user_id, created_at, total, status)
		VALUES ($1, $2, $3, $4) RETURNING id`

	getOrderSQL = `SELECT id, user_id, created_at, total, status
		FROM orders WHERE id = $1`

	getOrderForUpdateSQL = getOrderSQL + ` FOR UPDATE`

	listOrdersByUserSQL = `SELECT id, user_id, created_at, total, status
		FROM orders WHERE user_id = $1 ORDER BY created_at, id`

	updateOrderSQL = `UPDATE orders SET status = $2, total = $3 WHERE id = $1`

	updateLinePriceSQL = `UPDATE order_lines SET price = $3 WHERE order_id = $1 AND position = $2`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Lines
// live in order_lines keyed by their position within the order.
type OrderRepository struct {
	db DBTX
}

// NewOrderRepository returns an OrderRepository that uses db.
func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and its lines and sets o.ID.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := r.db.QueryRow(ctx, insertOrderSQL, o.UserID, o.CreatedAt, o.Total, string(o.Status)).Scan(&o.ID)
	if err != nil {
		return mapOrderError(err, o)
	}
	if len(o.Lines) == 0 {
		return nil
	}

	ins := psql.Insert("order_lines").Columns("order_id", "position", "service_id", "price", "quantity")
	for i, l := range o.Lines {
		ins = ins.Values(o.ID, i, l.ServiceID, l.Price, l.Quantity)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("building insert order lines query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return mapOrderError(err, o)
	}
	return nil
}

// Get returns an order with its lines.
func (r *OrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	return r.get(ctx, getOrderSQL, id)
}

// GetForUpdate returns an order with its lines and holds a row lock on it
// until the surrounding transaction ends.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	return r.get(ctx, getOrderForUpdateSQL, id)
}

func (r *OrderRepository) get(ctx context.Context, query string, id int64) (*order.Order, error) {
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("order", id)
		}
		return nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	orders := []order.Order{o}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// Update writes the order status, total and every line price in one batch.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	b := &pgx.Batch{}
	b.Queue(updateOrderSQL, o.ID, string(o.Status), o.Total)
	for i, l := range o.Lines {
		b.Queue(updateLinePriceSQL, o.ID, i, l.Price)
	}

	br := r.db.SendBatch(ctx, b)
	defer func() { _ = br.Close() }()

	tag, err := br.Exec()
	if err != nil {
		return fmt.Errorf("updating order %d: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("order", o.ID)
	}
	for range o.Lines {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("updating lines of order %d: %w", o.ID, err)
		}
	}
	return br.Close()
}

// ListByUser returns the user's orders, oldest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, listOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders of user %d: %w", userID, err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders of user %d: %w", userID, err)
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachLines loads the lines of all given orders with a single query.
func (r *OrderRepository) attachLines(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, len(orders))
	byID := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	query, args, err := psql.Select("order_id", "service_id", "price", "quantity").
		From("order_lines").
		Where(sq.Eq{"order_id": ids}).
		OrderBy("order_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("building list order lines query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("listing order lines: %w", err)
	}

	var (
		orderID int64
		line    order.Line
	)
	_, err = pgx.ForEachRow(rows, []any{&orderID, &line.ServiceID, &line.Price, &line.Quantity}, func() error {
		o, ok := byID[orderID]
		if !ok {
			return fmt.Errorf("line references unexpected order %d", orderID)
		}
		o.Lines = append(o.Lines, line)
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning order lines: %w", err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.CreatedAt, &o.Total, &status)
	o.Status = order.Status(status)
	return o, err
}

func mapOrderError(err error, o *order.Order) error {
	if fk, ok := isForeignKeyViolation(err); ok {
		switch fk.ConstraintName {
		case "orders_user_id_fkey":
			return apperr.NotFound("user", o.UserID)
		case "order_lines_service_id_fkey":
			return apperr.Validation("order references an unknown service")
		}
	}
	if isNumericOutOfRange(err) {
		return apperr.Validation("order quantity or total is out of range")
	}
	return fmt.Errorf("saving order: %w", err)
}
