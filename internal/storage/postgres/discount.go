package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
)

var discountColumns = []string{"id", "percentage", "start_date", "end_date", "service_id"}

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	db DBTX
}

// NewDiscountRepository returns a DiscountRepository that uses db.
func NewDiscountRepository(db DBTX) *DiscountRepository {
	return &DiscountRepository{db: db}
}

// List returns all discounts ordered by ID.
func (r *DiscountRepository) List(ctx context.Context) ([]discount.Discount, error) {
	query, args, err := psql.Select(discountColumns...).From("discounts").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list discounts query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing discounts: %w", err)
	}
	return pgx.CollectRows(rows, scanDiscount)
}

// GetByID returns a single discount.
func (r *DiscountRepository) GetByID(ctx context.Context, id int64) (*discount.Discount, error) {
	query, args, err := psql.Select(discountColumns...).From("discounts").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building get discount query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("getting discount %d: %w", id, err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDiscount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("discount", id)
		}
		return nil, fmt.Errorf("getting discount %d: %w", id, err)
	}
	return &d, nil
}

// Create inserts d and sets its ID.
func (r *DiscountRepository) Create(ctx context.Context, d *discount.Discount) error {
	query, args, err := psql.Insert("discounts").
		Columns("percentage", "start_date", "end_date", "service_id").
		Values(d.Percentage, d.StartDate, d.EndDate, d.ServiceID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("building create discount query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&d.ID); err != nil {
		return mapDiscountError(err, d)
	}
	return nil
}

// Update overwrites the stored discount with d.
func (r *DiscountRepository) Update(ctx context.Context, d *discount.Discount) error {
	query, args, err := psql.Update("discounts").
		SetMap(map[string]any{
			"percentage": d.Percentage,
			"start_date": d.StartDate,
			"end_date":   d.EndDate,
			"service_id": d.ServiceID,
		}).
		Where(sq.Eq{"id": d.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update discount query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapDiscountError(err, d)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("discount", d.ID)
	}
	return nil
}

// Delete removes a discount.
func (r *DiscountRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM discounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting discount %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("discount", id)
	}
	return nil
}

// CopyIn bulk loads discounts with COPY and returns the number of rows
// written. IDs are not reported back.
func (r *DiscountRepository) CopyIn(ctx context.Context, ds []discount.Discount) (int64, error) {
	n, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"discounts"},
		[]string{"percentage", "start_date", "end_date", "service_id"},
		pgx.CopyFromSlice(len(ds), func(i int) ([]any, error) {
			d := ds[i]
			return []any{d.Percentage, d.StartDate, d.EndDate, d.ServiceID}, nil
		}),
	)
	if err != nil {
		if fk, ok := isForeignKeyViolation(err); ok {
			return 0, errors.Wrapf(apperr.Validationf("unknown service in batch: %s", fk.Detail), "copy discounts")
		}
		return 0, fmt.Errorf("copying discounts: %w", err)
	}
	return n, nil
}

// ForEachKey calls fn with the key of every stored discount without holding
// the whole table in memory.
func (r *DiscountRepository) ForEachKey(ctx context.Context, fn func(discount.Key) error) error {
	rows, err := r.db.Query(ctx, `SELECT service_id, start_date, end_date FROM discounts`)
	if err != nil {
		return fmt.Errorf("listing discount keys: %w", err)
	}

	var k discount.Key
	_, err = pgx.ForEachRow(rows, []any{&k.ServiceID, &k.Start, &k.End}, func() error {
		return fn(discount.Key{ServiceID: k.ServiceID, Start: k.Start.UTC(), End: k.End.UTC()})
	})
	if err != nil {
		return fmt.Errorf("scanning discount keys: %w", err)
	}
	return nil
}

// Exists reports whether a discount with key k is stored.
func (r *DiscountRepository) Exists(ctx context.Context, k discount.Key) (bool, error) {
	query, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From("discounts").
		Where(sq.Eq{"service_id": k.ServiceID, "start_date": k.Start, "end_date": k.End}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("building discount exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking discount %s: %w", k, err)
	}
	return exists, nil
}

func mapDiscountError(err error, d *discount.Discount) error {
	if _, ok := isForeignKeyViolation(err); ok {
		return apperr.NotFound("service", d.ServiceID)
	}
	if isCheckViolation(err) {
		return apperr.Validation("discount violates percentage or date constraints")
	}
	return fmt.Errorf("saving discount: %w", err)
}

func scanDiscount(row pgx.CollectableRow) (discount.Discount, error) {
	var d discount.Discount
	err := row.Scan(&d.ID, &d.Percentage, &d.StartDate, &d.EndDate, &d.ServiceID)
	return d, err
}
