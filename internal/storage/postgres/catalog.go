package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
)

const (
	listServicesSQL = `SELECT id, name, description, price, is_active, category_id
		FROM services ORDER BY id`

	getServiceByIDSQL = `SELECT id, name, description, price, is_active, category_id
		FROM services WHERE id = $1`

	getServicesByIDsSQL = `SELECT id, name, description, price, is_active, category_id
		FROM services WHERE id = ANY($1)`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	db DBTX
}

// NewCatalogRepository returns a CatalogRepository that uses db.
func NewCatalogRepository(db DBTX) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// List returns all services ordered by ID.
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.Service, error) {
	rows, err := r.db.Query(ctx, listServicesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	return pgx.CollectRows(rows, scanService)
}

// GetByID returns a single service by its identifier.
func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*catalog.Service, error) {
	rows, err := r.db.Query(ctx, getServiceByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting service %d: %w", id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanService)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("service", id)
		}
		return nil, fmt.Errorf("getting service %d: %w", id, err)
	}
	return &s, nil
}

// GetByIDs returns the services matching any of the given IDs.
func (r *CatalogRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, getServicesByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting services by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanService)
}

func scanService(row pgx.CollectableRow) (catalog.Service, error) {
	var s catalog.Service
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.IsActive, &s.CategoryID)
	return s, err
}
