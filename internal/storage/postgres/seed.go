package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
)

const (
	upsertRoleSQL = `INSERT INTO roles (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	upsertUserSQL = `INSERT INTO users (id, email, role_id)
		VALUES ($1, $2, (SELECT id FROM roles WHERE name = $3))
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, role_id = EXCLUDED.role_id`

	upsertCategorySQL = `INSERT INTO categories (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`

	upsertServiceSQL = `INSERT INTO services (id, name, description, price, is_active, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			is_active = EXCLUDED.is_active,
			category_id = EXCLUDED.category_id`

	upsertDiscountSQL = `INSERT INTO discounts (id, percentage, start_date, end_date, service_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			percentage = EXCLUDED.percentage,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			service_id = EXCLUDED.service_id`

	upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (id) DO UPDATE SET
			key_hash = EXCLUDED.key_hash,
			name = EXCLUDED.name,
			scopes = EXCLUDED.scopes,
			active = TRUE`
)

// sequenceTables have BIGSERIAL ids that seeding writes explicitly.
var sequenceTables = []string{"users", "categories", "services", "discounts"}

// Seeder writes fixture data with explicit identifiers. Every method is
// idempotent.
type Seeder struct {
	pool *pgxpool.Pool
}

// NewSeeder returns a Seeder over pool.
func NewSeeder(pool *pgxpool.Pool) *Seeder {
	return &Seeder{pool: pool}
}

// UpsertRole ensures a role with the given name exists.
func (s *Seeder) UpsertRole(ctx context.Context, name string) error {
	var id int64
	if err := s.pool.QueryRow(ctx, upsertRoleSQL, name).Scan(&id); err != nil {
		return fmt.Errorf("upserting role %q: %w", name, err)
	}
	return nil
}

// UpsertUser writes u. Its role must already exist under u.Role.String(),
// unless roleName overrides it.
func (s *Seeder) UpsertUser(ctx context.Context, u identity.User, roleName string) error {
	if roleName == "" {
		roleName = u.Role.String()
	}
	if _, err := s.pool.Exec(ctx, upsertUserSQL, u.ID, u.Email, roleName); err != nil {
		return fmt.Errorf("upserting user %d: %w", u.ID, err)
	}
	return nil
}

// UpsertCategory writes c.
func (s *Seeder) UpsertCategory(ctx context.Context, c catalog.Category) error {
	if _, err := s.pool.Exec(ctx, upsertCategorySQL, c.ID, c.Name); err != nil {
		return fmt.Errorf("upserting category %d: %w", c.ID, err)
	}
	return nil
}

// UpsertService writes svc.
func (s *Seeder) UpsertService(ctx context.Context, svc catalog.Service) error {
	_, err := s.pool.Exec(ctx, upsertServiceSQL,
		svc.ID, svc.Name, svc.Description, svc.Price, svc.IsActive, svc.CategoryID)
	if err != nil {
		return fmt.Errorf("upserting service %d: %w", svc.ID, err)
	}
	return nil
}

// UpsertDiscount writes d.
func (s *Seeder) UpsertDiscount(ctx context.Context, d discount.Discount) error {
	_, err := s.pool.Exec(ctx, upsertDiscountSQL, d.ID, d.Percentage, d.StartDate, d.EndDate, d.ServiceID)
	if err != nil {
		return fmt.Errorf("upserting discount %d: %w", d.ID, err)
	}
	return nil
}

// UpsertAPIKey writes an active API key.
func (s *Seeder) UpsertAPIKey(ctx context.Context, k identity.APIKey) error {
	if _, err := s.pool.Exec(ctx, upsertAPIKeySQL, k.ID, k.KeyHash, k.Name, k.Scopes); err != nil {
		return fmt.Errorf("upserting api key %s: %w", k.ID, err)
	}
	return nil
}

// SyncSequences moves every id sequence past the largest seeded id so
// later inserts do not collide.
func (s *Seeder) SyncSequences(ctx context.Context) error {
	for _, table := range sequenceTables {
		query := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)`,
			table,
		)
		if _, err := s.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("syncing %s sequence: %w", table, err)
		}
	}
	return nil
}
