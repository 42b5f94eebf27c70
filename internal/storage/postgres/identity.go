package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
)

const getUserSQL = `SELECT u.id, u.email, r.name
	FROM users u JOIN roles r ON r.id = u.role_id
	WHERE u.id = $1`

var _ identity.Repository = (*IdentityRepository)(nil)

// IdentityRepository resolves users and their role names.
type IdentityRepository struct {
	db DBTX
}

// NewIdentityRepository returns an IdentityRepository that uses db.
func NewIdentityRepository(db DBTX) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// GetUser returns the user with the given ID.
func (r *IdentityRepository) GetUser(ctx context.Context, id int64) (*identity.User, error) {
	var (
		u    identity.User
		role string
	)
	err := r.db.QueryRow(ctx, getUserSQL, id).Scan(&u.ID, &u.Email, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user", id)
		}
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	u.Role = identity.ParseRole(role)
	return &u, nil
}
