package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
)

// Input carries the editable fields of a discount.
type Input struct {
	Percentage int
	StartDate  time.Time
	EndDate    time.Time
	ServiceID  int64
}

// Validate checks in against the rules every stored discount obeys.
func (in Input) Validate() error {
	if in.Percentage < 0 || in.Percentage > 100 {
		return apperr.Validation("percentage must be between 0 and 100")
	}
	if in.StartDate.After(in.EndDate) {
		return apperr.Validation("start date must not be after end date")
	}
	if in.ServiceID <= 0 {
		return apperr.Validation("service id is required")
	}
	return nil
}

// Service manages discounts. Reads are open; changes require an actor with
// catalog management rights.
type Service struct {
	discounts Repository
	users     identity.Repository
	now       func() time.Time
}

// NewService creates a discount Service.
func NewService(discounts Repository, users identity.Repository) *Service {
	return &Service{
		discounts: discounts,
		users:     users,
		now:       time.Now,
	}
}

// List returns all discounts.
func (s *Service) List(ctx context.Context) ([]Discount, error) {
	ds, err := s.discounts.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list discounts")
	}
	return ds, nil
}

// ListActive returns the discounts active right now.
func (s *Service) ListActive(ctx context.Context) ([]Discount, error) {
	ds, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Active(ds, s.now()), nil
}

// Get returns a single discount.
func (s *Service) Get(ctx context.Context, id int64) (*Discount, error) {
	d, err := s.discounts.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get discount %d", id)
	}
	return d, nil
}

// Create validates and stores a new discount.
func (s *Service) Create(ctx context.Context, actorID int64, in Input) (*Discount, error) {
	if err := s.ensureManager(ctx, actorID); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	d := &Discount{
		Percentage: in.Percentage,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		ServiceID:  in.ServiceID,
	}
	if err := s.discounts.Create(ctx, d); err != nil {
		return nil, errors.Wrap(err, "create discount")
	}

	zctx.From(ctx).Info("Discount created",
		zap.Int64("discount_id", d.ID),
		zap.Int64("service_id", d.ServiceID),
		zap.Int("percentage", d.Percentage),
	)
	return d, nil
}

// Update replaces the editable fields of an existing discount.
func (s *Service) Update(ctx context.Context, actorID, id int64, in Input) (*Discount, error) {
	if err := s.ensureManager(ctx, actorID); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	d := &Discount{
		ID:         id,
		Percentage: in.Percentage,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		ServiceID:  in.ServiceID,
	}
	if err := s.discounts.Update(ctx, d); err != nil {
		return nil, errors.Wrapf(err, "update discount %d", id)
	}
	return d, nil
}

// Delete removes a discount.
func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if err := s.ensureManager(ctx, actorID); err != nil {
		return err
	}
	if err := s.discounts.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "delete discount %d", id)
	}

	zctx.From(ctx).Info("Discount deleted", zap.Int64("discount_id", id))
	return nil
}

func (s *Service) ensureManager(ctx context.Context, actorID int64) error {
	u, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.Forbidden("user not found")
		}
		return errors.Wrap(err, "get actor")
	}
	if !u.Role.CanManageCatalog() {
		return apperr.Forbidden("only managers and administrators can manage discounts")
	}
	return nil
}
