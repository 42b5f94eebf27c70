// Package quickorder handles anonymous call-back orders: a visitor leaves a
// name and phone number for a single service and the agency follows up.
package quickorder

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
)

// QuickOrder is an anonymous request for one service.
type QuickOrder struct {
	ID           int64
	CustomerName string
	Phone        string
	ServiceID    int64
	CreatedAt    time.Time
}

// CreateRequest holds the input for a quick order.
type CreateRequest struct {
	CustomerName string
	Phone        string
	ServiceID    int64
}

// Repository persists quick orders.
type Repository interface {
	Create(ctx context.Context, q *QuickOrder) error
	ListByCustomer(ctx context.Context, customerName string) ([]QuickOrder, error)
}

// Service accepts and lists quick orders.
type Service struct {
	orders   Repository
	services catalog.Repository
	now      func() time.Time
}

// NewService creates a quick order Service.
func NewService(orders Repository, services catalog.Repository) *Service {
	return &Service{
		orders:   orders,
		services: services,
		now:      time.Now,
	}
}

// Create validates and stores a quick order for an existing service.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*QuickOrder, error) {
	name := strings.TrimSpace(req.CustomerName)
	phone := strings.TrimSpace(req.Phone)
	if name == "" {
		return nil, apperr.Validation("customer name is required")
	}
	if phone == "" {
		return nil, apperr.Validation("phone is required")
	}

	if _, err := s.services.GetByID(ctx, req.ServiceID); err != nil {
		return nil, errors.Wrapf(err, "get service %d", req.ServiceID)
	}

	q := &QuickOrder{
		CustomerName: name,
		Phone:        phone,
		ServiceID:    req.ServiceID,
		CreatedAt:    s.now(),
	}
	if err := s.orders.Create(ctx, q); err != nil {
		return nil, errors.Wrap(err, "create quick order")
	}

	zctx.From(ctx).Info("Quick order created",
		zap.Int64("quick_order_id", q.ID),
		zap.Int64("service_id", q.ServiceID),
	)
	return q, nil
}

// ListByCustomer returns the quick orders left under customerName.
func (s *Service) ListByCustomer(ctx context.Context, customerName string) ([]QuickOrder, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return nil, apperr.Validation("customer name is required")
	}
	qs, err := s.orders.ListByCustomer(ctx, name)
	if err != nil {
		return nil, errors.Wrap(err, "list quick orders")
	}
	return qs, nil
}
