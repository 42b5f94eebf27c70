// Package catalog holds the services, categories and print products the
// agency sells.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Service is an advertising service offered by the agency.
type Service struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	IsActive    bool
	CategoryID  int64
}

// Category groups related services.
type Category struct {
	ID   int64
	Name string
}

// PrintProduct is a printed item (leaflet, poster, card) sold by the agency.
type PrintProduct struct {
	ID          int64
	Title       string
	Description string
	BaseCost    decimal.Decimal
	Size        string
	PaperType   string
	PrintType   string
	CategoryID  int64
}

// Repository defines read operations for the service catalog.
//
// GetByID returns an *apperr.NotFoundError for unknown ids. GetByIDs returns
// only the services that exist; callers detect missing ids themselves.
type Repository interface {
	List(ctx context.Context) ([]Service, error)
	GetByID(ctx context.Context, id int64) (*Service, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Service, error)
}

// Index maps services by id.
func Index(services []Service) map[int64]Service {
	m := make(map[int64]Service, len(services))
	for _, s := range services {
		m[s.ID] = s
	}
	return m
}
