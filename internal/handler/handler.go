// Package handler exposes the domain services over HTTP.
package handler

import (
	"context"
	"net/http"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/order"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/quickorder"
	"github.com/DianaBudova/AdvertisingAgency/pkg/httpmiddleware"
)

// OrderService is the order workflow used by the handlers.
type OrderService interface {
	CreateOrder(ctx context.Context, req order.CreateRequest) (*order.Order, error)
	GetOrder(ctx context.Context, orderID, actorID int64) (*order.Order, error)
	GetUserOrders(ctx context.Context, userID, actorID int64) ([]order.Order, error)
	ChangeOrderStatus(ctx context.Context, orderID int64, statusName string, actorID int64) (*order.Order, error)
	ApplyDiscountToOrder(ctx context.Context, orderID, discountID, actorID int64) (*order.Order, error)
}

// DiscountService is the discount administration used by the handlers.
type DiscountService interface {
	List(ctx context.Context) ([]discount.Discount, error)
	ListActive(ctx context.Context) ([]discount.Discount, error)
	Get(ctx context.Context, id int64) (*discount.Discount, error)
	Create(ctx context.Context, actorID int64, in discount.Input) (*discount.Discount, error)
	Update(ctx context.Context, actorID, id int64, in discount.Input) (*discount.Discount, error)
	Delete(ctx context.Context, actorID, id int64) error
}

// QuickOrderService accepts anonymous call-back orders.
type QuickOrderService interface {
	Create(ctx context.Context, req quickorder.CreateRequest) (*quickorder.QuickOrder, error)
	ListByCustomer(ctx context.Context, customerName string) ([]quickorder.QuickOrder, error)
}

// CatalogAdmin manages services, categories and print products.
type CatalogAdmin interface {
	CreateService(ctx context.Context, actorID int64, in catalog.ServiceInput) (*catalog.Service, error)
	UpdateService(ctx context.Context, actorID, id int64, in catalog.ServiceInput) (*catalog.Service, error)
	DeleteService(ctx context.Context, actorID, id int64) error

	ListCategories(ctx context.Context) ([]catalog.Category, error)
	CreateCategory(ctx context.Context, actorID int64, name string) (*catalog.Category, error)
	UpdateCategory(ctx context.Context, actorID, id int64, name string) (*catalog.Category, error)
	DeleteCategory(ctx context.Context, actorID, id int64) error

	ListPrintProducts(ctx context.Context) ([]catalog.PrintProduct, error)
	GetPrintProduct(ctx context.Context, id int64) (*catalog.PrintProduct, error)
	CreatePrintProduct(ctx context.Context, actorID int64, in catalog.PrintProductInput) (*catalog.PrintProduct, error)
	UpdatePrintProduct(ctx context.Context, actorID, id int64, in catalog.PrintProductInput) (*catalog.PrintProduct, error)
	DeletePrintProduct(ctx context.Context, actorID, id int64) error
}

// Handler serves the /api routes.
type Handler struct {
	orders      OrderService
	discounts   DiscountService
	quickOrders QuickOrderService
	services    catalog.Repository
	catalog     CatalogAdmin
	users       identity.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
// services serves catalog reads and may be cached; admin performs writes.
func NewHandler(
	orders OrderService,
	discounts DiscountService,
	quickOrders QuickOrderService,
	services catalog.Repository,
	admin CatalogAdmin,
	users identity.Repository,
) *Handler {
	return &Handler{
		orders:      orders,
		discounts:   discounts,
		quickOrders: quickOrders,
		services:    services,
		catalog:     admin,
		users:       users,
	}
}

// Register mounts every API route on mux, each wrapped in middlewares.
func (h *Handler) Register(mux *http.ServeMux, middlewares ...httpmiddleware.Middleware) {
	routes := []struct {
		pattern string
		handle  http.HandlerFunc
	}{
		{"POST /api/orders", h.CreateOrder},
		{"GET /api/orders/{orderId}", h.GetOrder},
		{"GET /api/orders/user/{userId}", h.GetUserOrders},
		{"PATCH /api/orders/{orderId}/status/{status}", h.ChangeOrderStatus},
		{"POST /api/orders/{orderId}/discounts/{discountId}", h.ApplyDiscount},

		{"GET /api/discounts", h.ListDiscounts},
		{"GET /api/discounts/active", h.ListActiveDiscounts},
		{"GET /api/discounts/{id}", h.GetDiscount},
		{"POST /api/discounts", h.CreateDiscount},
		{"PUT /api/discounts/{id}", h.UpdateDiscount},
		{"DELETE /api/discounts/{id}", h.DeleteDiscount},

		{"GET /api/services", h.ListServices},
		{"GET /api/services/{id}", h.GetService},
		{"POST /api/services", h.CreateService},
		{"PUT /api/services/{id}", h.UpdateService},
		{"DELETE /api/services/{id}", h.DeleteService},

		{"GET /api/categories", h.ListCategories},
		{"POST /api/categories", h.CreateCategory},
		{"PUT /api/categories/{id}", h.UpdateCategory},
		{"DELETE /api/categories/{id}", h.DeleteCategory},

		{"GET /api/print-products", h.ListPrintProducts},
		{"GET /api/print-products/{id}", h.GetPrintProduct},
		{"POST /api/print-products", h.CreatePrintProduct},
		{"PUT /api/print-products/{id}", h.UpdatePrintProduct},
		{"DELETE /api/print-products/{id}", h.DeletePrintProduct},

		{"GET /api/users/{id}", h.GetUser},

		{"POST /api/quick-orders", h.CreateQuickOrder},
		{"GET /api/quick-orders/customer/{name}", h.ListQuickOrders},
	}
	for _, rt := range routes {
		mux.Handle(rt.pattern, httpmiddleware.Wrap(rt.handle, middlewares...))
	}
}
