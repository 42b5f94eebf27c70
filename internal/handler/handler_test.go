package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/order"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/quickorder"
)

var createdAt = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// --- mocks ---

type mockOrders struct {
	createReq  order.CreateRequest
	statusName string
	actor      int64
	discountID int64
	order      *order.Order
	err        error
}

func (m *mockOrders) CreateOrder(_ context.Context, req order.CreateRequest) (*order.Order, error) {
	m.createReq = req
	return m.order, m.err
}

func (m *mockOrders) GetOrder(_ context.Context, _, actorID int64) (*order.Order, error) {
	m.actor = actorID
	return m.order, m.err
}

func (m *mockOrders) GetUserOrders(_ context.Context, _, actorID int64) ([]order.Order, error) {
	m.actor = actorID
	if m.err != nil {
		return nil, m.err
	}
	return []order.Order{*m.order}, nil
}

func (m *mockOrders) ChangeOrderStatus(_ context.Context, _ int64, statusName string, actorID int64) (*order.Order, error) {
	m.statusName, m.actor = statusName, actorID
	return m.order, m.err
}

func (m *mockOrders) ApplyDiscountToOrder(_ context.Context, _, discountID, actorID int64) (*order.Order, error) {
	m.discountID, m.actor = discountID, actorID
	return m.order, m.err
}

type mockDiscounts struct {
	input discount.Input
	actor int64
	err   error
}

func (m *mockDiscounts) List(context.Context) ([]discount.Discount, error) {
	return []discount.Discount{{ID: 1, Percentage: 10, ServiceID: 2}}, m.err
}

func (m *mockDiscounts) ListActive(context.Context) ([]discount.Discount, error) {
	return nil, m.err
}

func (m *mockDiscounts) Get(_ context.Context, id int64) (*discount.Discount, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &discount.Discount{ID: id, Percentage: 10}, nil
}

func (m *mockDiscounts) Create(_ context.Context, actorID int64, in discount.Input) (*discount.Discount, error) {
	m.actor, m.input = actorID, in
	if m.err != nil {
		return nil, m.err
	}
	return &discount.Discount{ID: 9, Percentage: in.Percentage, StartDate: in.StartDate, EndDate: in.EndDate, ServiceID: in.ServiceID}, nil
}

func (m *mockDiscounts) Update(_ context.Context, actorID, id int64, in discount.Input) (*discount.Discount, error) {
	m.actor, m.input = actorID, in
	return &discount.Discount{ID: id}, m.err
}

func (m *mockDiscounts) Delete(_ context.Context, actorID, _ int64) error {
	m.actor = actorID
	return m.err
}

type mockQuickOrders struct {
	req quickorder.CreateRequest
	err error
}

func (m *mockQuickOrders) Create(_ context.Context, req quickorder.CreateRequest) (*quickorder.QuickOrder, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return &quickorder.QuickOrder{ID: 4, CustomerName: req.CustomerName, Phone: req.Phone, ServiceID: req.ServiceID, CreatedAt: createdAt}, nil
}

func (m *mockQuickOrders) ListByCustomer(_ context.Context, name string) ([]quickorder.QuickOrder, error) {
	return []quickorder.QuickOrder{{ID: 1, CustomerName: name}}, m.err
}

type mockCatalog struct{}

func (mockCatalog) List(context.Context) ([]catalog.Service, error) {
	return []catalog.Service{{ID: 1, Name: "Billboard", Price: decimal.RequireFromString("100")}}, nil
}

func (mockCatalog) GetByID(_ context.Context, id int64) (*catalog.Service, error) {
	if id != 1 {
		return nil, apperr.NotFound("service", id)
	}
	return &catalog.Service{ID: 1, Name: "Billboard", Price: decimal.RequireFromString("100")}, nil
}

func (mockCatalog) GetByIDs(context.Context, []int64) ([]catalog.Service, error) { return nil, nil }

type mockCatalogAdmin struct {
	serviceInput catalog.ServiceInput
	productInput catalog.PrintProductInput
	categoryName string
	actor        int64
	id           int64
	err          error
}

func (m *mockCatalogAdmin) CreateService(_ context.Context, actorID int64, in catalog.ServiceInput) (*catalog.Service, error) {
	m.actor, m.serviceInput = actorID, in
	if m.err != nil {
		return nil, m.err
	}
	return &catalog.Service{ID: 5, Name: in.Name, Description: in.Description, Price: in.Price, IsActive: in.IsActive, CategoryID: in.CategoryID}, nil
}

func (m *mockCatalogAdmin) UpdateService(_ context.Context, actorID, id int64, in catalog.ServiceInput) (*catalog.Service, error) {
	m.actor, m.id, m.serviceInput = actorID, id, in
	if m.err != nil {
		return nil, m.err
	}
	return &catalog.Service{ID: id, Name: in.Name}, nil
}

func (m *mockCatalogAdmin) DeleteService(_ context.Context, actorID, id int64) error {
	m.actor, m.id = actorID, id
	return m.err
}

func (m *mockCatalogAdmin) ListCategories(context.Context) ([]catalog.Category, error) {
	return []catalog.Category{{ID: 1, Name: "Outdoor"}}, m.err
}

func (m *mockCatalogAdmin) CreateCategory(_ context.Context, actorID int64, name string) (*catalog.Category, error) {
	m.actor, m.categoryName = actorID, name
	if m.err != nil {
		return nil, m.err
	}
	return &catalog.Category{ID: 3, Name: name}, nil
}

func (m *mockCatalogAdmin) UpdateCategory(_ context.Context, actorID, id int64, name string) (*catalog.Category, error) {
	m.actor, m.id, m.categoryName = actorID, id, name
	if m.err != nil {
		return nil, m.err
	}
	return &catalog.Category{ID: id, Name: name}, nil
}

func (m *mockCatalogAdmin) DeleteCategory(_ context.Context, actorID, id int64) error {
	m.actor, m.id = actorID, id
	return m.err
}

func (m *mockCatalogAdmin) ListPrintProducts(context.Context) ([]catalog.PrintProduct, error) {
	return []catalog.PrintProduct{{ID: 1, Title: "Leaflet"}}, m.err
}

func (m *mockCatalogAdmin) GetPrintProduct(_ context.Context, id int64) (*catalog.PrintProduct, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &catalog.PrintProduct{ID: id, Title: "Leaflet"}, nil
}

func (m *mockCatalogAdmin) CreatePrintProduct(_ context.Context, actorID int64, in catalog.PrintProductInput) (*catalog.PrintProduct, error) {
	m.actor, m.productInput = actorID, in
	if m.err != nil {
		return nil, m.err
	}
	return &catalog.PrintProduct{
		ID: 8, Title: in.Title, BaseCost: in.BaseCost, Size: in.Size,
		PaperType: in.PaperType, PrintType: in.PrintType, CategoryID: in.CategoryID,
	}, nil
}

func (m *mockCatalogAdmin) UpdatePrintProduct(_ context.Context, actorID, id int64, in catalog.PrintProductInput) (*catalog.PrintProduct, error) {
	m.actor, m.id, m.productInput = actorID, id, in
	if m.err != nil {
		return nil, m.err
	}
	return &catalog.PrintProduct{ID: id, Title: in.Title}, nil
}

func (m *mockCatalogAdmin) DeletePrintProduct(_ context.Context, actorID, id int64) error {
	m.actor, m.id = actorID, id
	return m.err
}

type mockUsers map[int64]identity.User

func (m mockUsers) GetUser(_ context.Context, id int64) (*identity.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, apperr.NotFound("user", id)
	}
	return &u, nil
}

type mockAPIKeys struct {
	keys map[string]*identity.APIKey
}

func (m *mockAPIKeys) FindByHash(_ context.Context, hash string) (*identity.APIKey, error) {
	k, ok := m.keys[hash]
	if !ok {
		return nil, errors.New("api key not found")
	}
	return k, nil
}

// --- helpers ---

type fixture struct {
	orders      *mockOrders
	discounts   *mockDiscounts
	quickOrders *mockQuickOrders
	catalog     *mockCatalogAdmin
	mux         *http.ServeMux
}

func newFixture() *fixture {
	f := &fixture{
		orders: &mockOrders{order: &order.Order{
			ID:        7,
			UserID:    10,
			CreatedAt: createdAt,
			Status:    order.StatusInProgress,
			Total:     decimal.RequireFromString("190.1"),
			Lines: []order.Line{
				{ServiceID: 1, Price: decimal.RequireFromString("90.05"), Quantity: 2},
				{ServiceID: 3, Price: decimal.RequireFromString("10"), Quantity: 1},
			},
		}},
		discounts:   &mockDiscounts{},
		quickOrders: &mockQuickOrders{},
		catalog:     &mockCatalogAdmin{},
		mux:         http.NewServeMux(),
	}
	users := mockUsers{20: {ID: 20, Email: "manager@example.com", Role: identity.RoleManager}}
	NewHandler(f.orders, f.discounts, f.quickOrders, mockCatalog{}, f.catalog, users).Register(f.mux)
	return f
}

func (f *fixture) do(method, target, body string, actor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if actor != "" {
		req.Header.Set("X-User-Id", actor)
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var msg string
	require.NoError(t, jx.DecodeBytes(w.Body.Bytes()).Obj(func(d *jx.Decoder, key string) error {
		if key != "message" {
			return d.Skip()
		}
		v, err := d.Str()
		msg = v
		return err
	}))
	return msg
}

// --- tests ---

func TestCreateOrder(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/api/orders",
		`{"userId":10,"items":[{"serviceId":1,"quantity":2},{"serviceId":3,"quantity":1,"note":"x"}]}`, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(10), f.orders.createReq.UserID)
	assert.Equal(t, []order.LineRequest{{ServiceID: 1, Quantity: 2}, {ServiceID: 3, Quantity: 1}}, f.orders.createReq.Lines)
	assert.JSONEq(t, `{
		"id":7,"userId":10,"createdAt":"2025-06-15T12:00:00Z","status":"InProgress","total":190.10,
		"items":[
			{"serviceId":1,"price":90.05,"quantity":2,"subtotal":180.10},
			{"serviceId":3,"price":10.00,"quantity":1,"subtotal":10.00}
		]}`, w.Body.String())
}

func TestCreateOrder_MalformedBody(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name string
		body string
	}{
		{name: "NotJSON", body: `{userId`},
		{name: "StringQuantity", body: `{"userId":1,"items":[{"serviceId":1,"quantity":"2"}]}`},
		{name: "Array", body: `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/api/orders", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, errorMessage(t, w), "invalid request body")
		})
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "Validation", err: order.ErrEmptyOrder, wantStatus: http.StatusBadRequest, wantMsg: "order must contain at least one service"},
		{name: "NotFound", err: errors.Wrap(apperr.NotFound("service", 5), "price lines"), wantStatus: http.StatusNotFound, wantMsg: "service 5 not found"},
		{name: "Forbidden", err: apperr.Forbidden("only registered users can place orders"), wantStatus: http.StatusForbidden, wantMsg: "only registered users can place orders"},
		{name: "Internal", err: errors.New("connection reset"), wantStatus: http.StatusInternalServerError, wantMsg: "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.orders.err = tt.err

			w := f.do(http.MethodPost, "/api/orders", `{"userId":10,"items":[]}`, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, errorMessage(t, w))
		})
	}
}

func TestGetOrder(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/api/orders/7", "", "20")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(20), f.orders.actor)

	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/api/orders/7", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/orders/7", "", "abc").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/orders/-1", "", "20").Code)
}

func TestGetUserOrders(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/api/orders/user/10", "", "10")
	require.Equal(t, http.StatusOK, w.Code)

	n := 0
	require.NoError(t, jx.DecodeBytes(w.Body.Bytes()).Arr(func(d *jx.Decoder) error {
		n++
		return d.Skip()
	}))
	assert.Equal(t, 1, n)
}

func TestChangeOrderStatus(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPatch, "/api/orders/7/status/completed", "", "20")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "completed", f.orders.statusName)

	f.orders.err = apperr.Validation("invalid status value")
	w = f.do(http.MethodPatch, "/api/orders/7/status/2", "", "20")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplyDiscount(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/api/orders/7/discounts/3", "", "10")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), f.orders.discountID)
	assert.Equal(t, int64(10), f.orders.actor)
}

func TestCreateDiscount(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/api/discounts",
		`{"percentage":15,"startDate":"2025-01-01","endDate":"2025-12-31T23:59:59Z","serviceId":2}`, "20")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(20), f.discounts.actor)
	assert.Equal(t, 15, f.discounts.input.Percentage)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), f.discounts.input.StartDate)
	assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), f.discounts.input.EndDate)
	assert.Equal(t, int64(2), f.discounts.input.ServiceID)

	w = f.do(http.MethodPost, "/api/discounts", `{"percentage":15,"startDate":"01/02/2025"}`, "20")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `invalid date "01/02/2025"`, errorMessage(t, w))
}

func TestDiscountRoutes(t *testing.T) {
	f := newFixture()

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/discounts", "", "").Code)
	w := f.do(http.MethodGet, "/api/discounts/active", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/discounts/4", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPut, "/api/discounts/4", `{"percentage":5}`, "20").Code)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/discounts/4", "", "20").Code)

	f.discounts.err = apperr.Forbidden("only managers and administrators can manage discounts")
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodDelete, "/api/discounts/4", "", "10").Code)
}

func TestServiceRoutes(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/api/services/1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"name":"Billboard","description":"","price":100.00,"isActive":false,"categoryId":0}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/services/2", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/services", "", "").Code)
}

func TestServiceWriteRoutes(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/api/services",
		`{"name":"Radio spot","description":"30 s","price":40.5,"isActive":true,"categoryId":2}`, "20")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(20), f.catalog.actor)
	assert.Equal(t, "Radio spot", f.catalog.serviceInput.Name)
	assert.True(t, f.catalog.serviceInput.Price.Equal(decimal.RequireFromString("40.5")))
	assert.True(t, f.catalog.serviceInput.IsActive)
	assert.JSONEq(t, `{"id":5,"name":"Radio spot","description":"30 s","price":40.50,"isActive":true,"categoryId":2}`, w.Body.String())

	w = f.do(http.MethodPut, "/api/services/5", `{"name":"Radio","price":"12.25","categoryId":2}`, "20")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(5), f.catalog.id)
	assert.True(t, f.catalog.serviceInput.Price.Equal(decimal.RequireFromString("12.25")))

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/services/5", "", "20").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodDelete, "/api/services/5", "", "").Code)

	w = f.do(http.MethodPost, "/api/services", `{"name":"x","price":"abc"}`, "20")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `invalid amount "abc"`, errorMessage(t, w))
}

func TestCatalogAdminErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{
			name:   "forbidden service create",
			err:    apperr.Forbidden("only managers and administrators can manage the catalog"),
			method: http.MethodPost, target: "/api/services", body: `{"name":"x","price":1,"categoryId":1}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "missing service",
			err:    apperr.NotFound("service", 9),
			method: http.MethodPut, target: "/api/services/9", body: `{"name":"x","price":1,"categoryId":1}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "duplicate category",
			err:    apperr.Validation("category already in use"),
			method: http.MethodPost, target: "/api/categories", body: `{"name":"Outdoor"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "forbidden category delete",
			err:    apperr.Forbidden("user not found"),
			method: http.MethodDelete, target: "/api/categories/1",
			wantStatus: http.StatusForbidden,
		},
		{
			name:   "missing print product",
			err:    apperr.NotFound("print product", 4),
			method: http.MethodGet, target: "/api/print-products/4",
			wantStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.catalog.err = tt.err

			w := f.do(tt.method, tt.target, tt.body, "10")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.err.Error(), errorMessage(t, w))
		})
	}
}

func TestCategoryRoutes(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/api/categories", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Outdoor"}]`, w.Body.String())

	w = f.do(http.MethodPost, "/api/categories", `{"name":"Print"}`, "20")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Print", f.catalog.categoryName)
	assert.JSONEq(t, `{"id":3,"name":"Print"}`, w.Body.String())

	w = f.do(http.MethodPut, "/api/categories/3", `{"name":"Digital"}`, "20")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), f.catalog.id)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/categories/3", "", "20").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPut, "/api/categories/x", `{"name":"a"}`, "20").Code)
}

func TestPrintProductRoutes(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/api/print-products",
		`{"title":"Leaflet","baseCost":2.5,"size":"A5","paperType":"glossy","printType":"color","categoryId":1}`, "20")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	in := f.catalog.productInput
	assert.Equal(t, "Leaflet", in.Title)
	assert.True(t, in.BaseCost.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, []string{"A5", "glossy", "color"}, []string{in.Size, in.PaperType, in.PrintType})
	assert.Equal(t, int64(1), in.CategoryID)
	assert.JSONEq(t, `{"id":8,"title":"Leaflet","description":"","baseCost":2.50,"size":"A5",
		"paperType":"glossy","printType":"color","categoryId":1}`, w.Body.String())

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/print-products", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/print-products/8", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPut, "/api/print-products/8", `{"title":"Poster"}`, "20").Code)
	assert.Equal(t, "Poster", f.catalog.productInput.Title)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/print-products/8", "", "20").Code)
	assert.Equal(t, int64(8), f.catalog.id)
}

func TestGetUser(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodGet, "/api/users/20", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":20,"email":"manager@example.com","role":"Manager"}`, w.Body.String())

	w = f.do(http.MethodGet, "/api/users/21", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user 21 not found", errorMessage(t, w))
}

func TestQuickOrders(t *testing.T) {
	f := newFixture()

	w := f.do(http.MethodPost, "/api/quick-orders", `{"customerName":"Olena","phone":"+380501112233","serviceId":1}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, quickorder.CreateRequest{CustomerName: "Olena", Phone: "+380501112233", ServiceID: 1}, f.quickOrders.req)

	w = f.do(http.MethodGet, "/api/quick-orders/customer/Olena", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"customerName":"Olena"`)
}

func TestSecurity(t *testing.T) {
	pepper := []byte("pepper")
	keys := &mockAPIKeys{keys: map[string]*identity.APIKey{}}
	hash := identity.HashAPIKey("secret", pepper)
	keys.keys[hash] = &identity.APIKey{ID: "default", KeyHash: hash}
	tampered := identity.HashAPIKey("other", pepper)
	keys.keys[tampered] = &identity.APIKey{ID: "bad", KeyHash: hash}

	h := NewSecurity(keys, pepper).Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		key  string
		want int
	}{
		{name: "Valid", key: "secret", want: http.StatusOK},
		{name: "Missing", key: "", want: http.StatusUnauthorized},
		{name: "Unknown", key: "nope", want: http.StatusUnauthorized},
		{name: "HashMismatch", key: "other", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/discounts", nil)
			if tt.key != "" {
				req.Header.Set(APIKeyHeader, tt.key)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
