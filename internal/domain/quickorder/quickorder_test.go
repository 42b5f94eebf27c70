package quickorder

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
)

type mockQuickOrderRepo struct {
	created []QuickOrder
	err     error
}

func (m *mockQuickOrderRepo) Create(_ context.Context, q *QuickOrder) error {
	if m.err != nil {
		return m.err
	}
	q.ID = int64(len(m.created) + 1)
	m.created = append(m.created, *q)
	return nil
}

func (m *mockQuickOrderRepo) ListByCustomer(_ context.Context, name string) ([]QuickOrder, error) {
	var out []QuickOrder
	for _, q := range m.created {
		if q.CustomerName == name {
			out = append(out, q)
		}
	}
	return out, m.err
}

type mockServiceRepo struct {
	byID map[int64]catalog.Service
}

func (m *mockServiceRepo) List(_ context.Context) ([]catalog.Service, error) {
	return nil, nil
}

func (m *mockServiceRepo) GetByID(_ context.Context, id int64) (*catalog.Service, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("service", id)
	}
	return &s, nil
}

func (m *mockServiceRepo) GetByIDs(_ context.Context, _ []int64) ([]catalog.Service, error) {
	return nil, nil
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockQuickOrderRepo) *Service {
	svc := NewService(repo, &mockServiceRepo{byID: map[int64]catalog.Service{
		1: {ID: 1, Name: "Billboard", Price: decimal.NewFromInt(100), IsActive: true},
	}})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestCreate(t *testing.T) {
	repo := &mockQuickOrderRepo{}
	svc := newTestService(repo)

	q, err := svc.Create(context.Background(), CreateRequest{
		CustomerName: "  Olena ",
		Phone:        "+380501234567",
		ServiceID:    1,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), q.ID)
	assert.Equal(t, "Olena", q.CustomerName)
	assert.Equal(t, fixedNow, q.CreatedAt)
	require.Len(t, repo.created, 1)
}

func TestCreate_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		req   CreateRequest
		check func(t *testing.T, err error)
	}{
		{
			name:  "missing name",
			req:   CreateRequest{Phone: "123", ServiceID: 1},
			check: func(t *testing.T, err error) { assert.True(t, apperr.IsValidation(err)) },
		},
		{
			name:  "blank phone",
			req:   CreateRequest{CustomerName: "Olena", Phone: "  ", ServiceID: 1},
			check: func(t *testing.T, err error) { assert.True(t, apperr.IsValidation(err)) },
		},
		{
			name:  "unknown service",
			req:   CreateRequest{CustomerName: "Olena", Phone: "123", ServiceID: 9},
			check: func(t *testing.T, err error) { assert.True(t, apperr.IsNotFound(err)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockQuickOrderRepo{}
			svc := newTestService(repo)

			_, err := svc.Create(context.Background(), tt.req)

			tt.check(t, err)
			assert.Empty(t, repo.created)
		})
	}
}

func TestCreate_RepoError(t *testing.T) {
	svc := newTestService(&mockQuickOrderRepo{err: errors.New("db down")})

	_, err := svc.Create(context.Background(), CreateRequest{CustomerName: "Olena", Phone: "1", ServiceID: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create quick order")
}

func TestListByCustomer(t *testing.T) {
	repo := &mockQuickOrderRepo{}
	svc := newTestService(repo)

	for _, name := range []string{"Olena", "Taras", "Olena"} {
		_, err := svc.Create(context.Background(), CreateRequest{CustomerName: name, Phone: "1", ServiceID: 1})
		require.NoError(t, err)
	}

	got, err := svc.ListByCustomer(context.Background(), "Olena")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.ListByCustomer(context.Background(), " ")
	assert.True(t, apperr.IsValidation(err))
}
