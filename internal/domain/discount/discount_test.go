package discount

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestDiscount_IsActiveAt(t *testing.T) {
	d := Discount{
		StartDate: fixedNow.Add(-time.Hour),
		EndDate:   fixedNow.Add(time.Hour),
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "inside window", at: fixedNow, want: true},
		{name: "at start", at: d.StartDate, want: true},
		{name: "at end", at: d.EndDate, want: true},
		{name: "before start", at: d.StartDate.Add(-time.Nanosecond), want: false},
		{name: "after end", at: d.EndDate.Add(time.Nanosecond), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.IsActiveAt(tt.at))
		})
	}
}

func TestActive_PreservesOrder(t *testing.T) {
	past := Discount{ID: 1, StartDate: fixedNow.Add(-48 * time.Hour), EndDate: fixedNow.Add(-24 * time.Hour)}
	a := Discount{ID: 2, StartDate: fixedNow.Add(-time.Hour), EndDate: fixedNow.Add(time.Hour)}
	future := Discount{ID: 3, StartDate: fixedNow.Add(time.Hour), EndDate: fixedNow.Add(2 * time.Hour)}
	b := Discount{ID: 4, StartDate: fixedNow, EndDate: fixedNow}

	got := Active([]Discount{past, a, future, b}, fixedNow)

	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(4), got[1].ID)
}

func TestActive_Empty(t *testing.T) {
	assert.Empty(t, Active(nil, fixedNow))
}

func TestFirstFor(t *testing.T) {
	ds := []Discount{
		{ID: 1, ServiceID: 10, Percentage: 5},
		{ID: 2, ServiceID: 20, Percentage: 15},
		{ID: 3, ServiceID: 20, Percentage: 50},
	}

	d, ok := FirstFor(ds, 20)
	require.True(t, ok)
	assert.Equal(t, int64(2), d.ID)

	_, ok = FirstFor(ds, 30)
	assert.False(t, ok)
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		price string
		pct   int
		want  string
	}{
		{price: "100", pct: 20, want: "80"},
		{price: "100", pct: 0, want: "100"},
		{price: "100", pct: 100, want: "0"},
		{price: "19.99", pct: 10, want: "17.99"},
		// Half to even at the cent boundary.
		{price: "10.05", pct: 50, want: "5.02"},
		{price: "10.15", pct: 50, want: "5.08"},
	}

	for _, tt := range tests {
		t.Run(tt.price+"@"+decimal.NewFromInt(int64(tt.pct)).String(), func(t *testing.T) {
			got := ApplyPercentage(decimal.RequireFromString(tt.price), tt.pct)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
				"expected %s, got %s", tt.want, got)
		})
	}
}
