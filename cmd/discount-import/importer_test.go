package main

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
)

type memStore struct {
	stored  []discount.Discount
	copied  []discount.Discount
	lookups int
	copyErr error
	batches int
}

func (m *memStore) ForEachKey(_ context.Context, fn func(discount.Key) error) error {
	for _, d := range m.stored {
		if err := fn(d.Key()); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) Exists(_ context.Context, k discount.Key) (bool, error) {
	m.lookups++
	for _, d := range m.stored {
		if d.Key() == k {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CopyIn(_ context.Context, ds []discount.Discount) (int64, error) {
	if m.copyErr != nil {
		return 0, m.copyErr
	}
	m.batches++
	m.copied = append(m.copied, ds...)
	return int64(len(ds)), nil
}

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func disc(serviceID int64, start, end int, pct int) discount.Discount {
	return discount.Discount{ServiceID: serviceID, StartDate: day(start), EndDate: day(end), Percentage: pct}
}

func TestImporter_SkipsStoredAndRepeatedRows(t *testing.T) {
	ctx := context.Background()
	store := &memStore{stored: []discount.Discount{disc(1, 1, 10, 5)}}
	imp := newImporter(store, 100)
	require.NoError(t, imp.loadExisting(ctx))

	files := []parsedFile{
		{path: "a.csv", discounts: []discount.Discount{
			disc(1, 1, 10, 20), // stored, different percentage
			disc(2, 1, 10, 20),
		}},
		{path: "b.csv", discounts: []discount.Discount{
			disc(2, 1, 10, 30), // repeated across files
			disc(3, 5, 6, 15),
		}},
	}

	stats, err := imp.importFiles(ctx, files, false)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.inserted)
	assert.Equal(t, 2, stats.duplicates)
	require.Len(t, store.copied, 2)
	assert.Equal(t, int64(2), store.copied[0].ServiceID)
	assert.Equal(t, 20, store.copied[0].Percentage)
	assert.Equal(t, int64(3), store.copied[1].ServiceID)
	assert.GreaterOrEqual(t, store.lookups, 1)
}

func TestImporter_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	imp := newImporter(store, 0)
	require.NoError(t, imp.loadExisting(ctx))

	stats, err := imp.importFiles(ctx, []parsedFile{{discounts: []discount.Discount{disc(1, 1, 2, 5)}}}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.inserted)
	assert.Empty(t, store.copied)
	assert.Zero(t, store.batches)
}

func TestImporter_BatchesCopies(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	imp := newImporter(store, 10)

	ds := make([]discount.Discount, copyBatch+5)
	for i := range ds {
		ds[i] = discount.Discount{ServiceID: int64(i + 1), StartDate: day(1), EndDate: day(2), Percentage: 10}
	}

	stats, err := imp.importFiles(ctx, []parsedFile{{discounts: ds}}, false)
	require.NoError(t, err)
	assert.Equal(t, len(ds), stats.inserted)
	assert.Equal(t, 2, store.batches)
}

func TestImporter_CopyError(t *testing.T) {
	store := &memStore{copyErr: errors.New("foreign key violation")}
	imp := newImporter(store, 10)

	_, err := imp.importFiles(context.Background(), []parsedFile{{discounts: []discount.Discount{disc(9, 1, 2, 5)}}}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy batch")
}
