package main

import (
	"context"
	"log/slog"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
)

const (
	bloomFPR  = 0.001
	copyBatch = 10_000
)

// discountStore is the storage the importer needs.
type discountStore interface {
	ForEachKey(ctx context.Context, fn func(discount.Key) error) error
	Exists(ctx context.Context, k discount.Key) (bool, error)
	CopyIn(ctx context.Context, ds []discount.Discount) (int64, error)
}

type importStats struct {
	inserted       int
	duplicates     int
	falsePositives int
}

// importer screens incoming discounts against stored ones. Stored keys only
// live in a bloom filter; a filter hit is confirmed with an exact lookup.
type importer struct {
	store  discountStore
	stored *bloom.BloomFilter
	seen   map[discount.Key]struct{}
}

func newImporter(store discountStore, expected uint) *importer {
	if expected == 0 {
		expected = 1
	}
	return &importer{
		store:  store,
		stored: bloom.NewWithEstimates(expected, bloomFPR),
		seen:   make(map[discount.Key]struct{}),
	}
}

// loadExisting adds the key of every stored discount to the filter.
func (imp *importer) loadExisting(ctx context.Context) error {
	var n int
	err := imp.store.ForEachKey(ctx, func(k discount.Key) error {
		imp.stored.AddString(k.String())
		n++
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("duplicate filter built", slog.Int("stored", n))
	return nil
}

// isDuplicate reports whether d repeats a stored discount or one already
// accepted in this run.
func (imp *importer) isDuplicate(ctx context.Context, d discount.Discount, stats *importStats) (bool, error) {
	k := d.Key()
	if _, ok := imp.seen[k]; ok {
		return true, nil
	}
	if imp.stored.TestString(k.String()) {
		exists, err := imp.store.Exists(ctx, k)
		if err != nil {
			return false, err
		}
		if exists {
			return true, nil
		}
		stats.falsePositives++
	}
	imp.seen[k] = struct{}{}
	return false, nil
}

// importFiles writes every new discount in batches with COPY.
func (imp *importer) importFiles(ctx context.Context, files []parsedFile, dryRun bool) (importStats, error) {
	var (
		stats importStats
		batch = make([]discount.Discount, 0, copyBatch)
	)
	flush := func() error {
		if len(batch) == 0 || dryRun {
			stats.inserted += len(batch)
			batch = batch[:0]
			return nil
		}
		n, err := imp.store.CopyIn(ctx, batch)
		if err != nil {
			return errors.Wrap(err, "copy batch")
		}
		stats.inserted += int(n)
		slog.Info("batch written", slog.Int64("rows", n), slog.Int("total", stats.inserted))
		batch = batch[:0]
		return nil
	}

	for _, f := range files {
		for _, d := range f.discounts {
			dup, err := imp.isDuplicate(ctx, d, &stats)
			if err != nil {
				return stats, errors.Wrapf(err, "check duplicate in %s", f.path)
			}
			if dup {
				stats.duplicates++
				continue
			}
			batch = append(batch, d)
			if len(batch) == copyBatch {
				if err := flush(); err != nil {
					return stats, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}
