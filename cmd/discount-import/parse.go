package main

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
)

const dateLayout = "2006-01-02"

// rejectedRow is a CSV line that failed parsing or validation.
type rejectedRow struct {
	line int
	err  error
}

// parsedFile holds the valid discounts and rejected rows of one input file.
type parsedFile struct {
	path      string
	discounts []discount.Discount
	rejected  []rejectedRow
}

// parseFiles parses every file concurrently, keeping input order.
func parseFiles(ctx context.Context, paths []string) ([]parsedFile, error) {
	out := make([]parsedFile, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			p, err := parseFile(ctx, path)
			if err != nil {
				return errors.Wrapf(err, "parse %s", path)
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseFile(ctx context.Context, path string) (parsedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return parsedFile{}, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return parsedFile{}, errors.Wrap(err, "create gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	p, err := parseCSV(ctx, r)
	p.path = path
	return p, err
}

// parseCSV reads percentage,start_date,end_date,service_id records. A
// leading header row is skipped.
func parseCSV(ctx context.Context, r io.Reader) (parsedFile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var p parsedFile
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return p, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		if err != nil {
			return p, errors.Wrapf(err, "read line %d", line)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "percentage") {
			continue
		}

		d, err := parseRecord(rec)
		if err != nil {
			p.rejected = append(p.rejected, rejectedRow{line: line, err: err})
			continue
		}
		p.discounts = append(p.discounts, d)
	}
}

func parseRecord(rec []string) (discount.Discount, error) {
	if len(rec) != 4 {
		return discount.Discount{}, errors.Errorf("expected 4 fields, got %d", len(rec))
	}

	pct, err := strconv.Atoi(strings.TrimSpace(rec[0]))
	if err != nil {
		return discount.Discount{}, errors.Errorf("invalid percentage %q", rec[0])
	}
	start, err := parseDate(rec[1])
	if err != nil {
		return discount.Discount{}, err
	}
	end, err := parseDate(rec[2])
	if err != nil {
		return discount.Discount{}, err
	}
	serviceID, err := strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 64)
	if err != nil {
		return discount.Discount{}, errors.Errorf("invalid service id %q", rec[3])
	}

	in := discount.Input{Percentage: pct, StartDate: start, EndDate: end, ServiceID: serviceID}
	if err := in.Validate(); err != nil {
		return discount.Discount{}, err
	}
	return discount.Discount{
		Percentage: in.Percentage,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		ServiceID:  in.ServiceID,
	}, nil
}

// parseDate accepts RFC 3339 timestamps and plain dates (midnight UTC).
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid date %q", s)
	}
	return t, nil
}
