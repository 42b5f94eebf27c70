package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/discount"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
)

type fixture struct {
	Roles []string `json:"roles"`
	Users []struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"users"`
	Categories []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"categories"`
	Services []struct {
		ID          int64           `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		IsActive    bool            `json:"isActive"`
		CategoryID  int64           `json:"categoryId"`
	} `json:"services"`
	Discounts []struct {
		ID         int64     `json:"id"`
		Percentage int       `json:"percentage"`
		StartDate  time.Time `json:"startDate"`
		EndDate    time.Time `json:"endDate"`
		ServiceID  int64     `json:"serviceId"`
	} `json:"discounts"`
}

// seeder is the write surface of postgres.Seeder.
type seeder interface {
	UpsertRole(ctx context.Context, name string) error
	UpsertUser(ctx context.Context, u identity.User, roleName string) error
	UpsertCategory(ctx context.Context, c catalog.Category) error
	UpsertService(ctx context.Context, s catalog.Service) error
	UpsertDiscount(ctx context.Context, d discount.Discount) error
	SyncSequences(ctx context.Context) error
}

func readFixture(path string) (*fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "create gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}
	return decodeFixture(r)
}

func decodeFixture(r io.Reader) (*fixture, error) {
	var fx fixture
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fx); err != nil {
		return nil, errors.Wrap(err, "decode fixture")
	}

	for _, d := range fx.Discounts {
		in := discount.Input{Percentage: d.Percentage, StartDate: d.StartDate, EndDate: d.EndDate, ServiceID: d.ServiceID}
		if err := in.Validate(); err != nil {
			return nil, errors.Wrapf(err, "discount %d", d.ID)
		}
	}
	return &fx, nil
}

// apply upserts the fixture in dependency order.
func apply(ctx context.Context, s seeder, fx *fixture) error {
	for _, name := range fx.Roles {
		if err := s.UpsertRole(ctx, name); err != nil {
			return err
		}
	}
	slog.Info("upserted roles", slog.Int("count", len(fx.Roles)))

	for _, u := range fx.Users {
		if err := s.UpsertUser(ctx, identity.User{ID: u.ID, Email: u.Email}, u.Role); err != nil {
			return err
		}
	}
	slog.Info("upserted users", slog.Int("count", len(fx.Users)))

	for _, c := range fx.Categories {
		if err := s.UpsertCategory(ctx, catalog.Category{ID: c.ID, Name: c.Name}); err != nil {
			return err
		}
	}
	for _, svc := range fx.Services {
		if err := s.UpsertService(ctx, catalog.Service{
			ID:          svc.ID,
			Name:        svc.Name,
			Description: svc.Description,
			Price:       svc.Price,
			IsActive:    svc.IsActive,
			CategoryID:  svc.CategoryID,
		}); err != nil {
			return err
		}
		slog.Info("upserted service", slog.Int64("id", svc.ID), slog.String("name", svc.Name))
	}

	for _, d := range fx.Discounts {
		if err := s.UpsertDiscount(ctx, discount.Discount{
			ID:         d.ID,
			Percentage: d.Percentage,
			StartDate:  d.StartDate,
			EndDate:    d.EndDate,
			ServiceID:  d.ServiceID,
		}); err != nil {
			return err
		}
	}
	slog.Info("upserted discounts", slog.Int("count", len(fx.Discounts)))

	return errors.Wrap(s.SyncSequences(ctx), "sync sequences")
}
