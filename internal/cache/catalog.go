package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
)

const (
	servicesKey      = "catalog:services"
	serviceKeyPrefix = "catalog:service:"
)

var (
	_ catalog.Repository  = (*Catalog)(nil)
	_ catalog.Invalidator = (*Catalog)(nil)
)

// Catalog is a cache-aside catalog.Repository. Concurrent misses on the same
// key share one load from the underlying repository. Cache failures degrade
// to direct reads.
type Catalog struct {
	next  catalog.Repository
	store Store
	ttl   time.Duration
	group singleflight.Group
}

// NewCatalog wraps next with a cache kept in store for ttl.
func NewCatalog(next catalog.Repository, store Store, ttl time.Duration) *Catalog {
	return &Catalog{next: next, store: store, ttl: ttl}
}

func (c *Catalog) List(ctx context.Context) ([]catalog.Service, error) {
	return c.load(ctx, servicesKey, c.next.List)
}

func (c *Catalog) GetByID(ctx context.Context, id int64) (*catalog.Service, error) {
	services, err := c.load(ctx, serviceKey(id), func(ctx context.Context) ([]catalog.Service, error) {
		s, err := c.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return []catalog.Service{*s}, nil
	})
	if err != nil {
		return nil, err
	}
	if len(services) == 0 {
		return nil, apperr.NotFound("service", id)
	}
	return &services[0], nil
}

// GetByIDs resolves each id through the per-service cache entry. Unknown ids
// are skipped.
func (c *Catalog) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Service, error) {
	out := make([]catalog.Service, 0, len(ids))
	for _, id := range ids {
		s, err := c.GetByID(ctx, id)
		if apperr.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func (c *Catalog) load(
	ctx context.Context,
	key string,
	fetch func(ctx context.Context) ([]catalog.Service, error),
) ([]catalog.Service, error) {
	lg := zctx.From(ctx)

	raw, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		lg.Warn("Catalog cache read failed", zap.String("key", key), zap.Error(err))
	case ok:
		services, err := decodeServices(raw)
		if err == nil {
			return services, nil
		}
		lg.Warn("Catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
	}

	// The shared load outlives any single caller, so it must not inherit
	// the first caller's cancellation.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		services, err := fetch(fillCtx)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(fillCtx, key, encodeServices(services), c.ttl); err != nil {
			lg.Warn("Catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
		return services, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]catalog.Service), nil
}

// Invalidate drops the cached service list and the entries of the given
// services. Subsequent reads go to the underlying repository.
func (c *Catalog) Invalidate(ctx context.Context, ids ...int64) error {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, servicesKey)
	for _, id := range ids {
		keys = append(keys, serviceKey(id))
	}
	for _, key := range keys {
		c.group.Forget(key)
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		return errors.Wrap(err, "invalidate catalog")
	}
	return nil
}

func serviceKey(id int64) string {
	return serviceKeyPrefix + strconv.FormatInt(id, 10)
}

func encodeServices(services []catalog.Service) []byte {
	e := &jx.Encoder{}
	e.ArrStart()
	for _, s := range services {
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Int64(s.ID) })
			e.Field("name", func(e *jx.Encoder) { e.Str(s.Name) })
			e.Field("description", func(e *jx.Encoder) { e.Str(s.Description) })
			e.Field("price", func(e *jx.Encoder) { e.Str(s.Price.String()) })
			e.Field("is_active", func(e *jx.Encoder) { e.Bool(s.IsActive) })
			e.Field("category_id", func(e *jx.Encoder) { e.Int64(s.CategoryID) })
		})
	}
	e.ArrEnd()
	return e.Bytes()
}

func decodeServices(raw []byte) ([]catalog.Service, error) {
	var services []catalog.Service
	err := jx.DecodeBytes(raw).Arr(func(d *jx.Decoder) error {
		var s catalog.Service
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "id":
				s.ID, err = d.Int64()
			case "name":
				s.Name, err = d.Str()
			case "description":
				s.Description, err = d.Str()
			case "price":
				var v string
				if v, err = d.Str(); err == nil {
					s.Price, err = decimal.NewFromString(v)
				}
			case "is_active":
				s.IsActive, err = d.Bool()
			case "category_id":
				s.CategoryID, err = d.Int64()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		services = append(services, s)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode services")
	}
	return services, nil
}
