package catalog

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/identity"
)

// AdminRepository is the storage used by Admin. Update and Delete methods
// return an *apperr.NotFoundError for unknown ids; writes that reference a
// missing category return one for the category.
type AdminRepository interface {
	CreateService(ctx context.Context, s *Service) error
	UpdateService(ctx context.Context, s *Service) error
	DeleteService(ctx context.Context, id int64) error

	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	// FindCategoryByName returns an *apperr.NotFoundError when no category
	// has exactly that name.
	FindCategoryByName(ctx context.Context, name string) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListPrintProducts(ctx context.Context) ([]PrintProduct, error)
	GetPrintProduct(ctx context.Context, id int64) (*PrintProduct, error)
	CreatePrintProduct(ctx context.Context, p *PrintProduct) error
	UpdatePrintProduct(ctx context.Context, p *PrintProduct) error
	DeletePrintProduct(ctx context.Context, id int64) error
}

// Invalidator drops cached service reads after the catalog changes.
type Invalidator interface {
	Invalidate(ctx context.Context, serviceIDs ...int64) error
}

// ServiceInput carries the editable fields of a service.
type ServiceInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	IsActive    bool
	CategoryID  int64
}

func (in ServiceInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("service name is required")
	}
	if in.Price.IsNegative() {
		return apperr.Validation("price must not be negative")
	}
	if in.CategoryID <= 0 {
		return apperr.Validation("category id is required")
	}
	return nil
}

func (in ServiceInput) service(id int64) *Service {
	return &Service{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price.Round(2),
		IsActive:    in.IsActive,
		CategoryID:  in.CategoryID,
	}
}

// PrintProductInput carries the editable fields of a print product.
type PrintProductInput struct {
	Title       string
	Description string
	BaseCost    decimal.Decimal
	Size        string
	PaperType   string
	PrintType   string
	CategoryID  int64
}

func (in PrintProductInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperr.Validation("title is required")
	}
	if in.BaseCost.IsNegative() {
		return apperr.Validation("base cost must not be negative")
	}
	if in.CategoryID <= 0 {
		return apperr.Validation("category id is required")
	}
	return nil
}

func (in PrintProductInput) product(id int64) *PrintProduct {
	return &PrintProduct{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		BaseCost:    in.BaseCost.Round(2),
		Size:        in.Size,
		PaperType:   in.PaperType,
		PrintType:   in.PrintType,
		CategoryID:  in.CategoryID,
	}
}

// Admin manages the catalog. Reads are open; changes require an actor with
// catalog management rights. Service changes invalidate cached reads.
type Admin struct {
	repo  AdminRepository
	users identity.Repository
	cache Invalidator
}

// NewAdmin creates an Admin. cache may be nil when service reads are not
// cached.
func NewAdmin(repo AdminRepository, users identity.Repository, cache Invalidator) *Admin {
	return &Admin{repo: repo, users: users, cache: cache}
}

// CreateService validates and stores a new service.
func (a *Admin) CreateService(ctx context.Context, actorID int64, in ServiceInput) (*Service, error) {
	if err := a.ensureManager(ctx, actorID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	s := in.service(0)
	if err := a.repo.CreateService(ctx, s); err != nil {
		return nil, errors.Wrap(err, "create service")
	}
	a.invalidate(ctx, s.ID)

	zctx.From(ctx).Info("Service created",
		zap.Int64("service_id", s.ID),
		zap.Int64("category_id", s.CategoryID),
	)
	return s, nil
}

// UpdateService replaces the editable fields of an existing service.
func (a *Admin) UpdateService(ctx context.Context, actorID, id int64, in ServiceInput) (*Service, error) {
	if err := a.ensureManager(ctx, actorID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	s := in.service(id)
	if err := a.repo.UpdateService(ctx, s); err != nil {
		return nil, errors.Wrapf(err, "update service %d", id)
	}
	a.invalidate(ctx, id)
	return s, nil
}

// DeleteService removes a service together with its discounts. Services
// referenced by orders cannot be deleted.
func (a *Admin) DeleteService(ctx context.Context, actorID, id int64) error {
	if err := a.ensureManager(ctx, actorID); err != nil {
		return err
	}
	if err := a.repo.DeleteService(ctx, id); err != nil {
		return errors.Wrapf(err, "delete service %d", id)
	}
	a.invalidate(ctx, id)

	zctx.From(ctx).Info("Service deleted", zap.Int64("service_id", id))
	return nil
}

// ListCategories returns all categories.
func (a *Admin) ListCategories(ctx context.Context) ([]Category, error) {
	cs, err := a.repo.ListCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return cs, nil
}

// CreateCategory stores a category under a name no other category uses.
func (a *Admin) CreateCategory(ctx context.Context, actorID int64, name string) (*Category, error) {
	if err := a.ensureManager(ctx, actorID); err != nil {
		return nil, err
	}
	name, err := categoryName(name)
	if err != nil {
		return nil, err
	}
	taken, err := a.categoryNameOwner(ctx, name)
	if err != nil {
		return nil, err
	}
	if taken != 0 {
		return nil, apperr.Validation("category already in use")
	}

	c := &Category{Name: name}
	if err := a.repo.CreateCategory(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create category")
	}
	return c, nil
}

// UpdateCategory renames a category.
func (a *Admin) UpdateCategory(ctx context.Context, actorID, id int64, name string) (*Category, error) {
	if err := a.ensureManager(ctx, actorID); err != nil {
		return nil, err
	}
	name, err := categoryName(name)
	if err != nil {
		return nil, err
	}
	if _, err := a.repo.GetCategory(ctx, id); err != nil {
		return nil, errors.Wrapf(err, "get category %d", id)
	}
	taken, err := a.categoryNameOwner(ctx, name)
	if err != nil {
		return nil, err
	}
	if taken != 0 && taken != id {
		return nil, apperr.Validation("another category with the same name already exists")
	}

	c := &Category{ID: id, Name: name}
	if err := a.repo.UpdateCategory(ctx, c); err != nil {
		return nil, errors.Wrapf(err, "update category %d", id)
	}
	return c, nil
}

// DeleteCategory removes a category that no service or print product uses.
func (a *Admin) DeleteCategory(ctx context.Context, actorID, id int64) error {
	if err := a.ensureManager(ctx, actorID); err != nil {
		return err
	}
	if err := a.repo.DeleteCategory(ctx, id); err != nil {
		return errors.Wrapf(err, "delete category %d", id)
	}
	return nil
}

// ListPrintProducts returns all print products.
func (a *Admin) ListPrintProducts(ctx context.Context) ([]PrintProduct, error) {
	ps, err := a.repo.ListPrintProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list print products")
	}
	return ps, nil
}

// GetPrintProduct returns a single print product.
func (a *Admin) GetPrintProduct(ctx context.Context, id int64) (*PrintProduct, error) {
	p, err := a.repo.GetPrintProduct(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get print product %d", id)
	}
	return p, nil
}

// CreatePrintProduct validates and stores a new print product.
func (a *Admin) CreatePrintProduct(ctx context.Context, actorID int64, in PrintProductInput) (*PrintProduct, error) {
	if err := a.ensureManager(ctx, actorID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := in.product(0)
	if err := a.repo.CreatePrintProduct(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create print product")
	}
	return p, nil
}

// UpdatePrintProduct replaces the editable fields of a print product.
func (a *Admin) UpdatePrintProduct(ctx context.Context, actorID, id int64, in PrintProductInput) (*PrintProduct, error) {
	if err := a.ensureManager(ctx, actorID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := in.product(id)
	if err := a.repo.UpdatePrintProduct(ctx, p); err != nil {
		return nil, errors.Wrapf(err, "update print product %d", id)
	}
	return p, nil
}

// DeletePrintProduct removes a print product.
func (a *Admin) DeletePrintProduct(ctx context.Context, actorID, id int64) error {
	if err := a.ensureManager(ctx, actorID); err != nil {
		return err
	}
	if err := a.repo.DeletePrintProduct(ctx, id); err != nil {
		return errors.Wrapf(err, "delete print product %d", id)
	}
	return nil
}

func categoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("category name is required")
	}
	return name, nil
}

// categoryNameOwner returns the id of the category named name, or 0.
func (a *Admin) categoryNameOwner(ctx context.Context, name string) (int64, error) {
	c, err := a.repo.FindCategoryByName(ctx, name)
	if apperr.IsNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "find category by name")
	}
	return c.ID, nil
}

// invalidate drops cached reads of the services. Failures are logged and the
// stale entries expire with their TTL.
func (a *Admin) invalidate(ctx context.Context, ids ...int64) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Invalidate(ctx, ids...); err != nil {
		zctx.From(ctx).Warn("Catalog cache invalidation failed",
			zap.Int64s("service_ids", ids),
			zap.Error(err),
		)
	}
}

func (a *Admin) ensureManager(ctx context.Context, actorID int64) error {
	u, err := a.users.GetUser(ctx, actorID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.Forbidden("user not found")
		}
		return errors.Wrap(err, "get actor")
	}
	if !u.Role.CanManageCatalog() {
		return apperr.Forbidden("only managers and administrators can manage the catalog")
	}
	return nil
}
