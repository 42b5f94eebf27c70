package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/DianaBudova/AdvertisingAgency/internal/domain/apperr"
	"github.com/DianaBudova/AdvertisingAgency/internal/domain/catalog"
)

var (
	categoryColumns     = []string{"id", "name"}
	printProductColumns = []string{
		"id", "title", "description", "base_cost", "size", "paper_type", "print_type", "category_id",
	}
)

var _ catalog.AdminRepository = (*CatalogRepository)(nil)

// CreateService inserts s and sets its ID.
func (r *CatalogRepository) CreateService(ctx context.Context, s *catalog.Service) error {
	query, args, err := psql.Insert("services").
		Columns("name", "description", "price", "is_active", "category_id").
		Values(s.Name, s.Description, s.Price, s.IsActive, s.CategoryID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("building create service query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID); err != nil {
		return mapCategorizedError(err, "service", s.CategoryID)
	}
	return nil
}

// UpdateService overwrites the stored service with s.
func (r *CatalogRepository) UpdateService(ctx context.Context, s *catalog.Service) error {
	query, args, err := psql.Update("services").
		SetMap(map[string]any{
			"name":        s.Name,
			"description": s.Description,
			"price":       s.Price,
			"is_active":   s.IsActive,
			"category_id": s.CategoryID,
		}).
		Where(sq.Eq{"id": s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update service query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapCategorizedError(err, "service", s.CategoryID)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("service", s.ID)
	}
	return nil
}

// DeleteService removes a service. Its discounts go with it; order lines and
// quick orders keep it alive.
func (r *CatalogRepository) DeleteService(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return apperr.Validation("service is referenced by orders")
		}
		return fmt.Errorf("deleting service %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("service", id)
	}
	return nil
}

// ListCategories returns all categories ordered by ID.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	query, args, err := psql.Select(categoryColumns...).From("categories").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list categories query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// GetCategory returns a single category.
func (r *CatalogRepository) GetCategory(ctx context.Context, id int64) (*catalog.Category, error) {
	return r.findCategory(ctx, sq.Eq{"id": id}, id)
}

// FindCategoryByName returns the category with exactly the given name.
func (r *CatalogRepository) FindCategoryByName(ctx context.Context, name string) (*catalog.Category, error) {
	return r.findCategory(ctx, sq.Eq{"name": name}, name)
}

func (r *CatalogRepository) findCategory(ctx context.Context, where sq.Eq, key any) (*catalog.Category, error) {
	query, args, err := psql.Select(categoryColumns...).From("categories").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building get category query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("getting category %v: %w", key, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("category", key)
		}
		return nil, fmt.Errorf("getting category %v: %w", key, err)
	}
	return &c, nil
}

// CreateCategory inserts c and sets its ID.
func (r *CatalogRepository) CreateCategory(ctx context.Context, c *catalog.Category) error {
	query, args, err := psql.Insert("categories").
		Columns("name").
		Values(c.Name).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("building create category query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&c.ID); err != nil {
		return mapCategoryError(err)
	}
	return nil
}

// UpdateCategory renames the stored category.
func (r *CatalogRepository) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	query, args, err := psql.Update("categories").
		Set("name", c.Name).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update category query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapCategoryError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("category", c.ID)
	}
	return nil
}

// DeleteCategory removes a category no service or print product uses.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if _, ok := isForeignKeyViolation(err); ok {
			return apperr.Validation("category is still in use")
		}
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("category", id)
	}
	return nil
}

// ListPrintProducts returns all print products ordered by ID.
func (r *CatalogRepository) ListPrintProducts(ctx context.Context) ([]catalog.PrintProduct, error) {
	query, args, err := psql.Select(printProductColumns...).From("print_products").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building list print products query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing print products: %w", err)
	}
	return pgx.CollectRows(rows, scanPrintProduct)
}

// GetPrintProduct returns a single print product.
func (r *CatalogRepository) GetPrintProduct(ctx context.Context, id int64) (*catalog.PrintProduct, error) {
	query, args, err := psql.Select(printProductColumns...).From("print_products").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building get print product query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("getting print product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPrintProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("print product", id)
		}
		return nil, fmt.Errorf("getting print product %d: %w", id, err)
	}
	return &p, nil
}

// CreatePrintProduct inserts p and sets its ID.
func (r *CatalogRepository) CreatePrintProduct(ctx context.Context, p *catalog.PrintProduct) error {
	query, args, err := psql.Insert("print_products").
		Columns(printProductColumns[1:]...).
		Values(p.Title, p.Description, p.BaseCost, p.Size, p.PaperType, p.PrintType, p.CategoryID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("building create print product query: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&p.ID); err != nil {
		return mapCategorizedError(err, "print product", p.CategoryID)
	}
	return nil
}

// UpdatePrintProduct overwrites the stored print product with p.
func (r *CatalogRepository) UpdatePrintProduct(ctx context.Context, p *catalog.PrintProduct) error {
	query, args, err := psql.Update("print_products").
		SetMap(map[string]any{
			"title":       p.Title,
			"description": p.Description,
			"base_cost":   p.BaseCost,
			"size":        p.Size,
			"paper_type":  p.PaperType,
			"print_type":  p.PrintType,
			"category_id": p.CategoryID,
		}).
		Where(sq.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update print product query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return mapCategorizedError(err, "print product", p.CategoryID)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("print product", p.ID)
	}
	return nil
}

// DeletePrintProduct removes a print product.
func (r *CatalogRepository) DeletePrintProduct(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM print_products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting print product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("print product", id)
	}
	return nil
}

// mapCategorizedError classifies a failed write of a row that references a
// category.
func mapCategorizedError(err error, entity string, categoryID int64) error {
	if _, ok := isForeignKeyViolation(err); ok {
		return apperr.NotFound("category", categoryID)
	}
	if isCheckViolation(err) || isNumericOutOfRange(err) {
		return apperr.Validationf("%s price is out of range", entity)
	}
	return fmt.Errorf("saving %s: %w", entity, err)
}

func mapCategoryError(err error) error {
	if isUniqueViolation(err) {
		return apperr.Validation("category already in use")
	}
	return fmt.Errorf("saving category: %w", err)
}

func scanCategory(row pgx.CollectableRow) (catalog.Category, error) {
	var c catalog.Category
	err := row.Scan(&c.ID, &c.Name)
	return c, err
}

func scanPrintProduct(row pgx.CollectableRow) (catalog.PrintProduct, error) {
	var p catalog.PrintProduct
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.BaseCost, &p.Size, &p.PaperType, &p.PrintType, &p.CategoryID)
	return p, err
}
