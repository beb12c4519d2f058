package product

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"
	"storefront-be/internal/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const productColumns = `id, name, slug, description, price, original_price, images, stock, categories, is_active, created_at, updated_at`

// StockLevel is the live availability of a product, read at checkout.
type StockLevel struct {
	ID       string
	Name     string
	Stock    int
	Price    decimal.Decimal
	IsActive bool
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, opts ListOptions) ([]Product, int64, error)
	ListAll(ctx context.Context) ([]Product, error)
	GetStocks(ctx context.Context, ids []string) (map[string]StockLevel, error)
	Create(ctx context.Context, input NewProductInput) (*Product, error)
	Update(ctx context.Context, input UpdateProductInput) (*Product, error)
	Delete(ctx context.Context, id string) (*Product, error)
}

type repository struct {
	gw *gateway.Client
}

func NewRepository(gw *gateway.Client) Repository {
	return &repository{gw: gw}
}

func scanDest(p *Product) []any {
	return []any{
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.OriginalPrice,
		pq.Array(&p.Images), &p.Stock, pq.Array(&p.Categories), &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	}
}

func (r *repository) getOne(ctx context.Context, method, where string, arg any) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", method),
	)

	var p Product
	err := r.gw.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE `+where, []any{arg}, scanDest(&p)...)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		log.Error("failed to fetch product", zap.Any("key", arg), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	return r.getOne(ctx, "GetByID", "id = $1", id)
}

// GetBySlug only returns active products.
func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.getOne(ctx, "GetBySlug", "slug = $1 AND is_active", slug)
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]Product, int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	query := `
		SELECT ` + productColumns + `, COUNT(*) OVER() AS total
		FROM products
		WHERE ($1::boolean OR is_active)
		  AND ($2::text = '' OR $2::text = ANY(categories))
		  AND ($3::text = '' OR name ILIKE '%' || $3::text || '%')
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`
	args := []any{
		opts.IncludeInactive,
		opts.Category,
		opts.Search,
		opts.Limit,
		(opts.Page - 1) * opts.Limit,
	}

	var (
		items []Product
		total int64
	)
	err := r.gw.QueryRows(ctx, query, args, func(rows *sql.Rows) error {
		var p Product
		if err := rows.Scan(append(scanDest(&p), &total)...); err != nil {
			return err
		}
		items = append(items, p)
		return nil
	})
	if err != nil {
		log.Error("failed to list products", zap.Error(err))
		return nil, 0, err
	}

	return items, total, nil
}

// ListAll returns every product, active or not, for export.
func (r *repository) ListAll(ctx context.Context) ([]Product, error) {
	var items []Product
	err := r.gw.QueryRows(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`, nil, func(rows *sql.Rows) error {
		var p Product
		if err := rows.Scan(scanDest(&p)...); err != nil {
			return err
		}
		items = append(items, p)
		return nil
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list all products",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, err
	}
	return items, nil
}

func (r *repository) GetStocks(ctx context.Context, ids []string) (map[string]StockLevel, error) {
	out := make(map[string]StockLevel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT id, name, stock, price, is_active FROM products WHERE id = ANY($1)`
	err := r.gw.QueryRows(ctx, query, []any{pq.Array(ids)}, func(rows *sql.Rows) error {
		var s StockLevel
		if err := rows.Scan(&s.ID, &s.Name, &s.Stock, &s.Price, &s.IsActive); err != nil {
			return err
		}
		out[s.ID] = s
		return nil
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to read stock levels",
			zap.String("layer", "repository"),
			zap.Int("count", len(ids)),
			zap.Error(err),
		)
		return nil, err
	}
	return out, nil
}

func (r *repository) Create(ctx context.Context, input NewProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	query := `
		INSERT INTO products (name, slug, description, price, original_price, images, stock, categories, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, TRUE))
		RETURNING ` + productColumns

	var p Product
	err := r.gw.QueryRow(ctx, query, []any{
		input.Name,
		input.Slug,
		input.Description,
		input.Price,
		nullDecimal(input.OriginalPrice),
		pq.Array(input.Images),
		input.Stock,
		pq.Array(input.Categories),
		input.IsActive,
	}, scanDest(&p)...)
	if err != nil {
		if gateway.IsUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.String("product_id", p.ID))
	return &p, nil
}

func (r *repository) Update(ctx context.Context, input UpdateProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.String("product_id", input.ID),
	)

	query := `
		UPDATE products
		SET name = COALESCE($2, name),
			slug = COALESCE($3, slug),
			description = COALESCE($4, description),
			price = COALESCE($5, price),
			original_price = COALESCE($6, original_price),
			images = COALESCE($7, images),
			stock = COALESCE($8, stock),
			categories = COALESCE($9, categories),
			is_active = COALESCE($10, is_active),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	var images, categories any
	if input.Images != nil {
		images = pq.Array(input.Images)
	}
	if input.Categories != nil {
		categories = pq.Array(input.Categories)
	}

	var p Product
	err := r.gw.QueryRow(ctx, query, []any{
		input.ID,
		input.Name,
		input.Slug,
		input.Description,
		nullDecimal(input.Price),
		nullDecimal(input.OriginalPrice),
		images,
		input.Stock,
		categories,
		input.IsActive,
	}, scanDest(&p)...)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return nil, ErrProductNotFound
		case gateway.IsUniqueViolation(err):
			return nil, ErrSlugTaken
		}
		log.Error("failed to update product", zap.Error(err))
		return nil, err
	}

	log.Info("product updated")
	return &p, nil
}

// Delete removes the product and returns the deleted row.
func (r *repository) Delete(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := r.gw.QueryRow(ctx, `DELETE FROM products WHERE id = $1 RETURNING `+productColumns, []any{id}, scanDest(&p)...)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		logger.FromCtx(ctx).Error("failed to delete product",
			zap.String("layer", "repository"),
			zap.String("product_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	return &p, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
