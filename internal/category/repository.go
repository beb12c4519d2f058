package category

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

var categoryColumns = []string{"id", "name", "slug", "description", "image", "created_at"}

const returning = ` RETURNING id, name, slug, description, image, created_at`

type Repository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, input NewCategoryInput) (*Category, error)
	Update(ctx context.Context, input UpdateCategoryInput) (*Category, error)
	Delete(ctx context.Context, id string) (*Category, error)
}

type repository struct {
	gw *gateway.Client
}

func NewRepository(gw *gateway.Client) Repository {
	return &repository{gw: gw}
}

func scanDest(c *Category) []any {
	return []any{&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image, &c.CreatedAt}
}

func (r *repository) List(ctx context.Context) ([]Category, error) {
	q := gateway.From(gateway.Categories).Select(categoryColumns...).OrderBy("name", false)

	categories := []Category{}
	err := r.gw.Select(ctx, q, func(rows *sql.Rows) error {
		var c Category
		if err := rows.Scan(scanDest(&c)...); err != nil {
			return err
		}
		categories = append(categories, c)
		return nil
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list categories",
			zap.String("layer", "repository"),
			zap.String("method", "List"),
			zap.Error(err),
		)
		return nil, err
	}
	return categories, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Category, error) {
	query, args, err := gateway.From(gateway.Categories).Select(categoryColumns...).Eq("id", id).ToSQL()
	if err != nil {
		return nil, err
	}

	var c Category
	if err := r.gw.QueryRow(ctx, query, args, scanDest(&c)...); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, input NewCategoryInput) (*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	var c Category
	err := r.gw.QueryRow(ctx,
		`INSERT INTO categories (name, slug, description, image) VALUES ($1, $2, $3, $4)`+returning,
		[]any{input.Name, input.Slug, input.Description, input.Image},
		scanDest(&c)...,
	)
	if err != nil {
		log.Error("failed to create category", zap.String("name", input.Name), zap.Error(err))
		return nil, err
	}

	log.Info("category created", zap.String("category_id", c.ID))
	return &c, nil
}

func (r *repository) Update(ctx context.Context, input UpdateCategoryInput) (*Category, error) {
	query := `
		UPDATE categories
		SET name = COALESCE($2, name),
			slug = COALESCE($3, slug),
			description = COALESCE($4, description),
			image = COALESCE($5, image)
		WHERE id = $1` + returning

	var c Category
	err := r.gw.QueryRow(ctx, query,
		[]any{input.ID, input.Name, input.Slug, input.Description, input.Image},
		scanDest(&c)...,
	)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		logger.FromCtx(ctx).Error("failed to update category",
			zap.String("layer", "repository"),
			zap.String("category_id", input.ID),
			zap.Error(err),
		)
		return nil, err
	}
	return &c, nil
}

func (r *repository) Delete(ctx context.Context, id string) (*Category, error) {
	var c Category
	err := r.gw.QueryRow(ctx, `DELETE FROM categories WHERE id = $1`+returning, []any{id}, scanDest(&c)...)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}
