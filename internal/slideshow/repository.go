package slideshow

import (
	"context"
	"database/sql"
	"errors"

	"storefront-be/internal/apperr"
	"storefront-be/internal/gateway"
	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

var slideColumns = []string{"id", "title", "subtitle", "image_url", "link_url", "position", "is_active"}

const returning = ` RETURNING id, title, subtitle, image_url, link_url, position, is_active`

type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Slide, error)
	Create(ctx context.Context, input NewSlideInput) (*Slide, error)
	Update(ctx context.Context, input UpdateSlideInput) (*Slide, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	gw *gateway.Client
}

func NewRepository(gw *gateway.Client) Repository {
	return &repository{gw: gw}
}

func scanDest(s *Slide) []any {
	return []any{&s.ID, &s.Title, &s.Subtitle, &s.ImageURL, &s.LinkURL, &s.Position, &s.IsActive}
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Slide, error) {
	q := gateway.From(gateway.Slideshow).Select(slideColumns...)
	if activeOnly {
		q = q.Eq("is_active", true)
	}

	slides := []Slide{}
	err := r.gw.Select(ctx, q.OrderBy("position", false), func(rows *sql.Rows) error {
		var s Slide
		if err := rows.Scan(scanDest(&s)...); err != nil {
			return err
		}
		slides = append(slides, s)
		return nil
	})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list slides",
			zap.String("layer", "repository"),
			zap.Bool("active_only", activeOnly),
			zap.Error(err),
		)
		return nil, err
	}
	return slides, nil
}

func (r *repository) Create(ctx context.Context, input NewSlideInput) (*Slide, error) {
	var s Slide
	err := r.gw.QueryRow(ctx,
		`INSERT INTO slideshow (title, subtitle, image_url, link_url, position, is_active)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, TRUE))`+returning,
		[]any{input.Title, input.Subtitle, input.ImageURL, input.LinkURL, input.Position, input.IsActive},
		scanDest(&s)...,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) Update(ctx context.Context, input UpdateSlideInput) (*Slide, error) {
	query := `
		UPDATE slideshow
		SET title = COALESCE($2, title),
			subtitle = COALESCE($3, subtitle),
			image_url = COALESCE($4, image_url),
			link_url = COALESCE($5, link_url),
			position = COALESCE($6, position),
			is_active = COALESCE($7, is_active)
		WHERE id = $1` + returning

	var s Slide
	err := r.gw.QueryRow(ctx, query,
		[]any{input.ID, input.Title, input.Subtitle, input.ImageURL, input.LinkURL, input.Position, input.IsActive},
		scanDest(&s)...,
	)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrSlideNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	n, err := r.gw.Exec(ctx, `DELETE FROM slideshow WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlideNotFound
	}
	return nil
}
