package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/product"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

type listerFunc func(ctx context.Context) ([]product.Product, error)

func (f listerFunc) ListAll(ctx context.Context) ([]product.Product, error) { return f(ctx) }

func TestProducts(t *testing.T) {
	desc := "Heavy canvas"
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	items := []product.Product{
		{
			ID: "p1", Name: "Tote", Slug: "tote", Description: &desc,
			Price:         decimal.RequireFromString("12.5"),
			OriginalPrice: decimal.NewNullDecimal(decimal.RequireFromString("15")),
			Stock:         5, IsActive: true,
			Categories: []string{"bags", "canvas"},
			Images:     []string{"a.png"},
			CreatedAt:  created, UpdatedAt: created,
		},
		{ID: "p2", Name: "Mug", Slug: "mug", Price: decimal.NewFromInt(8)},
	}

	var buf bytes.Buffer
	err := Products(context.Background(), listerFunc(func(context.Context) ([]product.Product, error) {
		return items, nil
	}), &buf)
	require.NoError(t, err)

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	rows := file.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0].Cells[0].String())
	assert.Equal(t, "Tote", rows[1].Cells[1].String())
	assert.Equal(t, "Heavy canvas", rows[1].Cells[3].String())
	assert.Equal(t, "12.50", rows[1].Cells[4].String())
	assert.Equal(t, "15.00", rows[1].Cells[5].String())
	assert.Equal(t, "bags,canvas", rows[1].Cells[8].String())
	assert.Equal(t, "2026-03-01 10:00:00", rows[1].Cells[10].String())
	assert.Equal(t, "", rows[2].Cells[5].String())
}

func TestProducts_SourceError(t *testing.T) {
	var buf bytes.Buffer
	err := Products(context.Background(), listerFunc(func(context.Context) ([]product.Product, error) {
		return nil, apperr.Remote(errors.New("down"))
	}), &buf)

	assert.ErrorIs(t, err, apperr.ErrRemoteUnavailable)
	assert.Zero(t, buf.Len())
}
