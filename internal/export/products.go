package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"storefront-be/internal/product"

	"github.com/tealeg/xlsx"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var productHeaders = []string{
	"ID", "Name", "Slug", "Description", "Price", "OriginalPrice",
	"Stock", "Active", "Categories", "Images", "CreatedAt", "UpdatedAt",
}

// ProductLister returns every product, active or not, for the caller.
type ProductLister interface {
	ListAll(ctx context.Context) ([]product.Product, error)
}

// Products fetches the catalog through src and writes it as one xlsx sheet.
func Products(ctx context.Context, src ProductLister, w io.Writer) error {
	products, err := src.ListAll(ctx)
	if err != nil {
		return err
	}
	return WriteProducts(w, products)
}

func WriteProducts(w io.Writer, products []product.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range productHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Slug)
		row.AddCell().SetString(derefString(p.Description))
		row.AddCell().SetString(p.Price.StringFixed(2))
		if p.OriginalPrice.Valid {
			row.AddCell().SetString(p.OriginalPrice.Decimal.StringFixed(2))
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetBool(p.IsActive)
		row.AddCell().SetString(strings.Join(p.Categories, ","))
		row.AddCell().SetString(strings.Join(p.Images, ","))
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
