package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product captures a row of the productos table.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Producto    string          `db:"producto" json:"producto"`
	Precio      decimal.Decimal `db:"precio" json:"precio"`
	StockMinimo int32           `db:"stock_minimo" json:"stock_minimo"`
	StockMaximo int32           `db:"stock_maximo" json:"stock_maximo"`
	Existencias int32           `db:"existencias" json:"existencias"`
	SKU         string          `db:"sku" json:"sku"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time      `db:"deleted_at" json:"deleted_at"`
}

// Deleted reports whether the product has been logically deleted.
func (p *Product) Deleted() bool {
	return p != nil && p.DeletedAt != nil
}

// Fields holds the caller-supplied columns written by create and update.
// Values are passed to the store as-is.
type Fields struct {
	Producto    string          `json:"producto"`
	Precio      decimal.Decimal `json:"precio"`
	StockMinimo int32           `json:"stock_minimo"`
	StockMaximo int32           `json:"stock_maximo"`
	Existencias int32           `json:"existencias"`
	SKU         string          `json:"sku"`
}

// ExportRow is the reduced projection handed to export formatters.
type ExportRow struct {
	Producto    string          `db:"producto" json:"producto"`
	Precio      decimal.Decimal `db:"precio" json:"precio"`
	StockMinimo int32           `db:"stock_minimo" json:"stock_minimo"`
	StockMaximo int32           `db:"stock_maximo" json:"stock_maximo"`
	Existencias int32           `db:"existencias" json:"existencias"`
	SKU         string          `db:"sku" json:"sku"`
}
