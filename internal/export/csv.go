package export

import (
	"encoding/csv"
	"io"
	"strconv"

	domain "productos/backend/internal/domain/product"
)

// ProductHeader lists the CSV columns in output order.
var ProductHeader = []string{"producto", "precio", "stock_minimo", "stock_maximo", "existencias", "sku"}

// WriteProductsCSV serialises the export projection as CSV, header first.
func WriteProductsCSV(w io.Writer, rows []domain.ExportRow) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(ProductHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write([]string{
			row.Producto,
			row.Precio.StringFixed(2),
			formatInt(row.StockMinimo),
			formatInt(row.StockMaximo),
			formatInt(row.Existencias),
			row.SKU,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatInt(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}
