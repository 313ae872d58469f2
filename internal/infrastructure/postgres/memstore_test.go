package postgres

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	domain "productos/backend/internal/domain/product"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// ============================================================================
// FAKE ROWS
// ============================================================================

type fakeRows struct {
	fields []pgconn.FieldDescription
	values [][]any
	pos    int
	err    error
	closed bool
}

func newFakeRows(columns []string, values [][]any) *fakeRows {
	fields := make([]pgconn.FieldDescription, len(columns))
	for i, c := range columns {
		fields[i] = pgconn.FieldDescription{Name: c}
	}
	return &fakeRows{fields: fields, values: values}
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return r.fields }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.closed || r.err != nil || r.pos >= len(r.values) {
		r.closed = true
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.values[r.pos-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.values[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("fake rows: %d destinations for %d columns", len(dest), len(row))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("fake rows: destination %d is not a pointer", i)
		}
		elem := target.Elem()
		if row[i] == nil {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}
		value := reflect.ValueOf(row[i])
		if !value.Type().AssignableTo(elem.Type()) {
			return fmt.Errorf("fake rows: cannot scan %T into %s", row[i], elem.Type())
		}
		elem.Set(value)
	}
	return nil
}

// ============================================================================
// IN-MEMORY STORE
// ============================================================================

var productColumnNames = strings.Split(strings.ReplaceAll(productColumns, " ", ""), ",")

var exportColumnNames = []string{"producto", "precio", "stock_minimo", "stock_maximo", "existencias", "sku"}

type recordedQuery struct {
	sql  string
	args []any
}

// memStore executes the repository's queries against an in-memory productos
// table. Each statement sees a fresh, strictly later clock reading.
type memStore struct {
	mu      sync.Mutex
	rows    []domain.Product
	nextID  int64
	now     time.Time
	queries []recordedQuery

	// Error injection
	queryErr error
	rowsErr  error
}

func newMemStore() *memStore {
	return &memStore{
		nextID: 1,
		now:    time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.now = s.now.Add(time.Millisecond)
	return s.now
}

func (s *memStore) lastQuery() recordedQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

func (s *memStore) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queries = append(s.queries, recordedQuery{sql: sql, args: args})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if s.rowsErr != nil {
		return &fakeRows{err: s.rowsErr}, nil
	}

	switch sql {
	case queryListProducts:
		return s.productRows(func(domain.Product) bool { return true }), nil
	case queryListActiveProducts:
		return s.productRows(func(p domain.Product) bool { return p.DeletedAt == nil }), nil
	case queryInsertProduct:
		return s.insert(args)
	case queryGetProduct:
		id := args[0].(int64)
		return s.productRows(func(p domain.Product) bool { return p.ID == id }), nil
	case queryUpdateProduct:
		return s.update(args)
	case querySoftDeleteProduct:
		return s.softDelete(args[0].(int64)), nil
	case querySearchProducts:
		pattern := args[0].(string)
		term := strings.TrimSuffix(strings.TrimPrefix(pattern, "%"), "%")
		return s.productRows(func(p domain.Product) bool { return matchesAnyColumn(p, term) }), nil
	case queryExportProducts:
		values := make([][]any, 0, len(s.rows))
		for _, p := range s.rows {
			values = append(values, []any{p.Producto, p.Precio, p.StockMinimo, p.StockMaximo, p.Existencias, p.SKU})
		}
		return newFakeRows(exportColumnNames, values), nil
	default:
		return nil, fmt.Errorf("memstore: unexpected query %q", sql)
	}
}

func (s *memStore) insert(args []any) (pgx.Rows, error) {
	f := fieldsFromArgs(args)
	for _, p := range s.rows {
		if p.SKU == f.SKU {
			return &fakeRows{err: duplicateSKUError(f.SKU)}, nil
		}
	}
	now := s.tick()
	p := domain.Product{
		ID:          s.nextID,
		Producto:    f.Producto,
		Precio:      f.Precio.Round(2),
		StockMinimo: f.StockMinimo,
		StockMaximo: f.StockMaximo,
		Existencias: f.Existencias,
		SKU:         f.SKU,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextID++
	s.rows = append(s.rows, p)
	return newFakeRows(productColumnNames, [][]any{productValues(p)}), nil
}

func (s *memStore) update(args []any) (pgx.Rows, error) {
	f := fieldsFromArgs(args[:6])
	id := args[6].(int64)
	for _, p := range s.rows {
		if p.SKU == f.SKU && p.ID != id {
			return &fakeRows{err: duplicateSKUError(f.SKU)}, nil
		}
	}
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		p := &s.rows[i]
		p.Producto = f.Producto
		p.Precio = f.Precio.Round(2)
		p.StockMinimo = f.StockMinimo
		p.StockMaximo = f.StockMaximo
		p.Existencias = f.Existencias
		p.SKU = f.SKU
		p.UpdatedAt = s.tick()
		return newFakeRows(productColumnNames, [][]any{productValues(*p)}), nil
	}
	return newFakeRows(productColumnNames, nil), nil
}

func (s *memStore) softDelete(id int64) pgx.Rows {
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		stamp := s.tick()
		s.rows[i].DeletedAt = &stamp
		return newFakeRows(productColumnNames, [][]any{productValues(s.rows[i])})
	}
	return newFakeRows(productColumnNames, nil)
}

func (s *memStore) productRows(keep func(domain.Product) bool) *fakeRows {
	var values [][]any
	for _, p := range s.rows {
		if keep(p) {
			values = append(values, productValues(p))
		}
	}
	return newFakeRows(productColumnNames, values)
}

func productValues(p domain.Product) []any {
	var deletedAt *time.Time
	if p.DeletedAt != nil {
		stamp := *p.DeletedAt
		deletedAt = &stamp
	}
	return []any{
		p.ID, p.Producto, p.Precio, p.StockMinimo, p.StockMaximo, p.Existencias, p.SKU,
		p.CreatedAt, p.UpdatedAt, deletedAt,
	}
}

func fieldsFromArgs(args []any) domain.Fields {
	return domain.Fields{
		Producto:    args[0].(string),
		Precio:      args[1].(decimal.Decimal),
		StockMinimo: args[2].(int32),
		StockMaximo: args[3].(int32),
		Existencias: args[4].(int32),
		SKU:         args[5].(string),
	}
}

// textColumns mirrors the ::text casts of the search query.
func textColumns(p domain.Product) []string {
	return []string{
		p.Producto,
		p.SKU,
		p.Precio.StringFixed(2),
		strconv.Itoa(int(p.StockMinimo)),
		strconv.Itoa(int(p.StockMaximo)),
		strconv.Itoa(int(p.Existencias)),
	}
}

func matchesAnyColumn(p domain.Product, term string) bool {
	for _, col := range textColumns(p) {
		if strings.Contains(col, term) {
			return true
		}
	}
	return false
}

func duplicateSKUError(sku string) *pgconn.PgError {
	return &pgconn.PgError{
		Severity:       "ERROR",
		Code:           "23505",
		Message:        `duplicate key value violates unique constraint "productos_sku_key"`,
		Detail:         fmt.Sprintf("Key (sku)=(%s) already exists.", sku),
		TableName:      "productos",
		ConstraintName: "productos_sku_key",
	}
}
