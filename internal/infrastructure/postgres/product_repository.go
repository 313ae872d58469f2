package postgres

import (
	"context"
	"errors"

	domain "productos/backend/internal/domain/product"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "productos/backend/internal/infrastructure/postgres"

const productColumns = `id, producto, precio, stock_minimo, stock_maximo, existencias, sku, created_at, updated_at, deleted_at`

const (
	queryListProducts = `
SELECT ` + productColumns + `
FROM productos
ORDER BY id ASC
`
	queryListActiveProducts = `
SELECT ` + productColumns + `
FROM productos
WHERE deleted_at IS NULL
ORDER BY id ASC
`
	queryInsertProduct = `
INSERT INTO productos (producto, precio, stock_minimo, stock_maximo, existencias, sku)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + productColumns

	queryGetProduct = `
SELECT ` + productColumns + `
FROM productos WHERE id = $1
`
	queryUpdateProduct = `
UPDATE productos
SET producto = $1,
    precio = $2,
    stock_minimo = $3,
    stock_maximo = $4,
    existencias = $5,
    sku = $6,
    updated_at = CURRENT_TIMESTAMP
WHERE id = $7
RETURNING ` + productColumns

	querySoftDeleteProduct = `
UPDATE productos
SET deleted_at = CURRENT_TIMESTAMP
WHERE id = $1
RETURNING ` + productColumns

	querySearchProducts = `
SELECT ` + productColumns + `
FROM productos
WHERE producto LIKE $1
   OR sku LIKE $1
   OR precio::text LIKE $1
   OR stock_minimo::text LIKE $1
   OR stock_maximo::text LIKE $1
   OR existencias::text LIKE $1
ORDER BY id ASC
`
	queryExportProducts = `
SELECT producto, precio, stock_minimo, stock_maximo, existencias, sku
FROM productos
ORDER BY id ASC
`
)

// ProductRepository persists products in PostgreSQL. It keeps no state besides
// its collaborators and is safe for concurrent use.
type ProductRepository struct {
	db     QueryExecutor
	logger *zap.Logger
	tracer trace.Tracer
}

// RepositoryOption customises a ProductRepository.
type RepositoryOption func(*repositoryOptions)

type repositoryOptions struct {
	tracerProvider trace.TracerProvider
}

// WithTracerProvider makes the repository start its spans on tp instead of
// the global provider.
func WithTracerProvider(tp trace.TracerProvider) RepositoryOption {
	return func(o *repositoryOptions) {
		o.tracerProvider = tp
	}
}

// NewProductRepository constructs a repository on top of the given executor.
func NewProductRepository(db QueryExecutor, logger *zap.Logger, opts ...RepositoryOption) *ProductRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	options := repositoryOptions{tracerProvider: otel.GetTracerProvider()}
	for _, opt := range opts {
		opt(&options)
	}
	return &ProductRepository{
		db:     db,
		logger: logger,
		tracer: options.tracerProvider.Tracer(tracerName),
	}
}

var _ domain.Repository = (*ProductRepository)(nil)

// List returns every product, logically deleted ones included.
func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	products, err := r.queryProducts(ctx, queryListProducts)
	if err != nil {
		return nil, r.fail(span, "list products", err)
	}
	span.SetAttributes(attribute.Int("rows", len(products)))
	return products, nil
}

// ListActive returns products whose deleted_at is null.
func (r *ProductRepository) ListActive(ctx context.Context) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.ListActive")
	defer span.End()

	products, err := r.queryProducts(ctx, queryListActiveProducts)
	if err != nil {
		return nil, r.fail(span, "list active products", err)
	}
	span.SetAttributes(attribute.Int("rows", len(products)))
	return products, nil
}

// Create inserts a new product and returns the stored row, including the
// id and timestamps assigned by the store.
func (r *ProductRepository) Create(ctx context.Context, fields domain.Fields) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()
	span.SetAttributes(attribute.String("sku", fields.SKU))

	product, err := r.queryProduct(ctx, queryInsertProduct, fieldArgs(fields)...)
	if err != nil {
		return nil, r.fail(span, "create product", err, zap.String("sku", fields.SKU))
	}
	r.logger.Debug("product created", zap.Int64("id", product.ID), zap.String("sku", product.SKU))
	return product, nil
}

// GetByID fetches a product by id regardless of its deleted_at.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByID")
	defer span.End()
	span.SetAttributes(attribute.Int64("id", id))

	product, err := r.queryProduct(ctx, queryGetProduct, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Debug("product not found", zap.Int64("id", id))
			return nil, err
		}
		return nil, r.fail(span, "get product", err, zap.Int64("id", id))
	}
	return product, nil
}

// Update overwrites all six mutable columns and refreshes updated_at.
// created_at and deleted_at are left untouched.
func (r *ProductRepository) Update(ctx context.Context, id int64, fields domain.Fields) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("id", id), attribute.String("sku", fields.SKU))

	args := append(fieldArgs(fields), id)
	product, err := r.queryProduct(ctx, queryUpdateProduct, args...)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Debug("product not found for update", zap.Int64("id", id))
			return nil, err
		}
		return nil, r.fail(span, "update product", err, zap.Int64("id", id))
	}
	return product, nil
}

// Delete stamps deleted_at with the current time. Calling it again on an
// already deleted row stamps it again.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("id", id))

	product, err := r.queryProduct(ctx, querySoftDeleteProduct, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Debug("product not found for delete", zap.Int64("id", id))
			return nil, err
		}
		return nil, r.fail(span, "delete product", err, zap.Int64("id", id))
	}
	return product, nil
}

// Search returns products where the term appears in producto, sku or the
// text form of any numeric column.
func (r *ProductRepository) Search(ctx context.Context, term string) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Search")
	defer span.End()
	span.SetAttributes(attribute.String("term", term))

	products, err := r.queryProducts(ctx, querySearchProducts, likePattern(term))
	if err != nil {
		return nil, r.fail(span, "search products", err, zap.String("term", term))
	}
	span.SetAttributes(attribute.Int("rows", len(products)))
	return products, nil
}

// ListForExport returns the export projection of every product.
func (r *ProductRepository) ListForExport(ctx context.Context) ([]domain.ExportRow, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.ListForExport")
	defer span.End()

	rows, err := r.db.Query(ctx, queryExportProducts)
	if err != nil {
		return nil, r.fail(span, "list products for export", err)
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.ExportRow])
	if err != nil {
		return nil, r.fail(span, "list products for export", err)
	}
	if items == nil {
		items = []domain.ExportRow{}
	}
	span.SetAttributes(attribute.Int("rows", len(items)))
	return items, nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	products, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Product])
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (r *ProductRepository) queryProduct(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	product, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[domain.Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) fail(span trace.Span, op string, err error, fields ...zap.Field) error {
	err = classifyError(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, op)
	r.logger.Error(op+" failed", append(fields, zap.Error(err))...)
	return err
}

func fieldArgs(f domain.Fields) []any {
	return []any{f.Producto, f.Precio, f.StockMinimo, f.StockMaximo, f.Existencias, f.SKU}
}

func likePattern(term string) string {
	return "%" + term + "%"
}
