package product

import "context"

// Repository defines persistence behaviours for products.
//
// None of the operations except ListActive filter out logically deleted rows;
// callers that need "active only" semantics must ask for them explicitly.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	ListActive(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, fields Fields) (*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Update(ctx context.Context, id int64, fields Fields) (*Product, error)
	Delete(ctx context.Context, id int64) (*Product, error)
	Search(ctx context.Context, term string) ([]Product, error)
	ListForExport(ctx context.Context) ([]ExportRow, error)
}
