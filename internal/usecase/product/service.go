package product

import (
	"context"
	"errors"
	"fmt"
	"io"

	domain "productos/backend/internal/domain/product"
	"productos/backend/internal/export"
	"productos/backend/internal/observability"

	"go.uber.org/zap"
)

// Service encapsulates product use cases. Repository errors are returned
// unchanged so callers can match them with errors.Is.
type Service struct {
	repo   domain.Repository
	logger *zap.Logger
}

// NewService constructs a product service.
func NewService(repo domain.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("product")}
}

// List retrieves all products. With activeOnly set, logically deleted
// products are left out.
func (s *Service) List(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	if activeOnly {
		return s.repo.ListActive(ctx)
	}
	return s.repo.List(ctx)
}

// Create stores a new product.
func (s *Service) Create(ctx context.Context, fields domain.Fields) (*domain.Product, error) {
	product, err := s.repo.Create(ctx, fields)
	if err != nil {
		s.warn(ctx, "create rejected", err, zap.String("sku", fields.SKU))
		return nil, err
	}
	observability.WithTrace(ctx, s.logger).Info("product created",
		zap.Int64("id", product.ID),
		zap.String("sku", product.SKU),
	)
	return product, nil
}

// Get fetches a product by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Update replaces every mutable field of a product.
func (s *Service) Update(ctx context.Context, id int64, fields domain.Fields) (*domain.Product, error) {
	product, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		s.warn(ctx, "update rejected", err, zap.Int64("id", id))
		return nil, err
	}
	observability.WithTrace(ctx, s.logger).Info("product updated", zap.Int64("id", id))
	return product, nil
}

// Delete marks a product as deleted and returns the marked record.
func (s *Service) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.warn(ctx, "delete rejected", err, zap.Int64("id", id))
		return nil, err
	}
	observability.WithTrace(ctx, s.logger).Info("product deleted",
		zap.Int64("id", id),
		zap.Timep("deleted_at", product.DeletedAt),
	)
	return product, nil
}

// Search looks the term up across the text and numeric columns.
func (s *Service) Search(ctx context.Context, term string) ([]domain.Product, error) {
	return s.repo.Search(ctx, term)
}

// Export writes every product as CSV to w.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	rows, err := s.repo.ListForExport(ctx)
	if err != nil {
		return err
	}
	if err := export.WriteProductsCSV(w, rows); err != nil {
		return fmt.Errorf("write products csv: %w", err)
	}
	observability.WithTrace(ctx, s.logger).Debug("products exported", zap.Int("rows", len(rows)))
	return nil
}

// warn logs client-caused rejections. Store faults are already logged by the
// repository.
func (s *Service) warn(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConstraintViolation) {
		observability.WithTrace(ctx, s.logger).Warn(msg, append(fields, zap.Error(err))...)
	}
}
