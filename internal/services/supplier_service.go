package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vinoteca/internal/cache"
	"vinoteca/internal/models"
	"vinoteca/internal/repositories"
	"vinoteca/internal/schema"
)

const supplierCachePrefix = "suppliers"

// SupplierService handles business logic related to suppliers.
type SupplierService struct {
	repo     repositories.SupplierRepository
	reg      *schema.Registry
	cache    cache.Cache
	cacheTTL time.Duration
	events   EventPublisher
}

// NewSupplierService creates a new SupplierService.
func NewSupplierService(
	repo repositories.SupplierRepository,
	reg *schema.Registry,
	c cache.Cache,
	cacheTTL time.Duration,
	events EventPublisher,
) *SupplierService {
	return &SupplierService{
		repo:     repo,
		reg:      reg,
		cache:    c,
		cacheTTL: cacheTTL,
		events:   events,
	}
}

// List retrieves one page of suppliers.
func (s *SupplierService) List(ctx context.Context, params repositories.SupplierListParams) (*repositories.SupplierListResult, error) {
	params.Normalize()
	key := cache.Key(supplierCachePrefix, "list",
		fmt.Sprintf("q=%s&page=%d&limit=%d&sort=%s", params.Query, params.Page, params.Limit, params.Sort))

	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached repositories.SupplierListResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(result); err == nil {
		s.cache.Set(ctx, key, raw, s.cacheTTL)
	}
	return result, nil
}

// Get retrieves a single supplier by its ID.
func (s *SupplierService) Get(ctx context.Context, id string) (*models.Supplier, error) {
	return s.repo.GetByID(ctx, id)
}

// Create persists a validated supplier.
func (s *SupplierService) Create(ctx context.Context, supplier *models.Supplier) (*models.Supplier, error) {
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	s.cache.InvalidatePrefix(ctx, supplierCachePrefix)
	publishEvent(ctx, s.events, "supplier.created", supplier.ID, supplier)
	return supplier, nil
}

// Patch applies a partial update. An empty patch is a plain read.
func (s *SupplierService) Patch(ctx context.Context, id string, patch *models.SupplierPatch) (*models.Supplier, error) {
	cols := s.reg.PatchColumns(models.Supplier{}, *patch)
	if len(cols) == 0 {
		return s.repo.GetByID(ctx, id)
	}

	supplier, err := s.repo.Patch(ctx, id, cols)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidatePrefix(ctx, supplierCachePrefix)
	publishEvent(ctx, s.events, "supplier.updated", supplier.ID, supplier)
	return supplier, nil
}

// Delete removes a supplier by its ID.
func (s *SupplierService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, supplierCachePrefix)
	publishEvent(ctx, s.events, "supplier.deleted", id, nil)
	return nil
}
