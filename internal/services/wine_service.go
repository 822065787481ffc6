package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vinoteca/internal/cache"
	"vinoteca/internal/logging"
	"vinoteca/internal/models"
	"vinoteca/internal/repositories"
	"vinoteca/internal/schema"
)

const wineCachePrefix = "wines"

// WineService handles business logic related to wines: supplier reference
// checks, cache maintenance and mutation events around the repository.
type WineService struct {
	repo         repositories.WineRepository
	supplierRepo repositories.SupplierRepository
	reg          *schema.Registry
	cache        cache.Cache
	cacheTTL     time.Duration
	events       EventPublisher
}

// NewWineService creates a new WineService.
func NewWineService(
	repo repositories.WineRepository,
	supplierRepo repositories.SupplierRepository,
	reg *schema.Registry,
	c cache.Cache,
	cacheTTL time.Duration,
	events EventPublisher,
) *WineService {
	return &WineService{
		repo:         repo,
		supplierRepo: supplierRepo,
		reg:          reg,
		cache:        c,
		cacheTTL:     cacheTTL,
		events:       events,
	}
}

// List retrieves one page of wines, serving repeated reads from cache
// until a mutation invalidates the entity.
func (s *WineService) List(ctx context.Context, params repositories.WineListParams) (*repositories.WineListResult, error) {
	params.Normalize()
	key := cache.Key(wineCachePrefix, "list", listKey(params))

	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached repositories.WineListResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
		logging.FromContext(ctx).Debug("dropping undecodable cache entry", "key", key)
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

// Get retrieves a single wine by its ID.
func (s *WineService) Get(ctx context.Context, id string) (*models.Wine, error) {
	key := cache.Key(wineCachePrefix, "id", id)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached models.Wine
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	wine, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(wine); err == nil {
		s.cache.Set(ctx, key, raw, s.cacheTTL)
	}
	return wine, nil
}

// Create persists a validated wine after checking that any referenced
// supplier exists.
func (s *WineService) Create(ctx context.Context, wine *models.Wine) (*models.Wine, error) {
	if err := s.checkSupplier(ctx, wine.SupplierID); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, wine); err != nil {
		return nil, err
	}
	s.cache.InvalidatePrefix(ctx, wineCachePrefix)
	publishEvent(ctx, s.events, "wine.created", wine.ID, wine)
	return wine, nil
}

// Patch applies a partial update. Only the fields present in the patch
// reach the database; an empty patch is a plain read.
func (s *WineService) Patch(ctx context.Context, id string, patch *models.WinePatch) (*models.Wine, error) {
	cols := s.reg.PatchColumns(models.Wine{}, *patch)
	if len(cols) == 0 {
		return s.repo.GetByID(ctx, id)
	}
	if supplierID, ok := cols["supplier_id"].(string); ok {
		if err := s.checkSupplier(ctx, supplierID); err != nil {
			return nil, err
		}
	}

	wine, err := s.repo.Patch(ctx, id, cols)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidatePrefix(ctx, wineCachePrefix)
	publishEvent(ctx, s.events, "wine.updated", wine.ID, wine)
	return wine, nil
}

// Delete removes a wine by its ID.
func (s *WineService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, wineCachePrefix)
	publishEvent(ctx, s.events, "wine.deleted", id, nil)
	return nil
}

// SetLabel records the serving path of a stored label image on a wine
// and returns the updated entity.
func (s *WineService) SetLabel(ctx context.Context, id, path string) (*models.Wine, error) {
	field, ok := s.reg.FieldByJSON(models.Wine{}, "label_path")
	if !ok {
		return nil, fmt.Errorf("label_path is not a registered field")
	}

	wine, err := s.repo.Patch(ctx, id, map[string]any{field.Column: path})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidatePrefix(ctx, wineCachePrefix)
	publishEvent(ctx, s.events, "wine.updated", wine.ID, wine)
	return wine, nil
}

// checkSupplier turns a dangling supplier reference into a field-level
// validation error so the API reports it like any other invalid input.
func (s *WineService) checkSupplier(ctx context.Context, supplierID string) error {
	if supplierID == "" {
		return nil
	}
	_, err := s.supplierRepo.GetByID(ctx, supplierID)
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return &schema.ValidationError{Fields: []schema.FieldError{
			{Field: "supplier_id", Message: "references an unknown supplier"},
		}}
	}
	return err
}

// listKey canonicalizes list params into a cache key segment.
func listKey(p repositories.WineListParams) string {
	return fmt.Sprintf("q=%s&style=%s&country=%s&supplier=%s&vmin=%d&vmax=%d&instock=%t&page=%d&limit=%d&sort=%s",
		p.Query, p.Style, p.Country, p.SupplierID, p.VintageMin, p.VintageMax, p.InStock, p.Page, p.Limit, p.Sort)
}
