package repositories

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"vinoteca/internal/models"
	"vinoteca/internal/schema"

	"github.com/google/uuid"
)

// MockWineRepository is an in-memory implementation of WineRepository. It
// mirrors the GORM implementation's ID, SKU and sentinel semantics so
// services and tests can run without a database.
type MockWineRepository struct {
	reg   *schema.Registry
	wines map[string]models.Wine
	mu    sync.RWMutex
}

// NewMockWineRepository creates a new instance of MockWineRepository.
func NewMockWineRepository(reg *schema.Registry) *MockWineRepository {
	return &MockWineRepository{
		reg:   reg,
		wines: make(map[string]models.Wine),
	}
}

// List returns one page of wines matching the filters.
func (r *MockWineRepository) List(ctx context.Context, params WineListParams) (*WineListResult, error) {
	params.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Wine, 0, len(r.wines))
	for _, w := range r.wines {
		if wineMatches(w, params) {
			matched = append(matched, w)
		}
	}
	r.sortWines(matched, params.Sort)

	start := (params.Page - 1) * params.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return &WineListResult{
		Wines: matched[start:end],
		Total: int64(len(matched)),
		Page:  params.Page,
		Limit: params.Limit,
	}, nil
}

// GetByID returns a wine by its ID.
func (r *MockWineRepository) GetByID(ctx context.Context, id string) (*models.Wine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wine, ok := r.wines[id]
	if !ok {
		return nil, fmt.Errorf("failed to get wine %s: %w", id, ErrNotFound)
	}
	return &wine, nil
}

// Create adds a new wine, enforcing SKU uniqueness.
func (r *MockWineRepository) Create(ctx context.Context, wine *models.Wine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if wine.ID == "" {
		wine.ID = uuid.New().String()
	}
	if _, dup := r.wines[wine.ID]; dup {
		return fmt.Errorf("failed to create wine: %w", ErrConflict)
	}
	for _, existing := range r.wines {
		if existing.SKU == wine.SKU {
			return fmt.Errorf("failed to create wine: %w", ErrConflict)
		}
	}
	now := time.Now()
	wine.CreatedAt = now
	wine.UpdatedAt = now
	r.wines[wine.ID] = *wine
	return nil
}

// Patch applies the column updates to the stored wine and returns the
// result.
func (r *MockWineRepository) Patch(ctx context.Context, id string, cols map[string]any) (*models.Wine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wine, ok := r.wines[id]
	if !ok {
		return nil, fmt.Errorf("failed to patch wine %s: %w", id, ErrNotFound)
	}
	if sku, changed := cols["sku"].(string); changed {
		for otherID, other := range r.wines {
			if otherID != id && other.SKU == sku {
				return nil, fmt.Errorf("failed to patch wine %s: %w", id, ErrConflict)
			}
		}
	}
	if err := r.applyColumns(&wine, cols); err != nil {
		return nil, fmt.Errorf("failed to patch wine %s: %w", id, err)
	}
	if len(cols) > 0 {
		wine.UpdatedAt = time.Now()
	}
	r.wines[id] = wine
	return &wine, nil
}

// Delete removes a wine by its ID.
func (r *MockWineRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.wines[id]; !ok {
		return fmt.Errorf("failed to delete wine %s: %w", id, ErrNotFound)
	}
	delete(r.wines, id)
	return nil
}

func (r *MockWineRepository) applyColumns(wine *models.Wine, cols map[string]any) error {
	byColumn := make(map[string]schema.Field)
	for _, f := range r.reg.Fields(models.Wine{}) {
		byColumn[f.Column] = f
	}
	rv := reflect.ValueOf(wine).Elem()
	for col, val := range cols {
		f, ok := byColumn[col]
		if !ok {
			return fmt.Errorf("unknown column %q", col)
		}
		fv := rv.FieldByName(f.GoName)
		fv.Set(reflect.ValueOf(val).Convert(fv.Type()))
	}
	return nil
}

func (r *MockWineRepository) sortWines(wines []models.Wine, key string) {
	column, desc, ok := r.reg.SortColumn(models.Wine{}, key)
	if !ok {
		column, desc = "created_at", true
	}
	sort.SliceStable(wines, func(i, j int) bool {
		a, b := wines[i], wines[j]
		if desc {
			a, b = b, a
		}
		switch column {
		case "name":
			return a.Name < b.Name
		case "sku":
			return a.SKU < b.SKU
		case "winery":
			return a.Winery < b.Winery
		case "vintage":
			return a.Vintage < b.Vintage
		case "price":
			return a.Price < b.Price
		case "stock":
			return a.Stock < b.Stock
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

func wineMatches(w models.Wine, p WineListParams) bool {
	if p.Query != "" {
		q := strings.ToLower(p.Query)
		if !strings.Contains(strings.ToLower(w.Name), q) &&
			!strings.Contains(strings.ToLower(w.Winery), q) &&
			!strings.Contains(strings.ToLower(w.SKU), q) {
			return false
		}
	}
	if p.Style != "" && w.Style != p.Style {
		return false
	}
	if p.Country != "" && !strings.EqualFold(w.Country, p.Country) {
		return false
	}
	if p.SupplierID != "" && w.SupplierID != p.SupplierID {
		return false
	}
	if p.VintageMin > 0 && w.Vintage < p.VintageMin {
		return false
	}
	if p.VintageMax > 0 && w.Vintage > p.VintageMax {
		return false
	}
	if p.InStock && w.Stock <= 0 {
		return false
	}
	return true
}
