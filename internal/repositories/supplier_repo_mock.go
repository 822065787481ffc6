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

// MockSupplierRepository is an in-memory implementation of
// SupplierRepository.
type MockSupplierRepository struct {
	reg       *schema.Registry
	suppliers map[string]models.Supplier
	mu        sync.RWMutex
}

// NewMockSupplierRepository creates a new instance of MockSupplierRepository.
func NewMockSupplierRepository(reg *schema.Registry) *MockSupplierRepository {
	return &MockSupplierRepository{
		reg:       reg,
		suppliers: make(map[string]models.Supplier),
	}
}

// List returns one page of suppliers matching the query.
func (r *MockSupplierRepository) List(ctx context.Context, params SupplierListParams) (*SupplierListResult, error) {
	params.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		if params.Query != "" {
			q := strings.ToLower(params.Query)
			if !strings.Contains(strings.ToLower(s.Name), q) &&
				!strings.Contains(strings.ToLower(s.Email), q) {
				continue
			}
		}
		matched = append(matched, s)
	}

	column, desc, ok := r.reg.SortColumn(models.Supplier{}, params.Sort)
	if !ok {
		column, desc = "name", false
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if desc {
			a, b = b, a
		}
		if column == "created_at" {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Name < b.Name
	})

	start := (params.Page - 1) * params.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return &SupplierListResult{
		Suppliers: matched[start:end],
		Total:     int64(len(matched)),
		Page:      params.Page,
		Limit:     params.Limit,
	}, nil
}

// GetByID returns a supplier by its ID.
func (r *MockSupplierRepository) GetByID(ctx context.Context, id string) (*models.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	supplier, ok := r.suppliers[id]
	if !ok {
		return nil, fmt.Errorf("failed to get supplier %s: %w", id, ErrNotFound)
	}
	return &supplier, nil
}

// Create adds a new supplier.
func (r *MockSupplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if supplier.ID == "" {
		supplier.ID = uuid.New().String()
	}
	if _, dup := r.suppliers[supplier.ID]; dup {
		return fmt.Errorf("failed to create supplier: %w", ErrConflict)
	}
	now := time.Now()
	supplier.CreatedAt = now
	supplier.UpdatedAt = now
	r.suppliers[supplier.ID] = *supplier
	return nil
}

// Patch applies the column updates to the stored supplier and returns the
// result.
func (r *MockSupplierRepository) Patch(ctx context.Context, id string, cols map[string]any) (*models.Supplier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	supplier, ok := r.suppliers[id]
	if !ok {
		return nil, fmt.Errorf("failed to patch supplier %s: %w", id, ErrNotFound)
	}

	byColumn := make(map[string]schema.Field)
	for _, f := range r.reg.Fields(models.Supplier{}) {
		byColumn[f.Column] = f
	}
	rv := reflect.ValueOf(&supplier).Elem()
	for col, val := range cols {
		f, known := byColumn[col]
		if !known {
			return nil, fmt.Errorf("failed to patch supplier %s: unknown column %q", id, col)
		}
		fv := rv.FieldByName(f.GoName)
		fv.Set(reflect.ValueOf(val).Convert(fv.Type()))
	}
	if len(cols) > 0 {
		supplier.UpdatedAt = time.Now()
	}
	r.suppliers[id] = supplier
	return &supplier, nil
}

// Delete removes a supplier by its ID.
func (r *MockSupplierRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.suppliers[id]; !ok {
		return fmt.Errorf("failed to delete supplier %s: %w", id, ErrNotFound)
	}
	delete(r.suppliers, id)
	return nil
}
