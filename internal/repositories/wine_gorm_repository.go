package repositories

import (
	"context"
	"fmt"
	"strings"

	"vinoteca/internal/models"
	"vinoteca/internal/schema"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMWineRepository is a GORM implementation of WineRepository. Sort keys
// resolve through the schema registry so the whitelist and the column names
// stay tied to the entity declaration.
type GORMWineRepository struct {
	db  *gorm.DB
	reg *schema.Registry
}

// NewGORMWineRepository creates a new instance of GORMWineRepository.
func NewGORMWineRepository(db *gorm.DB, reg *schema.Registry) *GORMWineRepository {
	return &GORMWineRepository{
		db:  db,
		reg: reg,
	}
}

// List retrieves one page of wines matching the given filters.
func (r *GORMWineRepository) List(ctx context.Context, params WineListParams) (*WineListResult, error) {
	params.Normalize()

	q := r.db.WithContext(ctx).Model(&models.Wine{})
	if params.Query != "" {
		like := "%" + strings.ToLower(params.Query) + "%"
		q = q.Where("lower(name) LIKE ? OR lower(winery) LIKE ? OR lower(sku) LIKE ?", like, like, like)
	}
	if params.Style != "" {
		q = q.Where("style = ?", params.Style)
	}
	if params.Country != "" {
		q = q.Where("lower(country) = ?", strings.ToLower(params.Country))
	}
	if params.SupplierID != "" {
		q = q.Where("supplier_id = ?", params.SupplierID)
	}
	if params.VintageMin > 0 {
		q = q.Where("vintage >= ?", params.VintageMin)
	}
	if params.VintageMax > 0 {
		q = q.Where("vintage <= ?", params.VintageMax)
	}
	if params.InStock {
		q = q.Where("stock > 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count wines: %w", err)
	}

	column, desc, ok := r.reg.SortColumn(models.Wine{}, params.Sort)
	if !ok {
		column, desc = "created_at", true
	}
	order := column
	if desc {
		order += " DESC"
	}

	var wines []models.Wine
	err := q.Order(order).
		Limit(params.Limit).
		Offset((params.Page - 1) * params.Limit).
		Find(&wines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wines: %w", err)
	}

	return &WineListResult{
		Wines: wines,
		Total: total,
		Page:  params.Page,
		Limit: params.Limit,
	}, nil
}

// GetByID retrieves a single wine by its ID.
func (r *GORMWineRepository) GetByID(ctx context.Context, id string) (*models.Wine, error) {
	var wine models.Wine
	if err := r.db.WithContext(ctx).First(&wine, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get wine %s: %w", id, mapGormErr(err))
	}
	return &wine, nil
}

// Create inserts a new wine, assigning an ID when none is set.
func (r *GORMWineRepository) Create(ctx context.Context, wine *models.Wine) error {
	if wine.ID == "" {
		wine.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(wine).Error; err != nil {
		return fmt.Errorf("failed to create wine: %w", mapGormErr(err))
	}
	return nil
}

// Patch applies the column updates in a single UPDATE and returns the row
// as it stands afterwards. Untouched columns are never part of the SET
// clause, so concurrent patches interleave per column rather than tearing
// whole rows.
func (r *GORMWineRepository) Patch(ctx context.Context, id string, cols map[string]any) (*models.Wine, error) {
	if len(cols) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Wine{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to patch wine %s: %w", id, mapGormErr(res.Error))
		}
	}
	return r.GetByID(ctx, id)
}

// Delete soft-deletes a wine by its ID.
func (r *GORMWineRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Wine{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete wine %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete wine %s: %w", id, ErrNotFound)
	}
	return nil
}
