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

// GORMSupplierRepository is a GORM implementation of SupplierRepository.
type GORMSupplierRepository struct {
	db  *gorm.DB
	reg *schema.Registry
}

// NewGORMSupplierRepository creates a new instance of GORMSupplierRepository.
func NewGORMSupplierRepository(db *gorm.DB, reg *schema.Registry) *GORMSupplierRepository {
	return &GORMSupplierRepository{
		db:  db,
		reg: reg,
	}
}

// List retrieves one page of suppliers matching the query.
func (r *GORMSupplierRepository) List(ctx context.Context, params SupplierListParams) (*SupplierListResult, error) {
	params.Normalize()

	q := r.db.WithContext(ctx).Model(&models.Supplier{})
	if params.Query != "" {
		like := "%" + strings.ToLower(params.Query) + "%"
		q = q.Where("lower(name) LIKE ? OR lower(email) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count suppliers: %w", err)
	}

	column, desc, ok := r.reg.SortColumn(models.Supplier{}, params.Sort)
	if !ok {
		column, desc = "name", false
	}
	order := column
	if desc {
		order += " DESC"
	}

	var suppliers []models.Supplier
	err := q.Order(order).
		Limit(params.Limit).
		Offset((params.Page - 1) * params.Limit).
		Find(&suppliers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	return &SupplierListResult{
		Suppliers: suppliers,
		Total:     total,
		Page:      params.Page,
		Limit:     params.Limit,
	}, nil
}

// GetByID retrieves a single supplier by its ID.
func (r *GORMSupplierRepository) GetByID(ctx context.Context, id string) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get supplier %s: %w", id, mapGormErr(err))
	}
	return &supplier, nil
}

// Create inserts a new supplier, assigning an ID when none is set.
func (r *GORMSupplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	if supplier.ID == "" {
		supplier.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return fmt.Errorf("failed to create supplier: %w", mapGormErr(err))
	}
	return nil
}

// Patch applies the column updates in a single UPDATE and returns the row
// as it stands afterwards.
func (r *GORMSupplierRepository) Patch(ctx context.Context, id string, cols map[string]any) (*models.Supplier, error) {
	if len(cols) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Supplier{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to patch supplier %s: %w", id, mapGormErr(res.Error))
		}
	}
	return r.GetByID(ctx, id)
}

// Delete soft-deletes a supplier by its ID.
func (r *GORMSupplierRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Supplier{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete supplier %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to delete supplier %s: %w", id, ErrNotFound)
	}
	return nil
}
