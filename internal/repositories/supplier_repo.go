package repositories

import (
	"context"

	"vinoteca/internal/models"
)

// SupplierListParams narrows and pages a supplier listing.
type SupplierListParams struct {
	Query string
	Page  int
	Limit int
	Sort  string
}

// Normalize clamps paging to sane bounds.
func (p *SupplierListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
}

// SupplierListResult is one page of suppliers plus the total across all
// pages.
type SupplierListResult struct {
	Suppliers []models.Supplier
	Total     int64
	Page      int
	Limit     int
}

// SupplierRepository defines the interface for supplier data access.
type SupplierRepository interface {
	List(ctx context.Context, params SupplierListParams) (*SupplierListResult, error)
	GetByID(ctx context.Context, id string) (*models.Supplier, error)
	Create(ctx context.Context, supplier *models.Supplier) error
	Patch(ctx context.Context, id string, cols map[string]any) (*models.Supplier, error)
	Delete(ctx context.Context, id string) error
}
