package repositories

import (
	"context"

	"vinoteca/internal/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// WineListParams narrows and pages a wine listing. Zero values mean "no
// filter"; Sort takes a whitelisted JSON field name, optionally with a
// `_desc` suffix.
type WineListParams struct {
	Query      string
	Style      string
	Country    string
	SupplierID string
	VintageMin int
	VintageMax int
	InStock    bool
	Page       int
	Limit      int
	Sort       string
}

// Normalize clamps paging to sane bounds. Implementations call it
// themselves; callers building cache keys call it to canonicalize.
func (p *WineListParams) Normalize() {
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

// WineListResult is one page of wines plus the total across all pages.
type WineListResult struct {
	Wines []models.Wine
	Total int64
	Page  int
	Limit int
}

// WineRepository defines the interface for wine data access.
type WineRepository interface {
	List(ctx context.Context, params WineListParams) (*WineListResult, error)
	GetByID(ctx context.Context, id string) (*models.Wine, error)
	Create(ctx context.Context, wine *models.Wine) error
	// Patch applies the given column updates in a single UPDATE statement
	// and returns the resulting row.
	Patch(ctx context.Context, id string, cols map[string]any) (*models.Wine, error)
	Delete(ctx context.Context, id string) error
}
