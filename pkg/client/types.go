package client

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Wine mirrors the API's wine resource.
type Wine struct {
	ID         string    `json:"id,omitempty"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	Winery     string    `json:"winery,omitempty"`
	Vintage    int       `json:"vintage,omitempty"`
	Varietal   string    `json:"varietal,omitempty"`
	Country    string    `json:"country,omitempty"`
	Region     string    `json:"region,omitempty"`
	Style      string    `json:"style,omitempty"`
	Price      float64   `json:"price"`
	Stock      int       `json:"stock"`
	CellarBin  string    `json:"cellar_bin,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	LabelPath  string    `json:"label_path,omitempty"`
	SupplierID string    `json:"supplier_id,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// WinePatch is a partial wine update. Nil fields are not sent.
type WinePatch struct {
	SKU        *string  `json:"sku,omitempty"`
	Name       *string  `json:"name,omitempty"`
	Winery     *string  `json:"winery,omitempty"`
	Vintage    *int     `json:"vintage,omitempty"`
	Varietal   *string  `json:"varietal,omitempty"`
	Country    *string  `json:"country,omitempty"`
	Region     *string  `json:"region,omitempty"`
	Style      *string  `json:"style,omitempty"`
	Price      *float64 `json:"price,omitempty"`
	Stock      *int     `json:"stock,omitempty"`
	CellarBin  *string  `json:"cellar_bin,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
	SupplierID *string  `json:"supplier_id,omitempty"`
}

// Supplier mirrors the API's supplier resource.
type Supplier struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	ContactName string    `json:"contact_name,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// SupplierPatch is a partial supplier update. Nil fields are not sent.
type SupplierPatch struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// Meta is the pagination block of list responses.
type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// WineList is one page of wines.
type WineList struct {
	Data []Wine `json:"data"`
	Meta Meta   `json:"meta"`
}

// SupplierList is one page of suppliers.
type SupplierList struct {
	Data []Supplier `json:"data"`
	Meta Meta       `json:"meta"`
}

// ImportReport is the outcome of a spreadsheet import.
type ImportReport struct {
	Total    int            `json:"total"`
	Imported int            `json:"imported"`
	Rejected []RowRejection `json:"rejected,omitempty"`
}

// RowRejection names one spreadsheet row that was not imported.
type RowRejection struct {
	Row    int          `json:"row"`
	Fields []FieldError `json:"fields"`
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response decoded from the API's error envelope.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

// ListWinesOptions filters and pages a wine listing. Zero values are
// omitted from the query.
type ListWinesOptions struct {
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

func (o ListWinesOptions) values() url.Values {
	v := url.Values{}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if o.Style != "" {
		v.Set("style", o.Style)
	}
	if o.Country != "" {
		v.Set("country", o.Country)
	}
	if o.SupplierID != "" {
		v.Set("supplier_id", o.SupplierID)
	}
	if o.VintageMin > 0 {
		v.Set("vintage_min", strconv.Itoa(o.VintageMin))
	}
	if o.VintageMax > 0 {
		v.Set("vintage_max", strconv.Itoa(o.VintageMax))
	}
	if o.InStock {
		v.Set("in_stock", "true")
	}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
	}
	return v
}

// ListSuppliersOptions filters and pages a supplier listing.
type ListSuppliersOptions struct {
	Query string
	Page  int
	Limit int
	Sort  string
}

func (o ListSuppliersOptions) values() url.Values {
	v := url.Values{}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Sort != "" {
		v.Set("sort", o.Sort)
	}
	return v
}

// String returns a pointer to s, for building patch payloads inline.
func String(s string) *string { return &s }

// Int returns a pointer to i, for building patch payloads inline.
func Int(i int) *int { return &i }

// Float64 returns a pointer to f, for building patch payloads inline.
func Float64(f float64) *float64 { return &f }
