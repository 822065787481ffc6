package client

import (
	"context"
	"net/http"
	"net/url"
)

const suppliersEntity = "suppliers"

// ListSuppliers fetches one page of suppliers.
func (c *Client) ListSuppliers(ctx context.Context, opts ListSuppliersOptions) (*SupplierList, error) {
	path := "/api/v1/suppliers"
	if q := opts.values().Encode(); q != "" {
		path += "?" + q
	}
	var out SupplierList
	if err := c.getJSON(ctx, suppliersEntity, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSupplier fetches a single supplier by id.
func (c *Client) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	var out Supplier
	if err := c.getJSON(ctx, suppliersEntity, "/api/v1/suppliers/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSupplier creates a supplier and returns the persisted entity.
func (c *Client) CreateSupplier(ctx context.Context, supplier Supplier) (*Supplier, error) {
	var out Supplier
	if err := c.mutate(ctx, http.MethodPost, "/api/v1/suppliers", suppliersEntity, supplier, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchSupplier applies a partial update and returns the updated entity.
func (c *Client) PatchSupplier(ctx context.Context, id string, patch SupplierPatch) (*Supplier, error) {
	var out Supplier
	if err := c.mutate(ctx, http.MethodPatch, "/api/v1/suppliers/"+url.PathEscape(id), suppliersEntity, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSupplier deletes a supplier by id.
func (c *Client) DeleteSupplier(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "/api/v1/suppliers/"+url.PathEscape(id), suppliersEntity, nil, nil)
}
