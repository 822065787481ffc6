package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

const winesEntity = "wines"

// ListWines fetches one page of wines.
func (c *Client) ListWines(ctx context.Context, opts ListWinesOptions) (*WineList, error) {
	path := "/api/v1/wines"
	if q := opts.values().Encode(); q != "" {
		path += "?" + q
	}
	var out WineList
	if err := c.getJSON(ctx, winesEntity, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetWine fetches a single wine by id.
func (c *Client) GetWine(ctx context.Context, id string) (*Wine, error) {
	var out Wine
	if err := c.getJSON(ctx, winesEntity, "/api/v1/wines/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateWine creates a wine and returns the persisted entity.
func (c *Client) CreateWine(ctx context.Context, wine Wine) (*Wine, error) {
	var out Wine
	if err := c.mutate(ctx, http.MethodPost, "/api/v1/wines", winesEntity, wine, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PatchWine applies a partial update and returns the updated entity.
func (c *Client) PatchWine(ctx context.Context, id string, patch WinePatch) (*Wine, error) {
	var out Wine
	if err := c.mutate(ctx, http.MethodPatch, "/api/v1/wines/"+url.PathEscape(id), winesEntity, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteWine deletes a wine by id.
func (c *Client) DeleteWine(ctx context.Context, id string) error {
	return c.mutate(ctx, http.MethodDelete, "/api/v1/wines/"+url.PathEscape(id), winesEntity, nil, nil)
}

// ImportWines uploads a spreadsheet and returns the per-row report.
func (c *Client) ImportWines(ctx context.Context, filename string, r io.Reader) (*ImportReport, error) {
	var out ImportReport
	if err := c.uploadFile(ctx, "/api/v1/wines/import", winesEntity, filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadLabel attaches a label image to a wine and returns the updated
// entity.
func (c *Client) UploadLabel(ctx context.Context, id, filename string, r io.Reader) (*Wine, error) {
	var out Wine
	if err := c.uploadFile(ctx, "/api/v1/wines/"+url.PathEscape(id)+"/label", winesEntity, filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchFile downloads a stored upload, such as a label image.
func (c *Client) FetchFile(ctx context.Context, name string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "/api/v1/files/"+url.PathEscape(name), "", nil)
}
