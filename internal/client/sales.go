package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"sales_browser/internal/sales"

	"resty.dev/v3"
)

// SalesClient is the typed API of the /sales resource.
type SalesClient struct {
	http *HTTPClient
}

// NewSalesClient creates a SalesClient on top of h.
func NewSalesClient(h *HTTPClient) *SalesClient {
	return &SalesClient{http: h}
}

// ListSales fetches one page. An empty sort means amount, descending. Empty
// filters are left out of the query string.
func (c *SalesClient) ListSales(ctx context.Context, q sales.Query) (*sales.Page, error) {
	if q.Page < 0 || q.Size <= 0 {
		return nil, fmt.Errorf("%w: page %d, size %d", ErrInvalidQuery, q.Page, q.Size)
	}

	sort := q.Sort
	if sort == "" {
		sort = sales.DefaultSort
	}
	params := map[string]string{
		"page": strconv.Itoa(q.Page),
		"size": strconv.Itoa(q.Size),
		"sort": sort,
	}
	if q.Filters.MinDate != "" {
		params["minDate"] = q.Filters.MinDate
	}
	if q.Filters.MaxDate != "" {
		params["maxDate"] = q.Filters.MaxDate
	}
	if q.Filters.Name != "" {
		params["name"] = q.Filters.Name
	}

	var page sales.Page
	err := c.http.Do(ctx, http.MethodGet, "/sales", func(r *resty.Request) {
		r.SetQueryParams(params)
	}, &page)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return &page, nil
}

// CreateSale posts a new sale; the server assigns its id.
func (c *SalesClient) CreateSale(ctx context.Context, sale sales.Sale) (*sales.Sale, error) {
	sale.ID = 0
	var created sales.Sale
	err := c.http.Do(ctx, http.MethodPost, "/sales", func(r *resty.Request) {
		r.SetBody(sale)
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	return &created, nil
}

// UpdateSale replaces the sale with the same id.
func (c *SalesClient) UpdateSale(ctx context.Context, sale sales.Sale) (*sales.Sale, error) {
	var updated sales.Sale
	err := c.http.Do(ctx, http.MethodPut, "/sales/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(sale.ID, 10)).SetBody(sale)
	}, &updated)
	if err != nil {
		return nil, fmt.Errorf("update sale %d: %w", sale.ID, err)
	}
	return &updated, nil
}

// DeleteSale removes the sale with the given id.
func (c *SalesClient) DeleteSale(ctx context.Context, id int64) error {
	err := c.http.Do(ctx, http.MethodDelete, "/sales/{id}", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(id, 10))
	}, nil)
	if err != nil {
		return fmt.Errorf("delete sale %d: %w", id, err)
	}
	return nil
}

// SendNotification asks the backend to send the sale's SMS notification.
func (c *SalesClient) SendNotification(ctx context.Context, id int64) error {
	err := c.http.Do(ctx, http.MethodGet, "/sales/{id}/notification", func(r *resty.Request) {
		r.SetPathParam("id", strconv.FormatInt(id, 10))
	}, nil)
	if err != nil {
		return fmt.Errorf("notify sale %d: %w", id, err)
	}
	return nil
}
