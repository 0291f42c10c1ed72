// ABOUTME: Generic list/get/create/update/delete access to API collections
// ABOUTME: Normalizes plain-array and paginated list envelopes into one Page type

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
)

// Resource is a REST collection such as /products
type Resource[T any] struct {
	client    *Client
	path      string
	cacheable bool
}

// NewResource binds a collection path to a client
func NewResource[T any](c *Client, path string, cacheable bool) *Resource[T] {
	return &Resource[T]{client: c, path: path, cacheable: cacheable}
}

func (c *Client) Products() *Resource[models.Product] {
	return NewResource[models.Product](c, "/products", true)
}

func (c *Client) Categories() *Resource[models.Category] {
	return NewResource[models.Category](c, "/categories", true)
}

func (c *Client) Brands() *Resource[models.Brand] {
	return NewResource[models.Brand](c, "/brands", true)
}

func (c *Client) Users() *Resource[models.User] {
	return NewResource[models.User](c, "/users", false)
}

func (c *Client) Businesses() *Resource[models.Business] {
	return NewResource[models.Business](c, "/businesses", false)
}

func (c *Client) Invoices() *Resource[models.Invoice] {
	return NewResource[models.Invoice](c, "/invoices", false)
}

// List fetches one page. page and pageSize of 0 leave paging to the server.
func (r *Resource[T]) List(ctx context.Context, page, pageSize int) (*models.Page[T], error) {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}
	path := r.path
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	key := fmt.Sprintf("%s:%d:%d", r.path, page, pageSize)
	if r.cacheable && r.client.catalog != nil {
		if cached, ok := r.client.catalog.Get(key); ok {
			if p, ok := cached.(*models.Page[T]); ok {
				return p, nil
			}
		}
	}

	var env models.Envelope[json.RawMessage]
	if err := r.client.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}

	p, err := decodePage[T](env.Data)
	if err != nil {
		return nil, err
	}

	if r.cacheable && r.client.catalog != nil {
		r.client.catalog.Set(key, p)
	}
	return p, nil
}

// Get fetches one record by id
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var env models.Envelope[T]
	if err := r.client.do(ctx, http.MethodGet, r.path+"/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Create posts a new record and returns the stored version
func (r *Resource[T]) Create(ctx context.Context, in any) (*T, error) {
	var env models.Envelope[T]
	if err := r.client.do(ctx, http.MethodPost, r.path, in, &env); err != nil {
		return nil, err
	}
	r.invalidate()
	return &env.Data, nil
}

// Update replaces the record with the given id
func (r *Resource[T]) Update(ctx context.Context, id string, in any) (*T, error) {
	var env models.Envelope[T]
	if err := r.client.do(ctx, http.MethodPut, r.path+"/"+url.PathEscape(id), in, &env); err != nil {
		return nil, err
	}
	r.invalidate()
	return &env.Data, nil
}

// Delete removes the record with the given id
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if err := r.client.do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	r.invalidate()
	return nil
}

func (r *Resource[T]) invalidate() {
	if r.cacheable && r.client.catalog != nil {
		r.client.catalog.ClearPrefix(r.path)
	}
}

// decodePage accepts data as either T[] or {data: T[], meta: {...}}
func decodePage[T any](raw json.RawMessage) (*models.Page[T], error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("invalid list response from backend: %w", err)
		}
		return &models.Page[T]{
			Data: items,
			Meta: models.PageMeta{
				TotalNoOfPages: 1,
				TotalNoOfData:  len(items),
				CurrentPage:    1,
				PageSize:       len(items),
			},
		}, nil
	}

	var p models.Page[T]
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("invalid list response from backend: %w", err)
	}
	if p.Data == nil {
		p.Data = []T{}
	}
	return &p, nil
}
