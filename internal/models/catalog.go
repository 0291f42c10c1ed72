// ABOUTME: Catalog and order models for the storefront API
// ABOUTME: Products, categories, brands, businesses, and invoices

package models

import "time"

// Product is a sellable catalog entry
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	CategoryID  string  `json:"categoryId,omitempty"`
	BrandID     string  `json:"brandId,omitempty"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Business is the company a customer account orders on behalf of
type Business struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	OwnerID  string `json:"ownerId"`
	Approved bool   `json:"approved"`
}

// InvoiceItem is one product/quantity pair submitted at checkout
type InvoiceItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateInvoiceRequest is the body of POST /invoices
type CreateInvoiceRequest struct {
	Items []InvoiceItem `json:"items"`
}

// Invoice is a submitted order
type Invoice struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	Items     []InvoiceItem `json:"items"`
	Total     float64       `json:"total"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}
