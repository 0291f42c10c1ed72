// ABOUTME: Uniform response envelopes used by the storefront API
// ABOUTME: Wraps single records, lists, and paginated lists

package models

// Envelope is the {success, data} wrapper around every non-refresh response
type Envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// PageMeta describes a page of a paginated list
type PageMeta struct {
	TotalNoOfPages int `json:"totalNoOfPages"`
	TotalNoOfData  int `json:"totalNoOfData"`
	CurrentPage    int `json:"currentPage"`
	PageSize       int `json:"pageSize"`
}

// Page is the data payload of a paginated list response
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// ErrorResponse represents an API error body
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text returns the most descriptive message carried by the error body
func (e ErrorResponse) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
