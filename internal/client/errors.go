// ABOUTME: Error types returned by the storefront API client
// ABOUTME: Converts transport and API failures into wrapped, inspectable errors

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
)

var (
	// ErrUnauthorized matches any *APIError carrying HTTP 401
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoRefreshToken means a 401 could not be recovered because the session has no refresh token
	ErrNoRefreshToken = errors.New("session expired and no refresh token is available")
	// ErrRefreshFailed wraps the error returned by the refresh endpoint
	ErrRefreshFailed = errors.New("token refresh failed")
	// ErrNotReplayable means a request body could not be rewound for the retry
	ErrNotReplayable = errors.New("request body cannot be replayed")
	// ErrEmptyCart is returned by Checkout when there is nothing to order
	ErrEmptyCart = errors.New("cart is empty")
)

// APIError is a non-2xx response from the storefront API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// handleRequestError converts context errors to user-friendly messages
func handleRequestError(ctx context.Context, baseURL string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("request canceled: %w", ctx.Err())
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", ctx.Err())
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", baseURL, err)
}

// handleErrorResponse parses API error responses; the body is consumed
func handleErrorResponse(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return apiErr
	}
	apiErr.Message = errResp.Text()
	return apiErr
}
