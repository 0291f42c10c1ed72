// ABOUTME: Calls POST /auth/refresh outside the interceptor
// ABOUTME: Accepts both the bare and the {data: ...} wrapped token response shapes

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
)

// Refresher exchanges a refresh token for a new session.
// Its sender must not carry the refresh interceptor, or a 401 from the
// refresh endpoint would recurse.
type Refresher struct {
	baseURL string
	send    SendFunc
}

// NewRefresher creates a refresher posting to baseURL + "/auth/refresh"
func NewRefresher(baseURL string, send SendFunc) *Refresher {
	return &Refresher{baseURL: baseURL, send: send}
}

// Refresh returns the new user and token pair. When the server omits a new
// refresh token the one that was presented is kept.
func (r *Refresher) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	body, err := json.Marshal(models.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.send(req)
	if err != nil {
		return nil, handleRequestError(ctx, r.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, handleErrorResponse(resp)
	}

	auth, err := decodeAuthResponse(resp.Body)
	if err != nil {
		return nil, err
	}
	if auth.RefreshToken == "" {
		auth.RefreshToken = refreshToken
	}
	return auth, nil
}

// decodeAuthResponse reads {user, accessToken, refreshToken} either bare
// (as /auth/refresh returns it) or inside the {success, data} envelope (as
// the login endpoints do)
func decodeAuthResponse(r io.Reader) (*models.AuthResponse, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}

	var bare models.AuthResponse
	if err := json.Unmarshal(raw, &bare); err != nil {
		return nil, fmt.Errorf("invalid auth response from backend: %w", err)
	}
	if bare.Complete() {
		return &bare, nil
	}

	var wrapped models.Envelope[models.AuthResponse]
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data.Complete() {
		return &wrapped.Data, nil
	}

	return nil, fmt.Errorf("invalid auth response from backend: missing user or access token")
}
