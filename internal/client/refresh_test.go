// ABOUTME: Tests for the refresh call and auth response decoding
// ABOUTME: Covers both response shapes and malformed bodies

package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeAuthResponse(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantAccess string
	}{
		{
			name:       "bare",
			body:       `{"user":{"id":"u-1","role":"customer"},"accessToken":"a1","refreshToken":"r1"}`,
			wantAccess: "a1",
		},
		{
			name:       "wrapped",
			body:       `{"success":true,"data":{"user":{"id":"u-1","role":"customer"},"accessToken":"a2","refreshToken":"r2"}}`,
			wantAccess: "a2",
		},
		{
			name:    "missing user",
			body:    `{"accessToken":"a1"}`,
			wantErr: true,
		},
		{
			name:    "missing access token",
			body:    `{"success":true,"data":{"user":{"id":"u-1"}}}`,
			wantErr: true,
		},
		{
			name:    "not json",
			body:    `<html>bad gateway</html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := decodeAuthResponse(strings.NewReader(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", auth)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if auth.AccessToken != tt.wantAccess {
				t.Errorf("expected access token %s, got %s", tt.wantAccess, auth.AccessToken)
			}
		})
	}
}

func TestRefresher_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/refresh" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"error":"refresh token reused"}`))
	}))
	defer server.Close()

	r := NewRefresher(server.URL, http.DefaultClient.Do)
	_, err := r.Refresh(context.Background(), "r1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Message != "refresh token reused" {
		t.Errorf("unexpected error %+v", apiErr)
	}
}
