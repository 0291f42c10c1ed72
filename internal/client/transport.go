// ABOUTME: Composable outbound request middleware
// ABOUTME: Bearer attachment, request logging, and metrics wrapped around a base sender

package client

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/metrics"
)

// SendFunc sends one request and returns its response
type SendFunc func(*http.Request) (*http.Response, error)

// Middleware decorates a SendFunc
type Middleware func(SendFunc) SendFunc

// Chain applies middleware to a sender in order.
// The first middleware in the list is the outermost (executes first).
func Chain(send SendFunc, middlewares ...Middleware) SendFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		send = middlewares[i](send)
	}
	return send
}

// TokenSource supplies the access token to attach to a request
type TokenSource interface {
	AccessToken() string
}

// WithBearer attaches "Authorization: Bearer <token>" using the token held
// by tokens at the moment the request is sent. Requests are cloned so the
// caller's request is never mutated.
func WithBearer(tokens TokenSource) Middleware {
	return func(next SendFunc) SendFunc {
		return func(req *http.Request) (*http.Response, error) {
			if token := tokens.AccessToken(); token != "" {
				req = req.Clone(req.Context())
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return next(req)
		}
	}
}

// WithRequestLogging logs each request's method, path, status, and latency at debug level
func WithRequestLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next SendFunc) SendFunc {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			path := sanitizePath(req.URL.Path)

			resp, err := next(req)
			if err != nil {
				logger.Debug("API request failed",
					"method", req.Method,
					"path", path,
					"error", err,
					"latency_ms", time.Since(start).Milliseconds(),
				)
				return nil, err
			}

			logger.Debug("API request completed",
				"method", req.Method,
				"path", path,
				"status", resp.StatusCode,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return resp, nil
		}
	}
}

// WithRequestMetrics records request counts and latency
func WithRequestMetrics(m *metrics.Client) Middleware {
	return func(next SendFunc) SendFunc {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			m.ObserveRequest(req.Method, status, time.Since(start))
			return resp, err
		}
	}
}

// sanitizePath strips control characters so paths cannot forge log lines
func sanitizePath(path string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, path)
}
