// ABOUTME: HTTP client for the storefront REST API
// ABOUTME: Auth calls, checkout, and typed resources over the refresh interceptor

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/cache"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/metrics"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
)

// Cart is the part of the cart store checkout needs
type Cart interface {
	CheckoutItems() []models.InvoiceItem
	ClearCart()
}

// Client is the API client for the storefront backend
type Client struct {
	baseURL     string
	httpClient  *http.Client
	session     Session
	logger      *slog.Logger
	metrics     *metrics.Client
	catalog     *cache.Cache
	plain       SendFunc
	interceptor *Interceptor
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default 30s-timeout http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithMetrics(m *metrics.Client) Option {
	return func(c *Client) { c.metrics = m }
}

// WithCatalogCache caches product, category, and brand listings for ttl
func WithCatalogCache(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.catalog = cache.New(ttl)
		}
	}
}

// New creates a client for baseURL that authenticates as sess
func New(baseURL string, sess Session, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		session: sess,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	base := SendFunc(c.httpClient.Do)
	c.plain = Chain(base, WithRequestLogging(c.logger), WithRequestMetrics(c.metrics))
	authed := Chain(c.plain, WithBearer(sess))
	refresher := NewRefresher(baseURL, c.plain)
	c.interceptor = NewInterceptor(authed, sess, refresher.Refresh, c.metrics, c.logger)

	return c
}

// Close releases background resources held by the client
func (c *Client) Close() {
	if c.catalog != nil {
		c.catalog.Close()
	}
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Login authenticates a customer and stores the session
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	return c.login(ctx, "/auth/login", email, password)
}

// AdminLogin authenticates through the admin endpoint and stores the session.
// The stored session only passes the admin guard if the returned role is admin.
func (c *Client) AdminLogin(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	return c.login(ctx, "/auth/admin/login", email, password)
}

func (c *Client) login(ctx context.Context, path, email, password string) (*models.AuthResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.plain(req)
	if err != nil {
		return nil, handleRequestError(ctx, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, handleErrorResponse(resp)
	}

	auth, err := decodeAuthResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	c.session.SetAuth(auth.User, auth.AccessToken, auth.RefreshToken)
	c.logger.Info("Signed in", "user_id", auth.User.ID, "role", auth.User.Role)
	return auth, nil
}

// Register submits a new account for admin approval. No session is created.
func (c *Client) Register(ctx context.Context, in models.RegisterRequest) (*models.User, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/register", in)
	if err != nil {
		return nil, err
	}

	resp, err := c.plain(req)
	if err != nil {
		return nil, handleRequestError(ctx, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, handleErrorResponse(resp)
	}

	var env models.Envelope[models.User]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return &env.Data, nil
}

// Logout tells the server to end the session and always clears the local
// session, even when the server call fails. The server error is returned
// for reporting only.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.Logout()

	if c.session.AccessToken() == "" {
		return nil
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}

	resp, err := Chain(c.plain, WithBearer(c.session))(req)
	if err != nil {
		c.logger.Warn("Server logout failed", "error", err)
		return handleRequestError(ctx, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := handleErrorResponse(resp)
		c.logger.Warn("Server logout rejected", "error", apiErr)
		return apiErr
	}
	drain(resp.Body)
	return nil
}

// Refresh forces a token refresh using the stored refresh token
func (c *Client) Refresh(ctx context.Context) (*models.AuthResponse, error) {
	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	auth, err := NewRefresher(c.baseURL, c.plain).Refresh(ctx, refreshToken)
	if err != nil {
		c.session.Logout()
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	c.session.SetAuth(auth.User, auth.AccessToken, auth.RefreshToken)
	return auth, nil
}

// Checkout submits the cart as an invoice and clears the cart on success
func (c *Client) Checkout(ctx context.Context, cart Cart) (*models.Invoice, error) {
	items := cart.CheckoutItems()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	var env models.Envelope[models.Invoice]
	if err := c.do(ctx, http.MethodPost, "/invoices", models.CreateInvoiceRequest{Items: items}, &env); err != nil {
		return nil, err
	}

	cart.ClearCart()
	if c.catalog != nil {
		c.catalog.ClearPrefix("/products")
	}
	c.logger.Info("Invoice created", "invoice_id", env.Data.ID, "lines", len(items))
	return &env.Data, nil
}

// ApproveUser approves a pending registration (admin only)
func (c *Client) ApproveUser(ctx context.Context, userID string) (*models.User, error) {
	var env models.Envelope[models.User]
	if err := c.do(ctx, http.MethodPatch, "/users/"+userID+"/approve", nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Health checks that the API is reachable. It does not need a session.
func (c *Client) Health(ctx context.Context) (*models.Health, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.plain(req)
	if err != nil {
		return nil, handleRequestError(ctx, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp)
	}

	var health models.Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("invalid response from backend: %w", err)
	}
	return &health, nil
}

// do sends an authenticated JSON request through the interceptor and
// decodes a 2xx body into out (when out is non-nil)
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.interceptor.Do(req)
	if err != nil {
		if isProtocolError(err) {
			return err
		}
		return handleRequestError(ctx, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return handleErrorResponse(resp)
	}

	if out == nil {
		drain(resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var req *http.Request
	var err error

	if body == nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	} else {
		data, merr := json.Marshal(body)
		if merr != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", merr)
		}
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
