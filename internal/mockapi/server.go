// ABOUTME: Mock storefront API for local development and client tests
// ABOUTME: In-memory accounts, catalog, and invoices behind a chi router

package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/metrics"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
)

// Seeded accounts available when Options.Seed is set
const (
	SeedAdminEmail       = "admin@wholesale.test"
	SeedAdminPassword    = "admin-password"
	SeedCustomerEmail    = "customer@wholesale.test"
	SeedCustomerPassword = "customer-password"
)

const defaultPageSize = 10

// Options configures the mock server
type Options struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost; tests pass bcrypt.MinCost
	BcryptCost int
	Seed       bool
	Logger     *slog.Logger
	// Registry receives the server metrics and is served on /metrics.
	// A fresh registry is created when nil.
	Registry *prometheus.Registry
	// Now overrides the clock used for token expiry and invoice timestamps
	Now func() time.Time
	// AuthRateLimit caps login and register attempts per client IP per
	// minute. Zero disables the limit.
	AuthRateLimit int
}

type account struct {
	userID   string
	hash     []byte
	approved bool
}

// Server is the mock storefront API
type Server struct {
	opts     Options
	logger   *slog.Logger
	tokens   *TokenService
	metrics  *metrics.Server
	registry *prometheus.Registry
	now      func() time.Time
	limiter  *rateLimiter

	accountsMu sync.RWMutex
	accounts   map[string]*account

	users      *collection[models.User]
	businesses *collection[models.Business]
	products   *collection[models.Product]
	categories *collection[models.Category]
	brands     *collection[models.Brand]
	invoices   *collection[models.Invoice]
}

// New creates a mock server
func New(opts Options) (*Server, error) {
	if opts.JWTSecret == "" {
		return nil, errors.New("mock API requires a JWT secret")
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		opts:       opts,
		logger:     opts.Logger,
		tokens:     NewTokenService(opts.JWTSecret, opts.AccessTTL, opts.RefreshTTL),
		metrics:    metrics.NewServer(opts.Registry),
		registry:   opts.Registry,
		now:        opts.Now,
		accounts:   make(map[string]*account),
		users:      newCollection(func(u models.User) string { return u.ID }),
		businesses: newCollection(func(b models.Business) string { return b.ID }),
		products:   newCollection(func(p models.Product) string { return p.ID }),
		categories: newCollection(func(c models.Category) string { return c.ID }),
		brands:     newCollection(func(b models.Brand) string { return b.ID }),
		invoices:   newCollection(func(i models.Invoice) string { return i.ID }),
	}

	s.tokens.now = opts.Now
	if opts.AuthRateLimit > 0 {
		s.limiter = newRateLimiter(opts.AuthRateLimit, time.Minute, opts.Now)
	}

	if opts.Seed {
		if err := s.seed(); err != nil {
			s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close releases background resources
func (s *Server) Close() {
	s.tokens.Close()
}

// AddAccount creates a user with a bcrypt-hashed password
func (s *Server) AddAccount(user models.User, password string, approved bool) (models.User, error) {
	email := normalizeEmail(user.Email)
	if email == "" || password == "" {
		return models.User{}, errors.New("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.accountsMu.Lock()
	defer s.accountsMu.Unlock()

	if _, exists := s.accounts[email]; exists {
		return models.User{}, errEmailTaken
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	user.Email = email

	s.accounts[email] = &account{userID: user.ID, hash: hash, approved: approved}
	s.users.put(user)
	return user, nil
}

// AddProduct inserts or replaces a catalog product
func (s *Server) AddProduct(p models.Product) {
	s.products.put(p)
}

// Handler returns the API router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequest, cors)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	r.Get("/health", s.health)

	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(s.limiter))
			r.Post("/login", s.login(false))
			r.Post("/admin/login", s.login(true))
			r.Post("/register", s.register)
		})
		r.Post("/refresh", s.refresh)
		r.With(s.requireAuth).Post("/logout", s.logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/products", listHandler(s.products, nil))
		r.Get("/products/{id}", getHandler(s.products))
		r.Get("/categories", listHandler(s.categories, nil))
		r.Get("/categories/{id}", getHandler(s.categories))
		r.Get("/brands", listHandler(s.brands, nil))
		r.Get("/brands/{id}", getHandler(s.brands))

		r.Get("/invoices", s.listInvoices)
		r.Get("/invoices/{id}", s.getInvoice)
		r.Post("/invoices", s.createInvoice)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Post("/products", createHandler(s.products, func(p *models.Product, id string) { p.ID = id }))
			r.Put("/products/{id}", updateHandler(s.products, func(p *models.Product, id string) { p.ID = id }))
			r.Delete("/products/{id}", deleteHandler(s.products))
			r.Post("/categories", createHandler(s.categories, func(c *models.Category, id string) { c.ID = id }))
			r.Put("/categories/{id}", updateHandler(s.categories, func(c *models.Category, id string) { c.ID = id }))
			r.Delete("/categories/{id}", deleteHandler(s.categories))
			r.Post("/brands", createHandler(s.brands, func(b *models.Brand, id string) { b.ID = id }))
			r.Put("/brands/{id}", updateHandler(s.brands, func(b *models.Brand, id string) { b.ID = id }))
			r.Delete("/brands/{id}", deleteHandler(s.brands))

			r.Get("/users", listHandler(s.users, nil))
			r.Get("/users/{id}", getHandler(s.users))
			r.Patch("/users/{id}/approve", s.approveUser)
			r.Get("/businesses", listHandler(s.businesses, nil))
			r.Get("/businesses/{id}", getHandler(s.businesses))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Mock API listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("Mock API shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) seed() error {
	if _, err := s.AddAccount(models.User{ID: "admin-1", Name: "Store Admin", Email: SeedAdminEmail, Role: models.RoleAdmin}, SeedAdminPassword, true); err != nil {
		return err
	}
	customer, err := s.AddAccount(models.User{ID: "customer-1", Name: "Nile Traders", Email: SeedCustomerEmail, Phone: "+20 100 000 0000", Role: models.RoleCustomer}, SeedCustomerPassword, true)
	if err != nil {
		return err
	}
	s.businesses.put(models.Business{ID: "business-1", Name: "Nile Traders LLC", OwnerID: customer.ID, Approved: true})

	for _, c := range []models.Category{
		{ID: "cat-oils", Name: "Oils"},
		{ID: "cat-grains", Name: "Grains"},
		{ID: "cat-beverages", Name: "Beverages"},
	} {
		s.categories.put(c)
	}
	for _, b := range []models.Brand{
		{ID: "brand-crystal", Name: "Crystal"},
		{ID: "brand-abu-auf", Name: "Abu Auf"},
		{ID: "brand-lipton", Name: "Lipton"},
	} {
		s.brands.put(b)
	}
	for _, p := range []models.Product{
		{ID: "prod-sunflower-5l", Name: "Sunflower oil 5L", Price: 310, Stock: 120, CategoryID: "cat-oils", BrandID: "brand-crystal"},
		{ID: "prod-corn-oil-1l", Name: "Corn oil 1L", Price: 85.5, Stock: 400, CategoryID: "cat-oils", BrandID: "brand-crystal"},
		{ID: "prod-rice-25kg", Name: "Egyptian rice 25kg", Price: 720, Stock: 60, CategoryID: "cat-grains"},
		{ID: "prod-lentils-5kg", Name: "Yellow lentils 5kg", Price: 240, Stock: 90, CategoryID: "cat-grains", BrandID: "brand-abu-auf"},
		{ID: "prod-tea-100", Name: "Black tea 100 bags", Price: 95, Stock: 300, CategoryID: "cat-beverages", BrandID: "brand-lipton"},
		{ID: "prod-coffee-1kg", Name: "Turkish coffee 1kg", Price: 450, Stock: 45, CategoryID: "cat-beverages", BrandID: "brand-abu-auf"},
	} {
		s.products.put(p)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
