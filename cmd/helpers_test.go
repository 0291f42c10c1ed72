// ABOUTME: Shared fixtures for command tests
// ABOUTME: Starts a seeded mock API and points configuration at a temp directory

package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/mockapi"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type testEnv struct {
	api   *mockapi.Server
	clock *testClock
	dir   string
}

// setupTest starts a seeded mock API, isolates stored state in a temp dir,
// and resets every command flag
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	clk := &testClock{now: time.Now()}
	api, err := mockapi.New(mockapi.Options{
		JWTSecret:  "cmd-test-secret",
		AccessTTL:  time.Minute,
		BcryptCost: bcrypt.MinCost,
		Seed:       true,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        clk.Now,
	})
	if err != nil {
		t.Fatalf("failed to create mock API: %v", err)
	}
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)
	t.Cleanup(api.Close)

	dir := t.TempDir()
	t.Setenv("STOREFRONT_API_URL", server.URL)
	t.Setenv("STOREFRONT_STORAGE", "file")
	t.Setenv("STOREFRONT_CONFIG_DIR", dir)
	t.Setenv("STOREFRONT_ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("STOREFRONT_CATALOG_CACHE_TTL", "0")

	resetFlags()
	prevInteractive := interactive
	interactive = func() bool { return false }
	t.Cleanup(func() {
		interactive = prevInteractive
		resetFlags()
	})

	return &testEnv{api: api, clock: clk, dir: dir}
}

func resetFlags() {
	apiURL = ""
	jsonOutput = false
	loginEmail = ""
	loginPassword = ""
	registerReq.Name = ""
	registerReq.BusinessName = ""
	registerReq.Email = ""
	registerReq.Phone = ""
	registerReq.Password = ""
	listPage = 1
	listPageSize = 0
	addQuantity = 1
}

// signIn runs the login command with the given credentials and fails the test
// unless it succeeds
func signIn(t *testing.T, admin bool, email, password string) {
	t.Helper()
	loginEmail, loginPassword = email, password
	defer func() { loginEmail, loginPassword = "", "" }()

	var buf bytes.Buffer
	if code := runLogin(context.Background(), &buf, admin); code != 0 {
		t.Fatalf("login failed with exit code %d: %s", code, buf.String())
	}
}

func signInCustomer(t *testing.T) {
	t.Helper()
	signIn(t, false, mockapi.SeedCustomerEmail, mockapi.SeedCustomerPassword)
}

func signInAdmin(t *testing.T) {
	t.Helper()
	signIn(t, true, mockapi.SeedAdminEmail, mockapi.SeedAdminPassword)
}
