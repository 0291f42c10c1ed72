// ABOUTME: Shared fixtures for client tests
// ABOUTME: A fake storefront backend and a session that counts writes

package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/session"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/storage"
)

var testUser = &models.User{ID: "u-1", Name: "Mona", Email: "mona@example.com", Role: models.RoleCustomer}

// countingSession records how often the interceptor writes the session
type countingSession struct {
	*session.Store
	mu       sync.Mutex
	setAuths int
	logouts  int
}

func newCountingSession(accessToken, refreshToken string) *countingSession {
	s := session.New(storage.NewMemoryStore())
	if accessToken != "" {
		s.SetAuth(testUser, accessToken, refreshToken)
	}
	return &countingSession{Store: s}
}

func (c *countingSession) SetAuth(user *models.User, accessToken, refreshToken string) {
	c.mu.Lock()
	c.setAuths++
	c.mu.Unlock()
	c.Store.SetAuth(user, accessToken, refreshToken)
}

func (c *countingSession) Logout() {
	c.mu.Lock()
	c.logouts++
	c.mu.Unlock()
	c.Store.Logout()
}

func (c *countingSession) counts() (setAuths, logouts int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setAuths, c.logouts
}

// fakeAPI accepts one bearer token on every protected route and rotates it on refresh
type fakeAPI struct {
	mu            sync.Mutex
	validToken    string
	nextToken     string
	nextRefresh   string
	refreshStatus int
	refreshDelay  time.Duration
	wrapRefresh   bool
	rejectAll     bool
	failStatus    int
	refreshCalls  int
	refreshSeen   []string
	authHeaders   []string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body models.RefreshRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode refresh body: %v", err)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("refresh call must not carry a bearer token, got %q", r.Header.Get("Authorization"))
		}

		f.mu.Lock()
		f.refreshCalls++
		f.refreshSeen = append(f.refreshSeen, body.RefreshToken)
		status, delay := f.refreshStatus, f.refreshDelay
		f.mu.Unlock()

		time.Sleep(delay)

		w.Header().Set("Content-Type", "application/json")
		if status != 0 && status != http.StatusOK {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(models.ErrorResponse{Message: "refresh token revoked"})
			return
		}

		f.mu.Lock()
		f.validToken = f.nextToken
		auth := models.AuthResponse{User: testUser, AccessToken: f.nextToken, RefreshToken: f.nextRefresh}
		wrap := f.wrapRefresh
		f.mu.Unlock()

		if wrap {
			json.NewEncoder(w).Encode(models.Envelope[models.AuthResponse]{Success: true, Data: auth})
			return
		}
		json.NewEncoder(w).Encode(auth)
	})

	protected := func(w http.ResponseWriter, r *http.Request) bool {
		header := r.Header.Get("Authorization")
		f.mu.Lock()
		f.authHeaders = append(f.authHeaders, header)
		ok := !f.rejectAll && header == "Bearer "+f.validToken
		failStatus := f.failStatus
		f.mu.Unlock()
		if failStatus != 0 {
			w.WriteHeader(failStatus)
			json.NewEncoder(w).Encode(models.ErrorResponse{Message: "nope"})
			return false
		}
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse{Message: "jwt expired"})
		}
		return ok
	}

	mux.HandleFunc("GET /products", func(w http.ResponseWriter, r *http.Request) {
		if !protected(w, r) {
			return
		}
		json.NewEncoder(w).Encode(models.Envelope[models.Page[models.Product]]{
			Success: true,
			Data: models.Page[models.Product]{
				Data: []models.Product{{ID: "p-1", Name: "Olive oil 5L", Price: 12.5}},
				Meta: models.PageMeta{TotalNoOfPages: 1, TotalNoOfData: 1, CurrentPage: 1, PageSize: 10},
			},
		})
	})

	mux.HandleFunc("POST /invoices", func(w http.ResponseWriter, r *http.Request) {
		if !protected(w, r) {
			return
		}
		var req models.CreateInvoiceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode invoice body: %v", err)
		}
		json.NewEncoder(w).Encode(models.Envelope[models.Invoice]{
			Success: true,
			Data:    models.Invoice{ID: "inv-1", Items: req.Items, Status: "pending"},
		})
	})

	return mux
}

func (f *fakeAPI) stats() (refreshCalls int, authHeaders []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls, append([]string(nil), f.authHeaders...)
}

func newFakeServer(t *testing.T, f *fakeAPI) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(f.handler(t))
	t.Cleanup(server.Close)
	return server
}
