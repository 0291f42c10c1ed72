// ABOUTME: Tests for the storefront API client
// ABOUTME: Uses httptest to mock backend responses

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/metrics"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
)

type stubCart struct {
	items   []models.InvoiceItem
	cleared int
}

func (s *stubCart) CheckoutItems() []models.InvoiceItem { return s.items }
func (s *stubCart) ClearCart()                          { s.cleared++; s.items = nil }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestLogin_StoresSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("expected path /auth/login, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not send a bearer token")
		}
		var req models.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "mona@example.com" || req.Password != "secret" {
			t.Errorf("unexpected credentials %+v", req)
		}
		writeJSON(w, http.StatusOK, models.Envelope[models.AuthResponse]{
			Success: true,
			Data:    models.AuthResponse{User: testUser, AccessToken: "access-1", RefreshToken: "refresh-1"},
		})
	}))
	defer server.Close()

	sess := newCountingSession("", "")
	c := New(server.URL, sess)
	auth, err := c.Login(context.Background(), "mona@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth.User.ID != "u-1" {
		t.Errorf("expected user u-1, got %s", auth.User.ID)
	}
	if !sess.IsAuthenticated() || sess.IsAdmin() {
		t.Error("expected an authenticated non-admin session")
	}
	if sess.AccessToken() != "access-1" || sess.RefreshToken() != "refresh-1" {
		t.Errorf("unexpected tokens %s/%s", sess.AccessToken(), sess.RefreshToken())
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Message: "invalid email or password"})
	}))
	defer server.Close()

	sess := newCountingSession("", "")
	c := New(server.URL, sess)
	_, err := c.Login(context.Background(), "mona@example.com", "wrong")

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "invalid email or password" {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
	if setAuths, logouts := sess.counts(); setAuths != 0 || logouts != 0 {
		t.Errorf("login failures must not touch the session, got %d/%d", setAuths, logouts)
	}
}

func TestAdminLogin_UsesAdminEndpoint(t *testing.T) {
	admin := &models.User{ID: "a-1", Name: "Ola", Role: models.RoleAdmin}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/admin/login" {
			t.Errorf("expected path /auth/admin/login, got %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, models.Envelope[models.AuthResponse]{
			Success: true,
			Data:    models.AuthResponse{User: admin, AccessToken: "a", RefreshToken: "r"},
		})
	}))
	defer server.Close()

	sess := newCountingSession("", "")
	c := New(server.URL, sess)
	if _, err := c.AdminLogin(context.Background(), "ola@example.com", "secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sess.IsAdmin() {
		t.Error("expected admin session")
	}
}

func TestRegister(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusCreated, models.Envelope[models.User]{
			Success: true,
			Data:    models.User{ID: "u-9", Name: req.Name, Email: req.Email, Role: models.RoleCustomer},
		})
	}))
	defer server.Close()

	sess := newCountingSession("", "")
	c := New(server.URL, sess)
	user, err := c.Register(context.Background(), models.RegisterRequest{Name: "Sara", Email: "sara@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u-9" || user.Name != "Sara" {
		t.Errorf("unexpected user %+v", user)
	}
	if sess.IsAuthenticated() {
		t.Error("registration must not sign in")
	}
}

func TestLogout_ClearsSessionEvenWhenServerFails(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Message: "boom"})
	}))
	defer server.Close()

	sess := newCountingSession("access-1", "refresh-1")
	c := New(server.URL, sess)
	err := c.Logout(context.Background())
	if err == nil {
		t.Error("expected server error to be reported")
	}
	if gotAuth != "Bearer access-1" {
		t.Errorf("expected bearer on logout, got %q", gotAuth)
	}
	if sess.IsAuthenticated() || sess.RefreshToken() != "" {
		t.Error("expected local session to be cleared")
	}
}

func TestLogout_WithoutSessionSkipsServer(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := New(server.URL, newCountingSession("", ""))
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no server call, got %d", calls.Load())
	}
}

func TestRefresh_Explicit(t *testing.T) {
	api := &fakeAPI{nextToken: "access-2", nextRefresh: "refresh-2"}
	server := newFakeServer(t, api)

	t.Run("with refresh token", func(t *testing.T) {
		sess := newCountingSession("access-1", "refresh-1")
		c := New(server.URL, sess)
		if _, err := c.Refresh(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sess.AccessToken() != "access-2" {
			t.Errorf("expected access-2, got %s", sess.AccessToken())
		}
	})

	t.Run("without refresh token", func(t *testing.T) {
		c := New(server.URL, newCountingSession("access-1", ""))
		if _, err := c.Refresh(context.Background()); !errors.Is(err, ErrNoRefreshToken) {
			t.Errorf("expected ErrNoRefreshToken, got %v", err)
		}
	})
}

func TestCheckout(t *testing.T) {
	api := &fakeAPI{validToken: "access-1"}
	server := newFakeServer(t, api)
	c := New(server.URL, newCountingSession("access-1", "refresh-1"))

	t.Run("empty cart", func(t *testing.T) {
		cart := &stubCart{}
		if _, err := c.Checkout(context.Background(), cart); !errors.Is(err, ErrEmptyCart) {
			t.Errorf("expected ErrEmptyCart, got %v", err)
		}
		if cart.cleared != 0 {
			t.Error("empty checkout must not clear")
		}
	})

	t.Run("submits and clears", func(t *testing.T) {
		items := []models.InvoiceItem{{ProductID: "p-1", Quantity: 2}, {ProductID: "p-2", Quantity: 1}}
		cart := &stubCart{items: items}
		inv, err := c.Checkout(context.Background(), cart)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(items, inv.Items); diff != "" {
			t.Errorf("invoice items mismatch (-want +got):\n%s", diff)
		}
		if cart.cleared != 1 {
			t.Errorf("expected cart cleared once, got %d", cart.cleared)
		}
	})

	t.Run("failure keeps cart", func(t *testing.T) {
		api.mu.Lock()
		api.failStatus = http.StatusBadRequest
		api.mu.Unlock()
		defer func() {
			api.mu.Lock()
			api.failStatus = 0
			api.mu.Unlock()
		}()

		cart := &stubCart{items: []models.InvoiceItem{{ProductID: "p-1", Quantity: 1}}}
		if _, err := c.Checkout(context.Background(), cart); err == nil {
			t.Fatal("expected error, got nil")
		}
		if cart.cleared != 0 {
			t.Error("failed checkout must keep the cart")
		}
	})
}

func TestResourceList_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantIDs  []string
		wantMeta models.PageMeta
	}{
		{
			name:     "plain array",
			body:     `{"success":true,"data":[{"id":"c-1","name":"Oils"},{"id":"c-2","name":"Rice"}]}`,
			wantIDs:  []string{"c-1", "c-2"},
			wantMeta: models.PageMeta{TotalNoOfPages: 1, TotalNoOfData: 2, CurrentPage: 1, PageSize: 2},
		},
		{
			name:     "paginated",
			body:     `{"success":true,"data":{"data":[{"id":"c-3","name":"Tea"}],"meta":{"totalNoOfPages":4,"totalNoOfData":31,"currentPage":2,"pageSize":10}}}`,
			wantIDs:  []string{"c-3"},
			wantMeta: models.PageMeta{TotalNoOfPages: 4, TotalNoOfData: 31, CurrentPage: 2, PageSize: 10},
		},
		{
			name:     "paginated empty",
			body:     `{"success":true,"data":{"data":null,"meta":{"totalNoOfPages":0,"totalNoOfData":0,"currentPage":1,"pageSize":10}}}`,
			wantIDs:  []string{},
			wantMeta: models.PageMeta{TotalNoOfPages: 0, TotalNoOfData: 0, CurrentPage: 1, PageSize: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := New(server.URL, newCountingSession("", ""))
			page, err := c.Categories().List(context.Background(), 0, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			ids := []string{}
			for _, cat := range page.Data {
				ids = append(ids, cat.ID)
			}
			if diff := cmp.Diff(tt.wantIDs, ids); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantMeta, page.Meta); diff != "" {
				t.Errorf("meta mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResourceList_PagingQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "3" {
			t.Errorf("expected page=3, got %q", got)
		}
		if got := r.URL.Query().Get("pageSize"); got != "25" {
			t.Errorf("expected pageSize=25, got %q", got)
		}
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer server.Close()

	c := New(server.URL, newCountingSession("", ""))
	if _, err := c.Users().List(context.Background(), 3, 25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResourceList_CatalogCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Method == http.MethodPost {
			w.Write([]byte(`{"success":true,"data":{"id":"b-2","name":"New"}}`))
			return
		}
		w.Write([]byte(`{"success":true,"data":[{"id":"b-1","name":"Crystal"}]}`))
	}))
	defer server.Close()

	c := New(server.URL, newCountingSession("", ""), WithCatalogCache(time.Minute))
	defer c.Close()
	ctx := context.Background()

	for range 3 {
		if _, err := c.Brands().List(ctx, 0, 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 backend call with cache, got %d", calls.Load())
	}

	if _, err := c.Brands().Create(ctx, models.Brand{Name: "New"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Brands().List(ctx, 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected create to invalidate the cache, got %d calls", calls.Load())
	}
}

func TestResource_GetUpdateDelete(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`{"success":true,"data":{"id":"p-1","name":"Olive oil","price":12.5}}`))
	}))
	defer server.Close()

	c := New(server.URL, newCountingSession("access-1", "refresh-1"))
	ctx := context.Background()

	p, err := c.Products().Get(ctx, "p-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Price != 12.5 {
		t.Errorf("expected price 12.5, got %v", p.Price)
	}
	if _, err := c.Products().Update(ctx, "p-1", p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Products().Delete(ctx, "p-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"GET /products/p-1", "PUT /products/p-1", "DELETE /products/p-1"}
	if diff := cmp.Diff(want, methods); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestApproveUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/users/u-9/approve" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"success":true,"data":{"id":"u-9","name":"Sara","role":"customer"}}`))
	}))
	defer server.Close()

	c := New(server.URL, newCountingSession("admin-token", "r"))
	user, err := c.ApproveUser(context.Background(), "u-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u-9" {
		t.Errorf("expected u-9, got %s", user.ID)
	}
}

func TestClient_ConnectionError(t *testing.T) {
	c := New("http://localhost:99999", newCountingSession("", ""))
	_, err := c.Products().List(context.Background(), 0, 0)
	if err == nil {
		t.Fatal("expected connection error, got nil")
	}
	if isProtocolError(err) {
		t.Errorf("connection failure misreported as protocol error: %v", err)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer server.Close()

	c := New(server.URL, newCountingSession("", ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Products().List(ctx, 0, 0)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestClient_RecordsRequestMetrics(t *testing.T) {
	api := &fakeAPI{validToken: "stale", nextToken: "access-2", nextRefresh: "refresh-2"}
	server := newFakeServer(t, api)
	reg := prometheus.NewRegistry()
	m := metrics.NewClient(reg)

	c := New(server.URL, newCountingSession("access-1", "refresh-1"), WithMetrics(m))
	if _, err := c.Products().List(context.Background(), 0, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 401, refresh 200, replay 200
	if got := testutil.CollectAndCount(reg, "wholesale_client_requests_total"); got != 3 {
		t.Errorf("expected 3 request series (GET 4xx, POST 2xx, GET 2xx), got %d", got)
	}
	if got := testutil.ToFloat64(m.RefreshCounter().WithLabelValues(metrics.RefreshSuccess)); got != 1 {
		t.Errorf("expected 1 refresh success, got %v", got)
	}
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("expected /health, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("health check should not send a bearer token")
		}
		writeJSON(w, http.StatusOK, models.Health{Status: "ok", Products: 3, Accounts: 1})
	}))
	defer server.Close()

	c := New(server.URL, newCountingSession("some-token", "some-refresh"))
	health, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.Status != "ok" || health.Products != 3 {
		t.Errorf("unexpected health: %+v", health)
	}
}

func TestClient_HealthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Message: "maintenance"})
	}))
	defer server.Close()

	c := New(server.URL, newCountingSession("", ""))
	_, err := c.Health(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 APIError, got %v", err)
	}
	if apiErr.Message != "maintenance" {
		t.Errorf("expected message from body, got %q", apiErr.Message)
	}
}
