// ABOUTME: Tests for Prometheus collectors
// ABOUTME: Verifies registration, labels, and nil-receiver safety

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{200, "2xx"},
		{201, "2xx"},
		{401, "4xx"},
		{503, "5xx"},
		{0, "error"},
		{700, "error"},
	}
	for _, tt := range tests {
		if got := StatusClass(tt.status); got != tt.want {
			t.Errorf("StatusClass(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestClient_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewClient(reg)

	m.ObserveRequest("GET", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", 204, 10*time.Millisecond)
	m.ObserveRequest("POST", 401, 10*time.Millisecond)

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "2xx")); got != 2 {
		t.Errorf("expected 2 GET 2xx requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "4xx")); got != 1 {
		t.Errorf("expected 1 POST 4xx request, got %v", got)
	}
}

func TestClient_ObserveRefresh(t *testing.T) {
	m := NewClient(prometheus.NewRegistry())

	m.ObserveRefresh(RefreshSuccess)
	m.ObserveRefresh(RefreshNoToken)
	m.ObserveRefresh(RefreshNoToken)

	if got := testutil.ToFloat64(m.RefreshCounter().WithLabelValues(RefreshSuccess)); got != 1 {
		t.Errorf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.RefreshCounter().WithLabelValues(RefreshNoToken)); got != 2 {
		t.Errorf("expected 2 no-token results, got %v", got)
	}
}

func TestNilReceiversAreSafe(t *testing.T) {
	var c *Client
	c.ObserveRequest("GET", 200, time.Millisecond)
	c.ObserveRefresh(RefreshFailure)

	var s *Server
	s.ObserveRequest("/products", 200)
}

func TestServer_ObserveRequest(t *testing.T) {
	m := NewServer(prometheus.NewRegistry())
	m.ObserveRequest("/auth/login", 200)

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("/auth/login", "200")); got != 1 {
		t.Errorf("expected 1 login request, got %v", got)
	}
}

func TestDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewClient(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected registering the same collectors twice to panic")
		}
	}()
	NewClient(reg)
}
