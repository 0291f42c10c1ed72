// ABOUTME: Prometheus collectors for the storefront HTTP client and mock API
// ABOUTME: Collectors are registered on a caller-supplied registry, never a global one

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Refresh outcomes recorded by the token-refresh protocol
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
	RefreshNoToken = "no_refresh_token"
	RefreshShared  = "shared"
)

// Client holds the collectors for outbound API traffic.
// A nil *Client is valid and records nothing.
type Client struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	refreshTotal    *prometheus.CounterVec
}

// NewClient creates client collectors and registers them on reg
func NewClient(reg prometheus.Registerer) *Client {
	m := &Client{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wholesale_client_requests_total",
				Help: "Total number of API requests sent, by method and status class.",
			},
			[]string{"method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wholesale_client_request_duration_seconds",
				Help:    "Latency of API requests in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		refreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wholesale_client_token_refresh_total",
				Help: "Token refresh attempts triggered by 401 responses, by result.",
			},
			[]string{"result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requestsTotal, m.requestDuration, m.refreshTotal)
	}
	return m
}

// ObserveRequest records one completed request. status 0 means the request
// never produced a response.
func (m *Client) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, StatusClass(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// ObserveRefresh records the outcome of a refresh attempt
func (m *Client) ObserveRefresh(result string) {
	if m == nil {
		return
	}
	m.refreshTotal.WithLabelValues(result).Inc()
}

// RefreshCounter exposes the refresh counter for assertions in tests
func (m *Client) RefreshCounter() *prometheus.CounterVec {
	return m.refreshTotal
}

// Server holds the collectors for the mock API server
type Server struct {
	requestsTotal *prometheus.CounterVec
}

// NewServer creates server collectors and registers them on reg
func NewServer(reg prometheus.Registerer) *Server {
	m := &Server{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wholesale_mockapi_requests_total",
				Help: "Total number of requests served by the mock API, by route and status.",
			},
			[]string{"route", "status"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requestsTotal)
	}
	return m
}

// ObserveRequest records one served request
func (m *Server) ObserveRequest(route string, status int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// StatusClass buckets an HTTP status into 2xx, 4xx, ... or "error"
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
