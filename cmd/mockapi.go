// ABOUTME: mock-api command running the in-memory storefront API
// ABOUTME: Seeds demo accounts and catalog; serves Prometheus metrics on /metrics

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/config"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/mockapi"
)

var mockAPIPort string

var mockAPICmd = &cobra.Command{
	Use:   "mock-api",
	Short: "Run the mock storefront API",
	Long: fmt.Sprintf(`Run an in-memory storefront API for local development.

Seeded accounts:
  %s / %s (admin)
  %s / %s (customer)

Environment Variables:
  MOCK_API_PORT        Listen port (default: 8080)
  MOCK_API_JWT_SECRET  HS256 signing secret
  MOCK_API_ACCESS_TTL  Access token lifetime in seconds (default: 900)
  MOCK_API_RATE_LIMIT  Login attempts per client IP per minute, 0 disables (default: 20)`,
		mockapi.SeedAdminEmail, mockapi.SeedAdminPassword,
		mockapi.SeedCustomerEmail, mockapi.SeedCustomerPassword),
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runMockAPI)
	},
}

func init() {
	mockAPICmd.Flags().StringVar(&mockAPIPort, "port", "", "Listen port (overrides MOCK_API_PORT)")
	rootCmd.AddCommand(mockAPICmd)
}

func runMockAPI(ctx context.Context, w io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		return fail(w, err)
	}
	port := cfg.MockAPIPort
	if mockAPIPort != "" {
		port = mockAPIPort
	}

	srv, err := mockapi.New(mockapi.Options{
		JWTSecret:     cfg.MockAPIJWTSecret,
		AccessTTL:     cfg.AccessTTL(),
		Seed:          true,
		Logger:        slog.Default(),
		AuthRateLimit: cfg.MockAPIRateLimit,
	})
	if err != nil {
		return fail(w, err)
	}
	defer srv.Close()

	if err := srv.ListenAndServe(ctx, ":"+port); err != nil {
		return fail(w, err)
	}
	return 0
}
