// ABOUTME: Root command for the wholesale storefront CLI
// ABOUTME: Handles global flags and logging setup

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/logger"
)

var (
	apiURL     string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "wholesale",
	Short: "CLI for the wholesale storefront",
	Long: `wholesale is a command-line client for the wholesale storefront API.

It keeps a signed-in session and a shopping cart between runs, refreshing
expired access tokens automatically.

Exit codes:
  0 - Success
  1 - Not signed in, session expired, or invalid input
  2 - Backend or connectivity error

Environment Variables:
  STOREFRONT_API_URL     Backend API URL (default: http://localhost:8080)
  STOREFRONT_STORAGE     Where session and cart are kept: memory, file, redis (default: file)
  STOREFRONT_CONFIG_DIR  Directory for config.yaml and stored state
  LOG_LEVEL              debug, info, warn, error (default: info)`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(os.Stderr)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides STOREFRONT_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
