// ABOUTME: Health command for the wholesale CLI
// ABOUTME: Checks API connectivity without needing a session

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	Long:  `Check connectivity to the storefront API and report its status.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runHealth)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	resp, err := a.client.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		return printJSON(w, struct {
			Backend string `json:"backend"`
			*models.Health
		}{a.client.BaseURL(), resp})
	}
	fmt.Fprintln(w, formatHealthHuman(a.client.BaseURL(), resp))
	return 0
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, resp *models.Health) string {
	return fmt.Sprintf(`Backend:  %s
Status:   %s
Products: %d
Accounts: %d`, url, resp.Status, resp.Products, resp.Accounts)
}
