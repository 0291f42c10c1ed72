// ABOUTME: Admin commands for users, businesses, and invoices
// ABOUTME: Every subcommand requires an admin session

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/client"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/tui/styles"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administer accounts and orders",
	Long:  `Administer accounts and orders. Sign in with 'wholesale admin-login' first.`,
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List user accounts",
	Run: func(cmd *cobra.Command, args []string) {
		execute(runAdminUsers)
	},
}

var adminBusinessesCmd = &cobra.Command{
	Use:   "businesses",
	Short: "List customer businesses and their approval state",
	Run: func(cmd *cobra.Command, args []string) {
		execute(runAdminBusinesses)
	},
}

var adminInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "List submitted invoices",
	Run: func(cmd *cobra.Command, args []string) {
		execute(runAdminInvoices)
	},
}

var adminApproveCmd = &cobra.Command{
	Use:   "approve <userID>",
	Short: "Approve a pending customer account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int { return runAdminApprove(ctx, w, args[0]) })
	},
}

func init() {
	for _, c := range []*cobra.Command{adminUsersCmd, adminBusinessesCmd, adminInvoicesCmd} {
		addPageFlags(c)
	}
	adminCmd.AddCommand(adminUsersCmd, adminBusinessesCmd, adminInvoicesCmd, adminApproveCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminUsers(ctx context.Context, w io.Writer) int {
	return runList(ctx, w, true, (*client.Client).Users,
		[]string{"ID", "Name", "Email", "Role"},
		func(u models.User) []string { return []string{u.ID, u.Name, u.Email, u.Role} })
}

func runAdminBusinesses(ctx context.Context, w io.Writer) int {
	return runList(ctx, w, true, (*client.Client).Businesses,
		[]string{"ID", "Name", "Owner", "Status"},
		func(b models.Business) []string {
			status := styles.StatusWarning.Render("pending")
			if b.Approved {
				status = styles.StatusOK.Render("approved")
			}
			return []string{b.ID, b.Name, b.OwnerID, status}
		})
}

func runAdminInvoices(ctx context.Context, w io.Writer) int {
	return runList(ctx, w, true, (*client.Client).Invoices,
		[]string{"ID", "User", "Items", "Total", "Status", "Created"},
		func(inv models.Invoice) []string {
			return []string{
				inv.ID, inv.UserID, fmt.Sprint(len(inv.Items)), styles.Money(inv.Total),
				inv.Status, inv.CreatedAt.Format("2006-01-02 15:04"),
			}
		})
}

func runAdminApprove(ctx context.Context, w io.Writer, userID string) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	if err := a.requireAdmin(ctx); err != nil {
		return fail(w, err)
	}

	user, err := a.client.ApproveUser(ctx, userID)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, user)
	}
	fmt.Fprintf(w, "%s Approved %s <%s>\n", styles.StatusOK.Render("✓"), user.Name, user.Email)
	return 0
}
