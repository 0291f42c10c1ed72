// ABOUTME: Checkout command submitting the cart as an invoice
// ABOUTME: Clears the cart once the server accepts the order

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/tui/styles"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Submit the cart as an order",
	Long: `Submit the cart as an order. The cart is cleared once the order is accepted.

Exit codes:
  0 - Order submitted
  1 - Not signed in, session expired, or empty cart
  2 - Order rejected or backend unreachable`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runCheckout)
	},
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
}

func runCheckout(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	if err := a.requireCustomer(ctx); err != nil {
		return fail(w, err)
	}

	names := make(map[string]string)
	for _, item := range a.cart.Items() {
		names[item.Product.ID] = item.Product.Name
	}

	invoice, err := a.client.Checkout(ctx, a.cart)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		return printJSON(w, invoice)
	}
	fmt.Fprintln(w, formatInvoiceHuman(invoice, names))
	return 0
}

// formatInvoiceHuman renders a submitted invoice. names maps product ids to
// display names where known.
func formatInvoiceHuman(inv *models.Invoice, names map[string]string) string {
	rows := make([][]string, 0, len(inv.Items))
	for _, item := range inv.Items {
		name := names[item.ProductID]
		if name == "" {
			name = item.ProductID
		}
		rows = append(rows, []string{name, strconv.Itoa(item.Quantity)})
	}
	return fmt.Sprintf("%s Order %s submitted (%s)\n%s\nTotal: %s",
		styles.StatusOK.Render("✓"), inv.ID, inv.Status,
		styles.Table([]string{"Product", "Qty"}, rows),
		styles.Money(inv.Total))
}
