// ABOUTME: Cart commands for the locally stored shopping cart
// ABOUTME: show, add, remove, update, and clear; add looks the product up on the server

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/cart"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/tui/styles"
)

var addQuantity int

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
	Long:  `Manage the shopping cart. The cart is kept between runs and submitted with 'wholesale checkout'.`,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cart contents and totals",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runCartShow)
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <productID>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int { return runCartAdd(ctx, w, args[0]) })
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <productID>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int { return runCartRemove(ctx, w, args[0]) })
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <productID> <quantity>",
	Short: "Set the quantity of a product (0 removes it)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int { return runCartUpdate(ctx, w, args[0], args[1]) })
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runCartClear)
	},
}

func init() {
	cartAddCmd.Flags().IntVar(&addQuantity, "qty", 1, "Quantity to add")
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartRemoveCmd, cartUpdateCmd, cartClearCmd)
	rootCmd.AddCommand(cartCmd)
}

func runCartShow(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	state := a.cart.State()
	if IsJSONOutput() {
		return printJSON(w, state)
	}
	fmt.Fprintln(w, formatCartHuman(state))
	return 0
}

func runCartAdd(ctx context.Context, w io.Writer, productID string) int {
	if addQuantity < 1 {
		return fail(w, usageError("--qty must be at least 1"))
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	if err := a.requireCustomer(ctx); err != nil {
		return fail(w, err)
	}

	product, err := a.client.Products().Get(ctx, productID)
	if err != nil {
		return fail(w, err)
	}

	if want := a.cart.Quantity(product.ID) + addQuantity; want > product.Stock {
		return fail(w, usageError("only %d of %s in stock", product.Stock, product.Name))
	}

	a.cart.AddItem(*product, addQuantity)
	if IsJSONOutput() {
		return printJSON(w, a.cart.State())
	}
	fmt.Fprintf(w, "Added %d × %s\n", addQuantity, product.Name)
	fmt.Fprintln(w, formatCartSummary(a.cart.State()))
	return 0
}

func runCartRemove(ctx context.Context, w io.Writer, productID string) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	if a.cart.Quantity(productID) == 0 {
		return fail(w, usageError("%s is not in the cart", productID))
	}
	a.cart.RemoveItem(productID)
	if IsJSONOutput() {
		return printJSON(w, a.cart.State())
	}
	fmt.Fprintf(w, "Removed %s\n", productID)
	fmt.Fprintln(w, formatCartSummary(a.cart.State()))
	return 0
}

func runCartUpdate(ctx context.Context, w io.Writer, productID, quantity string) int {
	qty, err := strconv.Atoi(quantity)
	if err != nil || qty < 0 {
		return fail(w, usageError("quantity must be a whole number, got %q", quantity))
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	if a.cart.Quantity(productID) == 0 {
		return fail(w, usageError("%s is not in the cart", productID))
	}
	a.cart.UpdateQuantity(productID, qty)
	if IsJSONOutput() {
		return printJSON(w, a.cart.State())
	}
	fmt.Fprintln(w, formatCartSummary(a.cart.State()))
	return 0
}

func runCartClear(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	a.cart.ClearCart()
	fmt.Fprintln(w, "Cart cleared")
	return 0
}

// formatCartHuman renders cart lines as a table with totals
func formatCartHuman(state cart.State) string {
	if len(state.Items) == 0 {
		return "Your cart is empty"
	}
	rows := make([][]string, 0, len(state.Items))
	for _, item := range state.Items {
		rows = append(rows, []string{
			item.Product.ID,
			item.Product.Name,
			strconv.Itoa(item.Quantity),
			styles.Money(item.Product.Price),
			styles.Money(item.Subtotal()),
		})
	}
	return styles.Table([]string{"ID", "Product", "Qty", "Price", "Subtotal"}, rows) + "\n" + formatCartSummary(state)
}

func formatCartSummary(state cart.State) string {
	return fmt.Sprintf("Items: %d  Total: %s", state.TotalItems, styles.Money(state.TotalPrice))
}
