// ABOUTME: Catalog commands listing products, categories, and brands
// ABOUTME: Paged listings rendered as tables or JSON

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

var (
	listPage     int
	listPageSize int
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List products",
	Run: func(cmd *cobra.Command, args []string) {
		execute(runProducts)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	Run: func(cmd *cobra.Command, args []string) {
		execute(runCategories)
	},
}

var brandsCmd = &cobra.Command{
	Use:   "brands",
	Short: "List brands",
	Run: func(cmd *cobra.Command, args []string) {
		execute(runBrands)
	},
}

func init() {
	for _, c := range []*cobra.Command{productsCmd, categoriesCmd, brandsCmd} {
		addPageFlags(c)
	}
	rootCmd.AddCommand(productsCmd, categoriesCmd, brandsCmd)
}

func addPageFlags(c *cobra.Command) {
	c.Flags().IntVar(&listPage, "page", 1, "Page number")
	c.Flags().IntVar(&listPageSize, "page-size", 0, "Items per page (server default when 0)")
}

func runProducts(ctx context.Context, w io.Writer) int {
	return runList(ctx, w, false, (*client.Client).Products,
		[]string{"ID", "Name", "Price", "Stock"},
		func(p models.Product) []string {
			return []string{p.ID, p.Name, styles.Money(p.Price), fmt.Sprint(p.Stock)}
		})
}

func runCategories(ctx context.Context, w io.Writer) int {
	return runList(ctx, w, false, (*client.Client).Categories,
		[]string{"ID", "Name"},
		func(c models.Category) []string { return []string{c.ID, c.Name} })
}

func runBrands(ctx context.Context, w io.Writer) int {
	return runList(ctx, w, false, (*client.Client).Brands,
		[]string{"ID", "Name"},
		func(b models.Brand) []string { return []string{b.ID, b.Name} })
}

// runList fetches one page of a resource behind the customer or admin guard
// and prints it
func runList[T any](ctx context.Context, w io.Writer, admin bool,
	resource func(*client.Client) *client.Resource[T], headers []string, row func(T) []string) int {
	if listPage < 1 {
		return fail(w, usageError("--page must be at least 1"))
	}
	if listPageSize < 0 {
		return fail(w, usageError("--page-size must not be negative"))
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	guard := a.requireCustomer
	if admin {
		guard = a.requireAdmin
	}
	if err := guard(ctx); err != nil {
		return fail(w, err)
	}

	page, err := resource(a.client).List(ctx, listPage, listPageSize)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		return printJSON(w, page)
	}

	if len(page.Data) == 0 {
		fmt.Fprintln(w, "Nothing to show")
		return 0
	}
	rows := make([][]string, 0, len(page.Data))
	for _, item := range page.Data {
		rows = append(rows, row(item))
	}
	fmt.Fprintln(w, styles.Table(headers, rows))
	fmt.Fprintln(w, formatPageMeta(page.Meta))
	return 0
}

func formatPageMeta(m models.PageMeta) string {
	return styles.Subtitle.Render(fmt.Sprintf("Page %d of %d · %d total", m.CurrentPage, max(m.TotalNoOfPages, 1), m.TotalNoOfData))
}
