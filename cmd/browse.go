// ABOUTME: Browse command launching the interactive catalog and cart browser
// ABOUTME: Adapts the API client and cart store to the TUI

package cmd

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/cart"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/client"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/tui"
)

// browsePageSize is the largest page the API serves
const browsePageSize = 100

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalog and manage the cart interactively",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runBrowse)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// browseAPI binds the client to the cart for the TUI
type browseAPI struct {
	client *client.Client
	cart   *cart.Store
}

func (b browseAPI) ListProducts(ctx context.Context) ([]models.Product, error) {
	page, err := b.client.Products().List(ctx, 1, browsePageSize)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (b browseAPI) Checkout(ctx context.Context) (*models.Invoice, error) {
	return b.client.Checkout(ctx, b.cart)
}

func runBrowse(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	if err := a.requireCustomer(ctx); err != nil {
		return fail(w, err)
	}

	app := tui.New(browseAPI{client: a.client, cart: a.cart}, a.cart, a.session.User().Name)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fail(w, err)
	}
	return 0
}
