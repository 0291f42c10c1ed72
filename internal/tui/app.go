// ABOUTME: Root bubbletea model for the interactive storefront browser
// ABOUTME: Catalog and cart screens sharing one cart store, with checkout

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/cart"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/tui/styles"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenCatalog Screen = iota
	ScreenCart
)

const requestTimeout = 15 * time.Second

// API is what the browser needs from the storefront backend
type API interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	Checkout(ctx context.Context) (*models.Invoice, error)
}

// productsLoadedMsg is sent when the catalog has been fetched
type productsLoadedMsg struct {
	products []models.Product
	err      error
}

// checkoutDoneMsg is sent when checkout completes
type checkoutDoneMsg struct {
	invoice *models.Invoice
	err     error
}

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Add      key.Binding
	Inc      key.Binding
	Dec      key.Binding
	Remove   key.Binding
	Filter   key.Binding
	Switch   key.Binding
	Checkout key.Binding
	Reload   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Add:      key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a", "add to cart")),
	Inc:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more")),
	Dec:      key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "less")),
	Remove:   key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "remove")),
	Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Switch:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "catalog/cart")),
	Checkout: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "checkout")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// App is the root model for the TUI
type App struct {
	api      API
	cart     *cart.Store
	userName string

	screen    Screen
	products  []models.Product
	cursor    int
	filter    textinput.Model
	filtering bool
	loading   bool
	status    string
	err       error

	help   help.Model
	width  int
	height int
}

// New creates the browser for a signed-in user
func New(api API, c *cart.Store, userName string) *App {
	ti := textinput.New()
	ti.Placeholder = "search products"
	ti.CharLimit = 64
	ti.Width = 40

	return &App{
		api:      api,
		cart:     c,
		userName: userName,
		screen:   ScreenCatalog,
		filter:   ti,
		loading:  true,
		help:     help.New(),
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.loadProducts()
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case productsLoadedMsg:
		a.loading = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.products = msg.products
		a.clampCursor()
		return a, nil

	case checkoutDoneMsg:
		a.loading = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.err = nil
		a.status = fmt.Sprintf("Invoice %s submitted for %s", msg.invoice.ID, styles.Money(msg.invoice.Total))
		a.screen = ScreenCatalog
		a.cursor = 0
		a.loading = true
		return a, a.loadProducts()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.filtering {
			return a.updateFilter(msg)
		}
		a.status = ""
		switch a.screen {
		case ScreenCatalog:
			return a.updateCatalog(msg)
		case ScreenCart:
			return a.updateCart(msg)
		}
	}

	return a, nil
}

func (a *App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.filtering = false
		a.filter.SetValue("")
		a.filter.Blur()
		a.clampCursor()
		return a, nil
	case "enter":
		a.filtering = false
		a.filter.Blur()
		a.clampCursor()
		return a, nil
	}

	var cmd tea.Cmd
	a.filter, cmd = a.filter.Update(msg)
	a.cursor = 0
	return a, cmd
}

func (a *App) updateCatalog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := a.visibleProducts()

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, keys.Down):
		if a.cursor < len(visible)-1 {
			a.cursor++
		}
	case key.Matches(msg, keys.Add), key.Matches(msg, keys.Inc):
		if a.cursor < len(visible) {
			a.addOne(visible[a.cursor])
		}
	case key.Matches(msg, keys.Filter):
		a.filtering = true
		a.filter.Focus()
		return a, textinput.Blink
	case key.Matches(msg, keys.Switch):
		a.screen = ScreenCart
		a.cursor = 0
	case key.Matches(msg, keys.Reload):
		a.loading = true
		return a, a.loadProducts()
	}
	return a, nil
}

func (a *App) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := a.cart.Items()

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, keys.Down):
		if a.cursor < len(items)-1 {
			a.cursor++
		}
	case key.Matches(msg, keys.Inc):
		if a.cursor < len(items) {
			a.addOne(items[a.cursor].Product)
		}
	case key.Matches(msg, keys.Dec):
		if a.cursor < len(items) {
			item := items[a.cursor]
			a.cart.UpdateQuantity(item.Product.ID, item.Quantity-1)
		}
	case key.Matches(msg, keys.Remove):
		if a.cursor < len(items) {
			a.cart.RemoveItem(items[a.cursor].Product.ID)
		}
	case key.Matches(msg, keys.Checkout):
		if len(items) == 0 {
			a.status = "Cart is empty"
			return a, nil
		}
		a.loading = true
		return a, a.checkout()
	case key.Matches(msg, keys.Switch), msg.String() == "esc":
		a.screen = ScreenCatalog
		a.cursor = 0
		return a, nil
	}

	if n := len(a.cart.Items()); a.cursor >= n && n > 0 {
		a.cursor = n - 1
	}
	return a, nil
}

// addOne adds a unit unless the cart already holds all available stock
func (a *App) addOne(p models.Product) {
	if p.Stock > 0 && a.cart.Quantity(p.ID) >= p.Stock {
		a.status = fmt.Sprintf("Only %d of %s in stock", p.Stock, p.Name)
		return
	}
	a.cart.AddItem(p, 1)
	a.status = fmt.Sprintf("Added %s", p.Name)
}

func (a *App) visibleProducts() []models.Product {
	q := strings.ToLower(strings.TrimSpace(a.filter.Value()))
	if q == "" {
		return a.products
	}
	var out []models.Product
	for _, p := range a.products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, p)
		}
	}
	return out
}

func (a *App) clampCursor() {
	n := len(a.visibleProducts())
	if a.cursor >= n {
		a.cursor = max(n-1, 0)
	}
}

func (a *App) loadProducts() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		products, err := a.api.ListProducts(ctx)
		return productsLoadedMsg{products: products, err: err}
	}
}

func (a *App) checkout() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		inv, err := a.api.Checkout(ctx)
		return checkoutDoneMsg{invoice: inv, err: err}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("Wholesale storefront"))
	if a.userName != "" {
		sb.WriteString("  ")
		sb.WriteString(styles.Subtitle.Render("signed in as " + a.userName))
	}
	sb.WriteString("\n")

	var body string
	var bindings []key.Binding
	switch a.screen {
	case ScreenCart:
		body = a.viewCart()
		bindings = []key.Binding{keys.Up, keys.Down, keys.Inc, keys.Dec, keys.Remove, keys.Checkout, keys.Switch, keys.Quit}
	default:
		body = a.viewCatalog()
		bindings = []key.Binding{keys.Up, keys.Down, keys.Add, keys.Filter, keys.Switch, keys.Reload, keys.Quit}
	}
	sb.WriteString(styles.ActivePanel.Render(body))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Cart: %s items · %s\n",
		styles.ValueStyle.Render(fmt.Sprint(a.cart.TotalItems())),
		styles.ValueStyle.Render(styles.Money(a.cart.TotalPrice())),
	))

	switch {
	case a.err != nil:
		sb.WriteString(styles.StatusError.Render("Error: " + a.err.Error()))
		sb.WriteString("\n")
	case a.loading:
		sb.WriteString(styles.Subtitle.Render("Loading..."))
		sb.WriteString("\n")
	case a.status != "":
		sb.WriteString(styles.StatusOK.Render(a.status))
		sb.WriteString("\n")
	}

	sb.WriteString(styles.Help.Render(a.help.ShortHelpView(bindings)))
	return sb.String()
}

func (a *App) viewCatalog() string {
	var sb strings.Builder
	sb.WriteString(styles.KeyStyle.Render("Catalog"))
	sb.WriteString("\n")
	if a.filtering || a.filter.Value() != "" {
		sb.WriteString(a.filter.View())
		sb.WriteString("\n")
	}

	visible := a.visibleProducts()
	if len(visible) == 0 && !a.loading {
		sb.WriteString(styles.Subtitle.Render("No products"))
		return sb.String()
	}

	maxStock := 1
	for _, p := range visible {
		maxStock = max(maxStock, p.Stock)
	}
	for i, p := range visible {
		line := fmt.Sprintf("%-28s %14s %s %4d",
			truncate(p.Name, 28), styles.Money(p.Price), styles.StockBar(p.Stock, maxStock, 10), p.Stock)
		if q := a.cart.Quantity(p.ID); q > 0 {
			line += styles.StatusOK.Render(fmt.Sprintf("  ×%d in cart", q))
		}
		sb.WriteString(cursorLine(i == a.cursor, line))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (a *App) viewCart() string {
	var sb strings.Builder
	sb.WriteString(styles.KeyStyle.Render("Cart"))
	sb.WriteString("\n")

	items := a.cart.Items()
	if len(items) == 0 {
		sb.WriteString(styles.Subtitle.Render("Your cart is empty"))
		return sb.String()
	}
	for i, item := range items {
		line := fmt.Sprintf("%-28s %4d × %-14s %14s",
			truncate(item.Product.Name, 28), item.Quantity, styles.Money(item.Product.Price), styles.Money(item.Subtotal()))
		sb.WriteString(cursorLine(i == a.cursor, line))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func cursorLine(selected bool, line string) string {
	if selected {
		return lipgloss.NewStyle().Foreground(styles.Accent).Render("> "+line) + "\n"
	}
	return "  " + line + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
