// ABOUTME: Shared wiring for commands: config, storage, session, cart, and API client
// ABOUTME: Also maps errors onto exit codes and runs session guards

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/cart"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/client"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/config"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/session"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/storage"
)

// interactive reports whether prompts may be shown; tests turn it off
var interactive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// app is everything a command needs to talk to the storefront
type app struct {
	cfg     *config.Config
	session *session.Store
	cart    *cart.Store
	client  *client.Client
	closers []func() error
}

// newApp loads configuration and opens the persisted session and cart
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.SetAPIURL(apiURL)
	}

	a := &app{cfg: cfg}
	backend, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	a.session = session.New(backend)
	a.cart = cart.New(backend)
	a.client = client.New(cfg.APIURL, a.session,
		client.WithTimeout(cfg.Timeout()),
		client.WithCatalogCache(cfg.CatalogTTL()),
	)
	a.closers = append(a.closers, func() error {
		a.client.Close()
		return nil
	})
	return a, nil
}

func (a *app) openStorage(ctx context.Context) (storage.Storage, error) {
	switch a.cfg.Storage {
	case config.StorageMemory:
		return storage.NewMemoryStore(), nil
	case config.StorageRedis:
		rs, err := storage.DialRedis(ctx, a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB, a.cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rs.Close)
		return rs, nil
	default:
		return storage.NewFileStore(a.cfg.ConfigDir), nil
	}
}

// Close releases the client cache and any storage connection
func (a *app) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

// guardError is returned when a command needs a session the user does not have
type guardError struct {
	redirect string
}

func (e *guardError) Error() string {
	if e.redirect == session.AdminLoginPath {
		return "admin access required: run `wholesale admin-login`"
	}
	return "not signed in: run `wholesale login`"
}

func (a *app) requireCustomer(ctx context.Context) error {
	return a.require(ctx, session.CustomerGuard)
}

func (a *app) requireAdmin(ctx context.Context) error {
	return a.require(ctx, session.AdminGuard)
}

// require runs guard. A session denied only because the access token has
// expired is refreshed once and checked again.
func (a *app) require(ctx context.Context, guard func(*session.Store) session.Decision) error {
	d := guard(a.session)
	if d.Allowed {
		return nil
	}

	if a.session.IsAuthenticated() && a.session.IsTokenExpired() && a.session.RefreshToken() != "" {
		if _, err := a.client.Refresh(ctx); err != nil {
			return err
		}
		if d = guard(a.session); d.Allowed {
			return nil
		}
	}
	return &guardError{redirect: d.Redirect}
}

// exitCodeFor maps an error to the CLI exit code
func exitCodeFor(err error) int {
	var ge *guardError
	var apiErr *client.APIError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden:
		return 1
	case errors.As(err, &ge),
		errors.Is(err, client.ErrUnauthorized),
		errors.Is(err, client.ErrNoRefreshToken),
		errors.Is(err, client.ErrRefreshFailed),
		errors.Is(err, client.ErrEmptyCart),
		errors.Is(err, errUsage):
		return 1
	default:
		return 2
	}
}

// errUsage marks invalid arguments or missing input
var errUsage = errors.New("invalid input")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// fail prints err and returns its exit code
func fail(w io.Writer, err error) int {
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitCodeFor(err)
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) int {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fail(w, err)
	}
	fmt.Fprintln(w, string(data))
	return 0
}

// execute runs a command body with a signal-aware context and exits with its code
func execute(run func(ctx context.Context, w io.Writer) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	exitCode := run(ctx, os.Stdout)
	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}
