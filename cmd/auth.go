// ABOUTME: Authentication commands: login, admin-login, register, logout, whoami
// ABOUTME: Prompts with huh forms when credentials are not given as flags

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/tui/loginform"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/tui/styles"
)

var (
	loginEmail    string
	loginPassword string

	registerReq models.RegisterRequest
)

// promptLogin and promptRegister are replaced in tests
var (
	promptLogin    = loginform.Login
	promptRegister = loginform.Register
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as a customer",
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int { return runLogin(ctx, w, false) })
	},
}

var adminLoginCmd = &cobra.Command{
	Use:   "admin-login",
	Short: "Sign in to the admin panel",
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int { return runLogin(ctx, w, true) })
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a customer account",
	Long:  `Create a customer account. New accounts must be approved by an administrator before they can sign in.`,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runRegister)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		execute(runLogout)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Run: func(cmd *cobra.Command, args []string) {
		execute(runWhoami)
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, adminLoginCmd} {
		c.Flags().StringVar(&loginEmail, "email", "", "Account email")
		c.Flags().StringVar(&loginPassword, "password", "", "Account password")
	}

	registerCmd.Flags().StringVar(&registerReq.Name, "name", "", "Full name")
	registerCmd.Flags().StringVar(&registerReq.BusinessName, "business", "", "Business name")
	registerCmd.Flags().StringVar(&registerReq.Email, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerReq.Phone, "phone", "", "Phone number")
	registerCmd.Flags().StringVar(&registerReq.Password, "password", "", "Account password")

	rootCmd.AddCommand(loginCmd, adminLoginCmd, registerCmd, logoutCmd, whoamiCmd)
}

// runLogin signs in and stores the session. admin selects the admin endpoint.
func runLogin(ctx context.Context, w io.Writer, admin bool) int {
	email, password := strings.TrimSpace(loginEmail), loginPassword
	if email == "" || password == "" {
		if !interactive() {
			return fail(w, usageError("--email and --password are required"))
		}
		title := "Sign in to the wholesale store"
		if admin {
			title = "Admin sign in"
		}
		creds, err := promptLogin(title, email)
		if err != nil {
			return fail(w, usageError("%v", err))
		}
		email, password = creds.Email, creds.Password
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	var auth *models.AuthResponse
	if admin {
		auth, err = a.client.AdminLogin(ctx, email, password)
	} else {
		auth, err = a.client.Login(ctx, email, password)
	}
	if err != nil {
		return fail(w, err)
	}

	if admin {
		if err := a.requireAdmin(ctx); err != nil {
			return fail(w, err)
		}
	}

	if IsJSONOutput() {
		return printJSON(w, auth.User)
	}
	fmt.Fprintf(w, "%s Signed in as %s <%s> (%s)\n",
		styles.StatusOK.Render("✓"), auth.User.Name, auth.User.Email, auth.User.Role)
	return 0
}

// runRegister submits a new account for approval
func runRegister(ctx context.Context, w io.Writer) int {
	req := registerReq
	if req.Name == "" || req.Email == "" || req.Password == "" {
		if !interactive() {
			return fail(w, usageError("--name, --email and --password are required"))
		}
		var err error
		if req, err = promptRegister(); err != nil {
			return fail(w, usageError("%v", err))
		}
	}
	if err := loginform.ValidateEmail(req.Email); err != nil {
		return fail(w, usageError("%v", err))
	}
	if err := loginform.ValidatePassword(req.Password); err != nil {
		return fail(w, usageError("%v", err))
	}

	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	user, err := a.client.Register(ctx, req)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		return printJSON(w, user)
	}
	fmt.Fprintf(w, "Account created for %s <%s>.\nAn administrator must approve it before you can sign in.\n", user.Name, user.Email)
	return 0
}

// runLogout always clears the local session; a failed server call is only a warning
func runLogout(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	if err := a.client.Logout(ctx); err != nil {
		slog.Warn("Server did not confirm logout", "error", err)
	}
	fmt.Fprintln(w, "Signed out")
	return 0
}

type whoami struct {
	User      *models.User `json:"user"`
	Admin     bool         `json:"admin"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
	Expired   bool         `json:"expired"`
}

// runWhoami reports the stored session without contacting the server
func runWhoami(ctx context.Context, w io.Writer) int {
	a, err := newApp(ctx)
	if err != nil {
		return fail(w, err)
	}
	defer a.Close()

	if !a.session.IsAuthenticated() {
		return fail(w, &guardError{})
	}

	info := whoami{
		User:    a.session.User(),
		Admin:   a.session.IsAdmin(),
		Expired: a.session.IsTokenExpired(),
	}
	if exp, ok := a.session.ExpiresAt(); ok {
		info.ExpiresAt = &exp
	}

	if IsJSONOutput() {
		return printJSON(w, info)
	}

	fmt.Fprintf(w, "User:     %s <%s>\n", info.User.Name, info.User.Email)
	fmt.Fprintf(w, "Role:     %s\n", info.User.Role)
	switch {
	case info.ExpiresAt == nil:
		fmt.Fprintln(w, "Token:    no expiry")
	case info.Expired:
		fmt.Fprintf(w, "Token:    %s (expired %s)\n", styles.StatusWarning.Render("expired"), info.ExpiresAt.Format(time.RFC3339))
	default:
		fmt.Fprintf(w, "Token:    %s until %s\n", styles.StatusOK.Render("valid"), info.ExpiresAt.Format(time.RFC3339))
	}
	return 0
}
