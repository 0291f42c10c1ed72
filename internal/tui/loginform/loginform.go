// ABOUTME: Interactive sign-in and registration forms built with huh
// ABOUTME: Collects credentials when the CLI is run without --email/--password

package loginform

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
)

const minPasswordLength = 6

// Credentials entered in the login form
type Credentials struct {
	Email    string
	Password string
}

// Login prompts for email and password. title distinguishes the customer
// and admin forms.
func Login(title string, prefill string) (Credentials, error) {
	creds := Credentials{Email: prefill}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&creds.Email).
				Validate(ValidateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(ValidatePassword),
		).Title(title),
	).WithTheme(huh.ThemeBase())

	if err := form.Run(); err != nil {
		return Credentials{}, err
	}
	creds.Email = strings.TrimSpace(creds.Email)
	return creds, nil
}

// Register prompts for a new account
func Register() (models.RegisterRequest, error) {
	var req models.RegisterRequest
	var confirm string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Full name").Value(&req.Name).Validate(required("name")),
			huh.NewInput().Title("Business name").Value(&req.BusinessName),
			huh.NewInput().Title("Email").Value(&req.Email).Validate(ValidateEmail),
			huh.NewInput().Title("Phone").Value(&req.Phone),
		).Title("Create a wholesale account"),
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&req.Password).
				Validate(ValidatePassword),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm).
				Validate(func(s string) error {
					if s != req.Password {
						return errors.New("passwords do not match")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeBase())

	if err := form.Run(); err != nil {
		return models.RegisterRequest{}, err
	}
	req.Email = strings.TrimSpace(req.Email)
	return req, nil
}

// ValidateEmail accepts a single bare address
func ValidateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return errors.New("enter a valid email address")
	}
	return nil
}

// ValidatePassword enforces a minimum length
func ValidatePassword(s string) error {
	if len(s) < minPasswordLength {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}
