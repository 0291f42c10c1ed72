// ABOUTME: Identity and authentication request/response models
// ABOUTME: Defines the user record and the /auth/* API contracts

package models

// Role values assigned by the storefront API
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User is the identity record returned by the auth endpoints
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user carries the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// LoginRequest represents credentials for /auth/login and /auth/admin/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a new account submitted for admin approval
type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Password     string `json:"password"`
	BusinessName string `json:"businessName,omitempty"`
}

// RefreshRequest is the body of POST /auth/refresh
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse carries a full identity and token pair
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether the response has everything needed to
// establish a session
func (a *AuthResponse) Complete() bool {
	return a != nil && a.User != nil && a.AccessToken != ""
}
