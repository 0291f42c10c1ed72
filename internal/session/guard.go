// ABOUTME: Route guards deciding whether a screen or command may proceed
// ABOUTME: Customer guard requires a live session, admin guard also requires the admin role

package session

// Login destinations a denied guard redirects to
const (
	CustomerLoginPath = "/login"
	AdminLoginPath    = "/admin/login"
)

// Decision is the outcome of a guard check
type Decision struct {
	Allowed  bool
	Redirect string
}

// CustomerGuard allows access when the session is authenticated and the
// access token has not expired
func CustomerGuard(s *Store) Decision {
	if s.IsAuthenticated() && !s.IsTokenExpired() {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: CustomerLoginPath}
}

// AdminGuard allows access when CustomerGuard would and the user is an admin
func AdminGuard(s *Store) Decision {
	if s.IsAuthenticated() && !s.IsTokenExpired() && s.IsAdmin() {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: AdminLoginPath}
}
