// ABOUTME: Token issuing for the mock storefront API
// ABOUTME: HS256 access tokens and rotating opaque refresh tokens held in a TTL cache

package mockapi

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/cache"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
)

// ErrInvalidRefreshToken is returned for unknown, expired, or already used refresh tokens
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// Claims are the access token claims
type Claims struct {
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// grant is what a refresh token unlocks
type grant struct {
	UserID    string
	SessionID string
}

// TokenService issues and verifies tokens
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time

	// mu makes consuming a refresh token atomic
	mu     sync.Mutex
	grants *cache.Cache
}

// NewTokenService creates a token service signing with secret
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		grants:     cache.New(0),
		now:        time.Now,
	}
}

// Close stops the grant cache cleanup
func (t *TokenService) Close() {
	t.grants.Close()
}

// Issue starts a new session for user
func (t *TokenService) Issue(user models.User) (accessToken, refreshToken string, err error) {
	return t.issue(user, uuid.NewString())
}

// Rotate consumes refreshToken and returns the grant it held.
// Each refresh token is single use.
func (t *TokenService) Rotate(refreshToken string) (grant, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	val, ok := t.grants.Get(refreshKey(refreshToken))
	if !ok {
		return grant{}, ErrInvalidRefreshToken
	}
	g := val.(grant)
	t.grants.Clear(refreshKey(refreshToken))
	t.grants.Clear(sessionKey(g.SessionID))
	return g, nil
}

// Reissue continues an existing session after Rotate
func (t *TokenService) Reissue(user models.User, sessionID string) (accessToken, refreshToken string, err error) {
	return t.issue(user, sessionID)
}

// Revoke ends a session so its refresh token stops working
func (t *TokenService) Revoke(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if val, ok := t.grants.Get(sessionKey(sessionID)); ok {
		t.grants.Clear(refreshKey(val.(string)))
	}
	t.grants.Clear(sessionKey(sessionID))
}

// Verify checks an access token's signature and expiry
func (t *TokenService) Verify(accessToken string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(accessToken, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (t *TokenService) issue(user models.User, sessionID string) (string, string, error) {
	now := t.now()
	claims := Claims{
		Role:      user.Role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	refreshToken := base64.RawURLEncoding.EncodeToString(b)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.grants.SetWithTTL(refreshKey(refreshToken), grant{UserID: user.ID, SessionID: sessionID}, t.refreshTTL)
	t.grants.SetWithTTL(sessionKey(sessionID), refreshToken, t.refreshTTL)
	return accessToken, refreshToken, nil
}

// refreshKey hashes the token so cache debug logs never carry it
func refreshKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "refresh:" + hex.EncodeToString(sum[:])
}

func sessionKey(id string) string {
	return "session:" + id
}
