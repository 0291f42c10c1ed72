// ABOUTME: 401-driven token refresh and single retry around an authenticated sender
// ABOUTME: Serializes concurrent refreshes for one session with singleflight

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/metrics"
	"github.com/MohammedMoataz/egycan-wholasale-client-sub000/internal/models"
)

// Session is the part of the session store the interceptor reads and writes
type Session interface {
	TokenSource
	RefreshToken() string
	SetAuth(user *models.User, accessToken, refreshToken string)
	Logout()
}

// RefreshFunc obtains a new session from a refresh token
type RefreshFunc func(ctx context.Context, refreshToken string) (*models.AuthResponse, error)

// refreshTimeout bounds a refresh flight once no caller can cancel it
const refreshTimeout = 30 * time.Second

type retryKey struct{}

// markRetry tags a context as belonging to a replayed request
func markRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryKey{}, true)
}

func isRetry(ctx context.Context) bool {
	retried, _ := ctx.Value(retryKey{}).(bool)
	return retried
}

// Interceptor recovers from one expired access token per request by
// refreshing the session and replaying the request once
type Interceptor struct {
	send    SendFunc
	session Session
	refresh RefreshFunc
	metrics *metrics.Client
	logger  *slog.Logger
	group   singleflight.Group
}

// NewInterceptor wraps send, which must already attach the bearer token
func NewInterceptor(send SendFunc, sess Session, refresh RefreshFunc, m *metrics.Client, logger *slog.Logger) *Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interceptor{
		send:    send,
		session: sess,
		refresh: refresh,
		metrics: m,
		logger:  logger,
	}
}

// Do sends req and applies the refresh protocol:
//   - success, non-401 failures, and transport errors pass through unchanged
//   - a 401 on a request that was already replayed passes through unchanged
//   - a 401 with no refresh token logs out and returns ErrNoRefreshToken
//   - a 401 with a refresh token refreshes, stores the new session, and
//     replays the request once; a failed refresh logs out and returns
//     ErrRefreshFailed wrapping the refresh error
//
// A caller whose context ends while a refresh is in flight gets its
// context error; the refresh itself still completes for everyone else.
func (i *Interceptor) Do(req *http.Request) (*http.Response, error) {
	sentWith := i.session.AccessToken()

	resp, err := i.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isRetry(req.Context()) {
		return resp, nil
	}

	original := handleErrorResponse(resp)
	drain(resp.Body)

	if err := i.recoverSession(req.Context(), sentWith, original); err != nil {
		return nil, err
	}

	replay, err := rewind(req)
	if err != nil {
		return nil, err
	}
	return i.send(replay)
}

// recoverSession leaves the session refreshed or logged out
func (i *Interceptor) recoverSession(ctx context.Context, sentWith string, original *APIError) error {
	refreshToken := i.session.RefreshToken()
	if i.refreshedSince(sentWith) {
		return nil
	}

	if refreshToken == "" {
		i.logger.Info("Access token rejected and no refresh token held, logging out")
		i.metrics.ObserveRefresh(metrics.RefreshNoToken)
		i.session.Logout()
		return fmt.Errorf("%w: %w", ErrNoRefreshToken, original)
	}

	flight := i.group.DoChan(refreshToken, func() (any, error) {
		// A flight for the same token may have finished just before this one started
		if i.refreshedSince(sentWith) {
			return nil, nil
		}

		// The flight is shared, so it outlives the caller that started it
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()

		auth, err := i.refresh(fctx, refreshToken)
		if err == nil && !auth.Complete() {
			err = errors.New("refresh returned no user or access token")
		}
		if err != nil {
			i.logger.Warn("Token refresh failed, logging out", "error", err)
			i.metrics.ObserveRefresh(metrics.RefreshFailure)
			i.session.Logout()
			return nil, err
		}
		i.logger.Debug("Token refreshed", "user_id", auth.User.ID)
		i.metrics.ObserveRefresh(metrics.RefreshSuccess)
		i.session.SetAuth(auth.User, auth.AccessToken, auth.RefreshToken)
		return nil, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return fmt.Errorf("%w: %w", ErrRefreshFailed, res.Err)
		}
		return nil
	}
}

// refreshedSince reports whether another request already replaced the
// access token this request was sent with
func (i *Interceptor) refreshedSince(sentWith string) bool {
	current := i.session.AccessToken()
	if current == "" || current == sentWith {
		return false
	}
	i.metrics.ObserveRefresh(metrics.RefreshShared)
	return true
}

// rewind clones req with a fresh body and the retry marker set
func rewind(req *http.Request) (*http.Request, error) {
	ctx := markRetry(req.Context())
	replay := req.Clone(ctx)

	if req.Body == nil || req.Body == http.NoBody {
		return replay, nil
	}
	if req.GetBody == nil {
		return nil, ErrNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotReplayable, err)
	}
	replay.Body = body
	return replay, nil
}

// drain discards the rest of a body so the connection can be reused
func drain(body io.ReadCloser) {
	io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	body.Close()
}

// isProtocolError reports whether err came from the refresh protocol
// rather than from the transport
func isProtocolError(err error) bool {
	return errors.Is(err, ErrNoRefreshToken) || errors.Is(err, ErrRefreshFailed) || errors.Is(err, ErrNotReplayable)
}
