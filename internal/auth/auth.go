// Package auth establishes an authenticated session against the itandi BB
// platform.
//
// itandi BB fronts its application with an OAuth2-style redirect flow:
// an unauthenticated request to itandibb.com redirects to
// itandi-accounts.com/login, the login form carries a one-time
// authenticity token, and a successful form POST redirects back through
// itandi_accounts_callback to the application domain, where a CSRF-TOKEN
// cookie authorizes subsequent API calls.
//
// The same state machine is implemented over two transports: a plain
// HTTP client with a cookie jar, and a real browser driven by chromedp
// for when the site rejects non-browser traffic. The browser transport
// can either hand its cookies to an HTTP client or stay alive and run
// API calls as in-page fetches.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Login flow failures. The caller distinguishes these with errors.Is;
// none of them is worth retrying blindly (token-not-found signals markup
// drift, credential rejection retried risks a lockout).
var (
	ErrTokenNotFound       = errors.New("login token not found in page")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTokenNotRetrievable = errors.New("session token not retrievable after login")
)

// APIResult is the outcome of one authenticated API call, regardless of
// which transport performed it. Non-2xx statuses are results, not errors;
// the caller owns the status taxonomy.
type APIResult struct {
	Status int
	Body   []byte
}

// Session is an authenticated transport handle. It must be closed
// exactly once when the run ends, on every exit path.
type Session interface {
	// PostJSON sends a JSON payload with the session's CSRF headers.
	PostJSON(ctx context.Context, url string, payload any) (*APIResult, error)
	// Get issues an authenticated GET.
	Get(ctx context.Context, url string) (*APIResult, error)
	Close() error
}

// Authenticator produces an authenticated Session.
type Authenticator interface {
	Login(ctx context.Context) (Session, error)
}

// Options configures an Authenticator backend.
type Options struct {
	Email    string
	Password string
	// BaseURL is the application entry point (https://itandibb.com).
	BaseURL string
	// LoginURL is the login-domain endpoint; only its host is trusted
	// for redirects, the actual form POST target comes from the page
	// the flow lands on.
	LoginURL string
	// Headless controls the browser backends.
	Headless bool
	Log      *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.Default()
}

// truncate bounds diagnostic body text embedded in errors.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// unexpectedPage builds the diagnostic error for a landing page that is
// neither the login form nor the application.
func unexpectedPage(url, title, body string) error {
	return fmt.Errorf("unexpected page after login: url=%s title=%q body=%q",
		url, title, truncate(body, 200))
}
