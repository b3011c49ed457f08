package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
)

// BrowserAuthenticator drives a real Chrome through the same login state
// machine. Used when the site serves the login form from a single-page
// application that the plain HTTP flow cannot complete.
//
// Two modes share the login: the default exports the browser's cookies
// into an HTTP session and releases Chrome immediately; keepBrowser
// leaves Chrome running and routes API calls through it (see
// browserSession), which inherits cookies and CORS state transparently.
type BrowserAuthenticator struct {
	opts        Options
	keepBrowser bool
}

// NewBrowser creates the browser-login backend whose sessions run over
// an HTTP client seeded with the browser's cookies.
func NewBrowser(opts Options) *BrowserAuthenticator {
	return &BrowserAuthenticator{opts: opts}
}

// NewBrowserAPI creates the backend that keeps the browser alive as the
// API transport.
func NewBrowserAPI(opts Options) *BrowserAuthenticator {
	return &BrowserAuthenticator{opts: opts, keepBrowser: true}
}

func browserOpts(headless bool) []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(1440, 900),
	)
}

// Login launches Chrome, authenticates, and returns a Session. The
// browser is released on every failure path; on success the default
// mode releases it after cookie export and keepBrowser hands ownership
// to the returned session.
func (a *BrowserAuthenticator) Login(ctx context.Context) (Session, error) {
	log := a.opts.logger()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, browserOpts(a.opts.Headless)...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	release := func() {
		cancelTab()
		cancelAlloc()
	}

	keep := false
	defer func() {
		if !keep {
			release()
		}
	}()

	csrf, err := a.loginInBrowser(tabCtx)
	if err != nil {
		return nil, err
	}
	log.Info("browser login succeeded")

	if a.keepBrowser {
		keep = true
		return &browserSession{
			ctx:     tabCtx,
			release: release,
			baseURL: a.opts.BaseURL,
			csrf:    csrf,
		}, nil
	}

	cookies, err := exportCookies(tabCtx)
	if err != nil {
		return nil, fmt.Errorf("export cookies: %w", err)
	}
	return newHTTPSessionFromCookies(
		a.opts.BaseURL, csrf, cookies,
		hostOf(a.opts.BaseURL), hostOf(a.opts.LoginURL),
	), nil
}

// runWithTimeout bounds one browser interaction. Navigation and element
// waits block until the page cooperates, so each gets the same deadline
// the HTTP transport puts on its requests.
func runWithTimeout(ctx context.Context, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(ctx, networkTimeout)
	defer cancel()
	return chromedp.Run(tctx, actions...)
}

func (a *BrowserAuthenticator) loginInBrowser(ctx context.Context) (string, error) {
	log := a.opts.logger()
	appHost := hostOf(a.opts.BaseURL)

	err := runWithTimeout(ctx,
		chromedp.Navigate(a.opts.BaseURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("reach entry point: %w", err)
	}

	var loc string
	if err := chromedp.Run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	log.Debug("entry point landed", "url", loc)

	// Existing session: already on the application domain.
	if SameHost(loc, appHost) && !loginPath(loc) {
		if csrf, err := a.sessionCookie(ctx); err == nil {
			log.Info("existing browser session reused")
			return csrf, nil
		}
	}

	// The login form is rendered by a SPA; the inputs appear after
	// hydration, so wait on the stable field names rather than the URL.
	err = runWithTimeout(ctx,
		chromedp.WaitVisible(`input[name="email"]`, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="email"]`, a.opts.Email, chromedp.ByQuery),
		chromedp.SendKeys(`input[name="password"]`, a.opts.Password, chromedp.ByQuery),
		chromedp.Click(`button[type="submit"], input[type="submit"]`, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("fill login form: %w", err)
	}

	if _, err := a.waitLanding(ctx); err != nil {
		return "", err
	}
	return a.sessionCookie(ctx)
}

// waitLanding polls until the browser lands on the application domain or
// shows a login error. On timeout it inspects title and body text to
// distinguish a rejected login from an unexpected page, and checks the
// URL one last time in case navigation won the race with the deadline.
func (a *BrowserAuthenticator) waitLanding(ctx context.Context) (string, error) {
	appHost := hostOf(a.opts.BaseURL)
	deadline := time.Now().Add(networkTimeout)

	for time.Now().Before(deadline) {
		var loc string
		if err := chromedp.Run(ctx, chromedp.Location(&loc)); err != nil {
			return "", fmt.Errorf("read location: %w", err)
		}
		if SameHost(loc, appHost) && !loginPath(loc) {
			return loc, nil
		}

		var flash bool
		err := chromedp.Run(ctx, chromedp.EvaluateAsDevTools(
			`!!document.querySelector(".flash--error, .alert-danger, .error-message")`, &flash))
		if err == nil && flash {
			return "", fmt.Errorf("login rejected at %s: %w", loc, ErrInvalidCredentials)
		}

		if err := chromedp.Run(ctx, chromedp.Sleep(500*time.Millisecond)); err != nil {
			return "", err
		}
	}

	var loc, title, body string
	_ = chromedp.Run(ctx,
		chromedp.Location(&loc),
		chromedp.Title(&title),
		chromedp.Text("body", &body, chromedp.ByQuery),
	)
	if SameHost(loc, appHost) && !loginPath(loc) {
		return loc, nil
	}
	if loginPath(loc) || strings.Contains(title, "ログイン") || strings.Contains(body, "ログイン") {
		return "", fmt.Errorf("still on login page at %s: %w", loc, ErrInvalidCredentials)
	}
	return "", unexpectedPage(loc, title, body)
}

// sessionCookie reads the CSRF-TOKEN cookie out of the browser, forcing
// issuance with one authenticated page load when it is missing.
func (a *BrowserAuthenticator) sessionCookie(ctx context.Context) (string, error) {
	if csrf, ok := findCookie(ctx, csrfCookieName); ok {
		return csrf, nil
	}

	err := runWithTimeout(ctx,
		chromedp.Navigate(a.opts.BaseURL+"/rent_rooms/list"),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		a.opts.logger().Warn("cookie fallback navigation failed", "error", err)
	}
	if csrf, ok := findCookie(ctx, csrfCookieName); ok {
		return csrf, nil
	}
	return "", ErrTokenNotRetrievable
}

func findCookie(ctx context.Context, name string) (string, bool) {
	var value string
	var found bool
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			if c.Name == name {
				value, found = c.Value, true
				return nil
			}
		}
		return nil
	}))
	if err != nil || !found {
		return "", false
	}
	if v, err := url.QueryUnescape(value); err == nil {
		return v, true
	}
	return value, true
}

func exportCookies(ctx context.Context) ([]*http.Cookie, error) {
	var out []*http.Cookie
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			out = append(out, &http.Cookie{
				Name:   c.Name,
				Value:  c.Value,
				Domain: c.Domain,
				Path:   c.Path,
			})
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return out, nil
}
