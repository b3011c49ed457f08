package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	csrfCookieName = "CSRF-TOKEN"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	networkTimeout = 30 * time.Second
)

// HTTPAuthenticator replays the login flow with a plain HTTP client and
// a cookie jar. This is the default backend; the browser backends exist
// for when the site stops accepting non-browser traffic.
type HTTPAuthenticator struct {
	opts Options
}

// NewHTTP creates the HTTP-transport authenticator.
func NewHTTP(opts Options) *HTTPAuthenticator {
	return &HTTPAuthenticator{opts: opts}
}

func newHTTPClient(hosts ...string) *resty.Client {
	client := resty.New()
	jar, _ := cookiejar.New(nil)
	client.SetCookieJar(jar)
	client.SetHeader("User-Agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(hostnames(hosts)...))
	client.SetTimeout(networkTimeout)
	return client
}

func hostnames(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if u, err := url.Parse("//" + h); err == nil && u.Hostname() != "" {
			out = append(out, u.Hostname())
			continue
		}
		out = append(out, h)
	}
	return out
}

// Login runs the state machine described in the package comment.
func (a *HTTPAuthenticator) Login(ctx context.Context) (Session, error) {
	log := a.opts.logger()
	appHost := hostOf(a.opts.BaseURL)
	loginHost := hostOf(a.opts.LoginURL)

	client := newHTTPClient(appHost, loginHost)

	// Step 1: hit the entry point and follow the OAuth2 redirect chain.
	res, err := client.R().SetContext(ctx).Get(a.opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("reach entry point: %w", err)
	}
	landing := finalURL(res)
	log.Debug("entry point landed", "url", landing)

	// Step 2: already authenticated from a previous session.
	if SameHost(landing, appHost) && !loginPath(landing) {
		if csrf, ok := csrfFromJar(client, a.opts.BaseURL); ok {
			log.Info("existing session reused")
			return newHTTPSession(client, a.opts.BaseURL, csrf), nil
		}
	}

	// Step 3: pull the one-time token off the login form.
	token := extractFormToken(res.String())
	if token == "" {
		return nil, fmt.Errorf("login page %s: %w", landing, ErrTokenNotFound)
	}

	// Step 4: submit credentials to the landing host, preserving the
	// OAuth2 query parameters, and follow redirects to the callback.
	postURL, err := loginPostURL(landing)
	if err != nil {
		return nil, fmt.Errorf("derive login post url: %w", err)
	}
	res, err = client.R().SetContext(ctx).
		SetFormData(map[string]string{
			"authenticity_token": token,
			"email":              a.opts.Email,
			"password":           a.opts.Password,
			"commit":             "ログイン",
		}).
		Post(postURL)
	if err != nil {
		return nil, fmt.Errorf("submit login form: %w", err)
	}

	// Step 5: classify the landing page.
	landed := finalURL(res)
	log.Debug("login form landed", "url", landed, "status", res.StatusCode())
	switch {
	case SameHost(landed, loginHost) && loginPath(landed):
		return nil, fmt.Errorf("login rejected at %s: %w", landed, ErrInvalidCredentials)
	case !SameHost(landed, appHost):
		return nil, unexpectedPage(landed, pageTitle(res.String()), res.String())
	}

	// Step 6: the API token rides in on a cookie. One authenticated page
	// load forces issuance when the callback did not set it.
	csrf, ok := csrfFromJar(client, a.opts.BaseURL)
	if !ok {
		if _, err := client.R().SetContext(ctx).Get(a.opts.BaseURL + "/rent_rooms/list"); err != nil {
			log.Warn("cookie fallback request failed", "error", err)
		}
		csrf, ok = csrfFromJar(client, a.opts.BaseURL)
	}
	if !ok {
		return nil, fmt.Errorf("after landing on %s: %w", landed, ErrTokenNotRetrievable)
	}

	log.Info("login succeeded")
	return newHTTPSession(client, a.opts.BaseURL, csrf), nil
}

// finalURL returns where the request actually ended up after redirects.
func finalURL(res *resty.Response) string {
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		return res.RawResponse.Request.URL.String()
	}
	return res.Request.URL
}

// csrfFromJar looks up the session-identifying cookie for the
// application domain. The value arrives percent-encoded.
func csrfFromJar(client *resty.Client, baseURL string) (string, bool) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	jar := client.GetClient().Jar
	if jar == nil {
		return "", false
	}
	for _, c := range jar.Cookies(u) {
		if c.Name == csrfCookieName {
			if v, err := url.QueryUnescape(c.Value); err == nil {
				return v, true
			}
			return c.Value, true
		}
	}
	return "", false
}

// httpSession performs authenticated API calls over the logged-in client.
type httpSession struct {
	client  *resty.Client
	baseURL string
	csrf    string
}

func newHTTPSession(client *resty.Client, baseURL, csrf string) *httpSession {
	return &httpSession{client: client, baseURL: baseURL, csrf: csrf}
}

// newHTTPSessionFromCookies builds an HTTP session from cookies exported
// out of a browser login.
func newHTTPSessionFromCookies(baseURL, csrf string, cookies []*http.Cookie, hosts ...string) *httpSession {
	client := newHTTPClient(hosts...)
	client.SetCookies(cookies)
	return newHTTPSession(client, baseURL, csrf)
}

func (s *httpSession) apiHeaders() map[string]string {
	return map[string]string{
		"X-CSRF-TOKEN": s.csrf,
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"Origin":       s.baseURL,
		"Referer":      s.baseURL + "/",
	}
}

func (s *httpSession) PostJSON(ctx context.Context, url string, payload any) (*APIResult, error) {
	res, err := s.client.R().SetContext(ctx).
		SetHeaders(s.apiHeaders()).
		SetBody(payload).
		Post(url)
	if err != nil {
		return nil, fmt.Errorf("api post: %w", err)
	}
	return &APIResult{Status: res.StatusCode(), Body: res.Body()}, nil
}

func (s *httpSession) Get(ctx context.Context, url string) (*APIResult, error) {
	res, err := s.client.R().SetContext(ctx).
		SetHeaders(s.apiHeaders()).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("api get: %w", err)
	}
	return &APIResult{Status: res.StatusCode(), Body: res.Body()}, nil
}

func (s *httpSession) Close() error {
	return nil
}
