package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// browserSession keeps the logged-in browser alive and executes API
// calls as in-page fetches. Running inside the page inherits cookies and
// origin state, so requests are indistinguishable from the SPA's own.
// Each call is an explicit request/response across the driver boundary
// with its own timeout; the promise is awaited by the driver, not by
// page script left running unattended.
type browserSession struct {
	ctx     context.Context
	release func()
	baseURL string
	csrf    string
}

// fetchResult is the structured value marshalled back from the page.
type fetchResult struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

const inPageFetch = `(async () => {
	const res = await fetch(%q, {
		method: %q,
		headers: {
			"X-CSRF-TOKEN": %q,
			"Content-Type": "application/json",
			"Accept": "application/json",
		},
		credentials: "include",%s
	});
	const body = await res.text();
	return {status: res.status, body: body};
})()`

func (s *browserSession) evalFetch(ctx context.Context, url, method, bodyArg string) (*APIResult, error) {
	tctx, cancel := context.WithTimeout(ctx, networkTimeout)
	defer cancel()

	script := fmt.Sprintf(inPageFetch, url, method, s.csrf, bodyArg)

	var out fetchResult
	err := chromedp.Run(tctx, chromedp.Evaluate(script, &out,
		func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}))
	if err != nil {
		return nil, fmt.Errorf("in-page %s %s: %w", method, url, err)
	}
	return &APIResult{Status: out.Status, Body: []byte(out.Body)}, nil
}

func (s *browserSession) PostJSON(ctx context.Context, url string, payload any) (*APIResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	// The payload is embedded as a JS object literal; JSON is a subset
	// of JS expression syntax, so re-serializing in the page keeps the
	// body byte-exact.
	bodyArg := fmt.Sprintf("\n\t\tbody: JSON.stringify(%s),", raw)
	return s.evalFetch(ctx, url, "POST", bodyArg)
}

func (s *browserSession) Get(ctx context.Context, url string) (*APIResult, error) {
	return s.evalFetch(ctx, url, "GET", "")
}

// Close releases the browser process and context. Safe to call once per
// session; the run loop guarantees exactly one call on every exit path.
func (s *browserSession) Close() error {
	s.release()
	return nil
}
