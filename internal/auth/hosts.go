package auth

import (
	"net/url"
	"strings"
)

// SameHost reports whether rawURL's network location is exactly host.
// Substring matching against the full URL is wrong here: the login page
// embeds the application domain inside its redirect_uri query parameter,
// so only the parsed host may be compared.
func SameHost(rawURL, host string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

// hostOf returns the network location of rawURL, or "" if it does not parse.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// loginPath reports whether rawURL's path component looks like a login
// page. Queried on the path only, for the same redirect_uri reason.
func loginPath(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(u.Path, "login")
}

// loginPostURL derives the form POST target from the landing page URL:
// same scheme and host, path /login, and the original query preserved
// (it carries the OAuth2 client_id, redirect_uri and state parameters).
func loginPostURL(landingURL string) (string, error) {
	u, err := url.Parse(landingURL)
	if err != nil {
		return "", err
	}
	u.Path = "/login"
	u.Fragment = ""
	return u.String(), nil
}
