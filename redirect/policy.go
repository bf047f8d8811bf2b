// Package redirect builds the URLs that hand the browser over to the identity authority.
package redirect

import (
	"net/url"
	"strings"
)

const (
	loginPath  = "/login"
	logoutPath = "/logout"

	// ParamOriginWebsite carries the portal's own login page, percent-encoded
	ParamOriginWebsite = "ogwebsite"
	// ParamRedirectWebsite carries the return URL verbatim
	ParamRedirectWebsite = "redirectWebsite"
)

// Policy knows where the authority lives and where the portal's login page is.
type Policy struct {
	AuthorityURL  string // e.g. https://sso.example.com
	LoginPagePath string // path of the portal login page, defaults to /login
}

// NewPolicy creates a redirect policy
func NewPolicy(authorityURL, loginPagePath string) Policy {
	if loginPagePath == "" {
		loginPagePath = loginPath
	}
	return Policy{
		AuthorityURL:  strings.TrimSuffix(authorityURL, "/"),
		LoginPagePath: loginPagePath,
	}
}

// BuildLoginURL sends the browser to the authority's login page
func (p Policy) BuildLoginURL(currentOrigin, currentPath, returnURL string) string {
	return p.build(loginPath, currentOrigin, currentPath, returnURL)
}

// BuildLogoutURL sends the browser to the authority's logout page
func (p Policy) BuildLogoutURL(currentOrigin, currentPath, returnURL string) string {
	return p.build(logoutPath, currentOrigin, currentPath, returnURL)
}

// CanonicalLoginPage is the portal login page the authority sends users back to
func (p Policy) CanonicalLoginPage(currentOrigin string) string {
	path := p.LoginPagePath
	if path == "" {
		path = loginPath
	}
	return strings.TrimSuffix(currentOrigin, "/") + path
}

// build keeps the encoding asymmetry the authority expects: ogwebsite is
// percent-encoded, redirectWebsite is appended exactly as given.
func (p Policy) build(authorityPath, currentOrigin, currentPath, returnURL string) string {
	if returnURL == "" {
		returnURL = strings.TrimSuffix(currentOrigin, "/") + currentPath
	}

	var b strings.Builder
	b.WriteString(p.AuthorityURL)
	b.WriteString(authorityPath)
	b.WriteString("?")
	b.WriteString(ParamOriginWebsite)
	b.WriteString("=")
	b.WriteString(EncodeComponent(p.CanonicalLoginPage(currentOrigin)))
	b.WriteString("&")
	b.WriteString(ParamRedirectWebsite)
	b.WriteString("=")
	b.WriteString(returnURL)
	return b.String()
}

// componentUnescaper undoes the QueryEscape choices that encodeURIComponent does not make
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes a value the way a browser's encodeURIComponent does.
// Spaces become %20 rather than +.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
