package config

import "strings"

// SSOConfig describes the external identity authority and the portal's own landing pages.
type SSOConfig interface {
	GetAuthorityURL() string
	GetLoginPagePath() string
	GetHomeURL() string
	GetVerifyOnLoad() bool
}

type SSO struct{}

var _ SSOConfig = SSO{}

// GetAuthorityURL is the base URL of the identity authority hosting /login and /logout
func (SSO) GetAuthorityURL() string {
	return strings.TrimSuffix(GetEnv("SSO_AUTHORITY_URL", "http://localhost:9000"), "/")
}

// GetLoginPagePath is the path of the portal's canonical login page, sent as ogwebsite
func (SSO) GetLoginPagePath() string {
	return GetEnv("LOGIN_PAGE_PATH", "/login")
}

// GetHomeURL is where the user lands after logging out. Empty means "current page".
func (SSO) GetHomeURL() string {
	return GetEnv("HOME_URL", "")
}

func (SSO) GetVerifyOnLoad() bool {
	return GetBool("VERIFY_ON_LOAD", false)
}
