package config

import "time"

type SecurityConfig interface {
	GetProfileCookieName() string
	GetProfileCookieMaxAge() time.Duration
	GetControllerIdleTTL() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetProfileCookieName() string {
	return GetEnv("PROFILE_COOKIE_NAME", "portal_profile")
}

func (Security) GetProfileCookieMaxAge() time.Duration {
	return 365 * 24 * time.Hour
}

// GetControllerIdleTTL is how long a browser profile's controller survives without activity
func (Security) GetControllerIdleTTL() time.Duration {
	return GetDuration("CONTROLLER_IDLE_TTL", 30*time.Minute)
}
