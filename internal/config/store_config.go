package config

import "time"

type StoreConfig interface {
	GetSessionStore() string
	GetRedisURL() string
	GetRedisKeyPrefix() string
	GetSessionTTL() time.Duration
}

type Store struct{}

var _ StoreConfig = Store{}

// GetSessionStore is "memory" or "redis"
func (Store) GetSessionStore() string {
	return GetEnv("SESSION_STORE", "memory")
}

func (Store) GetRedisURL() string {
	return GetEnv("REDIS_URL", "redis://localhost:6379/0")
}

func (Store) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "portal")
}

// GetSessionTTL bounds how long a persisted session survives without being rewritten.
// Zero disables expiry.
func (Store) GetSessionTTL() time.Duration {
	return GetDuration("SESSION_TTL", 7*24*time.Hour)
}
