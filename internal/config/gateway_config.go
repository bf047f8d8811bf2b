package config

import (
	"strings"
	"time"
)

type GatewayConfig interface {
	GetBackendURL() string
	GetGatewayTimeout() time.Duration
	GetRoleSource() string
	GetRoleMapFile() string
	GetRoleCacheTTL() time.Duration
}

type Gateway struct{}

var _ GatewayConfig = Gateway{}

func (Gateway) GetBackendURL() string {
	return strings.TrimSuffix(GetEnv("BACKEND_URL", "http://localhost:8081"), "/")
}

func (Gateway) GetGatewayTimeout() time.Duration {
	return GetDuration("GATEWAY_TIMEOUT", 10*time.Second)
}

// GetRoleSource is "file" (YAML role map) or "remote" (backend permissions endpoint)
func (Gateway) GetRoleSource() string {
	return GetEnv("ROLE_SOURCE", "file")
}

func (Gateway) GetRoleMapFile() string {
	return GetEnv("ROLE_MAP_FILE", "./roles.yaml")
}

func (Gateway) GetRoleCacheTTL() time.Duration {
	return GetDuration("ROLE_CACHE_TTL", 5*time.Minute)
}
