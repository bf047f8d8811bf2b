package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-portal-session/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "SSO_AUTHORITY_URL", "LOGIN_PAGE_PATH", "HOME_URL", "VERIFY_ON_LOAD",
		"GATEWAY_TIMEOUT", "SESSION_STORE", "SESSION_TTL", "ROLE_SOURCE", "CONTROLLER_IDLE_TTL", "ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
	c := config.New()

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "info", c.GetLogLevel())
	require.Equal(t, "/login", c.GetLoginPagePath())
	require.Empty(t, c.GetHomeURL())
	require.False(t, c.GetVerifyOnLoad())
	require.Equal(t, 10*time.Second, c.GetGatewayTimeout())
	require.Equal(t, "memory", c.GetSessionStore())
	require.Equal(t, 7*24*time.Hour, c.GetSessionTTL())
	require.Equal(t, "file", c.GetRoleSource())
	require.Equal(t, 30*time.Minute, c.GetControllerIdleTTL())
	require.Empty(t, c.GetAllowedOrigins())
}

func TestConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("SSO_AUTHORITY_URL", "https://sso.example.com/")
	t.Setenv("BACKEND_URL", "https://api.example.com/")
	t.Setenv("VERIFY_ON_LOAD", "true")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("SESSION_TTL", "0s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	c := config.New()

	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "https://sso.example.com", c.GetAuthorityURL())
	require.Equal(t, "https://api.example.com", c.GetBackendURL())
	require.True(t, c.GetVerifyOnLoad())
	require.Equal(t, 3*time.Second, c.GetGatewayTimeout())
	require.Zero(t, c.GetSessionTTL())

	origins := c.GetAllowedOrigins()
	require.Len(t, origins, 2)
	require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
	require.False(t, origins.IsAllowedOrigin("*"))

	t.Run("unparsable values fall back", func(t *testing.T) {
		t.Setenv("GATEWAY_TIMEOUT", "soon")
		t.Setenv("VERIFY_ON_LOAD", "maybe")
		require.Equal(t, 10*time.Second, c.GetGatewayTimeout())
		require.False(t, c.GetVerifyOnLoad())
	})
}
