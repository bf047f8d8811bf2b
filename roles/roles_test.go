package roles_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-portal-session/internal/errors"
	"github.com/jrsteele09/go-portal-session/roles"
	"github.com/stretchr/testify/require"
)

const testRoleMap = `
default: employee
positions:
  P1: manager
  " P2 ": " auditor "
`

func TestStaticResolver(t *testing.T) {
	roleMap, err := roles.ParseRoleMap([]byte(testRoleMap))
	require.NoError(t, err)
	resolver := roles.NewStaticResolver(roleMap)

	tests := []struct {
		position string
		want     string
	}{
		{"P1", "manager"},
		{"P2", "auditor"},
		{"P9", "employee"},
		{"", "employee"},
	}
	for _, tc := range tests {
		t.Run("position "+tc.position, func(t *testing.T) {
			role, err := resolver.ResolveRole(t.Context(), tc.position)
			require.NoError(t, err)
			require.Equal(t, tc.want, role)
		})
	}

	t.Run("no default", func(t *testing.T) {
		resolver := roles.NewStaticResolver(roles.RoleMap{Positions: map[string]string{"P1": "manager"}})
		_, err := resolver.ResolveRole(t.Context(), "P9")
		require.ErrorIs(t, err, errors.ErrRoleUnresolved)
	})
}

func TestLoadStaticResolver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRoleMap), 0o600))

	resolver, err := roles.LoadStaticResolver(path)
	require.NoError(t, err)
	role, err := resolver.ResolveRole(t.Context(), "P1")
	require.NoError(t, err)
	require.Equal(t, "manager", role)

	t.Run("missing file", func(t *testing.T) {
		_, err := roles.LoadStaticResolver(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := roles.ParseRoleMap([]byte("positions: [unclosed"))
		require.Error(t, err)
	})
}

func TestCachedResolver(t *testing.T) {
	var calls atomic.Int32
	next := roles.ResolverFunc(func(_ context.Context, positionID string) (string, error) {
		calls.Add(1)
		if positionID == "bad" {
			return "", errors.ErrRoleUnresolved
		}
		return "role-" + positionID, nil
	})

	resolver := roles.NewCachedResolver(next, time.Minute)
	t.Cleanup(resolver.Stop)

	for range 3 {
		role, err := resolver.ResolveRole(t.Context(), "P1")
		require.NoError(t, err)
		require.Equal(t, "role-P1", role)
	}
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, 1, resolver.Len())

	t.Run("failures are not cached", func(t *testing.T) {
		before := calls.Load()
		for range 2 {
			_, err := resolver.ResolveRole(t.Context(), "bad")
			require.ErrorIs(t, err, errors.ErrRoleUnresolved)
		}
		require.Equal(t, before+2, calls.Load())
		require.Equal(t, 1, resolver.Len())
	})
}
