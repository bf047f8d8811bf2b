package roles

import (
	"context"
	"os"
	"strings"

	"github.com/jrsteele09/go-portal-session/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RoleMap is the on-disk role map
//
//	default: employee
//	positions:
//	  P1: manager
type RoleMap struct {
	Default   string            `yaml:"default"`
	Positions map[string]string `yaml:"positions"`
}

// StaticResolver resolves roles from a fixed position map.
type StaticResolver struct {
	defaultRole string
	positions   map[string]string
}

var _ Resolver = (*StaticResolver)(nil)

func NewStaticResolver(roleMap RoleMap) *StaticResolver {
	positions := make(map[string]string, len(roleMap.Positions))
	for position, role := range roleMap.Positions {
		positions[strings.TrimSpace(position)] = strings.TrimSpace(role)
	}
	return &StaticResolver{
		defaultRole: strings.TrimSpace(roleMap.Default),
		positions:   positions,
	}
}

// ParseRoleMap decodes a YAML role map
func ParseRoleMap(data []byte) (RoleMap, error) {
	var roleMap RoleMap
	if err := yaml.Unmarshal(data, &roleMap); err != nil {
		return RoleMap{}, pkgerrors.Wrap(err, "failed to parse role map")
	}
	return roleMap, nil
}

// LoadStaticResolver reads a YAML role map from disk
func LoadStaticResolver(path string) (*StaticResolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read role map %s", path)
	}
	roleMap, err := ParseRoleMap(data)
	if err != nil {
		return nil, err
	}
	return NewStaticResolver(roleMap), nil
}

// ResolveRole returns the mapped role, or the default role for unknown and empty positions.
func (r *StaticResolver) ResolveRole(_ context.Context, positionID string) (string, error) {
	if role, ok := r.positions[positionID]; ok && role != "" {
		return role, nil
	}
	if r.defaultRole != "" {
		return r.defaultRole, nil
	}
	return "", errors.Wrapf(errors.ErrRoleUnresolved, "position %q is not mapped", positionID)
}
