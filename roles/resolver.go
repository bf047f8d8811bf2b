package roles

import "context"

// Resolver maps a position identifier to a portal role.
// Failures wrap errors.ErrRoleUnresolved or errors.ErrTransportFailure.
type Resolver interface {
	ResolveRole(ctx context.Context, positionID string) (string, error)
}

// ResolverFunc adapts a plain function to a Resolver
type ResolverFunc func(ctx context.Context, positionID string) (string, error)

func (f ResolverFunc) ResolveRole(ctx context.Context, positionID string) (string, error) {
	return f(ctx, positionID)
}
