package session

import (
	"context"
	"sort"

	"github.com/jrsteele09/go-portal-session/internal/errors"
)

// Store persists one session per browser profile.
//
// Write replaces the whole session atomically; readers never see a mix of old and new
// fields. Read returns nil when nothing complete is stored; a backend failure is reported
// as errors.ErrStoreUnavailable and callers treat it the same as no session. Clear is
// idempotent.
type Store interface {
	Write(ctx context.Context, profileID string, session Session) error
	Read(ctx context.Context, profileID string) (*Session, error)
	Clear(ctx context.Context, profileID string) error
}

// Validate rejects sessions that no reader would accept
func Validate(s Session) error {
	missing := s.Missing()
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return errors.Wrapf(errors.ErrIncompleteSession, "missing %v", missing)
}
