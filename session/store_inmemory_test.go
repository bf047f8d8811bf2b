package session_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-portal-session/internal/errors"
	"github.com/jrsteele09/go-portal-session/session"
	"github.com/stretchr/testify/require"
)

const testProfile = "profile-1"

func completeSession() session.Session {
	return session.Session{
		UserID:         "E1",
		DisplayName:    "A B",
		Email:          "a.b@example.com",
		AvatarRef:      "E1",
		OrganizationID: "10",
		Role:           "manager",
		PositionID:     "P1",
		AccessToken:    "a1",
		RefreshToken:   "r1",
		SessionID:      "s1",
	}
}

func TestSession_Complete(t *testing.T) {
	require.True(t, completeSession().Complete())
	require.Empty(t, completeSession().Missing())

	t.Run("position is optional", func(t *testing.T) {
		s := completeSession()
		s.PositionID = ""
		require.True(t, s.Complete())
	})

	t.Run("each required field", func(t *testing.T) {
		clearers := map[string]func(*session.Session){
			session.KeyUserID:         func(s *session.Session) { s.UserID = "" },
			session.KeyDisplayName:    func(s *session.Session) { s.DisplayName = "" },
			session.KeyEmail:          func(s *session.Session) { s.Email = "" },
			session.KeyAvatarRef:      func(s *session.Session) { s.AvatarRef = "" },
			session.KeyOrganizationID: func(s *session.Session) { s.OrganizationID = "" },
			session.KeyAccessToken:    func(s *session.Session) { s.AccessToken = "" },
			session.KeyRefreshToken:   func(s *session.Session) { s.RefreshToken = " " },
			session.KeySessionID:      func(s *session.Session) { s.SessionID = "" },
			session.KeyRole:           func(s *session.Session) { s.Role = "" },
		}
		for key, unset := range clearers {
			t.Run(key, func(t *testing.T) {
				s := completeSession()
				unset(&s)
				require.False(t, s.Complete())
				require.Equal(t, []string{key}, s.Missing())
				require.ErrorIs(t, session.Validate(s), errors.ErrIncompleteSession)
			})
		}
	})
}

func TestSession_Fields(t *testing.T) {
	s := completeSession()
	fields := s.Fields()
	require.Equal(t, "E1", fields["id"])
	require.Equal(t, "A B", fields["name"])
	require.Equal(t, "10", fields["ORG_ID"])
	require.Equal(t, "s1", fields["SESSION_ID"])
	require.Equal(t, "P1", fields["positionId"])
	require.Equal(t, s, session.FromFields(fields))

	s.PositionID = ""
	_, ok := s.Fields()[session.KeyPositionID]
	require.False(t, ok)
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("write then read round trips", func(t *testing.T) {
		store := session.NewInMemoryStore()
		require.NoError(t, store.Write(ctx, testProfile, completeSession()))

		got, err := store.Read(ctx, testProfile)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, completeSession(), *got)
	})

	t.Run("read returns a copy", func(t *testing.T) {
		store := session.NewInMemoryStore()
		require.NoError(t, store.Write(ctx, testProfile, completeSession()))

		got, err := store.Read(ctx, testProfile)
		require.NoError(t, err)
		got.AccessToken = "tampered"

		again, err := store.Read(ctx, testProfile)
		require.NoError(t, err)
		require.Equal(t, "a1", again.AccessToken)
	})

	t.Run("write replaces wholesale", func(t *testing.T) {
		store := session.NewInMemoryStore()
		require.NoError(t, store.Write(ctx, testProfile, completeSession()))

		next := completeSession().WithTokens("a2", "r2")
		next.PositionID = ""
		require.NoError(t, store.Write(ctx, testProfile, next))

		got, err := store.Read(ctx, testProfile)
		require.NoError(t, err)
		require.Equal(t, next, *got)
	})

	t.Run("incomplete write is rejected and leaves the old session", func(t *testing.T) {
		store := session.NewInMemoryStore()
		require.NoError(t, store.Write(ctx, testProfile, completeSession()))

		broken := completeSession()
		broken.RefreshToken = ""
		require.ErrorIs(t, store.Write(ctx, testProfile, broken), errors.ErrIncompleteSession)

		got, err := store.Read(ctx, testProfile)
		require.NoError(t, err)
		require.Equal(t, "r1", got.RefreshToken)
	})

	t.Run("incomplete write on empty store reads as nil", func(t *testing.T) {
		store := session.NewInMemoryStore()
		broken := completeSession()
		broken.Role = ""
		require.Error(t, store.Write(ctx, testProfile, broken))

		got, err := store.Read(ctx, testProfile)
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		store := session.NewInMemoryStore()
		require.NoError(t, store.Write(ctx, testProfile, completeSession()))

		for i := 0; i < 2; i++ {
			require.NoError(t, store.Clear(ctx, testProfile))
			got, err := store.Read(ctx, testProfile)
			require.NoError(t, err)
			require.Nil(t, got)
		}
	})

	t.Run("profiles are isolated", func(t *testing.T) {
		store := session.NewInMemoryStore()
		require.NoError(t, store.Write(ctx, testProfile, completeSession()))
		require.NoError(t, store.Clear(ctx, "profile-2"))

		got, err := store.Read(ctx, testProfile)
		require.NoError(t, err)
		require.NotNil(t, got)
	})

	t.Run("profile id required", func(t *testing.T) {
		store := session.NewInMemoryStore()
		require.Error(t, store.Write(ctx, "", completeSession()))
	})
}
