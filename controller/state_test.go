package controller_test

import (
	"testing"

	"github.com/jrsteele09/go-portal-session/controller"
	"github.com/jrsteele09/go-portal-session/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	logout := []controller.Effect{controller.EffectClearSession, controller.EffectRedirectLogout}
	login := []controller.Effect{controller.EffectRedirectLogin}

	tests := []struct {
		from    controller.State
		event   controller.Event
		to      controller.State
		effects []controller.Effect
	}{
		{controller.Unauthenticated, controller.EventEntryRedirect, controller.Establishing, []controller.Effect{controller.EffectDecodeToken}},
		{controller.Unauthenticated, controller.EventEntryStored, controller.Authenticated, nil},
		{controller.Unauthenticated, controller.EventEntryEmpty, controller.Terminated, login},

		{controller.Establishing, controller.EventDecoded, controller.Establishing, []controller.Effect{controller.EffectPersistSession}},
		{controller.Establishing, controller.EventPersisted, controller.Authenticated, []controller.Effect{controller.EffectNavigateHome}},
		{controller.Establishing, controller.EventDecodeFailed, controller.Terminated, login},
		{controller.Establishing, controller.EventPersistFailed, controller.Terminated, login},

		{controller.Authenticated, controller.EventVerifyRequested, controller.Verifying, []controller.Effect{controller.EffectVerify}},
		{controller.Authenticated, controller.EventPreconditionFailed, controller.Terminated, logout},
		{controller.Authenticated, controller.EventLogoutRequested, controller.Terminated, logout},

		{controller.Verifying, controller.EventVerifyOK, controller.Authenticated, nil},
		{controller.Verifying, controller.EventUnauthorized, controller.RefreshPending, []controller.Effect{controller.EffectLookup}},
		{controller.Verifying, controller.EventForbidden, controller.Terminated, logout},
		{controller.Verifying, controller.EventVerifyFailed, controller.Terminated, logout},

		{controller.RefreshPending, controller.EventLookupMatched, controller.RefreshPending, []controller.Effect{controller.EffectRefresh}},
		{controller.RefreshPending, controller.EventLookupMissing, controller.Terminated, logout},
		{controller.RefreshPending, controller.EventLookupMismatch, controller.Terminated, logout},
		{controller.RefreshPending, controller.EventLookupFailed, controller.Terminated, logout},
		{controller.RefreshPending, controller.EventRefreshed, controller.RefreshPending, []controller.Effect{controller.EffectPersistTokens}},
		{controller.RefreshPending, controller.EventRefreshFailed, controller.Terminated, logout},
		{controller.RefreshPending, controller.EventTokensPersisted, controller.Authenticated, nil},
		{controller.RefreshPending, controller.EventPersistFailed, controller.Terminated, logout},
	}

	for _, tc := range tests {
		t.Run(tc.from.String()+" on "+tc.event.String(), func(t *testing.T) {
			to, effects, err := controller.Transition(tc.from, tc.event)
			require.NoError(t, err)
			require.Equal(t, tc.to, to)
			require.Equal(t, tc.effects, effects)
		})
	}
}

func TestTransition_Invalid(t *testing.T) {
	tests := []struct {
		from  controller.State
		event controller.Event
	}{
		{controller.Unauthenticated, controller.EventVerifyRequested},
		{controller.Unauthenticated, controller.EventLogoutRequested},
		{controller.Establishing, controller.EventVerifyRequested},
		{controller.Authenticated, controller.EventEntryRedirect},
		{controller.Authenticated, controller.EventVerifyOK},
		{controller.Verifying, controller.EventVerifyRequested},
		{controller.Verifying, controller.EventLogoutRequested},
		{controller.RefreshPending, controller.EventVerifyOK},
		{controller.RefreshPending, controller.EventEntryStored},
	}

	for _, tc := range tests {
		t.Run(tc.from.String()+" on "+tc.event.String(), func(t *testing.T) {
			to, effects, err := controller.Transition(tc.from, tc.event)
			require.ErrorIs(t, err, errors.ErrInvalidTransition)
			require.Equal(t, tc.from, to)
			require.Nil(t, effects)
		})
	}
}

func TestTransition_TerminatedIsAbsorbing(t *testing.T) {
	for event := controller.EventEntryRedirect; event <= controller.EventTokensPersisted; event++ {
		to, effects, err := controller.Transition(controller.Terminated, event)
		require.NoError(t, err)
		require.Equal(t, controller.Terminated, to)
		require.Empty(t, effects)
	}
}

func TestTransition_EffectsAreNotShared(t *testing.T) {
	_, effects, err := controller.Transition(controller.Authenticated, controller.EventLogoutRequested)
	require.NoError(t, err)
	effects[0] = controller.EffectNavigateHome

	_, again, err := controller.Transition(controller.Verifying, controller.EventForbidden)
	require.NoError(t, err)
	require.Equal(t, []controller.Effect{controller.EffectClearSession, controller.EffectRedirectLogout}, again)
}
