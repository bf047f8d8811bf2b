package controller

import (
	"fmt"
	"slices"

	"github.com/jrsteele09/go-portal-session/internal/errors"
)

// State is where a browser profile is in the session lifecycle.
type State int

const (
	Unauthenticated State = iota
	Establishing
	Authenticated
	Verifying
	RefreshPending
	Terminated
)

var stateNames = [...]string{
	Unauthenticated: "unauthenticated",
	Establishing:    "establishing",
	Authenticated:   "authenticated",
	Verifying:       "verifying",
	RefreshPending:  "refresh_pending",
	Terminated:      "terminated",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Event is an input to the state machine: a user action or the result of an effect.
type Event int

const (
	EventEntryRedirect Event = iota
	EventEntryStored
	EventEntryEmpty
	EventDecoded
	EventDecodeFailed
	EventPersisted
	EventPersistFailed
	EventVerifyRequested
	EventPreconditionFailed
	EventLogoutRequested
	EventVerifyOK
	EventUnauthorized
	EventForbidden
	EventVerifyFailed
	EventLookupMatched
	EventLookupMissing
	EventLookupMismatch
	EventLookupFailed
	EventRefreshed
	EventRefreshFailed
	EventTokensPersisted
)

var eventNames = [...]string{
	EventEntryRedirect:      "entry_redirect",
	EventEntryStored:        "entry_stored",
	EventEntryEmpty:         "entry_empty",
	EventDecoded:            "decoded",
	EventDecodeFailed:       "decode_failed",
	EventPersisted:          "persisted",
	EventPersistFailed:      "persist_failed",
	EventVerifyRequested:    "verify_requested",
	EventPreconditionFailed: "precondition_failed",
	EventLogoutRequested:    "logout_requested",
	EventVerifyOK:           "verify_ok",
	EventUnauthorized:       "unauthorized",
	EventForbidden:          "forbidden",
	EventVerifyFailed:       "verify_failed",
	EventLookupMatched:      "lookup_matched",
	EventLookupMissing:      "lookup_missing",
	EventLookupMismatch:     "lookup_mismatch",
	EventLookupFailed:       "lookup_failed",
	EventRefreshed:          "refreshed",
	EventRefreshFailed:      "refresh_failed",
	EventTokensPersisted:    "tokens_persisted",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("event(%d)", int(e))
	}
	return eventNames[e]
}

// Effect is work the controller performs after a transition.
type Effect int

const (
	EffectDecodeToken Effect = iota
	EffectPersistSession
	EffectNavigateHome
	EffectRedirectLogin
	EffectVerify
	EffectLookup
	EffectRefresh
	EffectPersistTokens
	EffectClearSession
	EffectRedirectLogout
)

var effectNames = [...]string{
	EffectDecodeToken:    "decode_token",
	EffectPersistSession: "persist_session",
	EffectNavigateHome:   "navigate_home",
	EffectRedirectLogin:  "redirect_login",
	EffectVerify:         "verify",
	EffectLookup:         "lookup",
	EffectRefresh:        "refresh",
	EffectPersistTokens:  "persist_tokens",
	EffectClearSession:   "clear_session",
	EffectRedirectLogout: "redirect_logout",
}

func (e Effect) String() string {
	if e < 0 || int(e) >= len(effectNames) {
		return fmt.Sprintf("effect(%d)", int(e))
	}
	return effectNames[e]
}

type transitionKey struct {
	from  State
	event Event
}

type transitionResult struct {
	to      State
	effects []Effect
}

var (
	loginEffects  = []Effect{EffectRedirectLogin}
	logoutEffects = []Effect{EffectClearSession, EffectRedirectLogout}
)

var transitions = map[transitionKey]transitionResult{
	// Entry
	{Unauthenticated, EventEntryRedirect}: {Establishing, []Effect{EffectDecodeToken}},
	{Unauthenticated, EventEntryStored}:   {Authenticated, nil},
	{Unauthenticated, EventEntryEmpty}:    {Terminated, loginEffects},

	// Establishment
	{Establishing, EventDecoded}:       {Establishing, []Effect{EffectPersistSession}},
	{Establishing, EventPersisted}:     {Authenticated, []Effect{EffectNavigateHome}},
	{Establishing, EventDecodeFailed}:  {Terminated, loginEffects},
	{Establishing, EventPersistFailed}: {Terminated, loginEffects},

	// Authenticated
	{Authenticated, EventVerifyRequested}:    {Verifying, []Effect{EffectVerify}},
	{Authenticated, EventPreconditionFailed}: {Terminated, logoutEffects},
	{Authenticated, EventLogoutRequested}:    {Terminated, logoutEffects},

	// Verification
	{Verifying, EventVerifyOK}:     {Authenticated, nil},
	{Verifying, EventUnauthorized}: {RefreshPending, []Effect{EffectLookup}},
	{Verifying, EventForbidden}:    {Terminated, logoutEffects},
	{Verifying, EventVerifyFailed}: {Terminated, logoutEffects},

	// Refresh
	{RefreshPending, EventLookupMatched}:   {RefreshPending, []Effect{EffectRefresh}},
	{RefreshPending, EventLookupMissing}:   {Terminated, logoutEffects},
	{RefreshPending, EventLookupMismatch}:  {Terminated, logoutEffects},
	{RefreshPending, EventLookupFailed}:    {Terminated, logoutEffects},
	{RefreshPending, EventRefreshed}:       {RefreshPending, []Effect{EffectPersistTokens}},
	{RefreshPending, EventRefreshFailed}:   {Terminated, logoutEffects},
	{RefreshPending, EventTokensPersisted}: {Authenticated, nil},
	{RefreshPending, EventPersistFailed}:   {Terminated, logoutEffects},
}

// Transition is the session lifecycle table. Terminated absorbs every event; any other
// pair missing from the table fails with errors.ErrInvalidTransition and leaves the
// state where it was.
func Transition(from State, event Event) (State, []Effect, error) {
	if from == Terminated {
		return Terminated, nil, nil
	}

	result, ok := transitions[transitionKey{from, event}]
	if !ok {
		return from, nil, errors.Wrapf(errors.ErrInvalidTransition, "%s in state %s", event, from)
	}
	return result.to, slices.Clone(result.effects), nil
}
