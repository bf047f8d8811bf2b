// Package controller drives one browser profile through the portal session lifecycle.
package controller

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-portal-session/gateway"
	"github.com/jrsteele09/go-portal-session/internal/errors"
	"github.com/jrsteele09/go-portal-session/internal/metrics"
	"github.com/jrsteele09/go-portal-session/redirect"
	"github.com/jrsteele09/go-portal-session/roles"
	"github.com/jrsteele09/go-portal-session/session"
	"github.com/rs/zerolog/log"
)

// Controller owns the session lifecycle of a single browser profile.
//
// Enter, Verify and Logout never run concurrently on the same controller; an overlapping
// call fails with errors.ErrVerificationInFlight. Results that arrive after Detach, or
// after the caller's context is done, are dropped without touching the store or the
// browser.
type Controller struct {
	profileID    string
	store        session.Store
	gateway      gateway.AuthGateway
	roles        roles.Resolver
	policy       redirect.Policy
	metrics      *metrics.Metrics
	homeURL      string // logout return address
	verifyOnLoad bool

	lock  sync.RWMutex
	state State

	inFlight   atomic.Bool
	generation atomic.Uint64
}

type Option func(*Controller)

// WithHomeURL sets where the authority sends the user after logout
func WithHomeURL(homeURL string) Option {
	return func(c *Controller) {
		c.homeURL = homeURL
	}
}

// WithVerifyOnLoad verifies a stored session with the backend as soon as it is loaded
func WithVerifyOnLoad(enabled bool) Option {
	return func(c *Controller) {
		c.verifyOnLoad = enabled
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// New creates a controller in the Unauthenticated state
func New(profileID string, store session.Store, gw gateway.AuthGateway, resolver roles.Resolver, policy redirect.Policy, options ...Option) *Controller {
	c := &Controller{
		profileID: profileID,
		store:     store,
		gateway:   gw,
		roles:     resolver,
		policy:    policy,
		state:     Unauthenticated,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Controller) ProfileID() string {
	return c.profileID
}

func (c *Controller) State() State {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.state = s
}

// Detach abandons any cycle in flight. Its results will not be applied.
func (c *Controller) Detach() {
	c.generation.Add(1)
}

// Session returns the stored session, or nil when there is none or the store is down.
func (c *Controller) Session(ctx context.Context) *session.Session {
	return c.readSession(ctx)
}

// Enter handles a navigation to the entry route: it establishes a session from redirect
// parameters, trusts a stored session, or sends the browser to the login page.
func (c *Controller) Enter(ctx context.Context, entry Entry) (Outcome, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Outcome{State: c.State()}, errors.ErrVerificationInFlight
	}
	defer c.inFlight.Store(false)

	cyc := c.newCycle(entry.Location)
	event := EventEntryEmpty
	if entry.Params.Present() {
		event = EventEntryRedirect
		cyc.params = entry.Params
	} else if cyc.session = c.readSession(ctx); cyc.session != nil {
		event = EventEntryStored
	} else {
		cyc.cause = errors.ErrSessionNotFound
	}

	outcome, err := c.run(ctx, cyc, event)
	if err != nil || !c.verifyOnLoad || event != EventEntryStored || outcome.State != Authenticated {
		return outcome, err
	}
	return c.verify(ctx, entry.Location)
}

// Verify checks the stored access token with the backend, refreshing it when the backend
// reports it expired. Any unrecoverable answer clears the session and logs the user out.
func (c *Controller) Verify(ctx context.Context, location Location) (Outcome, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Outcome{State: c.State()}, errors.ErrVerificationInFlight
	}
	defer c.inFlight.Store(false)

	return c.verify(ctx, location)
}

// Logout clears the session and sends the browser to the authority's logout page.
func (c *Controller) Logout(ctx context.Context, location Location) (Outcome, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Outcome{State: c.State()}, errors.ErrVerificationInFlight
	}
	defer c.inFlight.Store(false)

	return c.run(ctx, c.newCycle(location), EventLogoutRequested)
}

func (c *Controller) verify(ctx context.Context, location Location) (Outcome, error) {
	cyc := c.newCycle(location)
	cyc.session = c.readSession(ctx)

	event := EventVerifyRequested
	if cyc.session == nil || cyc.session.SessionID == "" || cyc.session.UserID == "" {
		event = EventPreconditionFailed
		cyc.cause = errors.ErrMissingSessionIdentity
	}
	return c.run(ctx, cyc, event)
}

// cycle is the working state of one Enter, Verify or Logout call
type cycle struct {
	id         string
	generation uint64
	location   Location
	startState State

	params  RedirectParams
	session *session.Session
	record  *gateway.StoredTokenRecord
	pair    *gateway.TokenPair

	committed bool // the store has been written or cleared
	cause     error
	outcome   Outcome
}

func (c *Controller) newCycle(location Location) *cycle {
	return &cycle{
		id:         uuid.NewString(),
		generation: c.generation.Load(),
		location:   location,
		startState: c.State(),
	}
}

// run feeds events through Transition until a transition yields no follow-up event
func (c *Controller) run(ctx context.Context, cyc *cycle, event Event) (Outcome, error) {
	for {
		from := c.State()
		to, effects, err := Transition(from, event)
		if err != nil {
			return Outcome{State: from}, err
		}
		c.setState(to)
		c.metrics.ObserveTransition(from.String(), to.String(), event.String())
		log.Debug().
			Str("profile", c.profileID).
			Str("cycle", cyc.id).
			Str("from", from.String()).
			Str("to", to.String()).
			Str("event", event.String()).
			Msg("session transition")

		next, hasNext, abandoned := c.apply(ctx, cyc, effects)
		if abandoned {
			return c.abandon(ctx, cyc), nil
		}
		if !hasNext {
			return c.finish(cyc, to), nil
		}
		event = next
	}
}

func (c *Controller) apply(ctx context.Context, cyc *cycle, effects []Effect) (next Event, hasNext, abandoned bool) {
	for _, effect := range effects {
		if c.stale(ctx, cyc) {
			return 0, false, true
		}
		if event, ok := c.perform(ctx, cyc, effect); ok {
			next, hasNext = event, true
		}
	}
	return next, hasNext, false
}

func (c *Controller) stale(ctx context.Context, cyc *cycle) bool {
	return ctx.Err() != nil || c.generation.Load() != cyc.generation
}

// abandon drops a stale cycle. Nothing was written, so the controller goes back to where
// the cycle started.
func (c *Controller) abandon(ctx context.Context, cyc *cycle) Outcome {
	cause := ctx.Err()
	if c.generation.Load() != cyc.generation {
		cause = errors.ErrDetached
	}
	if !cyc.committed {
		c.setState(cyc.startState)
	}

	log.Debug().Err(cause).Str("profile", c.profileID).Str("cycle", cyc.id).Msg("session cycle abandoned")
	return Outcome{State: c.State(), Action: ActionNone, Cause: cause}
}

func (c *Controller) finish(cyc *cycle, state State) Outcome {
	outcome := cyc.outcome
	outcome.State = state
	outcome.Cause = cyc.cause

	if outcome.Action != ActionNone {
		c.metrics.ObserveOutcome(outcome.Action.String())
	}
	if state == Terminated {
		log.Info().
			Err(outcome.Cause).
			Str("profile", c.profileID).
			Str("cycle", cyc.id).
			Str("location", outcome.Location).
			Msg("session terminated")
	}
	return outcome
}

// perform runs one effect and reports the event it produced, if any
func (c *Controller) perform(ctx context.Context, cyc *cycle, effect Effect) (Event, bool) {
	switch effect {
	case EffectDecodeToken:
		return c.decodeToken(cyc), true
	case EffectPersistSession:
		return c.persistSession(ctx, cyc), true
	case EffectVerify:
		return c.verifyToken(ctx, cyc), true
	case EffectLookup:
		return c.lookup(ctx, cyc), true
	case EffectRefresh:
		return c.refresh(ctx, cyc), true
	case EffectPersistTokens:
		return c.persistTokens(ctx, cyc), true

	case EffectNavigateHome:
		cyc.outcome.Action = ActionNavigateHome
	case EffectRedirectLogin:
		cyc.outcome.Action = ActionRedirect
		cyc.outcome.Location = c.policy.BuildLoginURL(cyc.location.Origin, cyc.location.Path, "")
	case EffectClearSession:
		cyc.committed = true
		if err := c.store.Clear(ctx, c.profileID); err != nil {
			log.Err(err).Str("profile", c.profileID).Msg("failed to clear session")
		}
	case EffectRedirectLogout:
		cyc.outcome.Action = ActionRedirect
		cyc.outcome.Location = c.policy.BuildLogoutURL(cyc.location.Origin, cyc.location.Path, c.homeURL)
	}
	return 0, false
}

func (c *Controller) verifyToken(ctx context.Context, cyc *cycle) Event {
	status, err := c.gateway.Verify(ctx, cyc.session.AccessToken)
	if err != nil {
		cyc.cause = err
		return EventVerifyFailed
	}

	switch status {
	case http.StatusOK:
		return EventVerifyOK
	case http.StatusUnauthorized:
		cyc.cause = errors.ErrVerifyUnauthorized
		return EventUnauthorized
	case http.StatusForbidden:
		cyc.cause = errors.ErrVerifyForbidden
		return EventForbidden
	default:
		cyc.cause = errors.Wrapf(errors.ErrTransportFailure, "verify returned status %d", status)
		return EventVerifyFailed
	}
}

// lookup checks that the authority still holds the token just verified. A mismatch means
// another tab already rotated it, so refreshing would race that tab.
func (c *Controller) lookup(ctx context.Context, cyc *cycle) Event {
	record, err := c.gateway.LookupBySession(ctx, cyc.session.SessionID, cyc.session.UserID)
	switch {
	case err != nil:
		cyc.cause = err
		return EventLookupFailed
	case record == nil:
		cyc.cause = errors.ErrSessionNotFound
		return EventLookupMissing
	case record.AccessToken != cyc.session.AccessToken:
		cyc.cause = errors.ErrSessionMismatch
		return EventLookupMismatch
	}

	cyc.record = record
	return EventLookupMatched
}

func (c *Controller) refresh(ctx context.Context, cyc *cycle) Event {
	refreshToken := cyc.record.RefreshToken
	if refreshToken == "" {
		refreshToken = cyc.session.RefreshToken
	}

	pair, err := c.gateway.Refresh(ctx, refreshToken)
	if err != nil {
		cyc.cause = err
		return EventRefreshFailed
	}

	cyc.pair = pair
	return EventRefreshed
}

func (c *Controller) persistTokens(ctx context.Context, cyc *cycle) Event {
	rotated := cyc.session.WithTokens(cyc.pair.AccessToken, cyc.pair.RefreshToken)
	if err := c.store.Write(ctx, c.profileID, rotated); err != nil {
		cyc.cause = err
		return EventPersistFailed
	}

	cyc.committed = true
	cyc.session = &rotated
	cyc.cause = nil
	return EventTokensPersisted
}
