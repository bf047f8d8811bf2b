package server

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/jrsteele09/go-portal-session/controller"
	"github.com/jrsteele09/go-portal-session/gateway"
	"github.com/jrsteele09/go-portal-session/internal/config"
	"github.com/jrsteele09/go-portal-session/internal/metrics"
	"github.com/jrsteele09/go-portal-session/redirect"
	"github.com/jrsteele09/go-portal-session/roles"
	"github.com/jrsteele09/go-portal-session/session"
	"github.com/rs/zerolog/log"
)

// ControllerFactory builds a fresh controller for a browser profile
type ControllerFactory func(profileID string) *controller.Controller

// NewControllerFactory binds the shared collaborators every controller uses
func NewControllerFactory(c config.SSOConfig, store session.Store, gw gateway.AuthGateway, resolver roles.Resolver, policy redirect.Policy, m *metrics.Metrics) ControllerFactory {
	return func(profileID string) *controller.Controller {
		return controller.New(profileID, store, gw, resolver, policy,
			controller.WithHomeURL(c.GetHomeURL()),
			controller.WithVerifyOnLoad(c.GetVerifyOnLoad()),
			controller.WithMetrics(m),
		)
	}
}

// Registry keeps one controller per browser profile. Controllers idle for longer than the
// TTL are evicted and detached, so any cycle they still run is dropped.
type Registry struct {
	cache   *ttlcache.Cache[string, *controller.Controller]
	factory ControllerFactory
	metrics *metrics.Metrics
}

func NewRegistry(idleTTL time.Duration, factory ControllerFactory, m *metrics.Metrics) *Registry {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, *controller.Controller](idleTTL),
	)

	r := &Registry{
		cache:   cache,
		factory: factory,
		metrics: m,
	}

	cache.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *controller.Controller]) {
		item.Value().Detach()
		r.metrics.SetActiveControllers(cache.Len())
		if reason == ttlcache.EvictionReasonExpired {
			log.Debug().Str("profile", item.Key()).Msg("idle session controller expired")
		}
	})
	go cache.Start()

	return r
}

// Get returns the profile's controller, creating one if needed. Each hit resets the idle timer.
func (r *Registry) Get(profileID string) *controller.Controller {
	if item := r.cache.Get(profileID); item != nil {
		return item.Value()
	}

	item, found := r.cache.GetOrSet(profileID, r.factory(profileID))
	if !found {
		r.metrics.SetActiveControllers(r.cache.Len())
	}
	return item.Value()
}

// Replace starts a new lifecycle for the profile, detaching any previous controller
func (r *Registry) Replace(profileID string) *controller.Controller {
	fresh := r.factory(profileID)

	// Set updates an existing item in place, so hold on to the old value first
	var previous *controller.Controller
	if item := r.cache.Get(profileID, ttlcache.WithDisableTouchOnHit[string, *controller.Controller]()); item != nil {
		previous = item.Value()
	}

	r.cache.Set(profileID, fresh, ttlcache.DefaultTTL)
	if previous != nil {
		previous.Detach()
	}
	r.metrics.SetActiveControllers(r.cache.Len())
	return fresh
}

// Drop forgets a profile's controller, detaching it
func (r *Registry) Drop(profileID string) {
	r.cache.Delete(profileID)
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

func (r *Registry) Close() {
	r.cache.Stop()
	r.cache.DeleteAll()
}
