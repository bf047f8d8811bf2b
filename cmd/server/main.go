package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-portal-session/gateway"
	"github.com/jrsteele09/go-portal-session/internal/config"
	"github.com/jrsteele09/go-portal-session/internal/metrics"
	"github.com/jrsteele09/go-portal-session/roles"
	"github.com/jrsteele09/go-portal-session/server"
	"github.com/jrsteele09/go-portal-session/session"
	"github.com/jrsteele09/go-portal-session/session/redisstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("stack", string(debug.Stack())).Msgf("Recovered from panic: %v", r)
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(registry)

	store, closeStore, err := newSessionStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	gw := gateway.NewClient(c.GetBackendURL(),
		gateway.WithTimeout(c.GetGatewayTimeout()),
		gateway.WithMetrics(m),
	)

	resolver, err := newRoleResolver(c, gw)
	if err != nil {
		return err
	}
	defer resolver.Stop()

	portal := server.New(c, store, gw, resolver, m)
	defer portal.Close()

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           portal,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogging(c config.EnvConfig) {
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func newSessionStore(ctx context.Context, c config.StoreConfig) (session.Store, func(), error) {
	switch c.GetSessionStore() {
	case "memory":
		log.Warn().Msg("Using the in-memory session store; sessions are lost on restart")
		return session.NewInMemoryStore(), func() {}, nil
	case "redis":
		store, err := redisstore.Dial(ctx, c.GetRedisURL(), c.GetRedisKeyPrefix(), c.GetSessionTTL())
		if err != nil {
			return nil, nil, fmt.Errorf("redis session store: %w", err)
		}
		closeStore := func() {
			if err := store.Close(); err != nil {
				log.Err(err).Msg("Failed to close redis session store")
			}
		}
		return store, closeStore, nil
	default:
		return nil, nil, fmt.Errorf("unknown SESSION_STORE %q", c.GetSessionStore())
	}
}

func newRoleResolver(c config.GatewayConfig, gw *gateway.Client) (*roles.CachedResolver, error) {
	var next roles.Resolver
	switch c.GetRoleSource() {
	case "file":
		static, err := roles.LoadStaticResolver(c.GetRoleMapFile())
		if err != nil {
			return nil, fmt.Errorf("role map: %w", err)
		}
		next = static
	case "remote":
		next = gw
	default:
		return nil, fmt.Errorf("unknown ROLE_SOURCE %q", c.GetRoleSource())
	}
	return roles.NewCachedResolver(next, c.GetRoleCacheTTL()), nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
