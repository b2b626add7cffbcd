package main

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/AlexKimmel/windowgate/internal/config"
	"github.com/AlexKimmel/windowgate/internal/gateway"
	"github.com/AlexKimmel/windowgate/internal/identity"
	"github.com/AlexKimmel/windowgate/internal/obs"
	"github.com/AlexKimmel/windowgate/internal/ratelimit"
	"github.com/AlexKimmel/windowgate/internal/routing"
)

const version = "v0.1.0"

func policyFor(l config.Limit) ratelimit.Policy {
	return ratelimit.Policy{Capacity: l.Capacity, Window: l.Window(), Refill: l.Policy}
}

func newHandler(cfg *config.Root, logger zerolog.Logger, reg *prometheus.Registry, lim ratelimit.Limiter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(version))
	})
	mux.Handle(cfg.Observability.PrometheusPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// every routed request that gets past the limiter lands here
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		routeID := "unknown"
		if rt, ok := routing.RouteFrom(r); ok && rt != nil {
			routeID = rt.ID
		}
		client, _ := identity.ClientFrom(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"route":  routeID,
			"client": client,
		})
	})

	rr := routing.New()
	for _, rc := range cfg.Routes {
		rr.Add(&routing.Route{
			ID:      rc.ID,
			Methods: routing.MethodSet(rc.Match.Methods),
			Prefix:  rc.Match.PathPrefix,
			Policy:  policyFor(rc.Effective(cfg.Limits.Default)),
		})
	}

	pairs := map[string]string{} // secret -> keyID
	for _, k := range cfg.Identity.Keys {
		pairs[k.Secret] = k.ID
	}

	skip := map[string]struct{}{
		"/health":                        {},
		"/version":                       {},
		cfg.Observability.PrometheusPath: {},
	}

	metrics := obs.NewMetrics(reg)

	return gateway.Chain(
		mux,
		obs.Logger(logger),
		identity.NewStatic(cfg.Identity.Header, pairs).Middleware(),
		gateway.RouteMatcher(rr, skip),
		metrics.Middleware(skip),
		gateway.RateLimit(lim, policyFor(cfg.Limits.Default), skip, gateway.Hooks{
			OnDecision: metrics.ObserveDecision,
			OnError:    metrics.ObserveError,
		}),
	)
}
