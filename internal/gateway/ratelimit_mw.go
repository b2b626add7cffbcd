package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/AlexKimmel/windowgate/internal/identity"
	"github.com/AlexKimmel/windowgate/internal/ratelimit"
	"github.com/AlexKimmel/windowgate/internal/routing"
)

// Hooks receive the outcome of every limiter call; any of them may be nil.
type Hooks struct {
	OnDecision func(routeID string, d ratelimit.Decision)
	OnError    func(routeID string)
}

// RateLimit guards every routed request with one window limiter per route and client.
// Requests without a route use the fallback policy under the "unknown" route.
func RateLimit(
	lim ratelimit.Limiter,
	fallback ratelimit.Policy,
	skipPaths map[string]struct{},
	hooks Hooks,
) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// allow ops endpoints without limits
			if _, ok := skipPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			client, ok := identity.ClientFrom(r.Context())
			if !ok || client == "" {
				client = identity.Anonymous
			}

			routeID := "unknown"
			p := fallback
			if rt, ok := routing.RouteFrom(r); ok && rt != nil && rt.ID != "" {
				routeID = rt.ID
				p = rt.Policy
			}

			// limiter key = routeID|client (per-route per-client)
			dec, err := lim.Allow(r.Context(), routeID+"|"+client, p)
			if err != nil {
				if hooks.OnError != nil {
					hooks.OnError(routeID)
				}
				hlog.FromRequest(r).Error().Err(err).Str("route", routeID).Msg("rate limiter failed")
				writeJSON(w, http.StatusInternalServerError, "rate_limiter_error", "internal rate limiter error")
				return
			}
			if hooks.OnDecision != nil {
				hooks.OnDecision(routeID, dec)
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(dec.Remaining, 0)))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(dec.ResetUnixSec, 10))

			if !dec.Allowed {
				retry := max(dec.ResetUnixSec-time.Now().Unix(), 1)
				w.Header().Set("Retry-After", strconv.FormatInt(retry, 10))
				hlog.FromRequest(r).Debug().
					Str("route", routeID).
					Str("client", client).
					Int("limit", dec.Limit).
					Msg("rate limited")
				writeJSON(w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
