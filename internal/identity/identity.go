package identity

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type ctxKey int

const keyClient ctxKey = 0

// Anonymous is used when neither a known key nor a remote address identifies the caller.
const Anonymous = "anon"

// Store maps API key secrets to key IDs: secret -> keyID.
type Store struct {
	header   string
	bySecret map[string]string
}

// NewStatic creates a new static key store.
// header: HTTP header to read the key from (e.g., "X-API-Key")
func NewStatic(header string, pairs map[string]string) *Store {
	h := header
	if h == "" {
		h = "X-API-Key"
	}
	if pairs == nil {
		pairs = map[string]string{}
	}
	return &Store{header: h, bySecret: pairs}
}

// Identify returns "key:<id>" for a known secret and "ip:<host>" otherwise.
func (s *Store) Identify(r *http.Request) string {
	if secret := strings.TrimSpace(r.Header.Get(s.header)); secret != "" {
		if id, ok := s.bySecret[secret]; ok {
			return "key:" + id
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return Anonymous
	}
	return "ip:" + host
}

// Middleware stores the caller's client key in the request context. It never rejects.
func (s *Store) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithClient(r.Context(), s.Identify(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithClient(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyClient, id)
}

func ClientFrom(ctx context.Context) (string, bool) {
	v := ctx.Value(keyClient)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
