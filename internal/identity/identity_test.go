package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AlexKimmel/windowgate/internal/identity"
)

func TestStore_Identify(t *testing.T) {
	t.Parallel()

	s := identity.NewStatic("", map[string]string{"s3cret": "team-a"})

	tests := []struct {
		name   string
		secret string
		remote string
		want   string
	}{
		{name: "known key", secret: "s3cret", remote: "10.0.0.1:5000", want: "key:team-a"},
		{name: "unknown key falls back to ip", secret: "guess", remote: "10.0.0.2:5000", want: "ip:10.0.0.2"},
		{name: "no key", remote: "10.0.0.3:5000", want: "ip:10.0.0.3"},
		{name: "remote without port", remote: "10.0.0.4", want: "ip:10.0.0.4"},
		{name: "nothing at all", remote: "", want: identity.Anonymous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.secret != "" {
				req.Header.Set("X-API-Key", tt.secret)
			}
			assert.Equal(t, tt.want, s.Identify(req))
		})
	}
}

func TestStore_Middleware(t *testing.T) {
	t.Parallel()

	s := identity.NewStatic("X-Token", map[string]string{"abc": "svc"})

	var got string
	h := s.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = identity.ClientFrom(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Token", "abc")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "key:svc", got)
}
