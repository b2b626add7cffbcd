package routing_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexKimmel/windowgate/internal/routing"
)

func TestRouter_Match(t *testing.T) {
	t.Parallel()

	r := routing.New()
	r.Add(&routing.Route{ID: "search", Prefix: "/api/search/", Methods: routing.MethodSet([]string{"get"})})
	r.Add(&routing.Route{ID: "api", Prefix: "/api"})

	tests := []struct {
		method, path string
		want         string
	}{
		{"GET", "/api/search", "search"},
		{"get", "/api/search/books", "search"},
		{"POST", "/api/search", "api"},
		{"DELETE", "/api/orders/1", "api"},
		{"GET", "/apix", ""},
		{"GET", "/", ""},
	}

	for _, tt := range tests {
		rt, ok := r.Match(tt.method, tt.path)
		if tt.want == "" {
			assert.False(t, ok, "%s %s", tt.method, tt.path)
			continue
		}
		require.True(t, ok, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.want, rt.ID, "%s %s", tt.method, tt.path)
	}
	assert.Len(t, r.Routes(), 2)
}

func TestRouter_RootPrefixMatchesEverything(t *testing.T) {
	t.Parallel()

	r := routing.New()
	r.Add(&routing.Route{ID: "all", Prefix: "/"})

	rt, ok := r.Match("PATCH", "/anything/at/all")
	require.True(t, ok)
	assert.Equal(t, "all", rt.ID)
}

func TestRouteContext(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/", nil)
	_, ok := routing.RouteFrom(req)
	assert.False(t, ok)

	rt := &routing.Route{ID: "x"}
	got, ok := routing.RouteFrom(routing.WithRoute(req, rt))
	require.True(t, ok)
	assert.Same(t, rt, got)
}
