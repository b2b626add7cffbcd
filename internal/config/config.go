package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	window "github.com/AlexKimmel/windowgate/pkg/ratelimit"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Server struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMS  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMS int    `yaml:"write_timeout_ms"`
	IdleTimeoutMS  int    `yaml:"idle_timeout_ms"`
}

type Observability struct {
	LogLevel       string `yaml:"log_level"`       // "debug","info","warn","error"
	PrometheusPath string `yaml:"prometheus_path"` // e.g. "/metrics"
}

// Limit is one window limiter definition.
type Limit struct {
	Capacity int                 `yaml:"capacity"`
	WindowMS int                 `yaml:"window_ms"`
	Policy   window.RefillPolicy `yaml:"policy"` // "full" or "gradual"
}

type Limits struct {
	Default Limit `yaml:"default"`
}

type APIKey struct {
	ID     string `yaml:"id"`
	Secret string `yaml:"secret"`
}

type Identity struct {
	Header string   `yaml:"header"`
	Keys   []APIKey `yaml:"keys"`
}

type Route struct {
	ID    string `yaml:"id"`
	Match struct {
		PathPrefix string   `yaml:"path_prefix"`
		Methods    []string `yaml:"methods"`
	} `yaml:"match"`

	// Limit overrides limits.default when set.
	Limit *Limit `yaml:"limit"`
}

type Root struct {
	Server        Server        `yaml:"server"`
	Observability Observability `yaml:"observability"`
	Identity      Identity      `yaml:"identity"`
	Limits        Limits        `yaml:"limits"`
	Routes        []Route       `yaml:"routes"`
}

func (s Server) ReadTimeout() time.Duration {
	if s.ReadTimeoutMS == 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ReadTimeoutMS) * time.Millisecond
}

func (s Server) WriteTimeout() time.Duration {
	if s.WriteTimeoutMS == 0 {
		return 10 * time.Second
	}
	return time.Duration(s.WriteTimeoutMS) * time.Millisecond
}

func (s Server) IdleTimeout() time.Duration {
	if s.IdleTimeoutMS == 0 {
		return 60 * time.Second
	}
	return time.Duration(s.IdleTimeoutMS) * time.Millisecond
}

func (l Limit) Window() time.Duration {
	return time.Duration(l.WindowMS) * time.Millisecond
}

// Effective returns the route's own limit, or def when it has none.
func (r Route) Effective(def Limit) Limit {
	if r.Limit == nil {
		return def
	}
	return *r.Limit
}

func Load(path string) (*Root, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Root, error) {
	var cfg Root
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Root) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.PrometheusPath == "" {
		c.Observability.PrometheusPath = "/metrics"
	}
	if c.Identity.Header == "" {
		c.Identity.Header = "X-API-Key"
	}
	if c.Limits.Default.Capacity == 0 {
		c.Limits.Default.Capacity = 60
	}
	if c.Limits.Default.WindowMS == 0 {
		c.Limits.Default.WindowMS = 60_000
	}
}

// Validate rejects limits that could never allow an attempt and ambiguous routes.
func (c *Root) Validate() error {
	if err := c.Limits.Default.validate(); err != nil {
		return fmt.Errorf("%w: limits.default: %v", ErrInvalidConfig, err)
	}

	seen := make(map[string]struct{}, len(c.Routes))
	for i, r := range c.Routes {
		if r.ID == "" {
			return fmt.Errorf("%w: routes[%d]: id is required", ErrInvalidConfig, i)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: routes[%d]: duplicate id %q", ErrInvalidConfig, i, r.ID)
		}
		seen[r.ID] = struct{}{}

		if r.Match.PathPrefix == "" {
			return fmt.Errorf("%w: route %q: match.path_prefix is required", ErrInvalidConfig, r.ID)
		}
		if r.Limit != nil {
			if err := r.Limit.validate(); err != nil {
				return fmt.Errorf("%w: route %q: %v", ErrInvalidConfig, r.ID, err)
			}
		}
	}

	for _, k := range c.Identity.Keys {
		if k.ID == "" || k.Secret == "" {
			return fmt.Errorf("%w: identity.keys: id and secret are required", ErrInvalidConfig)
		}
	}
	return nil
}

func (l Limit) validate() error {
	if l.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", l.Capacity)
	}
	if l.WindowMS <= 0 {
		return fmt.Errorf("window_ms must be positive, got %d", l.WindowMS)
	}
	return nil
}
