// Package remote selects the first-party backend environment that serves market prices,
// token lists and token icons.
package remote

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/chinmay1088/walletsdk/config"
)

// Environment names a backend deployment.
type Environment string

// known environments
const (
	QA      Environment = "qa"
	Staging Environment = "staging"
	Prod    Environment = "prod"
)

// ErrUnknownEnvironment is returned by Parse for names outside the known set.
var ErrUnknownEnvironment = errors.New("unknown remote environment")

// Servers holds the base URLs of one environment.
type Servers struct {
	Static string // icons and other static assets
	API    string // market and token metadata endpoints
}

// Parse returns the environment for name, or ErrUnknownEnvironment.
func Parse(name string) (Environment, error) {
	switch env := Environment(strings.ToLower(strings.TrimSpace(name))); env {
	case QA, Staging, Prod:
		return env, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, name)
	}
}

// Selector points at one environment. The URLs of each environment are read from the
// "remote" subtree of the settings, so covering the settings moves them.
type Selector struct {
	settings *config.Settings
	log      *slog.Logger

	mu      sync.RWMutex
	current Environment
}

// NewSelector returns a selector pointing at env.
func NewSelector(settings *config.Settings, env Environment, log *slog.Logger) *Selector {
	if log == nil {
		log = slog.Default()
	}
	return &Selector{settings: settings, current: env, log: log}
}

// Set switches to the named environment. Unrecognized names select staging.
func (s *Selector) Set(name string) Environment {
	env, err := Parse(name)
	if err != nil {
		s.log.Warn("unknown remote environment, falling back to staging", "name", name)
		env = Staging
	}

	s.mu.Lock()
	s.current = env
	s.mu.Unlock()
	return env
}

// Current returns the selected environment.
func (s *Selector) Current() Environment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Servers returns the base URLs of the selected environment.
func (s *Selector) Servers() Servers {
	static, api := s.settings.Remote(string(s.Current()))
	return Servers{
		Static: strings.TrimRight(static, "/"),
		API:    strings.TrimRight(api, "/"),
	}
}

// API returns the metadata API base URL of the selected environment.
func (s *Selector) API() string {
	return s.Servers().API
}

// Static returns the static asset base URL of the selected environment.
func (s *Selector) Static() string {
	return s.Servers().Static
}
