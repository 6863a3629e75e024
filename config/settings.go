package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"
)

// ErrUnknownNetwork is returned when a coin has no configuration for the requested network.
var ErrUnknownNetwork = errors.New("unknown network")

// Explorer describes an explorer endpoint and the provider serving it.
type Explorer struct {
	Provider string `mapstructure:"provider"`
	URL      string `mapstructure:"url"`
}

// Network is the typed view of one network entry of a coin.
type Network struct {
	Name        string   `mapstructure:"-"`
	JSONRPC     string   `mapstructure:"jsonrpc"`
	ExplorerAPI Explorer `mapstructure:"explorer_api"`
	Explorer    Explorer `mapstructure:"explorer"`
}

// Settings owns the live configuration tree. The SDK keeps no package level configuration;
// every client holds its own Settings.
//
// Cover replaces the tree while other goroutines may be reading it. Readers see either the
// old or the new tree, never a partial merge, but requests already in flight keep using the
// endpoints they resolved before the change.
type Settings struct {
	mu   sync.RWMutex
	tree Object
}

// NewSettings returns settings holding the defaults with override merged on top.
func NewSettings(override Object) *Settings {
	return &Settings{tree: Merge(Defaults(), override)}
}

// Cover merges override onto the current tree.
func (s *Settings) Cover(override Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = Merge(s.tree, override)
}

// Tree returns a copy of the current tree.
func (s *Settings) Tree() Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Clone()
}

// String returns the string leaf at path.
func (s *Settings) String(path ...string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.String(path...)
}

// Remote returns the base URLs of one remote backend environment.
func (s *Settings) Remote(env string) (static, api string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.String("remote", env, "static"), s.tree.String("remote", env, "api")
}

// Networks returns the network names configured for coin.
func (s *Settings) Networks(coin string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Keys(strings.ToLower(coin), "networks")
}

// Network returns the typed configuration of one network of coin.
func (s *Settings) Network(coin, name string) (Network, error) {
	s.mu.RLock()
	n, ok := s.tree.Lookup(strings.ToLower(coin), "networks", name)
	s.mu.RUnlock()
	if !ok {
		return Network{}, fmt.Errorf("%w: %s for coin %s", ErrUnknownNetwork, name, coin)
	}
	obj, ok := n.(Object)
	if !ok {
		return Network{}, fmt.Errorf("invalid configuration for %s network %s", coin, name)
	}

	var out Network
	if err := mapstructure.Decode(obj.ToMap(), &out); err != nil {
		return Network{}, fmt.Errorf("failed to decode %s network %s: %w", coin, name, err)
	}
	out.Name = name
	return out, nil
}
