package core

import (
	"fmt"
	"strings"
	"sync"
)

var (
	strategies    = make(map[string]Strategy)
	strategyOrder []string
	registryMu    sync.RWMutex
)

func init() {
	RegisterStrategy(HeaderDriven{})
	RegisterStrategy(ContentSniffed{})
}

// RegisterStrategy adds a normalization strategy to the registry. Strategies
// are tried in registration order by default.
// Panics if a strategy with the same name is already registered.
func RegisterStrategy(s Strategy) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := s.Name()
	if _, exists := strategies[name]; exists {
		panic(fmt.Sprintf("strategy already registered: %s", name))
	}
	strategies[name] = s
	strategyOrder = append(strategyOrder, name)
}

// LookupStrategy returns a strategy by name.
func LookupStrategy(name string) (Strategy, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := strategies[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// StrategyNames returns registered names in registration order.
func StrategyNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]string, len(strategyOrder))
	copy(out, strategyOrder)
	return out
}

// RegisteredStrategies returns every registered strategy in registration order.
func RegisteredStrategies() []Strategy {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Strategy, 0, len(strategyOrder))
	for _, name := range strategyOrder {
		out = append(out, strategies[name])
	}
	return out
}

// StrategiesByName resolves names into strategies, keeping the given order.
// An empty list selects every registered strategy.
func StrategiesByName(names []string) ([]Strategy, error) {
	if len(names) == 0 {
		return RegisteredStrategies(), nil
	}
	out := make([]Strategy, 0, len(names))
	for _, name := range names {
		s, ok := LookupStrategy(name)
		if !ok {
			return nil, fmt.Errorf("unknown strategy %q (registered: %s)", name, strings.Join(StrategyNames(), ", "))
		}
		out = append(out, s)
	}
	return out, nil
}
