package platform

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ErrNotRegistered is returned when no gateway is enabled for a platform tag.
var ErrNotRegistered = errors.New("no gateway registered for platform")

// Registry maps platform tags to their gateways. It is populated once at
// startup from enabled configuration.
type Registry struct {
	mu       sync.RWMutex
	gateways map[string]Gateway
	logger   *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		gateways: make(map[string]Gateway),
		logger:   logger,
	}
}

func (r *Registry) Register(gw Gateway) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := gw.Name()
	if _, exists := r.gateways[name]; exists {
		return fmt.Errorf("gateway for platform %s already registered", name)
	}

	r.gateways[name] = gw
	r.logger.Info("Gateway registered", zap.String("platform", name))
	return nil
}

func (r *Registry) Get(tag string) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gw, exists := r.gateways[tag]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, tag)
	}
	return gw, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
