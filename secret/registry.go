package secret

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrProviderNotRegistered is returned by Create for an unknown provider kind.
var ErrProviderNotRegistered = errors.New("secret: provider kind not registered")

// ProviderFactory creates a Provider from configuration.
//
// The "name" entry, when present, is the instance name the provider reports
// from Name. Factories must not fail because a backing store is missing.
type ProviderFactory func(cfg map[string]any) (Provider, error)

// Registry manages provider factories.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ProviderFactory
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ProviderFactory)}
}

// NewBuiltinRegistry creates a registry holding the env, properties and
// dotenv kinds.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(KindEnv, newEnvFromConfig)
	_ = r.Register(KindProperties, newPropertiesFromConfig)
	_ = r.Register(KindDotenv, newDotenvFromConfig)
	return r
}

// Register adds a provider factory.
func (r *Registry) Register(kind string, factory ProviderFactory) error {
	if strings.TrimSpace(kind) == "" || factory == nil {
		return errors.New("invalid provider registration")
	}
	kind = strings.TrimSpace(kind)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[kind]; exists {
		return fmt.Errorf("secret provider %q already registered", kind)
	}
	r.providers[kind] = factory
	return nil
}

// Create instantiates a provider by kind.
func (r *Registry) Create(kind string, cfg map[string]any) (Provider, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil, errors.New("provider kind is required")
	}

	r.mu.RLock()
	factory, ok := r.providers[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("secret provider %q: %w", kind, ErrProviderNotRegistered)
	}

	return factory(cfg)
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[strings.TrimSpace(kind)]
	return ok
}

// List returns registered provider kinds.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global registry for secret providers.
var DefaultRegistry = NewBuiltinRegistry()

// StringOption returns cfg[key] as a string. A missing key yields "".
func StringOption(cfg map[string]any, key string) (string, error) {
	v, ok := cfg[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("option %q must be a string, got %T", key, v)
	}
	return strings.TrimSpace(s), nil
}

func instanceName(cfg map[string]any, fallback string) (string, error) {
	name, err := StringOption(cfg, "name")
	if err != nil {
		return "", err
	}
	if name == "" {
		return fallback, nil
	}
	return name, nil
}

func requiredPath(cfg map[string]any, kind string) (string, error) {
	path, err := StringOption(cfg, "path")
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("%s provider requires a path", kind)
	}
	return path, nil
}

func newEnvFromConfig(cfg map[string]any) (Provider, error) {
	name, err := instanceName(cfg, KindEnv)
	if err != nil {
		return nil, err
	}
	return &EnvProvider{name: name}, nil
}

func newPropertiesFromConfig(cfg map[string]any) (Provider, error) {
	name, err := instanceName(cfg, KindProperties)
	if err != nil {
		return nil, err
	}
	path, err := requiredPath(cfg, KindProperties)
	if err != nil {
		return nil, err
	}
	p := LoadProperties(path)
	p.name = name
	return p, nil
}

func newDotenvFromConfig(cfg map[string]any) (Provider, error) {
	name, err := instanceName(cfg, KindDotenv)
	if err != nil {
		return nil, err
	}
	path, err := requiredPath(cfg, KindDotenv)
	if err != nil {
		return nil, err
	}
	p := LoadDotenv(path)
	p.name = name
	return p, nil
}
