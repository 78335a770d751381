// Package vault implements a secret provider that reads keys from a single
// HashiCorp Vault (or OpenBao) KV v2 secret.
//
// Every failure, whether login, transport, a missing path or a missing key,
// is reported as an absent key. The most recent failure is available from Err.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/vault/api"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/signkit/observe"
	"github.com/jonwraymond/signkit/resilience"
	"github.com/jonwraymond/signkit/secret"
)

// Kind is the registry kind for this provider.
const Kind = "vault"

// Config holds configuration for the Vault provider.
type Config struct {
	Name    string // instance name, default "vault"
	Address string // default: VAULT_ADDR, then BAO_ADDR
	Mount   string // KV v2 mount, default "secret"
	Path    string // secret path under the mount (required)

	AuthMethod string // token|approle|jwt, default token
	AuthMount  string // auth mount, default the method name
	Token      string // token auth; default VAULT_TOKEN, then BAO_TOKEN
	RoleID     string // approle; default VAULT_ROLE_ID
	SecretID   string // approle; default VAULT_SECRET_ID
	Role       string // jwt role
	JWT        string // jwt; default VAULT_JWT
	JWTFile    string // jwt read from file when JWT is empty

	Timeout     time.Duration // per attempt, default 5s
	MaxAttempts int           // default 3
}

// kvReader is the subset of *api.KVv2 the provider needs.
type kvReader interface {
	Get(ctx context.Context, secretPath string) (*api.KVSecret, error)
}

// Provider implements secret.Provider for a KV v2 secret.
type Provider struct {
	cfg    Config
	client *api.Client
	kv     kvReader
	retry  *resilience.Retry
	group  singleflight.Group

	mu       sync.Mutex
	loggedIn bool
	lastErr  error
	logger   observe.Logger
}

// New creates a Vault provider. It does not contact Vault; login happens on
// the first lookup.
func New(cfg Config) (*Provider, error) {
	if cfg.Path == "" {
		return nil, errors.New("vault provider requires a path")
	}
	if cfg.Name == "" {
		cfg.Name = Kind
	}
	if cfg.Mount == "" {
		cfg.Mount = "secret"
	}
	if cfg.AuthMethod == "" {
		cfg.AuthMethod = "token"
	}
	if cfg.AuthMount == "" {
		cfg.AuthMount = cfg.AuthMethod
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	switch cfg.AuthMethod {
	case "token", "approle", "jwt":
	default:
		return nil, fmt.Errorf("unknown vault auth method: %q", cfg.AuthMethod)
	}

	vcfg := api.DefaultConfig()
	if addr := firstNonEmpty(cfg.Address, os.Getenv("VAULT_ADDR"), os.Getenv("BAO_ADDR")); addr != "" {
		vcfg.Address = addr
	}
	client, err := api.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}

	p := &Provider{
		cfg:    cfg,
		client: client,
		kv:     client.KVv2(cfg.Mount),
		logger: observe.NopLogger(),
	}
	p.retry = resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts:    cfg.MaxAttempts,
		InitialDelay:   200 * time.Millisecond,
		Jitter:         true,
		AttemptTimeout: cfg.Timeout,
		RetryIf: func(err error) bool {
			return !errors.Is(err, api.ErrSecretNotFound)
		},
		OnRetry: p.logRetry,
	})
	return p, nil
}

// SetLogger sets the logger used to report retried reads.
func (p *Provider) SetLogger(l observe.Logger) {
	if l == nil {
		l = observe.NopLogger()
	}
	p.mu.Lock()
	p.logger = l
	p.mu.Unlock()
}

func (p *Provider) logRetry(attempt int, err error, delay time.Duration) {
	p.mu.Lock()
	l := p.logger
	p.mu.Unlock()

	l.Warn(context.Background(), "vault read failed, retrying",
		observe.F("mount", p.cfg.Mount),
		observe.F("path", p.cfg.Path),
		observe.F("attempt", attempt),
		observe.F("delay_ms", delay.Milliseconds()),
		observe.F("error", err),
	)
}

// NewFromConfig is a secret.ProviderFactory for the "vault" kind.
// The timeout option takes a duration string ("5s") or a number of seconds.
func NewFromConfig(raw map[string]any) (secret.Provider, error) {
	var cfg Config
	fields := map[string]*string{
		"name":       &cfg.Name,
		"address":    &cfg.Address,
		"mount":      &cfg.Mount,
		"path":       &cfg.Path,
		"auth":       &cfg.AuthMethod,
		"auth_mount": &cfg.AuthMount,
		"role":       &cfg.Role,
		"role_id":    &cfg.RoleID,
		"jwt_file":   &cfg.JWTFile,
	}
	for key, dst := range fields {
		v, err := secret.StringOption(raw, key)
		if err != nil {
			return nil, err
		}
		*dst = v
	}

	timeout, err := durationOption(raw, "timeout")
	if err != nil {
		return nil, err
	}
	cfg.Timeout = timeout

	if v, ok := raw["max_attempts"]; ok {
		n, ok := v.(int)
		if !ok {
			return nil, fmt.Errorf("option %q must be an integer, got %T", "max_attempts", v)
		}
		cfg.MaxAttempts = n
	}

	return New(cfg)
}

// durationOption reads a duration string such as "5s", or a bare number of
// seconds as YAML decodes `timeout: 5`.
func durationOption(raw map[string]any, key string) (time.Duration, error) {
	switch v := raw[key].(type) {
	case nil:
		return 0, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	case string:
		if v == "" {
			return 0, nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("option %q: %w", key, err)
		}
		return d, nil
	default:
		return 0, fmt.Errorf("option %q must be a duration, got %T", key, v)
	}
}

// Register adds the vault kind to reg.
func Register(reg *secret.Registry) error {
	return reg.Register(Kind, NewFromConfig)
}

func (p *Provider) Name() string { return p.cfg.Name }

// Err returns the failure of the most recent read, or nil.
func (p *Provider) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Lookup reads the configured secret and returns the field named key.
// The secret is read on every call; concurrent calls share one read.
func (p *Provider) Lookup(ctx context.Context, key string) (string, bool) {
	if key == "" {
		return "", false
	}

	data, err := p.read(ctx)
	p.setErr(err)
	if err != nil {
		return "", false
	}

	raw, ok := data[key]
	if !ok {
		return "", false
	}
	if s, ok := raw.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", raw), true
}

func (p *Provider) read(ctx context.Context) (map[string]any, error) {
	v, err, _ := p.group.Do(p.cfg.Path, func() (any, error) {
		if err := p.ensureLogin(ctx); err != nil {
			return nil, err
		}

		var kvSecret *api.KVSecret
		err := p.retry.Do(ctx, func(ctx context.Context) error {
			s, err := p.kv.Get(ctx, p.cfg.Path)
			if err != nil {
				return err
			}
			kvSecret = s
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("read vault secret %s/%s: %w", p.cfg.Mount, p.cfg.Path, err)
		}
		if kvSecret == nil || kvSecret.Data == nil {
			return nil, fmt.Errorf("vault secret %s/%s: %w", p.cfg.Mount, p.cfg.Path, api.ErrSecretNotFound)
		}
		return kvSecret.Data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]any), nil
}

func (p *Provider) ensureLogin(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loggedIn {
		return nil
	}

	token, err := p.login(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		p.client.SetToken(token)
	}
	p.loggedIn = true
	return nil
}

func (p *Provider) setErr(err error) {
	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()
}

// Close is a no-op; the provider holds no background resources.
func (p *Provider) Close() error {
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
