package signing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonwraymond/signkit/observe"
	"github.com/jonwraymond/signkit/secret"
)

// Config configures a Resolver.
type Config struct {
	// PropertiesPath overrides the layout's properties file.
	// Default: Layout.PropertiesPath, then DefaultPropertiesPath.
	PropertiesPath string

	// DotenvPath overrides the layout's dotenv file. When neither is set the
	// dotenv provider contributes nothing.
	DotenvPath string

	// Layout selects the chains. Nil means DefaultLayout.
	Layout *Layout

	// Registry creates provider instances. Nil means secret.DefaultRegistry.
	Registry *secret.Registry

	// Observer receives lookup telemetry and warnings. Nil means NopObserver.
	Observer observe.Observer
}

// Resolver resolves signing secrets through per-secret provider chains.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Errors: Resolve never fails; problems with sources are logged and the
//     source is treated as empty.
//   - Files are read once, by NewResolver.
type Resolver struct {
	chains    [numSecrets]secret.Chain
	providers []secret.Provider
	logger    observe.Logger
}

// errReporter is implemented by providers that keep their last failure.
type errReporter interface {
	Err() error
}

// loggerSetter is implemented by providers that log on their own, such as
// remote providers reporting retries.
type loggerSetter interface {
	SetLogger(observe.Logger)
}

// NewResolver builds the providers named by the layout and the chains over
// them. It fails only on configuration mistakes, never because a credential
// source is missing or unreadable.
func NewResolver(ctx context.Context, cfg Config) (*Resolver, error) {
	layout := DefaultLayout()
	if cfg.Layout != nil {
		layout = *cfg.Layout
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	reg := cfg.Registry
	if reg == nil {
		reg = secret.DefaultRegistry
	}
	obs := cfg.Observer
	if obs == nil {
		obs = observe.NopObserver()
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, fmt.Errorf("lookup middleware: %w", err)
	}

	r := &Resolver{logger: obs.Logger()}

	instances, err := r.buildProviders(ctx, reg, layout, cfg)
	if err != nil {
		_ = r.Close()
		return nil, err
	}

	for _, name := range Names() {
		var chain secret.Chain
		for _, src := range layout.chain(name) {
			p, ok := instances[strings.TrimSpace(src.Provider)]
			if !ok {
				_ = r.Close()
				return nil, fmt.Errorf("secret %s: %w: %q", name, ErrUnknownProvider, src.Provider)
			}
			if p == nil {
				continue
			}
			chain = append(chain, secret.Link{
				Provider: r.observed(p, name, mw),
				Key:      strings.TrimSpace(src.Key),
			})
		}
		r.chains[name] = chain
	}

	return r, nil
}

func (r *Resolver) buildProviders(ctx context.Context, reg *secret.Registry, layout Layout, cfg Config) (map[string]secret.Provider, error) {
	instances := make(map[string]secret.Provider)

	add := func(name, kind string, options map[string]any) error {
		opts := make(map[string]any, len(options)+1)
		for k, v := range options {
			opts[k] = v
		}
		opts["name"] = name

		p, err := reg.Create(kind, opts)
		if err != nil {
			return fmt.Errorf("provider %q: %w", name, err)
		}
		if lp, ok := p.(loggerSetter); ok {
			lp.SetLogger(r.logger.With(observe.F("provider", name)))
		}
		r.providers = append(r.providers, p)
		instances[name] = p
		r.reportLoad(ctx, p)
		return nil
	}

	if err := add(secret.KindEnv, secret.KindEnv, nil); err != nil {
		return nil, err
	}

	propsPath := firstNonEmpty(cfg.PropertiesPath, layout.PropertiesPath, DefaultPropertiesPath)
	if err := add(secret.KindProperties, secret.KindProperties, map[string]any{"path": propsPath}); err != nil {
		return nil, err
	}

	if dotenvPath := firstNonEmpty(cfg.DotenvPath, layout.DotenvPath); dotenvPath != "" {
		if err := add(secret.KindDotenv, secret.KindDotenv, map[string]any{"path": dotenvPath}); err != nil {
			return nil, err
		}
	} else {
		instances[secret.KindDotenv] = nil
	}

	for _, spec := range layout.Providers {
		if err := add(strings.TrimSpace(spec.Name), strings.TrimSpace(spec.Kind), spec.Config); err != nil {
			return nil, err
		}
	}
	return instances, nil
}

// reportLoad logs the outcome of loading a file-backed provider.
func (r *Resolver) reportLoad(ctx context.Context, p secret.Provider) {
	type fileProvider interface {
		Path() string
		Loaded() bool
		Err() error
	}
	fp, ok := p.(fileProvider)
	if !ok {
		return
	}

	fields := []observe.Field{
		observe.F("provider", p.Name()),
		observe.F("path", fp.Path()),
	}
	switch {
	case fp.Err() != nil:
		r.logger.Warn(ctx, "credential file ignored", append(fields, observe.F("error", fp.Err()))...)
	case !fp.Loaded():
		r.logger.Debug(ctx, "credential file not found", fields...)
	default:
		if kp, ok := p.(interface{ Keys() []string }); ok {
			fields = append(fields, observe.F("keys", kp.Keys()))
		}
		r.logger.Debug(ctx, "credential file loaded", fields...)
	}
}

// Resolve returns the value of name: the first present value in its chain,
// or "" when no source has it.
func (r *Resolver) Resolve(ctx context.Context, name SecretName) string {
	if !name.Valid() {
		return ""
	}
	return r.chains[name].Value(ctx)
}

func (r *Resolver) resolve(ctx context.Context, name SecretName) (value, source string) {
	if !name.Valid() {
		return "", ""
	}
	value, source, _ = r.chains[name].Resolve(ctx)
	return value, source
}

// ResolveAll resolves every secret. The result is computed fresh on each
// call.
func (r *Resolver) ResolveAll(ctx context.Context) Credentials {
	var c Credentials
	for _, name := range Names() {
		value, source := r.resolve(ctx, name)
		c.set(name, value, source)
	}
	return c
}

// Close closes every provider the resolver created.
func (r *Resolver) Close() error {
	var errs []error
	for _, p := range r.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close provider %q: %w", p.Name(), err))
		}
	}
	r.providers = nil
	return errors.Join(errs...)
}

// observedProvider routes lookups for one secret through the telemetry
// middleware.
type observedProvider struct {
	secret.Provider
	lookup observe.LookupFunc
	name   SecretName
}

func (r *Resolver) observed(p secret.Provider, name SecretName, mw *observe.Middleware) secret.Provider {
	_, fileBacked := p.(interface{ Loaded() bool })

	lookup := func(ctx context.Context, meta observe.LookupMeta) (string, bool) {
		v, ok := p.Lookup(ctx, meta.Key)
		if ok || fileBacked {
			return v, ok
		}
		if er, isReporter := p.(errReporter); isReporter {
			if err := er.Err(); err != nil {
				r.logger.Warn(ctx, "credential source failed",
					observe.F("secret.name", meta.Secret),
					observe.F("provider", meta.Provider),
					observe.F("error", err),
				)
			}
		}
		return v, ok
	}

	return &observedProvider{Provider: p, lookup: mw.Wrap(lookup), name: name}
}

func (o *observedProvider) Lookup(ctx context.Context, key string) (string, bool) {
	return o.lookup(ctx, observe.LookupMeta{
		Secret:   o.name.String(),
		Provider: o.Provider.Name(),
		Key:      key,
	})
}

// Close is a no-op; the Resolver owns the underlying provider.
func (o *observedProvider) Close() error { return nil }

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
