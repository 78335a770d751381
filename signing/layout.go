package signing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/signkit/secret"
)

// DefaultPropertiesPath is the properties file read when nothing else is
// configured. Relative paths resolve against the working directory.
const DefaultPropertiesPath = "key.properties"

// Environment variables consulted by the default layout.
const (
	EnvKeystorePath     = "KEYSTORE_PATH"
	EnvKeystorePassword = "KEYSTORE_PASSWORD"
	EnvKeyAlias         = "KEY_ALIAS"
)

// Source is one step of a secret's chain: ask Provider for Key.
type Source struct {
	Provider string `yaml:"provider"`
	Key      string `yaml:"key"`
}

// ProviderSpec declares an extra provider instance.
type ProviderSpec struct {
	Name   string         `yaml:"name"`
	Kind   string         `yaml:"kind"`
	Config map[string]any `yaml:"config"`
}

// Layout describes where each secret is looked up.
//
// Provider names in Secrets refer either to a built-in instance (env,
// properties, dotenv) or to an entry in Providers.
type Layout struct {
	PropertiesPath string
	DotenvPath     string
	Providers      []ProviderSpec
	Secrets        map[SecretName][]Source
}

// DefaultLayout returns the environment-then-properties layout.
// Both passwords read KEYSTORE_PASSWORD from the environment.
func DefaultLayout() Layout {
	return Layout{
		Secrets: map[SecretName][]Source{
			KeystorePath: {
				{Provider: secret.KindEnv, Key: EnvKeystorePath},
				{Provider: secret.KindProperties, Key: KeystorePath.PropertyKey()},
			},
			KeystorePassword: {
				{Provider: secret.KindEnv, Key: EnvKeystorePassword},
				{Provider: secret.KindProperties, Key: KeystorePassword.PropertyKey()},
			},
			KeyAlias: {
				{Provider: secret.KindEnv, Key: EnvKeyAlias},
				{Provider: secret.KindProperties, Key: KeyAlias.PropertyKey()},
			},
			KeyringPassword: {
				{Provider: secret.KindEnv, Key: EnvKeystorePassword},
				{Provider: secret.KindProperties, Key: KeyringPassword.PropertyKey()},
			},
		},
	}
}

type layoutFile struct {
	Properties string              `yaml:"properties"`
	Dotenv     string              `yaml:"dotenv"`
	Providers  []ProviderSpec      `yaml:"providers"`
	Secrets    map[string][]Source `yaml:"secrets"`
}

// LoadLayout reads a YAML layout from path.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout %q: %w", path, err)
	}
	layout, err := ParseLayout(data)
	if err != nil {
		return Layout{}, fmt.Errorf("layout %q: %w", path, err)
	}
	return layout, nil
}

// ParseLayout decodes a YAML layout. Secrets the document does not mention
// keep their default chain.
func ParseLayout(data []byte) (Layout, error) {
	var file layoutFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return Layout{}, fmt.Errorf("decode yaml: %w", err)
	}

	layout := DefaultLayout()
	layout.PropertiesPath = strings.TrimSpace(file.Properties)
	layout.DotenvPath = strings.TrimSpace(file.Dotenv)
	layout.Providers = file.Providers

	for raw, sources := range file.Secrets {
		name, err := ParseSecretName(raw)
		if err != nil {
			return Layout{}, err
		}
		layout.Secrets[name] = sources
	}

	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

// Validate checks that every secret has a non-empty chain and that every
// source names a known provider instance.
func (l Layout) Validate() error {
	known := map[string]bool{
		secret.KindEnv:        true,
		secret.KindProperties: true,
		secret.KindDotenv:     true,
	}
	for i, spec := range l.Providers {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return fmt.Errorf("providers[%d]: name is required", i)
		}
		if strings.TrimSpace(spec.Kind) == "" {
			return fmt.Errorf("provider %q: kind is required", name)
		}
		if known[name] {
			return fmt.Errorf("provider %q: name already in use", name)
		}
		known[name] = true
	}

	for name, sources := range l.Secrets {
		if !name.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownSecret, int(name))
		}
		if len(sources) == 0 {
			return fmt.Errorf("secret %s: %w", name, ErrEmptyChain)
		}
		for _, src := range sources {
			if !known[strings.TrimSpace(src.Provider)] {
				return fmt.Errorf("secret %s: %w: %q", name, ErrUnknownProvider, src.Provider)
			}
			if strings.TrimSpace(src.Key) == "" {
				return fmt.Errorf("secret %s: provider %q: key is required", name, src.Provider)
			}
		}
	}
	return nil
}

// chain returns the sources for name, falling back to the default layout.
func (l Layout) chain(name SecretName) []Source {
	if sources, ok := l.Secrets[name]; ok {
		return sources
	}
	return DefaultLayout().Secrets[name]
}
