package signing

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/magiconair/properties"
)

// RedactedValue replaces non-empty passwords in Redacted output.
const RedactedValue = "********"

// Credentials holds one resolved value per secret. Empty strings mean the
// secret was not found anywhere.
type Credentials struct {
	StoreFile     string `json:"storeFile"`
	StorePassword string `json:"storePassword"`
	KeyAlias      string `json:"keyAlias"`
	KeyPassword   string `json:"keyPassword"`

	sources [numSecrets]string
}

func (c *Credentials) field(name SecretName) *string {
	switch name {
	case KeystorePath:
		return &c.StoreFile
	case KeystorePassword:
		return &c.StorePassword
	case KeyAlias:
		return &c.KeyAlias
	case KeyringPassword:
		return &c.KeyPassword
	default:
		return nil
	}
}

func (c *Credentials) set(name SecretName, value, source string) {
	if f := c.field(name); f != nil {
		*f = value
		c.sources[name] = source
	}
}

// Get returns the value resolved for name.
func (c Credentials) Get(name SecretName) string {
	if f := c.field(name); f != nil {
		return *f
	}
	return ""
}

// Source returns the provider that supplied name, or "" when the value
// defaulted to empty.
func (c Credentials) Source(name SecretName) string {
	if !name.Valid() {
		return ""
	}
	return c.sources[name]
}

// Missing lists the secrets that resolved to "", in canonical order.
func (c Credentials) Missing() []SecretName {
	var missing []SecretName
	for _, name := range Names() {
		if c.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// StoreFilePath returns the keystore path as the build would open it:
// absolute paths unchanged, relative paths joined onto baseDir.
func (c Credentials) StoreFilePath(baseDir string) string {
	if c.StoreFile == "" || filepath.IsAbs(c.StoreFile) {
		return c.StoreFile
	}
	return filepath.Join(baseDir, c.StoreFile)
}

// Redacted returns a copy safe to print.
func (c Credentials) Redacted() Credentials {
	for _, name := range Names() {
		if name.Sensitive() && c.Get(name) != "" {
			*c.field(name) = RedactedValue
		}
	}
	return c
}

// WriteProperties writes the credentials as a properties file using the
// signing config keys.
func (c Credentials) WriteProperties(w io.Writer) error {
	p := properties.NewProperties()
	p.DisableExpansion = true
	for _, name := range Names() {
		if _, _, err := p.Set(name.PropertyKey(), c.Get(name)); err != nil {
			return fmt.Errorf("set %s: %w", name.PropertyKey(), err)
		}
	}
	if _, err := p.Write(w, properties.ISO_8859_1); err != nil {
		return fmt.Errorf("write properties: %w", err)
	}
	return nil
}
