package signing

import (
	"fmt"
	"strings"
)

// SecretName identifies one of the signing secrets.
type SecretName int

const (
	KeystorePath SecretName = iota
	KeystorePassword
	KeyAlias
	KeyringPassword

	numSecrets = iota
)

var secretNames = [numSecrets]string{
	KeystorePath:     "keystore_path",
	KeystorePassword: "keystore_password",
	KeyAlias:         "key_alias",
	KeyringPassword:  "keyring_password",
}

// Property keys of the signing config consumed by the build.
var propertyKeys = [numSecrets]string{
	KeystorePath:     "storeFile",
	KeystorePassword: "storePassword",
	KeyAlias:         "keyAlias",
	KeyringPassword:  "keyPassword",
}

// Names returns every secret name in canonical order.
func Names() []SecretName {
	return []SecretName{KeystorePath, KeystorePassword, KeyAlias, KeyringPassword}
}

// ParseSecretName parses the canonical string form of a secret name.
func ParseSecretName(s string) (SecretName, error) {
	s = strings.TrimSpace(s)
	for i, name := range secretNames {
		if name == s {
			return SecretName(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSecret, s)
}

// Valid reports whether n is one of the known secrets.
func (n SecretName) Valid() bool {
	return n >= 0 && n < numSecrets
}

func (n SecretName) String() string {
	if !n.Valid() {
		return fmt.Sprintf("SecretName(%d)", int(n))
	}
	return secretNames[n]
}

// PropertyKey returns the signing config field n maps to, e.g. storeFile.
func (n SecretName) PropertyKey() string {
	if !n.Valid() {
		return ""
	}
	return propertyKeys[n]
}

// Sensitive reports whether n holds a password.
func (n SecretName) Sensitive() bool {
	return n == KeystorePassword || n == KeyringPassword
}

// MarshalText implements encoding.TextMarshaler.
func (n SecretName) MarshalText() ([]byte, error) {
	if !n.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSecret, int(n))
	}
	return []byte(secretNames[n]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *SecretName) UnmarshalText(text []byte) error {
	parsed, err := ParseSecretName(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
