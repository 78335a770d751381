package vault

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/vault/api"

	"github.com/jonwraymond/signkit/observe"
	"github.com/jonwraymond/signkit/secret"
)

// mockKV implements kvReader for unit testing.
type mockKV struct {
	data  map[string]*api.KVSecret
	err   error
	calls int
}

func (m *mockKV) Get(ctx context.Context, path string) (*api.KVSecret, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.data[path]; ok {
		return s, nil
	}
	return nil, api.ErrSecretNotFound
}

func newTestProvider(t *testing.T, kv *mockKV) *Provider {
	t.Helper()
	t.Setenv("VAULT_TOKEN", "test-token")

	p, err := New(Config{Path: "android/signing", MaxAttempts: 2, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p.kv = kv
	return p
}

func TestProvider_Lookup(t *testing.T) {
	kv := &mockKV{data: map[string]*api.KVSecret{
		"android/signing": {Data: map[string]any{
			"store_password": "vaultpass",
			"version":        3,
		}},
	}}
	p := newTestProvider(t, kv)
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		want    string
		present bool
	}{
		{name: "string field", key: "store_password", want: "vaultpass", present: true},
		{name: "non-string field", key: "version", want: "3", present: true},
		{name: "missing field", key: "key_alias", want: "", present: false},
		{name: "empty key", key: "", want: "", present: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := p.Lookup(ctx, tt.key)
			if got != tt.want || ok != tt.present {
				t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.key, got, ok, tt.want, tt.present)
			}
		})
	}
	if p.Err() != nil {
		t.Errorf("Err() = %v, want nil", p.Err())
	}
}

func TestProvider_ReadsEveryLookup(t *testing.T) {
	kv := &mockKV{data: map[string]*api.KVSecret{
		"android/signing": {Data: map[string]any{"key_alias": "upload"}},
	}}
	p := newTestProvider(t, kv)

	p.Lookup(context.Background(), "key_alias")
	p.Lookup(context.Background(), "key_alias")
	if kv.calls != 2 {
		t.Errorf("kv reads = %d, want 2", kv.calls)
	}
}

func TestProvider_ErrorIsAbsent(t *testing.T) {
	kv := &mockKV{err: errors.New("connection refused")}
	p := newTestProvider(t, kv)

	if v, ok := p.Lookup(context.Background(), "store_password"); ok || v != "" {
		t.Fatalf("Lookup() = (%q, %v), want absent", v, ok)
	}
	if p.Err() == nil || !strings.Contains(p.Err().Error(), "connection refused") {
		t.Fatalf("Err() = %v, want connection refused", p.Err())
	}
	if kv.calls != 2 {
		t.Errorf("kv reads = %d, want 2 (retried)", kv.calls)
	}
}

func TestProvider_RecoveryClearsErr(t *testing.T) {
	kv := &mockKV{err: errors.New("connection refused")}
	p := newTestProvider(t, kv)
	ctx := context.Background()

	p.Lookup(ctx, "store_password")
	if p.Err() == nil {
		t.Fatal("Err() = nil after failed read")
	}

	kv.err = nil
	kv.data = map[string]*api.KVSecret{
		"android/signing": {Data: map[string]any{"store_password": "vaultpass"}},
	}
	if v, ok := p.Lookup(ctx, "store_password"); !ok || v != "vaultpass" {
		t.Fatalf("Lookup() = (%q, %v) after recovery", v, ok)
	}
	if p.Err() != nil {
		t.Errorf("Err() = %v, want nil after successful read", p.Err())
	}
}

func TestProvider_RetryIsLogged(t *testing.T) {
	kv := &mockKV{err: errors.New("connection refused")}
	p := newTestProvider(t, kv)

	var logs bytes.Buffer
	p.SetLogger(observe.NewLoggerWithWriter("warn", &logs))

	p.Lookup(context.Background(), "store_password")

	out := logs.String()
	if strings.Count(out, "vault read failed, retrying") != 1 {
		t.Fatalf("expected one retry warning, got %q", out)
	}
	if !strings.Contains(out, "android/signing") || !strings.Contains(out, "connection refused") {
		t.Errorf("retry warning lacks path or cause: %q", out)
	}
}

func TestProvider_NotFoundIsNotRetried(t *testing.T) {
	kv := &mockKV{data: map[string]*api.KVSecret{}}
	p := newTestProvider(t, kv)

	if _, ok := p.Lookup(context.Background(), "store_password"); ok {
		t.Fatalf("Lookup() reported present for missing secret")
	}
	if kv.calls != 1 {
		t.Errorf("kv reads = %d, want 1", kv.calls)
	}
	if !errors.Is(p.Err(), api.ErrSecretNotFound) {
		t.Errorf("Err() = %v, want ErrSecretNotFound", p.Err())
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for missing path")
	}
	if _, err := New(Config{Path: "p", AuthMethod: "kerberos"}); err == nil {
		t.Error("expected error for unknown auth method")
	}
}

func TestNewFromConfig(t *testing.T) {
	p, err := NewFromConfig(map[string]any{
		"name":         "ci-vault",
		"address":      "http://127.0.0.1:8200",
		"mount":        "kv",
		"path":         "android/signing",
		"timeout":      "2s",
		"max_attempts": 4,
	})
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	vp := p.(*Provider)
	if vp.Name() != "ci-vault" || vp.cfg.Mount != "kv" || vp.cfg.Timeout != 2*time.Second {
		t.Errorf("unexpected config: %+v", vp.cfg)
	}
	if vp.cfg.MaxAttempts != 4 {
		t.Errorf("MaxAttempts = %d, want 4", vp.cfg.MaxAttempts)
	}

	p, err = NewFromConfig(map[string]any{"path": "p", "timeout": 5})
	if err != nil {
		t.Fatalf("NewFromConfig(timeout: 5) error = %v", err)
	}
	if got := p.(*Provider).cfg.Timeout; got != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", got)
	}
	p, err = NewFromConfig(map[string]any{"path": "p", "timeout": 1.5})
	if err != nil {
		t.Fatalf("NewFromConfig(timeout: 1.5) error = %v", err)
	}
	if got := p.(*Provider).cfg.Timeout; got != 1500*time.Millisecond {
		t.Errorf("Timeout = %v, want 1.5s", got)
	}

	if _, err := NewFromConfig(map[string]any{"path": "p", "timeout": true}); err == nil {
		t.Error("expected error for boolean timeout")
	}
	if _, err := NewFromConfig(map[string]any{"path": "p", "timeout": "soon"}); err == nil {
		t.Error("expected error for bad timeout")
	}
	if _, err := NewFromConfig(map[string]any{"path": "p", "max_attempts": "3"}); err == nil {
		t.Error("expected error for non-integer max_attempts")
	}
}

func TestRegister(t *testing.T) {
	reg := secret.NewBuiltinRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !reg.Has(Kind) {
		t.Fatalf("vault kind not registered")
	}
}

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "repo:example/app:ref:refs/heads/main",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestCheckTokenExpiry(t *testing.T) {
	now := time.Now()

	if err := checkTokenExpiry(signToken(t, now.Add(time.Hour)), now); err != nil {
		t.Errorf("valid token: %v", err)
	}
	if err := checkTokenExpiry(signToken(t, now.Add(-time.Minute)), now); err == nil {
		t.Error("expected error for expired token")
	}
	if err := checkTokenExpiry("not-a-jwt", now); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestProvider_JWTLoginRejectsExpiredToken(t *testing.T) {
	t.Setenv("VAULT_JWT", signToken(t, time.Now().Add(-time.Hour)))

	p, err := New(Config{Path: "android/signing", AuthMethod: "jwt", Role: "release"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	kv := &mockKV{}
	p.kv = kv

	if _, ok := p.Lookup(context.Background(), "store_password"); ok {
		t.Fatalf("Lookup() reported present after failed login")
	}
	if kv.calls != 0 {
		t.Errorf("kv reads = %d, want 0 after failed login", kv.calls)
	}
	if p.Err() == nil || !strings.Contains(p.Err().Error(), "expired") {
		t.Errorf("Err() = %v, want expiry error", p.Err())
	}
}
