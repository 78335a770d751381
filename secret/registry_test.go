package secret

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRegistry_RegisterAndCreate(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register("stub", func(cfg map[string]any) (Provider, error) {
		return &stubProvider{name: "stub"}, nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	p, err := reg.Create("stub", map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p == nil || p.Name() != "stub" {
		t.Fatalf("unexpected provider: %#v", p)
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register("stub", func(cfg map[string]any) (Provider, error) { return &stubProvider{name: "stub"}, nil })

	if err := reg.Register("stub", func(cfg map[string]any) (Provider, error) { return &stubProvider{name: "stub"}, nil }); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestRegistry_CreateUnknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Create("missing", nil)
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Fatalf("Create() error = %v, want ErrProviderNotRegistered", err)
	}
}

func TestBuiltinRegistry_Kinds(t *testing.T) {
	got := NewBuiltinRegistry().List()
	want := []string{KindDotenv, KindEnv, KindProperties}
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() = %v, want %v", got, want)
		}
	}
}

func TestBuiltinRegistry_PropertiesRequiresPath(t *testing.T) {
	if _, err := NewBuiltinRegistry().Create(KindProperties, nil); err == nil {
		t.Fatalf("expected error for missing path")
	}
}

func TestBuiltinRegistry_InstanceName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ci.properties")
	if err := os.WriteFile(path, []byte("keyAlias=ci\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := NewBuiltinRegistry().Create(KindProperties, map[string]any{"name": "ci-props", "path": path})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Name() != "ci-props" {
		t.Fatalf("Name() = %q, want %q", p.Name(), "ci-props")
	}
}

func TestStringOption_WrongType(t *testing.T) {
	if _, err := StringOption(map[string]any{"path": 42}, "path"); err == nil {
		t.Fatalf("expected type error")
	}
}
