package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearSigningEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"KEYSTORE_PATH", "KEYSTORE_PASSWORD", "KEY_ALIAS", envLogLevel} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeProps(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "key.properties")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolve_TextRedactsPasswords(t *testing.T) {
	clearSigningEnv(t)
	t.Setenv("KEYSTORE_PASSWORD", "envpass")
	props := writeProps(t, t.TempDir(), "storeFile=/keys/release.jks\nkeyAlias=upload\n")

	out, _, err := run(t, "resolve", "--properties", props)
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}
	if strings.Contains(out, "envpass") {
		t.Errorf("password printed without --reveal:\n%s", out)
	}
	for _, want := range []string{"/keys/release.jks", "upload", "********", "(env)", "(properties)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestResolve_JSONReveal(t *testing.T) {
	clearSigningEnv(t)
	t.Setenv("KEYSTORE_PASSWORD", "envpass")
	t.Setenv("KEY_ALIAS", "upload")

	out, _, err := run(t, "resolve", "--properties", filepath.Join(t.TempDir(), "none"), "--format", "json", "--reveal")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	var got struct {
		StoreFile     string            `json:"storeFile"`
		StorePassword string            `json:"storePassword"`
		KeyAlias      string            `json:"keyAlias"`
		KeyPassword   string            `json:"keyPassword"`
		Sources       map[string]string `json:"sources"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if got.StoreFile != "" || got.StorePassword != "envpass" || got.KeyPassword != "envpass" || got.KeyAlias != "upload" {
		t.Errorf("unexpected credentials: %+v", got)
	}
	if got.Sources["keyAlias"] != "env" {
		t.Errorf("sources = %v", got.Sources)
	}
}

func TestResolve_PropertiesAndEnvFormats(t *testing.T) {
	clearSigningEnv(t)
	t.Setenv("KEY_ALIAS", "upload")
	none := filepath.Join(t.TempDir(), "none")

	out, _, err := run(t, "resolve", "--properties", none, "--format", "properties")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}
	if !strings.Contains(out, "keyAlias = upload") {
		t.Errorf("properties output:\n%s", out)
	}

	out, _, err = run(t, "resolve", "--properties", none, "--format", "env")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}
	if !strings.Contains(out, `KEY_ALIAS="upload"`) {
		t.Errorf("env output:\n%s", out)
	}
}

func TestResolve_Errors(t *testing.T) {
	clearSigningEnv(t)

	if _, _, err := run(t, "resolve", "--format", "yaml"); err == nil {
		t.Error("unknown format accepted")
	}
	if _, _, err := run(t, "resolve", "--layout", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing layout accepted")
	}
	if _, _, err := run(t, "resolve", "--log-level", "loud"); err == nil {
		t.Error("invalid log level accepted")
	}
}

func TestResolve_MalformedFileWarns(t *testing.T) {
	clearSigningEnv(t)
	props := writeProps(t, t.TempDir(), "storeFile=\\uZZZZ\n")

	out, stderr, err := run(t, "resolve", "--properties", props)
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}
	if !strings.Contains(out, "(unset)") {
		t.Errorf("expected unset values:\n%s", out)
	}
	if !strings.Contains(stderr, "credential file ignored") {
		t.Errorf("expected warning on stderr, got %q", stderr)
	}
}

func TestCheck(t *testing.T) {
	clearSigningEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "release.jks"), []byte("jks"), 0o600); err != nil {
		t.Fatal(err)
	}
	props := writeProps(t, dir, "storeFile=release.jks\nstorePassword=a\nkeyAlias=upload\nkeyPassword=b\n")

	out, _, err := run(t, "check", "--properties", props, "--base-dir", dir)
	if err != nil {
		t.Fatalf("check error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "HEALTHY   credentials") || !strings.Contains(out, "HEALTHY   keystore") {
		t.Errorf("unexpected output:\n%s", out)
	}

	t.Setenv("KEYSTORE_PATH", "elsewhere.jks")
	out, _, err = run(t, "check", "--properties", props, "--base-dir", dir)
	if !errors.Is(err, errUnhealthy) {
		t.Fatalf("check error = %v, want errUnhealthy", err)
	}
	if !strings.Contains(out, "UNHEALTHY keystore") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
