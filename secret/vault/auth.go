package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// login returns the client token to use, or "" to keep the client default.
func (p *Provider) login(ctx context.Context) (string, error) {
	switch p.cfg.AuthMethod {
	case "approle":
		roleID := firstNonEmpty(p.cfg.RoleID, os.Getenv("VAULT_ROLE_ID"))
		secretID := firstNonEmpty(p.cfg.SecretID, os.Getenv("VAULT_SECRET_ID"))
		if roleID == "" {
			return "", errors.New("vault approle login: role_id is required")
		}
		return p.write(ctx, map[string]any{
			"role_id":   roleID,
			"secret_id": secretID,
		})

	case "jwt":
		token, err := p.ciToken()
		if err != nil {
			return "", err
		}
		if err := checkTokenExpiry(token, time.Now()); err != nil {
			return "", err
		}
		return p.write(ctx, map[string]any{
			"role": p.cfg.Role,
			"jwt":  token,
		})

	default:
		return firstNonEmpty(p.cfg.Token, os.Getenv("VAULT_TOKEN"), os.Getenv("BAO_TOKEN")), nil
	}
}

func (p *Provider) write(ctx context.Context, body map[string]any) (string, error) {
	path := "auth/" + p.cfg.AuthMount + "/login"
	s, err := p.client.Logical().WriteWithContext(ctx, path, body)
	if err != nil {
		return "", fmt.Errorf("vault login (%s): %w", p.cfg.AuthMethod, err)
	}
	if s == nil || s.Auth == nil {
		return "", errors.New("vault login returned no auth info")
	}
	return s.Auth.ClientToken, nil
}

func (p *Provider) ciToken() (string, error) {
	if token := firstNonEmpty(p.cfg.JWT, os.Getenv("VAULT_JWT")); token != "" {
		return token, nil
	}
	if p.cfg.JWTFile == "" {
		return "", errors.New("vault jwt login: no token configured")
	}
	data, err := os.ReadFile(p.cfg.JWTFile)
	if err != nil {
		return "", fmt.Errorf("vault jwt login: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// checkTokenExpiry rejects a CI identity token that has already expired.
// The signature is not checked here; Vault verifies it on login.
func checkTokenExpiry(token string, now time.Time) error {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("vault jwt login: malformed token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("vault jwt login: %w", err)
	}
	if exp != nil && !exp.After(now) {
		return fmt.Errorf("vault jwt login: token expired at %s", exp.UTC().Format(time.RFC3339))
	}
	return nil
}
