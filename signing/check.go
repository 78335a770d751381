package signing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jonwraymond/signkit/health"
)

// Checker names.
const (
	CheckCredentials = "credentials"
	CheckKeystore    = "keystore"
)

var errKeystoreUnset = errors.New("keystore path is empty")

// CompletenessChecker reports Degraded when any secret resolves to "".
func CompletenessChecker(res *Resolver) health.Checker {
	return health.NewCheckerFunc(CheckCredentials, func(ctx context.Context) health.Result {
		creds := res.ResolveAll(ctx)

		sources := make(map[string]any, numSecrets)
		for _, name := range Names() {
			sources[name.String()] = creds.Source(name)
		}

		missing := creds.Missing()
		if len(missing) == 0 {
			return health.Healthy("all credentials resolved").
				WithDetails(map[string]any{"sources": sources})
		}

		names := make([]string, len(missing))
		for i, name := range missing {
			names[i] = name.String()
		}
		return health.Degraded("missing: " + strings.Join(names, ", ")).
			WithDetails(map[string]any{"missing": names, "sources": sources})
	})
}

// KeystoreChecker reports Unhealthy unless the resolved keystore path names
// a readable regular file. Relative paths resolve against baseDir.
func KeystoreChecker(res *Resolver, baseDir string) health.Checker {
	return health.NewCheckerFunc(CheckKeystore, func(ctx context.Context) health.Result {
		path := res.ResolveAll(ctx).StoreFilePath(baseDir)
		if path == "" {
			return health.Unhealthy("keystore path not set", errKeystoreUnset)
		}

		details := map[string]any{"path": path}
		info, err := os.Stat(path)
		if err != nil {
			return health.Unhealthy("keystore not accessible", err).WithDetails(details)
		}
		if !info.Mode().IsRegular() {
			return health.Unhealthy("keystore is not a regular file",
				fmt.Errorf("%s: mode %s", path, info.Mode())).WithDetails(details)
		}

		f, err := os.Open(path)
		if err != nil {
			return health.Unhealthy("keystore not readable", err).WithDetails(details)
		}
		_ = f.Close()

		details["size"] = info.Size()
		return health.Healthy("keystore found").WithDetails(details)
	})
}
