// Signkit resolves Android release signing credentials.
//
// Each credential is read from the environment first and from a properties
// file second, unless a YAML layout says otherwise.
//
// Usage:
//
//	# Show what the release build would sign with (passwords masked)
//	signkit resolve
//
//	# Emit a key.properties for the build
//	signkit resolve --format properties --reveal > key.properties
//
//	# Fail a CI job early when the keystore is not reachable
//	signkit check --base-dir android/app
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
