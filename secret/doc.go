// Package secret provides a small, dependency-light secret lookup layer.
//
// It supports:
//   - Key lookups against pluggable providers (see Provider)
//   - Environment variables, Java properties files and dotenv files
//   - Ordered provider chains where the first present value wins (see Chain)
//   - Provider construction by kind from configuration (see Registry)
//
// Lookups report presence rather than errors. A provider that cannot read
// its backing store behaves as if every key were absent; file-backed
// providers expose the underlying failure via Err for diagnostics.
package secret
