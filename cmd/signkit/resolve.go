package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/signkit/signing"
)

type resolveOptions struct {
	format string
	reveal bool
}

func newResolveCmd(root *rootOptions) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the resolved signing credentials",
		Long: `Resolve every signing credential and print the result.

Passwords are masked unless --reveal is given. Values that no source
provides are printed empty; resolve does not fail because of them.

Examples:
  # Human-readable summary with the source of each value
  signkit resolve

  # Generate key.properties from CI environment variables
  signkit resolve --format properties --reveal > key.properties

  # Machine-readable output
  signkit resolve --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format: text|json|properties|env")
	cmd.Flags().BoolVar(&opts.reveal, "reveal", false, "print passwords in clear text")
	return cmd
}

func runResolve(cmd *cobra.Command, root *rootOptions, opts *resolveOptions) error {
	format := strings.ToLower(strings.TrimSpace(opts.format))
	switch format {
	case "text", "json", "properties", "env":
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	s, err := root.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close(cmd.Context())

	creds := s.resolver.ResolveAll(cmd.Context())
	if !opts.reveal {
		creds = creds.Redacted()
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeJSON(out, creds)
	case "properties":
		return creds.WriteProperties(out)
	case "env":
		return writeEnv(out, creds)
	default:
		return writeText(out, creds)
	}
}

func writeText(w io.Writer, creds signing.Credentials) error {
	for _, name := range signing.Names() {
		source := creds.Source(name)
		if source == "" {
			source = "unset"
		}
		if _, err := fmt.Fprintf(w, "%-14s %-24s (%s)\n", name.PropertyKey(), creds.Get(name), source); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, creds signing.Credentials) error {
	sources := make(map[string]string)
	for _, name := range signing.Names() {
		if src := creds.Source(name); src != "" {
			sources[name.PropertyKey()] = src
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		signing.Credentials
		Sources map[string]string `json:"sources"`
	}{creds, sources})
}

// writeEnv prints the variables the default layout reads. KEY_PASSWORD
// carries the key password for layouts that split the two passwords.
func writeEnv(w io.Writer, creds signing.Credentials) error {
	out, err := godotenv.Marshal(map[string]string{
		signing.EnvKeystorePath:     creds.StoreFile,
		signing.EnvKeystorePassword: creds.StorePassword,
		signing.EnvKeyAlias:         creds.KeyAlias,
		"KEY_PASSWORD":              creds.KeyPassword,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
