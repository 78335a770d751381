package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/signkit/observe"
	"github.com/jonwraymond/signkit/secret"
	"github.com/jonwraymond/signkit/secret/vault"
	"github.com/jonwraymond/signkit/signing"
)

// Version is set at build time.
var Version = "dev"

const envLogLevel = "SIGNKIT_LOG_LEVEL"

type rootOptions struct {
	properties string
	dotenv     string
	layout     string
	logLevel   string
	telemetry  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "signkit",
		Short: "Resolve Android release signing credentials",
		Long: `Signkit resolves the four values an Android release build signs with:
storeFile, storePassword, keyAlias and keyPassword.

By default each value comes from an environment variable when it is set
and from key.properties otherwise:

  storeFile      KEYSTORE_PATH      storeFile
  storePassword  KEYSTORE_PASSWORD  storePassword
  keyAlias       KEY_ALIAS          keyAlias
  keyPassword    KEYSTORE_PASSWORD  keyPassword

A YAML layout (--layout) can reorder sources or add a Vault KV secret.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.properties, "properties", "", "properties file (default key.properties)")
	flags.StringVar(&opts.dotenv, "dotenv", "", "dotenv file offered to layouts as the dotenv provider")
	flags.StringVar(&opts.layout, "layout", "", "YAML layout file")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug|info|warn|error (env "+envLogLevel+")")
	flags.StringVar(&opts.telemetry, "telemetry", "none", "telemetry exporter: none|stdout|otlp")

	cmd.AddCommand(newResolveCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	return cmd
}

// session bundles what a subcommand needs and how to release it.
type session struct {
	resolver *signing.Resolver
	observer observe.Observer
}

func (s *session) Close(ctx context.Context) {
	_ = s.resolver.Close()
	_ = s.observer.Shutdown(ctx)
}

func (o *rootOptions) open(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()

	level := o.logLevel
	if !cmd.Flags().Changed("log-level") {
		if env := strings.TrimSpace(os.Getenv(envLogLevel)); env != "" {
			level = strings.ToLower(env)
		}
	}

	obs, err := observe.NewObserver(ctx, o.observeConfig(level, cmd))
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	cfg := signing.Config{
		PropertiesPath: o.properties,
		DotenvPath:     o.dotenv,
		Observer:       obs,
	}

	if o.layout != "" {
		layout, err := signing.LoadLayout(o.layout)
		if err != nil {
			_ = obs.Shutdown(ctx)
			return nil, err
		}
		cfg.Layout = &layout
	}

	reg := secret.NewBuiltinRegistry()
	if err := vault.Register(reg); err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}
	cfg.Registry = reg

	res, err := signing.NewResolver(ctx, cfg)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}
	return &session{resolver: res, observer: obs}, nil
}

func (o *rootOptions) observeConfig(level string, cmd *cobra.Command) observe.Config {
	exporter := strings.ToLower(strings.TrimSpace(o.telemetry))
	enabled := exporter != "" && exporter != "none"

	return observe.Config{
		ServiceName: "signkit",
		Version:     Version,
		Tracing: observe.TracingConfig{
			Enabled:   enabled,
			Exporter:  exporter,
			SamplePct: 1.0,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  enabled,
			Exporter: exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   level,
			Writer:  cmd.ErrOrStderr(),
		},
	}
}
