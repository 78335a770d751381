package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/signkit/health"
	"github.com/jonwraymond/signkit/signing"
)

var errUnhealthy = errors.New("signing preflight failed")

type checkOptions struct {
	baseDir string
	timeout time.Duration
}

func newCheckCmd(root *rootOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the signing credentials before a release build",
		Long: `Run preflight checks against the resolved credentials:

  credentials  every value resolved (degraded otherwise)
  keystore     storeFile names a readable file (unhealthy otherwise)

Relative keystore paths resolve against --base-dir, the directory the
build script lives in. The command exits 1 when any check is unhealthy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.baseDir, "base-dir", "", "directory relative keystore paths resolve against (default working directory)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout per check")
	return cmd
}

func runCheck(cmd *cobra.Command, root *rootOptions, opts *checkOptions) error {
	baseDir := opts.baseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		baseDir = wd
	}

	s, err := root.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close(cmd.Context())

	agg := health.NewAggregator(health.AggregatorConfig{Timeout: opts.timeout})
	agg.Register(signing.CompletenessChecker(s.resolver))
	agg.Register(signing.KeystoreChecker(s.resolver, baseDir))

	results := agg.CheckAll(cmd.Context())
	out := cmd.OutOrStdout()
	for _, r := range results {
		line := fmt.Sprintf("%-9s %-12s %s", strings.ToUpper(r.Result.Status.String()), r.Name, r.Result.Message)
		if r.Result.Error != nil {
			line += ": " + r.Result.Error.Error()
		}
		fmt.Fprintln(out, line)
	}

	if health.OverallStatus(results) == health.StatusUnhealthy {
		return errUnhealthy
	}
	return nil
}
