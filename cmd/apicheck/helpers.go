package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"apicheck/internal/classgraph"
	"apicheck/internal/config"
	"apicheck/internal/distro"
)

// newContext returns a context cancelled on SIGINT or SIGTERM.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// policyFlags are naming-policy overrides shared by compare and surface.
type policyFlags struct {
	file            string
	include         []string
	excludePrefixes []string
	excludeInfixes  []string
}

func (p *policyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.file, "policy-file", "", "API.toml naming policy (default policy.file)")
	cmd.Flags().StringSliceVar(&p.include, "include", nil, "Only classes under these package prefixes (e.g. org.example.api)")
	cmd.Flags().StringSliceVar(&p.excludePrefixes, "exclude-prefix", nil, "Exclude classes under these package prefixes")
	cmd.Flags().StringSliceVar(&p.excludeInfixes, "exclude-infix", nil, "Exclude classes whose name contains these fragments (e.g. /internal/)")
}

// policy merges the flags into a copy of the loaded configuration and
// builds the naming policy from it.
func (p *policyFlags) policy(c *config.Config) (classgraph.NamingPolicy, error) {
	merged := *c
	if p.file != "" {
		merged.Policy.File = p.file
	}
	if len(p.include) > 0 {
		merged.Policy.Include = p.include
	}
	merged.Policy.ExcludePrefixes = append(append([]string(nil), c.Policy.ExcludePrefixes...), p.excludePrefixes...)
	merged.Policy.ExcludeInfixes = append(append([]string(nil), c.Policy.ExcludeInfixes...), p.excludeInfixes...)
	return merged.NamingPolicy(workDir)
}

// newLoader builds a distribution loader from configuration and flags.
func newLoader(p *policyFlags) (*distro.Loader, error) {
	policy, err := p.policy(cfg)
	if err != nil {
		return nil, err
	}
	return distro.NewLoader(cfg.DistroLayout(), policy, logger), nil
}
