package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curio-cli/curio/internal/cli"
	"github.com/curio-cli/curio/pkg/models"
	"github.com/curio-cli/curio/pkg/policy"
)

// ConfigOutput represents the effective policy plus where it came from
type ConfigOutput struct {
	Sources            []models.Source `json:"sources" yaml:"sources"`
	StopOnFirst        bool            `json:"stop_on_first" yaml:"stop_on_first"`
	CheckAllForUpdates bool            `json:"check_all_for_updates" yaml:"check_all_for_updates"`
	FallbackOnError    bool            `json:"fallback_on_error" yaml:"fallback_on_error"`
	Layer              string          `json:"layer" yaml:"layer"`
}

var (
	configSources  []string
	configStop     bool
	configCheckAll bool
	configFallback bool
)

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change the source priority policy",
	}

	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the effective source priority policy",
		Long: `Show the effective source priority policy and which configuration
layer supplied it: the persisted config file, the CURIO_SOURCE_PRIORITY
environment variable, or the built-in default.`,
		PreRunE: requirePortfolio,
		RunE:    runConfigGet,
	}
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	resolver := policy.New()
	resolver.Warn = cli.PrintWarning

	pol, layer := resolver.Base()
	result := ConfigOutput{
		Sources:            pol.Sources,
		StopOnFirst:        pol.StopOnFirst,
		CheckAllForUpdates: pol.CheckAllForUpdates,
		FallbackOnError:    pol.FallbackOnError,
		Layer:              layer,
	}

	outputFormat, _ := cmd.Flags().GetString("output")
	switch outputFormat {
	case "json", "yaml":
		return cli.OutputResults(cmd.OutOrStdout(), outputFormat, result)
	default:
		out := cmd.OutOrStdout()
		sources := make([]string, len(result.Sources))
		for i, s := range result.Sources {
			sources[i] = string(s)
		}
		fmt.Fprintf(out, "Sources:               %s\n", strings.Join(sources, ", "))
		fmt.Fprintf(out, "Stop on first:         %t\n", result.StopOnFirst)
		fmt.Fprintf(out, "Check all for updates: %t\n", result.CheckAllForUpdates)
		fmt.Fprintf(out, "Fallback on error:     %t\n", result.FallbackOnError)
		fmt.Fprintf(out, "Configured by:         %s\n", result.Layer)
		return nil
	}
}

func newConfigSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Persist changes to the source priority policy",
		Long: `Persist changes to the source priority policy in the portfolio
config file. Only the flags you pass change; everything else keeps its
current value.

Examples:
  # Consult the registry before the remote repository
  curio config set --sources local,registry,remote

  # Scan every source instead of stopping at the first hit
  curio config set --stop-on-first=false

  # Fail hard when a source is unreachable
  curio config set --fallback-on-error=false`,
		PreRunE: requirePortfolio,
		RunE:    runConfigSet,
	}

	cmd.Flags().StringSliceVar(&configSources, "sources", nil, "Comma-separated source order")
	cmd.Flags().BoolVar(&configStop, "stop-on-first", true, "Stop at the first source with a hit")
	cmd.Flags().BoolVar(&configCheckAll, "check-all-for-updates", false, "Always scan every source for newer versions")
	cmd.Flags().BoolVar(&configFallback, "fallback-on-error", true, "Continue past unreachable sources")

	return cmd
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	resolver := policy.New()
	resolver.Warn = cli.PrintWarning
	pol, _ := resolver.Base()

	if cmd.Flags().Changed("sources") {
		sources, err := parseSources(configSources)
		if err != nil {
			return err
		}
		pol.Sources = sources
	}
	if cmd.Flags().Changed("stop-on-first") {
		pol.StopOnFirst = configStop
	}
	if cmd.Flags().Changed("check-all-for-updates") {
		pol.CheckAllForUpdates = configCheckAll
	}
	if cmd.Flags().Changed("fallback-on-error") {
		pol.FallbackOnError = configFallback
	}

	if err := policy.SetPolicy(pol); err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}

	cli.PrintSuccess("Policy saved")
	return nil
}
