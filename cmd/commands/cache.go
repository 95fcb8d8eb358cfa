package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curio-cli/curio/internal/cli"
)

var cacheResetStats bool

// NewCacheCommand creates the cache command group
func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the search result cache",
	}

	cmd.AddCommand(newCacheHealthCommand())
	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheHealthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show cache entry count, memory use, and hit ratio",
		Long: `Show an operational snapshot of the search result cache: entry
count, approximate memory use, oldest-entry age, and the hit/miss ratio
since the last reset.

The cache lives in process memory, so a fresh invocation always starts
empty; this command is mainly useful for long-running integrations.`,
		RunE: runCacheHealth,
	}
	cmd.Flags().BoolVar(&cacheResetStats, "reset-stats", false, "Zero the hit/miss counters afterwards")
	return cmd
}

func runCacheHealth(cmd *cobra.Command, args []string) error {
	tk := cli.NewToolkit()
	report := tk.Coordinator.CacheHealth()

	outputFormat, _ := cmd.Flags().GetString("output")
	switch outputFormat {
	case "json", "yaml":
		if err := cli.OutputResults(cmd.OutOrStdout(), outputFormat, report); err != nil {
			return err
		}
	default:
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Status:    %s\n", report.Status)
		fmt.Fprintf(out, "Entries:   %d\n", report.Entries)
		fmt.Fprintf(out, "Memory:    %s\n", cli.FormatBytes(report.MemoryBytes))
		if report.Entries > 0 {
			fmt.Fprintf(out, "Oldest:    %s\n", cli.FormatAge(report.OldestAge))
		}
		fmt.Fprintf(out, "Hits:      %d\n", report.Hits)
		fmt.Fprintf(out, "Misses:    %d\n", report.Misses)
		fmt.Fprintf(out, "Hit ratio: %.0f%%\n", report.HitRatio*100)
	}

	if cacheResetStats {
		tk.Coordinator.ResetCacheStats()
		cli.PrintInfo("Hit/miss counters reset")
	}

	return nil
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached search result",
		RunE: func(cmd *cobra.Command, args []string) error {
			tk := cli.NewToolkit()
			tk.Coordinator.ClearCache()
			cli.PrintSuccess("Cache cleared")
			return nil
		},
	}
}
