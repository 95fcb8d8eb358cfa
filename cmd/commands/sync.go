package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curio-cli/curio/internal/cli"
	"github.com/curio-cli/curio/pkg/models"
)

var (
	syncDirection string
	syncMode      string
	syncDryRun    bool
	syncForce     bool
)

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the local portfolio with the remote repository",
		Long: `Reconcile the local portfolio against the remote repository.

Directions:
  pull  - bring remote changes into the local portfolio
  push  - publish local changes to the remote repository
  both  - reconcile in both directions, newer version wins

Modes:
  additive - create and update only; deletions are reported, never executed
  mirror   - exact copy including deletions (asks before deleting)
  backup   - one-way pull that never writes the remote

Every run computes a deterministic plan first. Use --dry-run to inspect
the plan without touching storage.

Examples:
  # Preview what a pull would do
  curio sync --dry-run

  # Publish local changes
  curio sync --direction push

  # Make local an exact copy of remote
  curio sync --mode mirror

  # Mirror without the deletion prompt
  curio sync --mode mirror --force`,
		PreRunE: requirePortfolio,
		RunE:    runSync,
	}

	cmd.Flags().StringVarP(&syncDirection, "direction", "d", "pull", "Sync direction: pull, push, both")
	cmd.Flags().StringVarP(&syncMode, "mode", "m", "additive", "Sync mode: additive, mirror, backup")
	cmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Show the plan without applying it")
	cmd.Flags().BoolVarP(&syncForce, "force", "f", false, "Skip the deletion prompt and conflict checks")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	direction, err := models.ParseSyncDirection(syncDirection)
	if err != nil {
		return err
	}
	mode, err := models.ParseSyncMode(syncMode)
	if err != nil {
		return err
	}

	tk := cli.NewToolkit()
	if err := tk.RequireRemote(); err != nil {
		return err
	}

	report, err := tk.Engine.Sync(cmd.Context(), direction, mode, syncDryRun, syncForce)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	outputFormat, _ := cmd.Flags().GetString("output")
	switch outputFormat {
	case "json", "yaml":
		return cli.OutputResults(cmd.OutOrStdout(), outputFormat, report)
	default:
		return outputSyncText(cmd, report)
	}
}

func outputSyncText(cmd *cobra.Command, report *models.SyncReport) error {
	out := cmd.OutOrStdout()
	plan := report.Plan

	fmt.Fprintf(out, "\nSync plan (%s, %s mode)\n", plan.Direction, plan.Mode)
	fmt.Fprintln(out, strings.Repeat("-", 80))

	if len(plan.Entries) == 0 {
		cli.PrintInfo("Nothing to sync")
		return nil
	}

	table := cli.NewTableFormatter(out)
	table.Header("Element", "Action", "Direction", "Local", "Remote", "Reason")
	for _, entry := range plan.Entries {
		if entry.Action == models.ActionUnchanged {
			continue
		}
		table.Row(
			entry.Element,
			string(entry.Action),
			string(entry.Direction),
			orDash(entry.LocalVersion),
			orDash(entry.RemoteVersion),
			cli.TruncateString(entry.Reason, 48),
		)
	}
	table.Flush()

	counts := plan.Counts()
	fmt.Fprintf(out, "\n%d create, %d update, %d delete, %d conflict, %d unchanged\n",
		counts[models.ActionCreate], counts[models.ActionUpdate],
		counts[models.ActionDelete], counts[models.ActionConflict],
		counts[models.ActionUnchanged])

	if report.DryRun {
		cli.PrintInfo("Dry run, nothing was applied")
		return nil
	}

	cli.PrintSuccess("Applied %d change(s)", len(report.Applied))
	for _, skipped := range report.Skipped {
		cli.PrintWarning("skipped %s: %s", skipped.Element, skipped.Error)
	}
	for _, failed := range report.Failed {
		cli.PrintError("failed %s: %s", failed.Element, failed.Error)
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d element(s) failed to sync", len(report.Failed))
	}

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
