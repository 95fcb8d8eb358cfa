package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curio-cli/curio/internal/cli"
	"github.com/curio-cli/curio/pkg/files"
	"github.com/curio-cli/curio/pkg/models"
	"github.com/curio-cli/curio/pkg/search"
	"github.com/curio-cli/curio/pkg/sync"
)

// ElementListResult represents the output structure for element list
type ElementListResult struct {
	Type  string              `json:"type" yaml:"type"`
	Items []models.IndexEntry `json:"items" yaml:"items"`
	Count int                 `json:"count" yaml:"count"`
}

var (
	elementType  string
	elementForce bool
)

// NewElementCommand creates the element command group
func NewElementCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "element",
		Short: "Work with individual portfolio elements",
		Long: `Work with individual portfolio elements.

Element names are matched exactly first, then fuzzily: "Victorian Scholar"
finds verbose-victorian-scholar, while an ambiguous name lists every
candidate instead of guessing.`,
	}

	cmd.AddCommand(newElementListCommand())
	cmd.AddCommand(newElementShowCommand())
	cmd.AddCommand(newElementDownloadCommand())
	cmd.AddCommand(newElementUploadCommand())
	cmd.AddCommand(newElementCompareCommand())
	cmd.AddCommand(newElementRemoteCommand())

	return cmd
}

func newElementListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [type]",
		Short: "List local elements",
		Long: `List elements in the local portfolio, optionally restricted to one type.

Examples:
  # List everything
  curio element list

  # List only personas
  curio element list personas`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: requirePortfolio,
		RunE:    runElementList,
	}
	return cmd
}

func runElementList(cmd *cobra.Command, args []string) error {
	listType := ""
	if len(args) > 0 {
		listType = strings.ToLower(args[0])
	}

	paths, err := files.ListElements(listType)
	if err != nil {
		return fmt.Errorf("failed to list elements: %w", err)
	}

	result := ElementListResult{Type: listType, Items: []models.IndexEntry{}}
	for _, path := range paths {
		el, err := files.ReadElement(path)
		if err != nil {
			cli.PrintWarning("Failed to load element %s: %v", path, err)
			continue
		}
		result.Items = append(result.Items, el.IndexEntry)
	}
	result.Count = len(result.Items)

	outputFormat, _ := cmd.Flags().GetString("output")
	switch outputFormat {
	case "json", "yaml":
		return cli.OutputResults(cmd.OutOrStdout(), outputFormat, result)
	default:
		if result.Count == 0 {
			cli.PrintInfo("No elements found")
			return nil
		}
		table := cli.NewTableFormatter(cmd.OutOrStdout())
		table.Header("Name", "Type", "Version", "Tags", "Modified")
		for _, item := range result.Items {
			tags := strings.Join(item.Tags, ", ")
			if tags == "" {
				tags = "-"
			}
			table.Row(item.Name, item.Type, orDash(item.Version), cli.TruncateString(tags, 30),
				item.Modified.Format("2006-01-02 15:04"))
		}
		table.Flush()
		return nil
	}
}

func newElementShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show one local element",
		Long: `Show one local element's metadata and content. The name may be a
type/name key or a fuzzy name fragment.

Examples:
  curio element show personas/verbose-victorian-scholar
  curio element show "Victorian Scholar"`,
		Args:    cobra.ExactArgs(1),
		PreRunE: requirePortfolio,
		RunE:    runElementShow,
	}
	cmd.Flags().StringVarP(&elementType, "type", "t", "", "Restrict lookup to one element type")
	return cmd
}

func runElementShow(cmd *cobra.Command, args []string) error {
	entry, err := findLocalElement(args[0], elementType)
	if err != nil {
		return err
	}

	el, err := files.ReadElement(entry.Path)
	if err != nil {
		return fmt.Errorf("failed to read element: %w", err)
	}

	outputFormat, _ := cmd.Flags().GetString("output")
	switch outputFormat {
	case "json", "yaml":
		return cli.OutputResults(cmd.OutOrStdout(), outputFormat, el)
	default:
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n", el.Key())
		fmt.Fprintln(out, strings.Repeat("-", 80))
		if el.Version != "" {
			fmt.Fprintf(out, "Version:     %s\n", el.Version)
		}
		if el.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", cli.WrapText(el.Description, 66))
		}
		if len(el.Tags) > 0 {
			fmt.Fprintf(out, "Tags:        %s\n", strings.Join(el.Tags, ", "))
		}
		fmt.Fprintf(out, "Modified:    %s\n\n", el.Modified.Format("2006-01-02 15:04"))
		fmt.Fprintln(out, el.Content)
		return nil
	}
}

func newElementDownloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "download <name>",
		Short:   "Download one element from the remote repository",
		Args:    cobra.ExactArgs(1),
		PreRunE: requirePortfolio,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManage(cmd, models.OpDownload, args[0])
		},
	}
	cmd.Flags().StringVarP(&elementType, "type", "t", "", "Restrict lookup to one element type")
	return cmd
}

func newElementUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "upload <name>",
		Short:   "Upload one local element to the remote repository",
		Args:    cobra.ExactArgs(1),
		PreRunE: requirePortfolio,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManage(cmd, models.OpUpload, args[0])
		},
	}
	cmd.Flags().StringVarP(&elementType, "type", "t", "", "Restrict lookup to one element type")
	cmd.Flags().BoolVarP(&elementForce, "force", "f", false, "Overwrite a newer remote version")
	return cmd
}

func newElementCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compare <name>",
		Short:   "Compare one element between local and remote",
		Args:    cobra.ExactArgs(1),
		PreRunE: requirePortfolio,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManage(cmd, models.OpCompare, args[0])
		},
	}
	cmd.Flags().StringVarP(&elementType, "type", "t", "", "Restrict lookup to one element type")
	return cmd
}

func newElementRemoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remote",
		Short:   "List elements in the remote repository",
		PreRunE: requirePortfolio,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManage(cmd, models.OpListRemote, "")
		},
	}
	cmd.Flags().StringVarP(&elementType, "type", "t", "", "Restrict to one element type")
	return cmd
}

func runManage(cmd *cobra.Command, op models.ManageOp, nameOrKey string) error {
	tk := cli.NewToolkit()
	if err := tk.RequireRemote(); err != nil {
		return err
	}

	result, err := tk.Engine.Manage(cmd.Context(), op, nameOrKey, sync.ManageOptions{
		Type:  elementType,
		Force: elementForce,
	})
	if err != nil {
		var ambiguous *search.AmbiguousMatchError
		if errors.As(err, &ambiguous) {
			cli.PrintError("%q matches several elements:", ambiguous.Query)
			for _, candidate := range ambiguous.Candidates {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", candidate.Key())
			}
			return fmt.Errorf("be more specific or use the full type/name key")
		}
		return err
	}

	outputFormat, _ := cmd.Flags().GetString("output")
	switch outputFormat {
	case "json", "yaml":
		return cli.OutputResults(cmd.OutOrStdout(), outputFormat, result)
	default:
		return outputManageText(cmd, result)
	}
}

func outputManageText(cmd *cobra.Command, result *models.ManageResult) error {
	out := cmd.OutOrStdout()

	switch result.Op {
	case models.OpListRemote:
		if len(result.Entries) == 0 {
			cli.PrintInfo("No remote elements found")
			return nil
		}
		table := cli.NewTableFormatter(out)
		table.Header("Name", "Type", "Version", "Tags")
		for _, entry := range result.Entries {
			tags := strings.Join(entry.Tags, ", ")
			if tags == "" {
				tags = "-"
			}
			table.Row(entry.Name, entry.Type, orDash(entry.Version), cli.TruncateString(tags, 40))
		}
		table.Flush()

	case models.OpCompare:
		for _, entry := range result.Plan.Entries {
			fmt.Fprintf(out, "%s: %s (%s)\n", entry.Element, entry.Action, entry.Reason)
		}

	default:
		cli.PrintSuccess("%s", result.Message)
		if result.CommitRef != "" {
			cli.PrintInfo("commit %s", result.CommitRef)
		}
	}

	return nil
}

func findLocalElement(nameOrKey, elementType string) (models.IndexEntry, error) {
	paths, err := files.ListElements(elementType)
	if err != nil {
		return models.IndexEntry{}, fmt.Errorf("failed to list elements: %w", err)
	}

	var entries []models.IndexEntry
	for _, path := range paths {
		el, err := files.ReadElement(path)
		if err != nil {
			cli.PrintWarning("Failed to load element %s: %v", path, err)
			continue
		}
		entries = append(entries, el.IndexEntry)
	}

	return search.FuzzyMatch(entries, nameOrKey)
}
