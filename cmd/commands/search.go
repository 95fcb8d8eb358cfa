package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curio-cli/curio/internal/cli"
	"github.com/curio-cli/curio/pkg/models"
	"github.com/curio-cli/curio/pkg/search"
)

// SearchResultOutput represents the formatted search results
type SearchResultOutput struct {
	Query    string                  `json:"query" yaml:"query"`
	Count    int                     `json:"count" yaml:"count"`
	Total    int                     `json:"total" yaml:"total"`
	Results  []SearchItemOutput      `json:"results" yaml:"results"`
	Failures []search.BackendFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// SearchItemOutput represents a single search result item
type SearchItemOutput struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"`
	Source      string   `json:"source" yaml:"source"`
	Version     string   `json:"version,omitempty" yaml:"version,omitempty"`
	Tags        []string `json:"tags" yaml:"tags"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Score       float64  `json:"score" yaml:"score"`
}

var (
	searchType    string
	searchSources []string
	searchPrefer  string
	searchExclude []string
	searchAll     bool
	searchSortBy  string
	searchOffset  int
	searchLimit   int
)

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search elements across local, remote, and registry sources",
		Long: `Search elements across all configured sources in priority order.

Sources are consulted in the effective priority order (default: local,
remote, registry). By default the search stops at the first source with
hits; use --all to collect source-tagged hits from every source.

Examples:
  # Search everywhere for "scholar"
  curio search scholar

  # Restrict to personas
  curio search scholar --type personas

  # Consult only the registry
  curio search scholar --source registry

  # Prefer registry hits without dropping the other sources
  curio search scholar --prefer registry

  # Keep one hit per source instead of collapsing duplicates
  curio search scholar --all

  # Sort by version, second page of 20
  curio search scholar --sort version --limit 20 --offset 20`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: requirePortfolio,
		RunE:    runSearch,
	}

	cmd.Flags().StringVarP(&searchType, "type", "t", "", "Restrict to one element type")
	cmd.Flags().StringSliceVar(&searchSources, "source", nil, "Replace the source priority order for this call")
	cmd.Flags().StringVar(&searchPrefer, "prefer", "", "Move one source to the front of the order")
	cmd.Flags().StringSliceVar(&searchExclude, "exclude", nil, "Leave these sources out of the traversal")
	cmd.Flags().BoolVar(&searchAll, "all", false, "Keep hits from every source, tagged by origin")
	cmd.Flags().StringVar(&searchSortBy, "sort", search.SortByRelevance, "Sort order: relevance, name, version")
	cmd.Flags().IntVar(&searchOffset, "offset", 0, "Skip this many results")
	cmd.Flags().IntVar(&searchLimit, "limit", 0, "Page size (default 50)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	opts := search.Options{
		Type:       searchType,
		IncludeAll: searchAll,
		SortBy:     searchSortBy,
		Offset:     searchOffset,
		Limit:      searchLimit,
	}

	var err error
	if opts.SourceOverride, err = parseSources(searchSources); err != nil {
		return err
	}
	if opts.Exclude, err = parseSources(searchExclude); err != nil {
		return err
	}
	if searchPrefer != "" {
		if opts.PreferredSource, err = models.ParseSource(searchPrefer); err != nil {
			return err
		}
	}

	tk := cli.NewToolkit()
	page, err := tk.Coordinator.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	result := SearchResultOutput{
		Query:    query,
		Count:    len(page.Results),
		Total:    page.Total,
		Results:  []SearchItemOutput{},
		Failures: page.Failures,
	}
	for _, r := range page.Results {
		result.Results = append(result.Results, SearchItemOutput{
			Name:        r.Entry.Name,
			Type:        r.Entry.Type,
			Source:      string(r.Source),
			Version:     r.Entry.Version,
			Tags:        r.Entry.Tags,
			Description: r.Entry.Description,
			Score:       r.Score,
		})
	}

	outputFormat, _ := cmd.Flags().GetString("output")
	switch outputFormat {
	case "json", "yaml":
		return cli.OutputResults(cmd.OutOrStdout(), outputFormat, result)
	default:
		return outputSearchText(cmd, result)
	}
}

func outputSearchText(cmd *cobra.Command, result SearchResultOutput) error {
	for _, failure := range result.Failures {
		cli.PrintWarning("source %s skipped: %s", failure.Source, failure.Reason)
	}

	if result.Count == 0 {
		cli.PrintInfo("No elements found for query: %s", result.Query)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d result(s)\n", result.Count, result.Total)
	fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("-", 80))

	table := cli.NewTableFormatter(cmd.OutOrStdout())
	table.Header("Name", "Type", "Source", "Version", "Tags")
	for _, item := range result.Results {
		tags := strings.Join(item.Tags, ", ")
		if tags == "" {
			tags = "-"
		}
		version := item.Version
		if version == "" {
			version = "-"
		}
		table.Row(item.Name, item.Type, item.Source, version, cli.TruncateString(tags, 40))
	}
	table.Flush()

	return nil
}

func parseSources(tokens []string) ([]models.Source, error) {
	var sources []models.Source
	for _, token := range tokens {
		s, err := models.ParseSource(token)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, nil
}
