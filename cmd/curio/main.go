package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/curio-cli/curio/cmd/commands"
	"github.com/curio-cli/curio/internal/cli"
	"github.com/curio-cli/curio/pkg/files"
	"github.com/curio-cli/curio/pkg/models"
)

// Version is set during build with -ldflags
var version = "dev"

var (
	outputFormat string
	quiet        bool
	noColor      bool
	skipConfirm  bool
)

var rootCmd = &cobra.Command{
	Use:   "curio",
	Short: "Manage your AI customization element portfolio",
	Long: `Curio manages a portfolio of AI customization elements (personas,
skills, templates, memories) stored as plain Markdown files. Elements
resolve across three sources in priority order: the local portfolio,
your remote GitHub repository, and the shared community registry.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cli.SetGlobalFlags(quiet, noColor, skipConfirm)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new element portfolio",
	Long:  `Creates the .curio folder structure in the current directory`,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to determine current directory: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Initializing portfolio in %s...\n", cwd)

		if err := files.InitPortfolioStructure(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to initialize portfolio structure: %v\n", err)
			fmt.Fprintf(os.Stderr, "Make sure you have write permissions in the current directory.\n")
			os.Exit(1)
		}

		if _, err := files.ReadConfig(); os.IsNotExist(err) {
			if err := files.WriteConfig(models.DefaultPolicy()); err != nil {
				fmt.Fprintf(os.Stderr, "Error: Failed to write default config: %v\n", err)
				os.Exit(1)
			}
		}

		fmt.Println("✓ Created .curio folder structure")
		fmt.Println("\nRun 'curio search' to look for elements, or 'curio sync' to pull your remote portfolio.")
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Curio",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Curio version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable symbols and color in output")
	rootCmd.PersistentFlags().BoolVarP(&skipConfirm, "yes", "y", false, "Answer yes to every prompt")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(commands.NewSearchCommand())
	rootCmd.AddCommand(commands.NewSyncCommand())
	rootCmd.AddCommand(commands.NewElementCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewCacheCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
