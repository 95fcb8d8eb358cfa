// Package commands holds the cobra subcommands of the curio CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/curio-cli/curio/internal/cli"
)

func requirePortfolio(cmd *cobra.Command, args []string) error {
	return cli.ValidatePortfolio()
}
