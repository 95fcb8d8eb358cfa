package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Confirm asks the user to approve an action before the portfolio or the
// remote repository is touched. The --yes flag answers every prompt
// affirmatively without reading stdin.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	if skipConfirm {
		return true, nil
	}

	suffix := " [y/N]: "
	if defaultYes {
		suffix = " [Y/n]: "
	}
	fmt.Print(prompt + suffix)

	response, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	if response == "" {
		return defaultYes, nil
	}
	return response == "y" || response == "yes", nil
}

// status writes one tagged line, degrading the symbol to a plain label
// under --no-color.
func status(w *os.File, symbol, label, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if noColor {
		fmt.Fprintf(w, "%s: %s\n", label, msg)
		return
	}
	fmt.Fprintf(w, "%s %s\n", symbol, msg)
}

// PrintSuccess reports a completed operation. Silenced by --quiet.
func PrintSuccess(format string, args ...any) {
	if quiet {
		return
	}
	status(os.Stdout, "✓", "OK", format, args...)
}

// PrintInfo reports progress detail. Silenced by --quiet.
func PrintInfo(format string, args ...any) {
	if quiet {
		return
	}
	status(os.Stdout, "ℹ", "INFO", format, args...)
}

// PrintWarning reports a recoverable problem, such as a backend that was
// skipped during resolution. Warnings go to stderr so piped output stays
// clean, and --quiet does not silence them.
func PrintWarning(format string, args ...any) {
	status(os.Stderr, "⚠", "WARNING", format, args...)
}

// PrintError reports a failed operation to stderr.
func PrintError(format string, args ...any) {
	status(os.Stderr, "✗", "ERROR", format, args...)
}

// Output behavior shared by every command, set once from the root command's
// persistent flags.
var (
	quiet       bool
	noColor     bool
	skipConfirm bool
)

// SetGlobalFlags applies the root command's --quiet, --no-color, and --yes
// flags.
func SetGlobalFlags(q, nc, sc bool) {
	quiet = q
	noColor = nc
	skipConfirm = sc
}
