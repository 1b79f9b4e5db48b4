package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhubert/imagine/internal/config"
	"github.com/zhubert/imagine/internal/logger"
)

var skipConfirm bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove log files and reset local preferences",
	Long: `Removes the TUI log and every headless run log, and resets the local
config file (server URL, theme, download folder, notifications) to defaults.

The server session (results, references, model) is not touched; clear it
from the TUI with ctrl-l. Downloaded images are never deleted.
It will prompt for confirmation before proceeding unless the --yes flag is used.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	return runCleanWith(cfg, os.Stdin, cmd.OutOrStdout())
}

// runCleanWith allows injecting the config and streams for testing
func runCleanWith(cfg *config.Config, input io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "This will clean:")
	fmt.Fprintln(out, "  - All log files in /tmp (imagine-debug.log, imagine-run-*.log)")
	if path := cfg.FilePath(); path != "" {
		fmt.Fprintf(out, "  - Preferences in %s\n", path)
	}

	// Confirm unless --yes flag is set
	if !skipConfirm {
		if !confirm(input, out, "Continue?") {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	cfg.Reset()
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	logsCleared, err := logger.ClearLogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error clearing logs: %v\n", err)
	}

	// Print results
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Cleaned:")
	fmt.Fprintln(out, "  - preferences reset")
	if logsCleared > 0 {
		fmt.Fprintf(out, "  - %d log file(s) removed\n", logsCleared)
	}
	return nil
}

// confirm prompts the user for y/n confirmation
func confirm(input io.Reader, out io.Writer, prompt string) bool {
	reader := bufio.NewReader(input)
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
