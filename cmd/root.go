package cmd

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/zhubert/imagine/internal/app"
	"github.com/zhubert/imagine/internal/backend"
	"github.com/zhubert/imagine/internal/clipboard"
	"github.com/zhubert/imagine/internal/config"
	"github.com/zhubert/imagine/internal/logger"
)

var (
	debugMode             bool
	quietMode             bool
	serverURL             string
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "imagine",
	Short: "Terminal front end for an image generation server",
	Long: `Imagine is a TUI for an image generation server. Write a prompt, pick a
model and aspect ratio, add reference images, and browse, download or reuse
the results. The session itself lives on the server.`,
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", true, "Enable debug logging (on by default)")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Server URL (overrides config and IMAGINE_SERVER_URL)")
}

func initConfig() {
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	// Set version dynamically
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("imagine %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("imagine %s\n", version)
}

// loadConfig loads the config file and applies --server.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if serverURL != "" {
		cfg.SetServerURL(serverURL)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --server: %w", err)
		}
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Ensure logger is closed on exit
	defer logger.Close()
	log := logger.WithComponent("main")
	log.Info("starting", "version", version, "server", cfg.GetServerURL())

	// Pasting images needs the system clipboard; text copy falls back quietly
	if err := clipboard.Init(); err != nil {
		log.Warn("clipboard unavailable", "error", err)
	}

	// Create and run the app
	m := app.New(cfg, backend.New(cfg.GetServerURL()))
	defer m.Close()
	p := tea.NewProgram(m)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
