package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"counsellor-console/config"
	"counsellor-console/logger"
	"counsellor-console/services/crm"
)

var (
	cfg     *config.Config
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "console",
	Short: "Counsellor console backend",
	Long: `Backend for the counsellor console: L3 reassignment sessions, L2 assignment,
assignment rules, pricing, reports and lead intake, all backed by the CRM API.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Determine project root by searching upward for go.mod so .env is found
		if cwd, err := os.Getwd(); err == nil {
			if root := findProjectRoot(cwd); root != "" && root != cwd {
				if err := os.Chdir(root); err == nil {
					logger.Debug("Working directory set to project root: %s", root)
				}
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level := logger.ParseLevel(cfg.LogLevel)
		if verbose {
			level = logger.DEBUG
		}
		logger.SetDefault(logger.New(logger.Config{Level: level, JSON: cfg.LogJSON}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Default().Sync()
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd, workerCmd, importLeadsCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newCRMClient() *crm.Client {
	return crm.NewClient(cfg.CRMBaseURL, cfg.CRMAPIToken, cfg.CRMTimeout)
}

// findProjectRoot walks up from start and returns the first directory containing go.mod
func findProjectRoot(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir || strings.HasSuffix(dir, ":\\") || parent == "" {
			break
		}
		dir = parent
	}
	return ""
}
