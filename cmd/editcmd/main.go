package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"editcmd/internal/config"
	"editcmd/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	bundleDirs []string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "editcmd",
	Short: "editcmd - editor command dispatch",
	Long: `editcmd runs editor commands against a text buffer.

Commands come from the built-in text plugin and from YAML shell command
bundles. Each command reads its input from the buffer (selection, line,
word, document...) and writes its result back according to its output mode.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if len(bundleDirs) > 0 {
			cfg.Bundles.Dirs = bundleDirs
		}

		opts := cfg.Logging.Options()
		if verbose {
			opts.Level = "debug"
		}
		if err := logging.Initialize(opts); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = logging.Get(logging.CategoryBoot).Zap()
		logger.Debug("configuration loaded", zap.String("path", configPath), zap.Strings("bundles", cfg.Bundles.Dirs))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "editcmd.yaml", "Config file")
	rootCmd.PersistentFlags().StringSliceVarP(&bundleDirs, "bundles", "b", nil, "Bundle directories (overrides bundles.dirs)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
