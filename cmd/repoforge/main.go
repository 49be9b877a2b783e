// repoforge turns a directory of interpretable source files into an
// in-memory model, exchanges it as a flat payload, and executes every file
// to collect diagnostics.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"repoforge/internal/config"
	"repoforge/internal/engine"
	"repoforge/internal/render"
)

var (
	// Global flags
	rootDir    string
	pattern    string
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "repoforge",
	Short: "repoforge - repository introspection, interchange, and execution diagnostics",
	Long: `repoforge loads a directory of source files into an in-memory model,
renders it as a structural outline or a full-content payload, rebuilds it
from an externally supplied payload, and executes every file to collect
printed output and failure traces.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath == "" {
			configPath = filepath.Join(rootDir, config.DefaultFile)
		}
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("root") || cfg.Root == "" {
			cfg.Root = rootDir
		}
		if cmd.Flags().Changed("pattern") {
			cfg.Pattern = pattern
		}

		zc := zap.NewProductionConfig()
		level, perr := zapcore.ParseLevel(cfg.Logging.Level)
		if perr != nil {
			level = zapcore.InfoLevel
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zc.Level = zap.NewAtomicLevelAt(level)
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// newEngine builds an engine from the resolved config.
func newEngine() (*engine.Engine, error) {
	md, err := render.NewMarkdown()
	if err != nil {
		return nil, err
	}
	return engine.New(cfg.Root, cfg.Pattern,
		engine.WithLogger(logger),
		engine.WithRenderer(md),
	), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "repository root directory")
	rootCmd.PersistentFlags().StringVar(&pattern, "pattern", "*.go", "base-name pattern of tracked files")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <root>/.repoforge.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(mapCmd)
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(renderCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
