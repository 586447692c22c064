// Package cli implements the askandsign command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/internal/config"
	"github.com/ketoprak/askandsign/internal/logging"
)

var (
	configFile string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "askandsign",
	Short: "SQL assistant and speech-to-sign translator",
	Long: `askandsign bundles two tools:

  serve, initdb, ask   an SQL query service and a natural-language assistant on top of it
  sign                 a speech-to-sign-language translator that plays sign GIFs`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return err
		}
		if cfg.File != "" {
			logger.Debug("Loaded config file", zap.String("path", cfg.File))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./askandsign.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
}
