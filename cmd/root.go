package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/homeplay/internal/config"
	"github.com/abhisek/homeplay/internal/logging"
)

// Loaded by the root command before any subcommand runs.
var (
	cfg    = config.DefaultConfig()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:               "homeplay",
	Short:             "Interactive homework activities for young learners",
	Long:              "Homeplay turns a homework title into a short run of activities, scores the answers and submits the result once.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	defer func() { _ = logger.Sync() }()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (HOMEPLAY_* env vars take precedence)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")

	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("config")
	c, err := config.Load(file)
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		c.Log.Level = lvl
	}
	if err := c.Validate(); err != nil {
		return err
	}

	l, err := logging.New(c.Log)
	if err != nil {
		return err
	}
	cfg, logger = c, l
	return nil
}
