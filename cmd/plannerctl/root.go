package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/pkg/config"
	"github.com/noah-isme/course-planner-api/pkg/logger"
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "plannerctl",
	Short: "Operate the course planner offline",
	Long: `plannerctl builds and migrates the course catalog, runs the schedule
planner against a catalog file, and mints admin tokens for the API.

Settings not given as flags are read from the environment and .env, the same
way the API server reads them.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Log progress to stderr")
}

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func newLogger(cfg *config.Config) *zap.Logger {
	if !verboseFlag {
		return zap.NewNop()
	}
	l, err := logger.New(cfg.Env, config.LogConfig{Level: "debug", Format: "console"})
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
