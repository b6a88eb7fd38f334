// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the peril-crawler CLI.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "PERIL_CRAWLER"

// app carries per-invocation state shared by subcommands.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "peril-crawler",
		Short: "Search recent tweets for property peril reports across US states",
		Long: `peril-crawler pairs every peril keyword (hail damage, flood damage, ...)
with every state in its search area and queries the twitterapi.io advanced
search endpoint once per pair. Tweets are deduplicated by ID and written to
a JSON file alongside a YAML run manifest.

Settings come from flags, PERIL_CRAWLER_* environment variables, or
peril-crawler.yaml. The API key is read from TWITTER_API_KEY, a .env file,
or .secrets/twitter-api-key.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			a.logger = logger

			cfgFile, _ := cmd.Flags().GetString("config")
			return a.initConfig(cfgFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	cmd.PersistentFlags().String("config", "", "config file (default: ./peril-crawler.yaml or ~/.config/peril-crawler/config.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newCrawlCmd(a))
	cmd.AddCommand(newCombinationsCmd(a))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func (a *app) initConfig(cfgFile string) error {
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.SetConfigName("peril-crawler")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "peril-crawler"))
		}
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	// SEARCH_HOURS is the crawler's historical name for the window.
	_ = a.v.BindEnv("hours", envPrefix+"_HOURS", "SEARCH_HOURS")

	err := a.v.ReadInConfig()
	if err == nil {
		a.logger.Info("using config file", zap.String("path", a.v.ConfigFileUsed()))
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) || (cfgFile == "" && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("reading config: %w", err)
}

// bindFlags binds the named flags of cmd so config and environment values
// apply when the flag is not given.
func (a *app) bindFlags(cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		if err := a.v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
