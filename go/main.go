package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wotr-tools/blockweights/go/config"
)

var (
	configPath string
	verbose    bool
	target     string
	features   []string

	rootCmd = &cobra.Command{
		Use:   "blockweights",
		Short: "Turn processor template schematics into weighted block replacement processors",
		Long: `blockweights reads a theme folder of processor<N>.schem templates, counts the
blocks painted into each template column and writes a processor document
whose replacements pick among them by weight.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
	rootCmd.PersistentFlags().StringVarP(&target, "target", "t", "", "generation target: room or poi")
	rootCmd.PersistentFlags().StringSliceVar(&features, "with", nil, "features to enable at default rarity: mushrooms, vines, chests")

	rootCmd.AddCommand(generateCmd, serveCmd, templateCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads --config and applies the target and feature flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if target != "" {
		cfg.WithTarget(target)
	}
	for _, f := range features {
		if err := cfg.Enable(f); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
