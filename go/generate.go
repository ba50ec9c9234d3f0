package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/wotr-tools/blockweights/go/artifacts"
	"github.com/wotr-tools/blockweights/go/processor"
	"github.com/wotr-tools/blockweights/go/theme"
)

var (
	outPath       string
	artifactsPath string

	generateCmd = &cobra.Command{
		Use:   "generate <themeDir>",
		Short: "Build the processor document for a theme folder",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}
)

func init() {
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <themeDir>/<target>_<theme>.json)")
	generateCmd.Flags().StringVar(&artifactsPath, "artifacts", "", "sqlite database to record samples, counts and weights in")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()
	dir := args[0]
	b := &theme.Builder{Config: cfg, Logger: log}

	if artifactsPath != "" {
		store, err := artifacts.Open(artifactsPath)
		if err != nil {
			return err
		}
		defer store.Close()
		run, err := store.NewRun(filepath.Base(filepath.Clean(dir)))
		if err != nil {
			return err
		}
		log.Info("recording artifacts", "file", artifactsPath, "run", run.ID)
		b.Recorder = run
	}

	res, err := b.Build(dir)
	if err != nil {
		return err
	}
	raw, err := processor.Encode(res.Document)
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = filepath.Join(dir, theme.OutputName(res.Theme, cfg.Target))
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return errors.Wrap(err, "writing document")
	}
	log.Info("wrote processor document", "file", out, "replacements", len(res.Rules))
	return nil
}
