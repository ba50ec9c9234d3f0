package main

import (
	"github.com/spf13/cobra"

	"github.com/wotr-tools/blockweights/go/theme"
)

var (
	templateProcessor int
	templateDepth     int
	templateHeight    int

	templateCmd = &cobra.Command{
		Use:   "template <out.schem>",
		Short: "Write a blank processor template with its placeholders in place",
		Args:  cobra.ExactArgs(1),
		RunE:  runTemplate,
	}
)

func init() {
	templateCmd.Flags().IntVarP(&templateProcessor, "processor", "p", 1, "processor number")
	templateCmd.Flags().IntVar(&templateDepth, "depth", 8, "blocks along each column")
	templateCmd.Flags().IntVar(&templateHeight, "height", 8, "template height")
}

func runTemplate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := theme.Template(cfg, templateProcessor, templateDepth, templateHeight)
	if err != nil {
		return err
	}
	if err := s.Save(args[0]); err != nil {
		return err
	}
	newLogger().Info("wrote template", "file", args[0], "processor", templateProcessor, "columns", s.Length)
	return nil
}
