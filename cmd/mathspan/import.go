package main

import (
	"github.com/aretw0/mathspan/pkg/adapters/markdown"
	"github.com/aretw0/mathspan/pkg/pandoc"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file.md]",
		Short: "Convert markdown with $ math into a Pandoc JSON document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			doc, err := markdown.New().ImportReader(in)
			if err != nil {
				return err
			}
			return pandoc.Encode(cmd.OutOrStdout(), doc)
		},
	}
}
