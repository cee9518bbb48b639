package main

import (
	"github.com/aretw0/mathspan/pkg/document"
	"github.com/spf13/cobra"
)

func newWriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write [file]",
		Short: "Save an editor model as a Pandoc JSON document",
		Long: `Reads an editor model as printed by 'read' (stdin when no file is given) and
writes the Pandoc JSON document for the active profile.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			editor, err := a.editor(nil)
			if err != nil {
				return err
			}
			defer editor.Close()

			in, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			doc, err := document.Decode(in)
			if err != nil {
				return err
			}
			return editor.Write(cmd.OutOrStdout(), doc)
		},
	}
}
