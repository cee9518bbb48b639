package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/mathspan/pkg/document"
	"github.com/spf13/cobra"
)

func newReadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read [file]",
		Short: "Load a Pandoc JSON document into the editor model",
		Long: `Reads a Pandoc JSON document (stdin when no file is given) and prints the
editor model, in which every equation is a MathNode. With --list only the
equations are printed.`,
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

			doc, err := editor.Read(in)
			if err != nil {
				return err
			}

			if list, _ := cmd.Flags().GetBool("list"); list {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "POS\tKIND\tCONTENT")
				for _, ref := range doc.MathNodes() {
					fmt.Fprintf(w, "%d\t%s\t%s\n", ref.Pos, ref.Node.Kind, ref.Node.Content)
				}
				return w.Flush()
			}
			return document.Encode(cmd.OutOrStdout(), doc)
		},
	}
	cmd.Flags().BoolP("list", "l", false, "List the equations instead of printing the model")
	return cmd
}
