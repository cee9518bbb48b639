package main

import (
	"fmt"

	"github.com/aretw0/mathspan/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [file]",
		Short: "Typeset the equations of a document, or a single expression",
		Example: `  mathspan preview --expr '$$\sum_i x_i$$'
  mathspan preview notes.json`,
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

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if expr, _ := cmd.Flags().GetString("expr"); expr != "" {
				rendered, err := editor.Preview(ctx, expr)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, rendered)
				return nil
			}

			in, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()

			doc, err := editor.Read(in)
			if err != nil {
				return err
			}

			status := tui.NewStatus(out)
			for _, ref := range doc.MathNodes() {
				rendered, err := editor.Preview(ctx, ref.Node.Content)
				if err != nil {
					status.Fail("%d: %s: %v", ref.Pos, ref.Node.Content, err)
					continue
				}
				status.Info("%d: %s", ref.Pos, rendered)
			}
			return nil
		},
	}
	cmd.Flags().StringP("expr", "e", "", "Delimited expression to typeset")
	return cmd
}
