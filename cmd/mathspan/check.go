package main

import (
	"fmt"

	"github.com/aretw0/mathspan/internal/presentation/tui"
	"github.com/aretw0/mathspan/pkg/adapters/terminal"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Report malformed, empty or invalid equations",
		Args:  cobra.MaximumNArgs(1),
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

			status := tui.NewStatus(cmd.OutOrStdout())
			refs := doc.MathNodes()
			failed := 0
			for _, ref := range refs {
				node := ref.Node
				expr, ok := node.Expression()
				switch {
				case !ok:
					failed++
					status.Fail("%d: %s is missing its delimiters", ref.Pos, node.Content)
				case node.Empty():
					status.Warn("%d: empty %s", ref.Pos, node.Kind)
				default:
					if err := terminal.CheckTeX(expr); err != nil {
						failed++
						status.Fail("%d: %s: %v", ref.Pos, node.Content, err)
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d equations failed", failed, len(refs))
			}
			status.OK("%d equations", len(refs))
			return nil
		},
	}
}
