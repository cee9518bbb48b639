package main

import (
	"fmt"

	"github.com/aretw0/mathspan"
	"github.com/aretw0/mathspan/internal/cli"
	"github.com/aretw0/mathspan/pkg/pandoc"
	"github.com/aretw0/mathspan/pkg/session"
	"github.com/spf13/cobra"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage documents in the configured store",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored documents",
			Args:  cobra.NoArgs,
			RunE: withSessions(func(cmd *cobra.Command, args []string, e *docsEnv) error {
				ids, err := e.sessions.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Print a stored document as Pandoc JSON",
			Args:  cobra.ExactArgs(1),
			RunE: withSessions(func(cmd *cobra.Command, args []string, e *docsEnv) error {
				doc, err := e.sessions.Open(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out, err := e.editor.Save(doc)
				if err != nil {
					return err
				}
				return pandoc.Encode(cmd.OutOrStdout(), out)
			}),
		},
		&cobra.Command{
			Use:   "put <id> [file]",
			Short: "Store a Pandoc JSON document",
			Args:  cobra.RangeArgs(1, 2),
			RunE: withSessions(func(cmd *cobra.Command, args []string, e *docsEnv) error {
				in, err := openInput(cmd, args[1:])
				if err != nil {
					return err
				}
				defer in.Close()

				doc, err := e.editor.Read(in)
				if err != nil {
					return err
				}
				return e.sessions.Save(cmd.Context(), args[0], doc)
			}),
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a stored document",
			Args:  cobra.ExactArgs(1),
			RunE: withSessions(func(cmd *cobra.Command, args []string, e *docsEnv) error {
				return e.sessions.Delete(cmd.Context(), args[0])
			}),
		},
	)
	return cmd
}

type docsEnv struct {
	editor   *mathspan.Editor
	sessions *session.Manager
}

func withSessions(fn func(cmd *cobra.Command, args []string, e *docsEnv) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		editor, err := a.editor(nil)
		if err != nil {
			return err
		}
		defer editor.Close()

		sessions, closeStore, err := cli.NewSessions(a.cfg, a.logger)
		if err != nil {
			return err
		}
		defer closeStore()
		return fn(cmd, args, &docsEnv{editor: editor, sessions: sessions})
	}
}
