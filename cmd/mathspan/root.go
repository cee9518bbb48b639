package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/mathspan"
	"github.com/aretw0/mathspan/internal/cli"
	"github.com/aretw0/mathspan/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mathspan",
		Short: "mathspan edits the math of Pandoc documents",
		Long: `mathspan lifts the $inline$ and $$display$$ math of Pandoc JSON documents
into editable nodes, typesets them and writes them back without losing the
user's text.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Configuration file")
	rootCmd.PersistentFlags().String("profile", "", "Target renderer profile (default, blogdown, plain, ...)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("dir", "", "Document directory for the loam store")

	rootCmd.AddCommand(
		newReadCmd(),
		newWriteCmd(),
		newCheckCmd(),
		newImportCmd(),
		newPreviewCmd(),
		newDocsCmd(),
		newServeCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds what every command builds from the global flags.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	opts := cli.Options{}
	opts.ConfigPath, _ = flags.GetString("config")
	opts.Profile, _ = flags.GetString("profile")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.Dir, _ = flags.GetString("dir")

	cfg, err := cli.LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) editor(reg prometheus.Registerer) (*mathspan.Editor, error) {
	return cli.NewEditor(a.cfg, a.logger, reg)
}

// openInput opens the file named by args[0], or stdin when there is none or
// it is "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}
