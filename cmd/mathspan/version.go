package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/mathspan"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mathspan",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mathspan version %s\n", strings.TrimSpace(mathspan.Version))
		},
	}
}
