// Package cli implements the clipstudio command line: the HTTP server,
// a stored-file listing and the version report.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	var configFlag string

	root := &cobra.Command{
		Use:          "clipstudio",
		Short:        "Media timeline workers, planning records and file storage over HTTP",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	root.AddCommand(newServeCommand(&configFlag))
	root.AddCommand(newFilesCommand(&configFlag))
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
