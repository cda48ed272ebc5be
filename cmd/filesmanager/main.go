package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/templui/filesmanager/cmd/filesmanager/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "filesmanager",
		Short:        "File storage API and thumbnail worker",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.ServeCmd())
	rootCmd.AddCommand(cmd.WorkerCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
