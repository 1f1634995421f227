package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/studydash/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "studydash",
		Short: "StudyDash collection gateway",
		Long:  `StudyDash is the backend for a student productivity dashboard: a generic CRUD gateway over the calendar, schedule and task collections.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
