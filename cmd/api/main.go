package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/stickyboard/core/cmd/api/commands"
)

// @title Sticky Board API
// @version 1.0
// @description Shared board of draggable sticky notes with per-note visibility

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "stickyboard",
		Short: "Sticky Board API Server",
		Long:  `Sticky Board serves a shared dashboard of colored notes with checklists, per-user collapse state and role-based visibility.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewNotesCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
