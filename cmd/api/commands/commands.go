package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stickyboard/core/internal/domain/entities"
	"github.com/stickyboard/core/internal/infrastructure/config"
	"github.com/stickyboard/core/internal/infrastructure/database"
	"github.com/stickyboard/core/internal/infrastructure/logger"
	"github.com/stickyboard/core/internal/infrastructure/server"
	"github.com/stickyboard/core/internal/ports"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "development"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the sticky board API server",
		Long:  "Start the sticky board API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Create board users and assign their roles",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		Run: func(cmd *cobra.Command, args []string) {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			displayName, _ := cmd.Flags().GetString("display-name")
			role, _ := cmd.Flags().GetString("role")

			if email == "" || password == "" {
				log.Fatal("Email and password are required")
			}
			if displayName == "" {
				displayName = email
			}

			createUser(ports.CreateUserRequest{
				Email:       email,
				Password:    password,
				DisplayName: displayName,
				Role:        entities.Role(role),
			})
		},
	}

	createUserCmd.Flags().String("email", "", "User email (required)")
	createUserCmd.Flags().String("password", "", "User password (required)")
	createUserCmd.Flags().String("display-name", "", "Name shown on the board")
	createUserCmd.Flags().String("role", string(entities.RoleAuthor), "User role (administrator, editor, author, contributor, subscriber)")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewNotesCommand creates the note maintenance command
func NewNotesCommand() *cobra.Command {
	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "Note maintenance commands",
	}

	notesCmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every note along with its metadata",
		Long:  "Delete every note, its metadata and every user's collapsed set. Used when uninstalling the board.",
		Run: func(cmd *cobra.Command, args []string) {
			purgeNotes()
		},
	})

	return notesCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Sticky Board %s\n", Version)
			fmt.Printf("Build Date: %s\n", BuildDate)
			fmt.Printf("Git Commit: %s\n", GitCommit)
		},
	}
}

// bootstrap loads configuration and opens the database. Callers own the
// returned logger and connection.
func bootstrap() (*config.Config, *logger.Logger, *database.DB) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.Fatalw("Failed to connect to database", "error", err)
	}

	return cfg, appLogger, db
}

func runServer() {
	cfg, appLogger, db := bootstrap()
	defer appLogger.Sync()
	defer db.Close()

	svc, err := server.NewServices(cfg, db, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize services", "error", err)
	}
	defer svc.Close()

	srv, err := server.New(cfg, db, svc, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Infow("Starting sticky board API server",
		"address", address,
		"environment", cfg.App.Environment,
		"cache", svc.CacheEnabled(),
	)

	go func() {
		if err := srv.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalw("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorw("Server forced to shutdown", "error", err)
	}
}

func runMigration(direction string) {
	_, appLogger, db := bootstrap()
	defer appLogger.Sync()
	defer db.Close()

	m, err := database.NewMigrator(db)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}
	fmt.Printf("Migration %s completed successfully (version %d, dirty %t)\n", direction, version, dirty)
}

func showMigrationVersion() {
	_, appLogger, db := bootstrap()
	defer appLogger.Sync()
	defer db.Close()

	m, err := database.NewMigrator(db)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func createUser(req ports.CreateUserRequest) {
	cfg, appLogger, db := bootstrap()
	defer appLogger.Sync()
	defer db.Close()

	svc, err := server.NewServices(cfg, db, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	user, err := svc.Users.CreateUser(context.Background(), req)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("User created successfully:\n")
	fmt.Printf("  ID: %s\n", user.ID)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Name: %s\n", user.DisplayName)
	fmt.Printf("  Role: %s\n", user.Role)
}

func purgeNotes() {
	cfg, appLogger, db := bootstrap()
	defer appLogger.Sync()
	defer db.Close()

	svc, err := server.NewServices(cfg, db, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer svc.Close()

	removed, err := svc.Board.PurgeNotes(context.Background())
	if err != nil {
		log.Fatalf("Failed to purge notes: %v", err)
	}
	fmt.Printf("Removed %d notes\n", removed)
}
