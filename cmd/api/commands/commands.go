package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/studydash/core/internal/adapters/repository"
	"github.com/studydash/core/internal/application/services"
	"github.com/studydash/core/internal/domain/entities"
	"github.com/studydash/core/internal/infrastructure/cache"
	"github.com/studydash/core/internal/infrastructure/config"
	"github.com/studydash/core/internal/infrastructure/database"
	"github.com/studydash/core/internal/infrastructure/logger"
	"github.com/studydash/core/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the StudyDash API server",
		Long:  "Start the collection gateway with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Document store migration commands",
		Long:  "Manage document store migrations (up, down, version)",
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

// NewSeedCommand creates the seed command
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample entries into the three collections",
		Run: func(cmd *cobra.Command, args []string) {
			runSeed()
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.Fatalw("Failed to connect to document store", "error", err)
	}

	var redisCache *cache.RedisCache
	if cfg.Cache.Enabled {
		redisCache, err = cache.New(cfg.Redis)
		if err != nil {
			appLogger.Fatalw("Failed to connect to redis", "error", err)
		}
	}

	srv, err := server.New(cfg, db, redisCache, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to create server", "error", err)
	}

	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := srv.Start(address); err != nil {
			appLogger.Infow("Server stopped", "reason", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Errorw("Server shutdown failed", "error", err)
	}
	if err := db.Close(ctx); err != nil {
		appLogger.Errorw("Document store disconnect failed", "error", err)
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			appLogger.Errorw("Redis close failed", "error", err)
		}
	}
}

func runMigration(direction string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	m, err := migrate.New("file://migrations", cfg.Database.MigrateURL())
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Migration failed: %v", err)
	}

	if err == migrate.ErrNoChange {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully\n", direction)
	}
}

func showMigrationVersion() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	m, err := migrate.New("file://migrations", cfg.Database.MigrateURL())
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func runSeed() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to document store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer db.Close(ctx)

	calendarSvc := services.NewEntryService[entities.CalendarEntry](
		entities.CollectionCalendarEntries,
		repository.NewEntryRepository[entities.CalendarEntry](db, entities.CollectionCalendarEntries, appLogger),
		nil, 0, appLogger,
	)
	scheduleSvc := services.NewEntryService[entities.ScheduleEntry](
		entities.CollectionScheduleEntries,
		repository.NewEntryRepository[entities.ScheduleEntry](db, entities.CollectionScheduleEntries, appLogger),
		nil, 0, appLogger,
	)
	taskSvc := services.NewEntryService[entities.TaskEntry](
		entities.CollectionTaskEntries,
		repository.NewEntryRepository[entities.TaskEntry](db, entities.CollectionTaskEntries, appLogger),
		nil, 0, appLogger,
	)

	today := time.Now().Truncate(24 * time.Hour)

	if _, err := calendarSvc.Create(ctx, entities.CalendarEntry{
		Date:        entities.NewDate(today.AddDate(0, 0, 7)),
		Title:       "Algorithms midterm",
		Description: "Chapters 1-6",
		Category:    entities.CalendarCategoryExam,
	}); err != nil {
		log.Fatalf("Failed to seed calendar entry: %v", err)
	}

	if _, err := scheduleSvc.Create(ctx, entities.ScheduleEntry{
		Date:      entities.NewDate(today),
		StartTime: "09:00",
		EndTime:   "10:30",
		Title:     "Linear algebra lecture",
		Category:  entities.ScheduleCategoryClass,
	}); err != nil {
		log.Fatalf("Failed to seed schedule entry: %v", err)
	}

	if _, err := taskSvc.Create(ctx, entities.TaskEntry{
		Title:       "Finish lab report",
		Description: "Write up the measurement section",
		Type:        "Homework",
		DueDate:     entities.NewDate(today.AddDate(0, 0, 3)),
		Priority:    entities.TaskPriorityMedium,
		Progress:    25,
	}); err != nil {
		log.Fatalf("Failed to seed task entry: %v", err)
	}

	fmt.Println("Seeded sample entries")
}
