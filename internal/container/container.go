package container

import (
	"context"
	"fmt"

	"chantier/adapters/excel"
	"chantier/adapters/memory"
	"chantier/adapters/postgres"
	"chantier/app"
	"chantier/internal"
	"chantier/internal/config"
	"chantier/internal/importer"
	"chantier/internal/migration"
	"chantier/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure; DB is nil when tasks live in memory
	DB *sqlx.DB

	// Data access
	TaskStore ports.TaskStore

	// Import pipeline
	Decoder       *excel.Decoder
	Importer      *importer.Importer
	ImportService *app.ImportService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.DefaultLogger,
	}

	return c, nil
}

// InitWithDatabase backs the task store with postgres and migrates the schema
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.TaskStore = postgres.NewTaskRepository(db)
	c.initImportPipeline()

	c.Logger.Info("[Container] Initialized with postgres task store")
	return nil
}

// InitInMemory keeps tasks in process memory, for development and the CLI
func (c *Container) InitInMemory() {
	c.TaskStore = memory.NewTaskStore()
	c.initImportPipeline()
	c.Logger.Info("[Container] Initialized with in-memory task store")
}

func (c *Container) initImportPipeline() {
	opts := excel.DefaultReaderOptions()
	opts.Sheet = c.Config.Import.Sheet
	opts.MaxBytes = c.Config.Import.MaxUploadBytes()

	c.Decoder = excel.NewDecoder(opts)
	c.Importer = importer.New(c.Decoder, importer.Options{})
	c.ImportService = app.NewImportService(c.Importer, c.TaskStore, app.ImportServiceConfig{
		AllowedExtensions: c.Config.Import.AllowedExtensions,
		MaxBytes:          opts.MaxBytes,
	})
}

// Close releases infrastructure resources
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
