package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"chantier/adapters/excel"
	"chantier/adapters/postgres"
	"chantier/domain/core"
	"chantier/internal/importer"
	"chantier/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var spreadsheetExtensions = map[string]bool{".xlsx": true, ".xls": true, ".csv": true}

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <database_url> <spreadsheet_dir>")
	}

	databaseURL := os.Args[1]
	sheetDir := os.Args[2]

	log.Printf("Starting task backfill from %s", sheetDir)

	// Connect to database
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	log.Printf("Schema at version %s", runner.Version())

	store := postgres.NewTaskRepository(db)
	opts := excel.DefaultReaderOptions()
	im := importer.New(excel.NewDecoder(opts), importer.Options{})

	// Find all spreadsheets
	files, err := findSpreadsheets(sheetDir)
	if err != nil {
		log.Fatalf("Failed to find spreadsheets: %v", err)
	}

	log.Printf("Found %d spreadsheets to import", len(files))

	migrated := 0
	skipped := 0

	for _, file := range files {
		projectID := projectIDFromPath(file)

		table, err := excel.NewDataReader(file, opts).ReadData(ctx)
		if err != nil {
			log.Printf("Skipping %s: %v", file, err)
			skipped++
			continue
		}

		result := im.ImportTable(table)

		// Replace what an earlier run stored for the project
		if err := store.ClearTasks(ctx, projectID); err != nil {
			log.Printf("Failed to clear project %s: %v", projectID, err)
			skipped++
			continue
		}
		if err := store.AddTasks(ctx, projectID, result.Tasks); err != nil {
			log.Printf("Failed to store tasks from %s: %v", file, err)
			skipped++
			continue
		}

		migrated++
		log.Printf("Imported %d tasks from %s into project %s", len(result.Tasks), filepath.Base(file), projectID)
	}

	log.Printf("Backfill complete: %d imported, %d skipped", migrated, skipped)
}

func findSpreadsheets(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && spreadsheetExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

// projectIDFromPath names the project after the file, e.g. "villa-lyon.xlsx" -> "villa-lyon"
func projectIDFromPath(path string) core.ProjectID {
	base := filepath.Base(path)
	return core.ProjectID(strings.TrimSuffix(base, filepath.Ext(base)))
}
