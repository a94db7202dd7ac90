// Command import loads the authored curriculum into the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -file data/curriculum.xlsx -db data/discernment.db
//	go run ./cmd/import -file data/curriculum.json -db data/discernment.db
//
// Items are upserted on curriculum_order in a single transaction, so the
// import can be re-run after editing the source file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/discernment180-api/internal/content"
	"github.com/zapponejosh/discernment180-api/internal/database"
)

func main() {
	filePath := flag.String("file", "data/curriculum.xlsx", "Path to curriculum .xlsx or .json file")
	dbPath := flag.String("db", "data/discernment.db", "Path to SQLite database")
	sheet := flag.String("sheet", "", "Workbook sheet name (default: first sheet)")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg := content.DefaultSheetConfig()
	cfg.SheetName = *sheet

	if err := run(*filePath, *dbPath, cfg, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

func run(filePath, dbPath string, cfg content.SheetConfig, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	logger.Info("reading curriculum", slog.String("path", filePath))
	items, err := content.LoadFile(filePath, cfg)
	if err != nil {
		return err
	}
	logger.Debug("parsed curriculum", slog.Int("items", len(items)))

	logger.Info("opening database", slog.String("path", dbPath))
	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))

	res, err := content.Import(ctx, db, items)
	if err != nil {
		return fmt.Errorf("import content: %w", err)
	}

	total, err := db.CountContent(ctx)
	if err != nil {
		return fmt.Errorf("count content: %w", err)
	}

	elapsed := time.Since(startTime)
	logger.Info("import verified",
		slog.Int("items_in_db", total),
		slog.Duration("elapsed", elapsed),
	)

	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Items read:      %d\n", res.Total)
	fmt.Printf("Created:         %d\n", res.Created)
	fmt.Printf("Updated:         %d\n", res.Updated)
	fmt.Printf("Items in DB:     %d\n", total)
	fmt.Printf("Time elapsed:    %v\n", elapsed.Round(time.Millisecond))

	return nil
}
