// Command coverage checks that an imported curriculum covers every daily
// reading and weekly review of the program.
//
// Usage:
//
//	go run ./cmd/coverage -db data/discernment.db -o coverage.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/discernment180-api/internal/curriculum"
	"github.com/zapponejosh/discernment180-api/internal/database"
)

func main() {
	dbPath := flag.String("db", "data/discernment.db", "Path to SQLite database")
	verbose := flag.Bool("v", false, "Verbose output (list every item)")
	outputFile := flag.String("o", "", "Output results to JSON file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	db, err := database.Open(database.DefaultConfig(*dbPath), logger)
	if err != nil {
		fmt.Printf("Error: cannot open %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer db.Close()

	items, err := db.ListContent(context.Background())
	if err != nil {
		fmt.Printf("Error: list content: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("================================================================")
	fmt.Println("Discernment 180 - Curriculum Coverage")
	fmt.Println("================================================================")
	fmt.Printf("Database: %s\n\n", *dbPath)

	classes := make([]curriculum.Classification, 0, len(items))
	for _, it := range items {
		c := curriculum.Classify(it.Day, it.Title, it.IsFirst)
		classes = append(classes, c)
		if *verbose {
			fmt.Printf("  %4d  %-15s %s\n", it.CurriculumOrder, c.Kind, it.Title)
		}
	}
	if *verbose {
		fmt.Println()
	}

	cov := curriculum.AnalyzeCoverage(classes)
	printSummary(cov)
	printGaps(cov)

	if *outputFile != "" {
		saveResults(*outputFile, cov)
	}

	if !cov.Complete() {
		os.Exit(1)
	}
}

func printSummary(c curriculum.Coverage) {
	fmt.Println("================================================================")
	fmt.Println("SUMMARY")
	fmt.Println("================================================================")
	fmt.Printf("Items:          %d\n", c.Items)
	fmt.Printf("Daily readings: %d/%d (%.1f%%)\n", c.DailyDays, curriculum.ProgramDays,
		float64(c.DailyDays)/float64(curriculum.ProgramDays)*100)
	fmt.Printf("Weekly reviews: %d/%d\n", c.ReviewWeeks, curriculum.ProgramWeeks)
	fmt.Printf("Previews:       %d\n", c.Previews)
	fmt.Printf("Excursus:       %d\n", c.Excursus)
	fmt.Printf("Intro:          %d\n", c.Intros)
	fmt.Println()
}

func printGaps(c curriculum.Coverage) {
	if c.Complete() {
		fmt.Println("No gaps! 🎉")
		return
	}

	fmt.Println("================================================================")
	fmt.Println("GAPS")
	fmt.Println("================================================================")
	printList("Missing days", c.MissingDays)
	printList("Duplicate days", c.DuplicateDays)
	printList("Weeks without a review", c.MissingReviewWeeks)
	fmt.Println()
}

func printList(label string, vals []int) {
	if len(vals) == 0 {
		return
	}
	fmt.Printf("\n%s: %d\n", label, len(vals))
	const limit = 20
	for i, v := range vals {
		if i >= limit {
			fmt.Printf("  ... and %d more\n", len(vals)-limit)
			break
		}
		fmt.Printf("  - %d\n", v)
	}
}

func saveResults(filename string, c curriculum.Coverage) {
	output := struct {
		GeneratedAt string              `json:"generated_at"`
		Complete    bool                `json:"complete"`
		Coverage    curriculum.Coverage `json:"coverage"`
	}{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Complete:    c.Complete(),
		Coverage:    c,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling results: %v\n", err)
		return
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		fmt.Printf("Error writing file: %v\n", err)
		return
	}

	fmt.Printf("Results saved to: %s\n", filename)
}
