// Package content loads curriculum items from authored files into the
// database. JSON documents and Excel workbooks are supported.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zapponejosh/discernment180-api/internal/database"
)

// SheetConfig describes where the columns of a workbook live.
type SheetConfig struct {
	SheetName      string // Sheet to read; empty means the first sheet
	OrderColumn    string
	DayColumn      string // Blank cells become a nil day
	TitleColumn    string
	SubtitleColumn string
	BodyColumn     string
	StartRow       int // 1-based; rows above it are headers
}

// DefaultSheetConfig returns the layout written by the authoring template.
func DefaultSheetConfig() SheetConfig {
	return SheetConfig{
		OrderColumn:    "A",
		DayColumn:      "B",
		TitleColumn:    "C",
		SubtitleColumn: "D",
		BodyColumn:     "E",
		StartRow:       2,
	}
}

// Result summarizes an import.
type Result struct {
	Total   int
	Created int
	Updated int
}

// LoadFile reads items from path, choosing the parser by extension.
func LoadFile(path string, cfg SheetConfig) ([]database.ContentImportItem, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer f.Close()
		return ReadWorkbook(f, cfg)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open json: %w", err)
		}
		defer f.Close()
		doc, err := ParseJSON(f)
		if err != nil {
			return nil, err
		}
		return doc.Items, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// ParseJSON decodes a ContentImport document.
func ParseJSON(r io.Reader) (*database.ContentImport, error) {
	var doc database.ContentImport
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &doc, nil
}

// ReadWorkbook reads one item per row. Rows with an empty order cell are
// skipped so authors can leave spacer rows.
func ReadWorkbook(f *excelize.File, cfg SheetConfig) ([]database.ContentImportItem, error) {
	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var items []database.ContentImportItem
	for i, row := range rows {
		if i < cfg.StartRow-1 {
			continue
		}
		cell := func(col string) string {
			if idx := columnToIndex(col); idx >= 0 && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		orderCell := cell(cfg.OrderColumn)
		if orderCell == "" {
			continue
		}
		order, err := strconv.Atoi(orderCell)
		if err != nil {
			return nil, fmt.Errorf("row %d: order %q is not a number", i+1, orderCell)
		}

		item := database.ContentImportItem{
			CurriculumOrder: order,
			Title:           cell(cfg.TitleColumn),
			Body:            cell(cfg.BodyColumn),
		}
		if d := cell(cfg.DayColumn); d != "" {
			day, err := strconv.Atoi(d)
			if err != nil {
				return nil, fmt.Errorf("row %d: day %q is not a number", i+1, d)
			}
			item.Day = &day
		}
		if s := cell(cfg.SubtitleColumn); s != "" {
			item.Subtitle = &s
		}
		items = append(items, item)
	}
	return items, nil
}

// Validate checks that orders are positive and unique and that every
// item has a title. All problems are reported together.
func Validate(items []database.ContentImportItem) error {
	var errs []error
	seen := make(map[int]bool, len(items))
	for i, it := range items {
		if it.CurriculumOrder < 1 {
			errs = append(errs, fmt.Errorf("item %d: curriculum_order must be positive, got %d", i+1, it.CurriculumOrder))
		}
		if seen[it.CurriculumOrder] {
			errs = append(errs, fmt.Errorf("item %d: duplicate curriculum_order %d", i+1, it.CurriculumOrder))
		}
		seen[it.CurriculumOrder] = true
		if strings.TrimSpace(it.Title) == "" {
			errs = append(errs, fmt.Errorf("item %d: title is required", i+1))
		}
	}
	return errors.Join(errs...)
}

// Import validates items and upserts them in a single transaction keyed
// on curriculum_order. Nothing is written if any item fails.
func Import(ctx context.Context, db *database.DB, items []database.ContentImportItem) (*Result, error) {
	if err := Validate(items); err != nil {
		return nil, err
	}

	res := &Result{Total: len(items)}
	err := db.WithTx(ctx, func(tx *database.Tx) error {
		for _, it := range items {
			_, err := tx.GetContentByOrder(ctx, it.CurriculumOrder)
			switch {
			case err == nil:
				res.Updated++
			case database.IsNotFound(err):
				res.Created++
			default:
				return fmt.Errorf("check order %d: %w", it.CurriculumOrder, err)
			}

			row := &database.ContentItem{
				CurriculumOrder: it.CurriculumOrder,
				Day:             it.Day,
				Title:           it.Title,
				Subtitle:        it.Subtitle,
				Body:            it.Body,
			}
			if err := tx.UpsertContentItem(ctx, row); err != nil {
				return fmt.Errorf("upsert order %d: %w", it.CurriculumOrder, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// columnToIndex converts a column letter ("A", "AB") to a 0-based index.
func columnToIndex(col string) int {
	if col == "" {
		return -1
	}
	n, err := excelize.ColumnNameToNumber(strings.ToUpper(col))
	if err != nil {
		return -1
	}
	return n - 1
}
