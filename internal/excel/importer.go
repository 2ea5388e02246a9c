// Package excel imports vocabulary from spreadsheets and CSV files.
package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/example/vocabquiz/internal/catalog"
	"github.com/example/vocabquiz/internal/grading"
	"github.com/example/vocabquiz/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath         string   // Path to the Excel or CSV file
	TermColumn       string   // Column with the term
	DefinitionColumn string   // Column with the definition
	TypeColumn       string   // Column with the type (Word or Idiom)
	IDColumn         string   // Column with an optional item id
	Sheets           []string // Sheets to import, all when empty
	SkipHeader       bool     // Skip a leading "term" header row
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		TermColumn:       "A",
		DefinitionColumn: "B",
		TypeColumn:       "C",
		IDColumn:         "D",
		SkipHeader:       true,
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Categories     int
	Created        int
	Skipped        int
	Errors         []string
}

// Import reads vocabulary items from an Excel or CSV file. Row problems are
// collected in the result; only an unreadable file is an error.
func Import(config ImportConfig) ([]models.VocabItem, *ImportResult, error) {
	cols, err := config.columns()
	if err != nil {
		return nil, nil, err
	}

	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		file, err := os.Open(config.FilePath)
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to open CSV file")
		}
		defer file.Close()
		return importCSV(file, config, cols)
	}
	return importExcel(config, cols)
}

// ImportCSV reads vocabulary items from CSV data
func ImportCSV(r io.Reader, config ImportConfig) ([]models.VocabItem, *ImportResult, error) {
	cols, err := config.columns()
	if err != nil {
		return nil, nil, err
	}
	return importCSV(r, config, cols)
}

type columnIndexes struct {
	term, definition, kind, id int
}

func (c ImportConfig) columns() (columnIndexes, error) {
	defaults := DefaultImportConfig()
	index := func(name, fallback string) (int, error) {
		if name == "" {
			name = fallback
		}
		n, err := excelize.ColumnNameToNumber(name)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid column %q", name)
		}
		return n - 1, nil
	}

	var (
		cols columnIndexes
		err  error
	)
	if cols.term, err = index(c.TermColumn, defaults.TermColumn); err != nil {
		return cols, err
	}
	if cols.definition, err = index(c.DefinitionColumn, defaults.DefinitionColumn); err != nil {
		return cols, err
	}
	if cols.kind, err = index(c.TypeColumn, defaults.TypeColumn); err != nil {
		return cols, err
	}
	if cols.id, err = index(c.IDColumn, defaults.IDColumn); err != nil {
		return cols, err
	}
	return cols, nil
}

// importer accumulates items across sheets or CSV sections
type importer struct {
	config ImportConfig
	cols   columnIndexes
	result *ImportResult
	items  []models.VocabItem
	terms  map[string]bool
	ids    map[string]bool
	seen   map[string]bool // categories
}

func newImporter(config ImportConfig, cols columnIndexes) *importer {
	return &importer{
		config: config,
		cols:   cols,
		result: &ImportResult{Errors: make([]string, 0)},
		terms:  make(map[string]bool),
		ids:    make(map[string]bool),
		seen:   make(map[string]bool),
	}
}

// importExcel treats every sheet as one category
func importExcel(config ImportConfig, cols columnIndexes) ([]models.VocabItem, *ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheets := config.Sheets
	if len(sheets) == 0 {
		sheets = f.GetSheetList()
	}

	imp := newImporter(config, cols)
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to get rows of sheet %q", sheet)
		}
		for i, row := range rows {
			if i == 0 && config.SkipHeader && isHeader(row, cols) {
				continue
			}
			if blank(row) {
				continue
			}
			imp.add(row, sheet, fmt.Sprintf("%s row %d", sheet, i+1))
		}
	}
	return imp.items, imp.result, nil
}

// importCSV reads rows in order; a "Day N" row with nothing else set, such
// as "Day 3,,", starts a new category.
func importCSV(r io.Reader, config ImportConfig, cols columnIndexes) ([]models.VocabItem, *ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	imp := newImporter(config, cols)
	category := ""
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.Wrap(err, "error reading CSV")
		}
		rowNum++

		if rowNum == 1 && config.SkipHeader && isHeader(row, cols) {
			continue
		}
		if blank(row) {
			continue
		}
		if header, ok := categoryHeader(row, cols); ok {
			category = header
			continue
		}
		imp.add(row, category, fmt.Sprintf("row %d", rowNum))
	}
	return imp.items, imp.result, nil
}

// add validates one row and appends it as an item
func (imp *importer) add(row []string, category, where string) {
	imp.result.TotalProcessed++

	item := models.VocabItem{
		Term:       cell(row, imp.cols.term),
		Definition: cell(row, imp.cols.definition),
		ID:         cell(row, imp.cols.id),
		Category:   category,
	}

	if item.Term == "" || item.Definition == "" {
		imp.skip(where, "term and definition are required")
		return
	}
	kind, ok := models.ParseKind(cell(row, imp.cols.kind))
	if !ok {
		imp.skip(where, fmt.Sprintf("unknown type %q", cell(row, imp.cols.kind)))
		return
	}
	item.Kind = kind

	norm := grading.Normalize(item.Term)
	if norm == "" {
		imp.skip(where, fmt.Sprintf("term %q has no letters or digits", item.Term))
		return
	}
	if imp.terms[norm] {
		imp.skip(where, fmt.Sprintf("duplicate term %q", item.Term))
		return
	}
	if item.ID == "" {
		item.ID = catalog.StableID(item.Term)
	}
	if imp.ids[item.ID] {
		imp.skip(where, fmt.Sprintf("duplicate id %q", item.ID))
		return
	}

	imp.terms[norm] = true
	imp.ids[item.ID] = true
	if category != "" && !imp.seen[category] {
		imp.seen[category] = true
		imp.result.Categories++
	}
	imp.items = append(imp.items, item)
	imp.result.Created++
}

func (imp *importer) skip(where, reason string) {
	imp.result.Skipped++
	imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("%s: %s", where, reason))
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(row[idx], "\""))
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// isHeader reports whether row is a column title row
func isHeader(row []string, cols columnIndexes) bool {
	return strings.EqualFold(cell(row, cols.term), "term") &&
		strings.EqualFold(cell(row, cols.definition), "definition")
}

var dayHeader = regexp.MustCompile(`(?i)^day\s+\d+$`)

// categoryHeader reports whether row names a category: only its first cell
// is set and that cell is either a "Day N" label or outside the term column.
// A term row missing its definition is not a header.
func categoryHeader(row []string, cols columnIndexes) (string, bool) {
	first := cell(row, 0)
	if first == "" {
		return "", false
	}
	for _, c := range row[1:] {
		if strings.TrimSpace(c) != "" {
			return "", false
		}
	}
	if dayHeader.MatchString(first) || cols.term != 0 {
		return first, true
	}
	return "", false
}
