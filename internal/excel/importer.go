package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/helloimabid/compstudy/internal/database"
	"github.com/helloimabid/compstudy/pkg/models"
)

// ImportConfig defines the curriculum import configuration
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	SubjectColumn     string // Column with the subject name
	TopicColumn       string // Column with the topic name
	DescriptionColumn string // Column with the topic description
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based index)

	// If set, every imported topic is also added to this user's review
	// list with default scheduling state
	AddForUserID string
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SubjectColumn:     "A",
		TopicColumn:       "B",
		DescriptionColumn: "C",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	TopicsCreated  int
	ItemsCreated   int
	Skipped        int
	Errors         []string
}

// ImportTopics imports curriculum topics from an Excel or CSV file
func ImportTopics(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))
	if ext == ".csv" {
		return importFromCSV(ctx, config)
	}
	return importFromExcel(ctx, config)
}

// importFromExcel imports topics from an Excel file
func importFromExcel(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	imp := newImporter(config)
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		imp.processRow(ctx, row, i+1)
	}
	return imp.result, nil
}

// importFromCSV imports topics from a CSV file with the same column
// layout as the Excel path
func importFromCSV(ctx context.Context, config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	imp := newImporter(config)
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}
		imp.processRow(ctx, row, rowNum)
	}
	return imp.result, nil
}

// importer carries shared state across rows of one import run
type importer struct {
	config   ImportConfig
	topics   *database.TopicRepository
	items    *database.ItemRepository
	settings *database.SettingsRepository
	result   *ImportResult

	subjectIdx     int
	topicIdx       int
	descriptionIdx int
}

func newImporter(config ImportConfig) *importer {
	return &importer{
		config:         config,
		topics:         database.NewTopicRepository(),
		items:          database.NewItemRepository(),
		settings:       database.NewSettingsRepository(),
		result:         &ImportResult{Errors: make([]string, 0)},
		subjectIdx:     columnIndex(config.SubjectColumn),
		topicIdx:       columnIndex(config.TopicColumn),
		descriptionIdx: columnIndex(config.DescriptionColumn),
	}
}

// processRow imports one spreadsheet row; malformed rows are counted
// and reported, never fatal
func (imp *importer) processRow(ctx context.Context, row []string, rowNum int) {
	imp.result.TotalProcessed++

	subject := cell(row, imp.subjectIdx)
	name := cell(row, imp.topicIdx)
	if subject == "" || name == "" {
		imp.result.Skipped++
		imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: missing subject or topic name", rowNum))
		return
	}

	subjectID := slugify(subject)
	topic, err := imp.topics.GetByName(ctx, subjectID, name)
	switch {
	case err == nil:
		imp.result.Skipped++
	case err == database.ErrTopicNotFound:
		topic = &models.Topic{
			SubjectID:   subjectID,
			SubjectName: subject,
			Name:        name,
			Description: cell(row, imp.descriptionIdx),
		}
		if err := imp.topics.Create(ctx, topic); err != nil {
			imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			return
		}
		imp.result.TopicsCreated++
	default:
		imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		return
	}

	if imp.config.AddForUserID == "" {
		return
	}
	userSettings, err := imp.settings.GetOrCreate(ctx, imp.config.AddForUserID)
	if err != nil {
		imp.result.Errors = append(imp.result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		return
	}
	if _, err := imp.items.Create(ctx, imp.config.AddForUserID, *topic, userSettings); err != nil {
		// Usually a duplicate: the topic is already on the review list
		imp.result.Skipped++
		return
	}
	imp.result.ItemsCreated++
}

// cell returns the trimmed value at idx, empty when the row is short
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnIndex converts a spreadsheet column letter ("A", "B", ...) to a
// zero-based index
func columnIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	idx := 0
	for _, c := range column {
		if c < 'A' || c > 'Z' {
			return -1
		}
		idx = idx*26 + int(c-'A') + 1
	}
	return idx - 1
}

// slugify turns a display name into a stable id fragment
func slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "-")
}
