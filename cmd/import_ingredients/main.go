package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"gorm.io/gorm"

	"brewbook/internal/config"
	"brewbook/internal/db"
	"brewbook/models"
)

var (
	bracketPattern  = regexp.MustCompile(`\[[^\]]*\]`)
	numberPattern   = regexp.MustCompile(`[-+]?\d*\.?\d+`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
)

func main() {
	catalogPath := "ingredient catalog.csv"
	if len(os.Args) > 1 {
		catalogPath = os.Args[1]
	}

	if err := run(catalogPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(catalogPath string) error {
	if strings.TrimSpace(catalogPath) == "" {
		return fmt.Errorf("catalog path must not be empty")
	}

	if _, err := os.Stat(catalogPath); err != nil {
		return fmt.Errorf("locate catalog: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	records, err := readCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	imported := 0
	for idx, record := range records {
		if err := database.Transaction(func(tx *gorm.DB) error {
			return upsertRecord(tx, record)
		}); err != nil {
			return fmt.Errorf("import row %d (%s): %w", idx+1, record.name, err)
		}
		imported++
	}

	fmt.Printf("imported %d catalog entries from %s\n", imported, catalogPath)
	return nil
}

// catalogRecord is one parsed row of the source document.
type catalogRecord struct {
	kind     string
	name     string
	origin   string
	typeName string
	form     string
	yieldPct float64
	colorSRM float64
	alphaPct float64
}

// readCatalog parses a CSV catalog. PDF files are accepted too: their
// text is extracted first and then parsed as CSV lines.
func readCatalog(path string) ([]catalogRecord, error) {
	var reader io.Reader

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text, err := extractTextFromPDF(data)
		if err != nil {
			return nil, fmt.Errorf("extract pdf text: %w", err)
		}
		reader = strings.NewReader(text)
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader = file
	}

	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("catalog is empty")
	}

	header := headerIndex(rows[0])
	if _, ok := header["name"]; !ok {
		return nil, errors.New("catalog header must contain a name column")
	}

	out := make([]catalogRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := catalogRecord{
			kind:     strings.ToLower(field(row, header, "kind")),
			name:     cleanText(field(row, header, "name")),
			origin:   cleanText(field(row, header, "origin")),
			typeName: cleanText(field(row, header, "type")),
			form:     cleanText(field(row, header, "form")),
			yieldPct: parseNumber(field(row, header, "yield_pct")),
			colorSRM: parseNumber(field(row, header, "color_srm")),
			alphaPct: parseNumber(field(row, header, "alpha_pct")),
		}
		if record.name == "" {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func upsertRecord(tx *gorm.DB, record catalogRecord) error {
	switch record.kind {
	case "", "fermentable", "grain":
		return upsertFermentable(tx, record)
	case "hop":
		return upsertHop(tx, record)
	default:
		return fmt.Errorf("unknown catalog kind %q", record.kind)
	}
}

func upsertFermentable(tx *gorm.DB, record catalogRecord) error {
	var existing models.Fermentable
	err := tx.Where("name = ? AND parent_id IS NULL AND recipe_id IS NULL", record.name).First(&existing).Error
	switch {
	case err == nil:
		existing.Origin = record.origin
		if record.typeName != "" {
			existing.Type = record.typeName
		}
		existing.YieldPct = record.yieldPct
		existing.ColorSRM = record.colorSRM
		return tx.Save(&existing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry := models.Fermentable{
			Record:   models.Record{Name: record.name, Display: true},
			Type:     record.typeName,
			Origin:   record.origin,
			YieldPct: record.yieldPct,
			ColorSRM: record.colorSRM,
		}
		return tx.Create(&entry).Error
	default:
		return fmt.Errorf("find fermentable %q: %w", record.name, err)
	}
}

func upsertHop(tx *gorm.DB, record catalogRecord) error {
	var existing models.Hop
	err := tx.Where("name = ? AND parent_id IS NULL AND recipe_id IS NULL", record.name).First(&existing).Error
	switch {
	case err == nil:
		existing.Origin = record.origin
		if record.form != "" {
			existing.Form = record.form
		}
		existing.AlphaPct = record.alphaPct
		return tx.Save(&existing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry := models.Hop{
			Record:   models.Record{Name: record.name, Display: true},
			Form:     record.form,
			Origin:   record.origin,
			AlphaPct: record.alphaPct,
		}
		return tx.Create(&entry).Error
	default:
		return fmt.Errorf("find hop %q: %w", record.name, err)
	}
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func headerIndex(row []string) map[string]int {
	out := make(map[string]int, len(row))
	for i, col := range row {
		out[strings.ToLower(cleanText(col))] = i
	}
	return out
}

func field(row []string, header map[string]int, name string) string {
	idx, ok := header[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func cleanText(value string) string {
	value = bracketPattern.ReplaceAllString(value, "")
	value = cleanWhitespace.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

func parseNumber(value string) float64 {
	match := numberPattern.FindString(value)
	if match == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return parsed
}
