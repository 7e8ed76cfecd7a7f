package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hyperjump/treerec/internal/models"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// ErrUnsupportedFormat is returned for catalog files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// SupportedExtensions lists the catalog file extensions Load understands.
var SupportedExtensions = []string{".yaml", ".yml", ".xlsx"}

// file is the YAML catalog layout.
type file struct {
	Items []models.ItemInput `yaml:"items"`
}

// Seed returns the built-in starter catalog.
func Seed() ([]*models.Item, error) {
	items, err := LoadBytes(seedYAML, ".yaml")
	if err != nil {
		return nil, fmt.Errorf("load seed catalog: %w", err)
	}
	return items, nil
}

// Load reads the catalog file at path.
func Load(path string) ([]*models.Item, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return LoadBytes(content, strings.ToLower(filepath.Ext(path)))
}

// LoadBytes parses content according to ext (with the leading dot).
func LoadBytes(content []byte, ext string) ([]*models.Item, error) {
	var inputs []models.ItemInput
	var err error
	switch ext {
	case ".yaml", ".yml":
		inputs, err = parseYAML(content)
	case ".xlsx":
		inputs, err = parseXLSX(content)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	items := make([]*models.Item, 0, len(inputs))
	for i, in := range inputs {
		item, err := models.NewItem(in)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// IsSupported reports whether path has a catalog extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func parseYAML(content []byte) ([]models.ItemInput, error) {
	var f file
	if err := yaml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("parse YAML catalog: %w", err)
	}
	return f.Items, nil
}

// parseXLSX reads the first sheet. The first row is a header naming the columns
// id, name, brand, category_path, description, keywords and price in any order.
// Category labels are separated by "/" and keywords by ",".
func parseXLSX(content []byte) ([]models.ItemInput, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("sheet %q: missing id column", sheets[0])
	}
	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var inputs []models.ItemInput
	for n, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		in := models.ItemInput{
			ID:           cell(row, "id"),
			Name:         cell(row, "name"),
			Brand:        cell(row, "brand"),
			CategoryPath: strings.Split(cell(row, "category_path"), "/"),
			Description:  cell(row, "description"),
			Keywords:     strings.Split(cell(row, "keywords"), ","),
		}
		if raw := cell(row, "price"); raw != "" {
			price, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid price %q: %w", n+2, raw, err)
			}
			in.Price = price
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}
