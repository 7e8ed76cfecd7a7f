package e2e

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hyperjump/treerec/internal/models"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

var xlsxHeader = []interface{}{"id", "name", "brand", "category_path", "description", "keywords", "price"}

// WriteCatalogXLSX writes items to path as a catalog workbook.
func WriteCatalogXLSX(path string, items []*models.Item) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &xlsxHeader); err != nil {
		return err
	}
	for i, item := range items {
		row := []interface{}{
			item.ID,
			item.Name,
			item.Brand,
			strings.Join(item.CategoryPath, "/"),
			item.Description,
			strings.Join(item.Keywords, ","),
			strconv.FormatFloat(item.Price, 'f', 2, 64),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// WriteCatalogYAML writes items to path as a YAML catalog.
func WriteCatalogYAML(path string, items []*models.Item) error {
	data, err := yaml.Marshal(struct {
		Items []*models.Item `yaml:"items"`
	}{items})
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
