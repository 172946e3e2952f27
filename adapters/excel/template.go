package excel

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateSheet is the worksheet name used by the import template
const TemplateSheet = "Tâches"

// TemplateHeaders are the column titles the import form advertises
var TemplateHeaders = []string{"Tâche", "Description", "Statut", "Priorité", "Assigné", "Date fin", "Progrès"}

var templateExample = []interface{}{
	"Coffrage voiles sous-sol", "Zone B, niveau -1", "En cours", "Haute", "Equipe gros oeuvre", "2024-06-28", "45%",
}

// WriteTemplate writes an .xlsx with the expected header row and one example row
func WriteTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		return fmt.Errorf("failed to rename template sheet: %w", err)
	}

	headers := make([]interface{}, len(TemplateHeaders))
	for i, h := range TemplateHeaders {
		headers[i] = h
	}
	if err := f.SetSheetRow(TemplateSheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write template headers: %w", err)
	}
	if err := f.SetSheetRow(TemplateSheet, "A2", &templateExample); err != nil {
		return fmt.Errorf("failed to write template example: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(TemplateHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(TemplateSheet, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("failed to style template headers: %w", err)
	}
	if err := f.SetColWidth(TemplateSheet, "A", lastCol, 22); err != nil {
		return fmt.Errorf("failed to size template columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return nil
}
