package excel

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chantier/domain/core"
	"chantier/domain/sheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows to the first sheet of a new workbook and returns its bytes
func buildWorkbook(t *testing.T, rows [][]interface{}, extraSheets ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	for _, name := range extraSheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(name, "A1", "Tache"))
		require.NoError(t, f.SetCellValue(name, "A2", "ignored"))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func cellValues(row sheet.RawRow) map[string]any {
	out := make(map[string]any)
	for _, c := range row.Cells() {
		out[c.Header] = c.Value
	}
	return out
}

func TestDecodeBytes_XLSX(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Tâche", "Statut", "Progrès"},
		{"Fondations", "En cours", 40},
		{"Charpente", "", "80%"},
		{"", "", ""},
		{"Couverture", "A faire", ""},
	}, "Archive")

	table, err := NewDecoder(DefaultReaderOptions()).DecodeBytes(data, "planning.xlsx")
	require.NoError(t, err)

	assert.Equal(t, sheet.FormatXLSX, table.Format)
	assert.Equal(t, "Sheet1", table.Sheet, "only the first sheet is read")
	assert.Equal(t, []string{"Tâche", "Statut", "Progrès"}, table.Headers)
	require.Len(t, table.Rows, 4, "interior blank rows are kept")
	assert.False(t, table.Fingerprint.IsEmpty())

	assert.Equal(t, map[string]any{"Tâche": "Fondations", "Statut": "En cours", "Progrès": "40"}, cellValues(table.Rows[0]))
	assert.Equal(t, map[string]any{"Tâche": "Charpente", "Progrès": "80%"}, cellValues(table.Rows[1]), "blank cells are absent")
	assert.True(t, table.Rows[2].IsBlank())
	assert.Equal(t, "Couverture", cellValues(table.Rows[3])["Tâche"])
}

func TestDecodeBytes_ConfiguredSheet(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{{"Titre"}, {"premier"}}, "Lot 2")

	opts := DefaultReaderOptions()
	opts.Sheet = "Lot 2"
	table, err := NewDecoder(opts).DecodeBytes(data, "lots.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "Lot 2", table.Sheet)
	assert.Equal(t, []string{"Tache"}, table.Headers)
}

func TestDecodeBytes_CSV(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"comma", "Tache,Statut\nPlomberie,Terminé\n"},
		{"semicolon", "Tache;Statut\nPlomberie;Terminé\n"},
		{"tab", "Tache\tStatut\nPlomberie\tTerminé\n"},
		{"bom", "\xEF\xBB\xBFTache;Statut\r\nPlomberie;Terminé\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewDecoder(DefaultReaderOptions()).DecodeBytes([]byte(tt.content), "export.csv")
			require.NoError(t, err)
			assert.Equal(t, sheet.FormatCSV, table.Format)
			assert.Equal(t, []string{"Tache", "Statut"}, table.Headers)
			require.Len(t, table.Rows, 1)
			assert.Equal(t, map[string]any{"Tache": "Plomberie", "Statut": "Terminé"}, cellValues(table.Rows[0]))
		})
	}
}

func TestDecodeBytes_DecodeErrors(t *testing.T) {
	valid := buildWorkbook(t, [][]interface{}{{"Tache"}, {"Dalle"}})
	ole := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, bytes.Repeat([]byte{0}, 1024)...)

	tests := []struct {
		name     string
		data     []byte
		filename string
	}{
		{"plain text renamed to xlsx", []byte("this is just a note\nnot a workbook\n"), "tasks.xlsx"},
		{"truncated workbook", valid[:len(valid)/2], "tasks.xlsx"},
		{"binary garbage", []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0x00, 0x10, 0x80}, "tasks.csv"},
		{"corrupt xls container", ole, "tasks.xls"},
		{"xls container renamed to xlsx", ole, "tasks.xlsx"},
		{"empty file", nil, "tasks.xlsx"},
		{"workbook with wrong extension", valid, "tasks.csv"},
		{"only blank lines", []byte(",,\n;;\n"), "tasks.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewDecoder(DefaultReaderOptions()).DecodeBytes(tt.data, tt.filename)
			require.Error(t, err)
			assert.Nil(t, table, "no partial result on decode failure")
			assert.True(t, core.IsDecodeError(err))

			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr))
		})
	}
}

func TestDecode_MaxBytes(t *testing.T) {
	opts := DefaultReaderOptions()
	opts.MaxBytes = 8

	_, err := NewDecoder(opts).Decode(context.Background(), strings.NewReader("Tache\nune tache assez longue\n"), "big.csv")
	require.Error(t, err)
	assert.True(t, core.IsDecodeError(err))
}

func TestDecode_CancelledBeforeRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pr, pw := io.Pipe()
	defer pw.Close()

	_, err := NewDecoder(DefaultReaderOptions()).Decode(ctx, pr, "tasks.csv")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, core.IsDecodeError(err))
}

func TestDataReader_ReadData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taches.csv")
	require.NoError(t, os.WriteFile(path, []byte("Titre;Assigné\nEnduits;Karim\n"), 0o644))

	table, err := NewDataReader(path, DefaultReaderOptions()).ReadData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Titre", "Assigné"}, table.Headers)
	assert.Equal(t, 1, table.RowCount())

	_, err = NewDataReader(filepath.Join(dir, "missing.xlsx"), DefaultReaderOptions()).ReadData(context.Background())
	require.Error(t, err)
	assert.False(t, core.IsDecodeError(err), "a missing file is an I/O error, not a decode error")
}

func TestWriteTemplate_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	table, err := NewDecoder(DefaultReaderOptions()).DecodeBytes(buf.Bytes(), "modele.xlsx")
	require.NoError(t, err)
	assert.Equal(t, TemplateSheet, table.Sheet)
	assert.Equal(t, TemplateHeaders, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "En cours", cellValues(table.Rows[0])["Statut"])
}

func TestDecodeTable_SheetOption(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{{"Tâche"}, {"Ignored"}}, "Planning")

	opts := DefaultReaderOptions()
	opts.Sheet = "Missing"
	_, err := DecodeTable(context.Background(), bytes.NewReader(data), "planning.xlsx", opts)
	require.Error(t, err)
	assert.True(t, core.IsDecodeError(err))
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func TestDecodeBytes_XLS(t *testing.T) {
	data := readFixture(t, "planning.xls")

	format, err := DetectFormat(data, "planning.xls")
	require.NoError(t, err)
	assert.Equal(t, sheet.FormatXLS, format)

	table, err := NewDecoder(DefaultReaderOptions()).DecodeBytes(data, "planning.xls")
	require.NoError(t, err)

	assert.Equal(t, sheet.FormatXLS, table.Format)
	assert.Equal(t, "Planning", table.Sheet)
	assert.Equal(t, []string{"Tâche", "Statut", "Priorité", "Date fin", "Progrès"}, table.Headers)
	require.Len(t, table.Rows, 3, "the missing row in the middle is kept as a blank row")

	assert.Equal(t, map[string]any{
		"Tâche": "Coffrage", "Statut": "Terminé", "Priorité": "Haute", "Date fin": "12/02/2024", "Progrès": "100%",
	}, cellValues(table.Rows[0]))
	assert.True(t, table.Rows[1].IsBlank())
	assert.Equal(t, map[string]any{"Tâche": "Ferraillage", "Statut": "En cours", "Progrès": "40"}, cellValues(table.Rows[2]))
	assert.False(t, table.Fingerprint.IsEmpty())
}

func TestDecodeBytes_XLSSheetOption(t *testing.T) {
	data := readFixture(t, "planning.xls")

	opts := DefaultReaderOptions()
	opts.Sheet = "Archive"
	table, err := NewDecoder(opts).DecodeBytes(data, "planning.xls")
	require.NoError(t, err)
	assert.Equal(t, "Archive", table.Sheet)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, map[string]any{"Tâche": "Ancienne tâche"}, cellValues(table.Rows[0]))

	opts.Sheet = "Missing"
	_, err = NewDecoder(opts).DecodeBytes(data, "planning.xls")
	require.Error(t, err)
	assert.True(t, core.IsDecodeError(err))
}

func TestDecodeBytes_Windows1252CSV(t *testing.T) {
	data := []byte("T\xe2che;Statut\r\nCoffrage;Termin\xe9\r\n")

	table, err := NewDecoder(DefaultReaderOptions()).DecodeBytes(data, "export.csv")
	require.NoError(t, err)
	assert.Equal(t, sheet.FormatCSV, table.Format)
	assert.Equal(t, []string{"Tâche", "Statut"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, map[string]any{"Tâche": "Coffrage", "Statut": "Terminé"}, cellValues(table.Rows[0]))
}
