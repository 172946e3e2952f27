package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"chantier/domain/core"
	"chantier/domain/sheet"
	"chantier/internal"

	"github.com/extrame/xls"
	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
	mimeOLE  = "application/x-ole-storage"
	mimeText = "text/plain"
)

// maxXLSColumns is the BIFF8 column limit
const maxXLSColumns = 256

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decoder turns uploaded bytes into a sheet.Table
type Decoder struct {
	opts   ReaderOptions
	logger *internal.Logger
}

// NewDecoder creates a decoder with the given options
func NewDecoder(opts ReaderOptions) *Decoder {
	if len(opts.CSVDelimiters) == 0 {
		opts.CSVDelimiters = DefaultReaderOptions().CSVDelimiters
	}
	return &Decoder{opts: opts, logger: internal.DefaultLogger}
}

// Decode reads r fully and decodes it. Reading is the only blocking step;
// if ctx is cancelled first the read is abandoned and ctx.Err() returned.
func (d *Decoder) Decode(ctx context.Context, r io.Reader, filename string) (*sheet.Table, error) {
	data, err := d.readAll(ctx, r, filename)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return d.DecodeBytes(data, filename)
}

// DecodeTable decodes r with a one-off decoder
func DecodeTable(ctx context.Context, r io.Reader, filename string, opts ReaderOptions) (*sheet.Table, error) {
	return NewDecoder(opts).Decode(ctx, r, filename)
}

type readResult struct {
	data []byte
	err  error
}

func (d *Decoder) readAll(ctx context.Context, r io.Reader, filename string) ([]byte, error) {
	if d.opts.MaxBytes > 0 {
		r = io.LimitReader(r, d.opts.MaxBytes+1)
	}

	done := make(chan readResult, 1)
	go func() {
		data, err := io.ReadAll(r)
		done <- readResult{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", res.err)
		}
		if d.opts.MaxBytes > 0 && int64(len(res.data)) > d.opts.MaxBytes {
			return nil, newDecodeError(filename, fmt.Sprintf("file exceeds %d bytes", d.opts.MaxBytes), nil)
		}
		return res.data, nil
	}
}

// DecodeBytes decodes an in-memory upload. The filename extension states the
// expected container and the sniffed content has to agree with it, so a text
// file renamed to .xlsx is rejected instead of being read as CSV.
func (d *Decoder) DecodeBytes(data []byte, filename string) (*sheet.Table, error) {
	start := time.Now()
	format, err := DetectFormat(data, filename)
	if err != nil {
		d.logger.Warn("[DataReader] Rejected %q: %v", filename, err)
		return nil, err
	}

	var table *sheet.Table
	switch format {
	case sheet.FormatXLSX:
		table, err = d.decodeXLSX(data, filename)
	case sheet.FormatXLS:
		table, err = d.decodeXLS(data, filename)
	case sheet.FormatCSV:
		table, err = d.decodeCSV(data, filename)
	default:
		err = newDecodeError(filename, fmt.Sprintf("unsupported format %s", format), core.ErrUnsupportedFormat)
	}
	if err != nil {
		d.logger.Warn("[DataReader] Failed to decode %q: %v", filename, err)
		return nil, err
	}

	table.Fingerprint = core.NewHash(data)
	d.logger.Debug("[DataReader] %s decoded in %.2fms (%d columns, %d rows, fingerprint %s)",
		strings.ToUpper(string(format)), float64(time.Since(start).Nanoseconds())/1e6,
		len(table.Headers), len(table.Rows), table.Fingerprint.Short())
	return table, nil
}

// DetectFormat sniffs the content and checks it against the file extension
func DetectFormat(data []byte, filename string) (sheet.Format, error) {
	if len(data) == 0 {
		return "", newDecodeError(filename, "file is empty", core.ErrEmptyTable)
	}

	mt := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case mimeIs(mt, mimeXLSX):
		if ext != "" && ext != ".xlsx" && ext != ".xlsm" {
			return "", newDecodeError(filename, fmt.Sprintf("workbook content does not match extension %s", ext), core.ErrUnsupportedFormat)
		}
		return sheet.FormatXLSX, nil
	case mimeIs(mt, mimeXLS) || mimeIs(mt, mimeOLE):
		if ext != "" && ext != ".xls" {
			return "", newDecodeError(filename, fmt.Sprintf("legacy workbook content does not match extension %s", ext), core.ErrUnsupportedFormat)
		}
		return sheet.FormatXLS, nil
	case mimeIs(mt, mimeText):
		switch ext {
		case "", ".csv", ".tsv", ".txt":
		default:
			return "", newDecodeError(filename, fmt.Sprintf("text content does not match extension %s", ext), core.ErrUnsupportedFormat)
		}
		return sheet.FormatCSV, nil
	}

	return "", newDecodeError(filename, fmt.Sprintf("unrecognised content type %s", mt.String()), core.ErrUnsupportedFormat)
}

// mimeIs walks the detected type and its parents
func mimeIs(mt *mimetype.MIME, expected string) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(expected) {
			return true
		}
	}
	return false
}

// decodeXLSX reads the first or the configured worksheet
func (d *Decoder) decodeXLSX(data []byte, filename string) (*sheet.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newDecodeError(filename, "failed to open workbook", err)
	}
	defer f.Close()

	sheetName := d.opts.Sheet
	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, newDecodeError(filename, "workbook has no worksheets", core.ErrEmptyTable)
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, newDecodeError(filename, fmt.Sprintf("failed to read sheet %q", sheetName), err)
	}

	table, err := processRows(rows, filename)
	if err != nil {
		return nil, err
	}
	table.Sheet = sheetName
	table.Format = sheet.FormatXLSX
	return table, nil
}

// decodeXLS reads a legacy BIFF workbook. Rows go through processRows so the
// header and blank cell rules match xlsx.
func (d *Decoder) decodeXLS(data []byte, filename string) (table *sheet.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			table, err = nil, newDecodeError(filename, "corrupt .xls workbook", fmt.Errorf("%v", r))
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, newDecodeError(filename, "failed to open .xls workbook", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, newDecodeError(filename, "workbook has no worksheets", core.ErrEmptyTable)
	}

	ws := d.xlsSheet(wb)
	if ws == nil {
		return nil, newDecodeError(filename, fmt.Sprintf("failed to read sheet %q", d.opts.Sheet), nil)
	}

	table, err = processRows(xlsRows(ws), filename)
	if err != nil {
		return nil, err
	}
	table.Sheet = ws.Name
	table.Format = sheet.FormatXLS
	return table, nil
}

func (d *Decoder) xlsSheet(wb *xls.WorkBook) *xls.WorkSheet {
	if d.opts.Sheet == "" {
		return wb.GetSheet(0)
	}
	for i := 0; i < wb.NumSheets(); i++ {
		if ws := wb.GetSheet(i); ws != nil && ws.Name == d.opts.Sheet {
			return ws
		}
	}
	return nil
}

// xlsRows flattens a worksheet into string rows. Missing rows stay blank; the
// first non-blank row fixes how many columns later rows are read for.
func xlsRows(ws *xls.WorkSheet) [][]string {
	rows := make([][]string, 0, int(ws.MaxRow)+1)
	width := 0
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := ws.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}

		limit := maxXLSColumns
		if width > 0 {
			limit = width
		}
		cells := make([]string, limit)
		last := -1
		for c := 0; c < limit; c++ {
			cells[c] = row.Col(c)
			if strings.TrimSpace(cells[c]) != "" {
				last = c
			}
		}
		cells = cells[:last+1]
		if width == 0 {
			width = len(cells)
		}
		rows = append(rows, cells)
	}
	return rows
}

// decodeCSV reads delimited text, sniffing the delimiter from the header line.
// Text that is not UTF-8 is read as Windows-1252, the default of French Excel
// CSV exports.
func (d *Decoder) decodeCSV(data []byte, filename string) (*sheet.Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, newDecodeError(filename, "text is neither UTF-8 nor Windows-1252", err)
		}
		d.logger.Debug("[DataReader] %q is not UTF-8, reading it as Windows-1252", filename)
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data, d.opts.CSVDelimiters)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, newDecodeError(filename, "failed to parse delimited text", err)
	}

	table, err := processRows(rows, filename)
	if err != nil {
		return nil, err
	}
	table.Format = sheet.FormatCSV
	return table, nil
}

func sniffDelimiter(data []byte, candidates []rune) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, bestCount := candidates[0], 0
	for _, c := range candidates {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

// processRows converts raw string rows into a table. The first row is the
// header; blank cells are left out of their row so they read as absent.
func processRows(rows [][]string, filename string) (*sheet.Table, error) {
	// The header is the first non-blank row; trailing blank rows carry no data
	for len(rows) > 0 && isBlankLine(rows[0]) {
		rows = rows[1:]
	}
	for len(rows) > 0 && isBlankLine(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, newDecodeError(filename, "no header row found", core.ErrEmptyTable)
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]sheet.RawRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var rowData sheet.RawRow
		for j, cell := range row {
			if j >= len(headers) || headers[j] == "" {
				continue
			}
			if value := strings.TrimSpace(cell); value != "" {
				rowData.Append(headers[j], value)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &sheet.Table{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

func isBlankLine(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// DataReader reads a spreadsheet from disk
type DataReader struct {
	filePath string
	decoder  *Decoder
}

// NewDataReader creates a reader for an .xlsx, .xls or .csv file on disk
func NewDataReader(filePath string, opts ReaderOptions) *DataReader {
	return &DataReader{filePath: filePath, decoder: NewDecoder(opts)}
}

// ReadData opens the file and decodes it
func (r *DataReader) ReadData(ctx context.Context) (*sheet.Table, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", r.filePath, err)
	}
	defer f.Close()

	return r.decoder.Decode(ctx, f, filepath.Base(r.filePath))
}
