package excel

// ReaderOptions holds configuration for decoding uploaded tables
type ReaderOptions struct {
	// Sheet selects a worksheet by name. Empty means the first sheet.
	Sheet string `json:"sheet"`
	// MaxBytes caps how much of the upload is read. Zero disables the cap.
	MaxBytes int64 `json:"max_bytes"`
	// CSVDelimiters are the candidates tried when sniffing a CSV header line
	CSVDelimiters []rune `json:"csv_delimiters"`
}

// DefaultReaderOptions returns sensible defaults for spreadsheet uploads
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		MaxBytes: 10 * 1024 * 1024, // 10MB
		// French spreadsheet exports use ';' because ',' is the decimal separator
		CSVDelimiters: []rune{',', ';', '\t'},
	}
}
