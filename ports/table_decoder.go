package ports

import (
	"context"
	"io"

	"chantier/domain/sheet"
)

// TableDecoder reads an uploaded file as a table. It fails only when the
// content is not tabular at all.
type TableDecoder interface {
	Decode(ctx context.Context, r io.Reader, filename string) (*sheet.Table, error)
}
