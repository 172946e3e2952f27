package excel

import (
	"fmt"

	"chantier/domain/core"
)

// DecodeError reports that an upload could not be read as tabular data.
// It matches core.ErrDecode with errors.Is.
type DecodeError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *DecodeError) Error() string {
	name := e.Filename
	if name == "" {
		name = "upload"
	}
	if e.Err != nil {
		return fmt.Sprintf("cannot read %s as a spreadsheet: %s: %v", name, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot read %s as a spreadsheet: %s", name, e.Reason)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{core.ErrDecode, e.Err}
	}
	return []error{core.ErrDecode}
}

func newDecodeError(filename, reason string, err error) *DecodeError {
	return &DecodeError{Filename: filename, Reason: reason, Err: err}
}
