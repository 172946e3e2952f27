// Package importer turns uploaded spreadsheets into task records.
//
// Import never rejects a row: every field has a documented default and a
// messy cell degrades to it. The only failure is a file that cannot be
// decoded as a table at all, reported as a decode error with no partial
// result.
package importer

import (
	"context"
	"io"

	"chantier/domain/core"
	"chantier/domain/sheet"
	"chantier/domain/task"
	"chantier/internal"
	"chantier/ports"
)

// Options tunes an Importer. Zero values select the defaults.
type Options struct {
	Columns     ColumnMap
	DateLayouts []string
	// Clock supplies "today" for due date fallbacks
	Clock core.Clock
	// NewID generates record ids; it must not repeat within a batch
	NewID func() core.TaskID
}

func (o Options) withDefaults() Options {
	if len(o.Columns) == 0 {
		o.Columns = DefaultColumns
	}
	if len(o.DateLayouts) == 0 {
		o.DateLayouts = DefaultDateLayouts
	}
	if o.Clock == nil {
		o.Clock = core.SystemClock
	}
	if o.NewID == nil {
		o.NewID = core.NewTaskID
	}
	return o
}

// Result is the outcome of one import call
type Result struct {
	Tasks   []task.Record `json:"tasks"`
	Summary Summary       `json:"summary"`
}

// Importer decodes uploads and normalizes each data row into a task record.
// It holds no per-import state and is safe for concurrent use.
type Importer struct {
	decoder ports.TableDecoder
	opts    Options
	logger  *internal.Logger
}

// New creates an importer reading files through decoder
func New(decoder ports.TableDecoder, opts Options) *Importer {
	return &Importer{
		decoder: decoder,
		opts:    opts.withDefaults(),
		logger:  internal.DefaultLogger,
	}
}

// Import decodes r and returns one record per data row, in file order. The
// error is non-nil only when decoding fails (or ctx is cancelled during
// the read); the result is then nil.
func (im *Importer) Import(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	table, err := im.decoder.Decode(ctx, r, filename)
	if err != nil {
		return nil, err
	}
	return im.ImportTable(table), nil
}

// ImportTable normalizes an already decoded table
func (im *Importer) ImportTable(table *sheet.Table) *Result {
	result := im.ImportRows(table.Headers, table.Rows)
	result.Summary.Sheet = table.Sheet
	result.Summary.Fingerprint = table.Fingerprint.String()

	im.logger.Info("[Importer] Imported %d rows from %s sheet %q (fallbacks: %v, unmapped headers: %v)",
		result.Summary.Rows, table.Format, table.Sheet, result.Summary.Fallbacks, result.Summary.UnmappedHeaders)
	if n := result.Summary.FallbackCount(FieldDueDate); n > 0 {
		im.logger.Warn("[Importer] %d of %d rows had no readable due date and were set to today (rows %v)",
			n, result.Summary.Rows, result.Summary.DueDateFallbackRows)
	}
	return result
}

// ImportRows normalizes rows. headers, when given, feed the column summary.
func (im *Importer) ImportRows(headers []string, rows []sheet.RawRow) *Result {
	today := im.opts.Clock.Today()
	summary := newSummary()
	summary.Rows = len(rows)
	summary.ImportedAt = core.NewTimestamp(im.opts.Clock())
	if len(headers) > 0 {
		summary.Columns = im.opts.Columns.Plan(headers)
		summary.UnmappedHeaders = im.opts.Columns.Unmapped(headers)
	}

	tasks := make([]task.Record, 0, len(rows))
	progress := make([]float64, 0, len(rows))
	for i, row := range rows {
		record := im.normalizeRow(row, i+1, today, &summary)
		tasks = append(tasks, record)
		progress = append(progress, float64(record.Progress))
	}
	summary.computeProgressStats(progress)

	return &Result{Tasks: tasks, Summary: summary}
}

// normalizeRow builds the record for the data row at 1-based position
func (im *Importer) normalizeRow(row sheet.RawRow, position int, today string, summary *Summary) task.Record {
	cols := im.opts.Columns
	lookup := func(f Field) Resolved {
		return ResolveColumn(row, cols.Candidates(f))
	}

	title, fellBack := NormalizeTitle(lookup(FieldTitle), position)
	if fellBack {
		summary.fellBack(FieldTitle)
	}

	status, fellBack := NormalizeStatus(lookup(FieldStatus))
	if fellBack {
		summary.fellBack(FieldStatus)
	}

	priority, fellBack := NormalizePriority(lookup(FieldPriority))
	if fellBack {
		summary.fellBack(FieldPriority)
	}

	assignee, fellBack := NormalizeAssignee(lookup(FieldAssignee))
	if fellBack {
		summary.fellBack(FieldAssignee)
	}

	dueCell := lookup(FieldDueDate)
	dueDate, fellBack := NormalizeDueDate(dueCell, today, im.opts.DateLayouts)
	if fellBack {
		summary.fellBack(FieldDueDate)
		summary.DueDateFallbackRows = append(summary.DueDateFallbackRows, position)
		if dueCell.Present {
			im.logger.Debug("[Importer] Row %d: could not parse due date %q in column %q, using %s",
				position, stringify(dueCell.Value), dueCell.Header, today)
		}
	}

	progressCell := lookup(FieldProgress)
	progress, fellBack, clamped := NormalizeProgress(progressCell)
	if fellBack {
		summary.fellBack(FieldProgress)
		if progressCell.Present {
			im.logger.Debug("[Importer] Row %d: non-numeric progress %q, using 0", position, stringify(progressCell.Value))
		}
	}
	if clamped {
		summary.ClampedProgress++
	}

	record := task.Record{
		ID:          im.opts.NewID(),
		Title:       title,
		Description: NormalizeDescription(lookup(FieldDescription)),
		Status:      status,
		Priority:    priority,
		Assignee:    assignee,
		DueDate:     dueDate,
		Progress:    progress,
	}
	im.logger.Trace("[Importer] Row %d -> %+v", position, record)
	return record
}
