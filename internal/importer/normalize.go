package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"chantier/domain/core"
	"chantier/domain/task"

	"github.com/xuri/excelize/v2"
)

// Keyword tables are matched against folded text (lower case, no accents) and
// checked in order, so "in progress" never reaches the done keywords. A keyword
// only matches at the start of a word: "incomplet" is not "complet".
var (
	statusKeywords = []struct {
		status   task.Status
		keywords []string
	}{
		{task.StatusInProgress, []string{"progress", "cours", "encours", "ongoing", "underway", "doing", "wip", "curso", "proceso", "arbeit"}},
		{task.StatusReview, []string{"review", "revision", "verif", "controle", "validation", "a valider", "pruefung", "prufung"}},
		{task.StatusDone, []string{"done", "termine", "fini", "complet", "acheve", "valide", "closed", "terminad", "hecho", "erledigt", "fertig"}},
		{task.StatusTodo, []string{"todo", "to do", "a faire", "pending", "not started", "non commence", "attente", "planned", "planifie", "pendiente", "offen"}},
	}

	priorityKeywords = []struct {
		priority task.Priority
		keywords []string
	}{
		{task.PriorityHigh, []string{"high", "haute", "haut", "urgent", "eleve", "critical", "critique", "alta", "hoch"}},
		{task.PriorityLow, []string{"low", "faible", "basse", "bas", "baja", "niedrig"}},
		{task.PriorityMedium, []string{"medium", "moyen", "normal", "media", "mittel"}},
	}
)

// Serial day counts outside this window are not treated as spreadsheet dates
const (
	minSerialDate = 20000 // 1954-10-03
	maxSerialDate = 80000 // 2119-01-10
)

// DefaultDateLayouts are tried in order. Slashed and dotted dates are day
// first as typed on French sites, whatever the year width. Dashed two-digit
// years are month first as rendered by spreadsheet short date formats.
var DefaultDateLayouts = []string{
	core.DateLayout,
	"2006-1-2",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/1/2",
	"2/1/2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2-1-2006",
	"2.1.2006",
	"1-2-06",
	"2/1/06",
	"2/1/06 15:04",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// stringify renders a raw cell value as text
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case time.Time:
		return val.Format(core.DateLayout)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// NormalizeTitle returns the cell text, or "Task <n>" for the 1-based row
// position when the cell is absent or blank.
func NormalizeTitle(r Resolved, position int) (string, bool) {
	if r.Present {
		if title := strings.TrimSpace(stringify(r.Value)); title != "" {
			return title, false
		}
	}
	return fmt.Sprintf("Task %d", position), true
}

// NormalizeDescription returns the cell text or the empty string
func NormalizeDescription(r Resolved) string {
	if !r.Present {
		return ""
	}
	return strings.TrimSpace(stringify(r.Value))
}

// ClassifyStatus maps free text to a status by keyword. The
// second result is false when no keyword matched and todo was assumed.
func ClassifyStatus(text string) (task.Status, bool) {
	folded := fold(text)
	for _, entry := range statusKeywords {
		if hasWordPrefix(folded, entry.keywords) {
			return entry.status, true
		}
	}
	return task.StatusTodo, false
}

// NormalizeStatus classifies the cell, defaulting to todo
func NormalizeStatus(r Resolved) (task.Status, bool) {
	text := "todo"
	if r.Present {
		text = stringify(r.Value)
	}
	status, matched := ClassifyStatus(text)
	return status, !r.Present || !matched
}

// ClassifyPriority maps free text to a priority, defaulting to medium
func ClassifyPriority(text string) (task.Priority, bool) {
	folded := fold(text)
	for _, entry := range priorityKeywords {
		if hasWordPrefix(folded, entry.keywords) {
			return entry.priority, true
		}
	}
	return task.PriorityMedium, false
}

// NormalizePriority classifies the cell, defaulting to medium
func NormalizePriority(r Resolved) (task.Priority, bool) {
	if !r.Present {
		return task.PriorityMedium, true
	}
	priority, matched := ClassifyPriority(stringify(r.Value))
	return priority, !matched
}

// NormalizeAssignee returns the cell text or the unassigned sentinel
func NormalizeAssignee(r Resolved) (string, bool) {
	if r.Present {
		if assignee := strings.TrimSpace(stringify(r.Value)); assignee != "" {
			return assignee, false
		}
	}
	return task.UnassignedAssignee, true
}

// NormalizeDueDate formats the cell as YYYY-MM-DD. Anything it cannot read
// becomes today; the second result reports that fallback.
func NormalizeDueDate(r Resolved, today string, layouts []string) (string, bool) {
	if !r.Present {
		return today, true
	}
	if due, ok := parseDate(r.Value, layouts); ok {
		return due.Format(core.DateLayout), false
	}
	return today, true
}

func parseDate(v any, layouts []string) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return time.Time{}, false
		}
		return val, true
	case float64:
		return serialDate(val)
	case float32:
		return serialDate(float64(val))
	case int:
		return serialDate(float64(val))
	case int64:
		return serialDate(float64(val))
	}

	text := strings.TrimSpace(stringify(v))
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return serialDate(f)
	}
	return time.Time{}, false
}

// serialDate decodes a spreadsheet day count (1900 date system)
func serialDate(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || serial < minSerialDate || serial > maxSerialDate {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeProgress coerces the cell to an integer percentage in [0,100].
// Text may carry a trailing "%" and use "," or "." as decimal separator.
// It reports whether the value fell back to 0 and whether it was clamped.
func NormalizeProgress(r Resolved) (progress int, fellBack bool, clamped bool) {
	if !r.Present {
		return 0, true, false
	}
	value, ok := parseProgress(r.Value)
	if !ok {
		return 0, true, false
	}

	rounded := math.Round(value)
	switch {
	case rounded < 0:
		return 0, false, true
	case rounded > 100:
		return 100, false, true
	}
	return int(rounded), false, false
}

func parseProgress(v any) (float64, bool) {
	var value float64
	switch val := v.(type) {
	case float64:
		value = val
	case float32:
		value = float64(val)
	case int:
		value = float64(val)
	case int64:
		value = float64(val)
	case bool, time.Time:
		return 0, false
	default:
		text := strings.TrimSpace(stringify(val))
		text = strings.TrimSpace(strings.TrimSuffix(text, "%"))
		text = strings.ReplaceAll(text, ",", ".")
		if text == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		value = f
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
