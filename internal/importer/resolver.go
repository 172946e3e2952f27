package importer

import (
	"strings"

	"chantier/domain/sheet"
)

// Resolved is the outcome of a column lookup. Present is false when no
// header of the row matched any candidate.
type Resolved struct {
	Header  string
	Value   any
	Present bool
}

// Absent is the "not found" lookup result
var Absent = Resolved{}

// ResolveColumn finds the cell for a field. Candidates are tried in order and,
// for each candidate, headers are scanned in column order; the first match
// wins, so an earlier candidate beats a later one even when the later one
// would match an earlier column.
func ResolveColumn(row sheet.RawRow, candidates []string) Resolved {
	cells := row.Cells()
	for _, candidate := range candidates {
		c := fold(candidate)
		if c == "" {
			continue
		}
		for _, cell := range cells {
			if headerMatches(fold(cell.Header), c) {
				return Resolved{Header: cell.Header, Value: cell.Value, Present: true}
			}
		}
	}
	return Absent
}

// headerMatches applies containment in both directions on folded text, so a
// short header ("Prio") matches a long candidate and vice versa. Blank
// headers never match.
func headerMatches(header, candidate string) bool {
	if header == "" || candidate == "" {
		return false
	}
	return strings.Contains(header, candidate) || strings.Contains(candidate, header)
}

// matchHeader is headerMatches on unfolded inputs
func matchHeader(header, candidate string) bool {
	return headerMatches(fold(header), fold(candidate))
}
