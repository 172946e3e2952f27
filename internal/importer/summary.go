package importer

import (
	"sort"

	"chantier/domain/core"

	"github.com/montanaflynn/stats"
)

// Summary describes how an import went, for operators reviewing the result
type Summary struct {
	Rows            int              `json:"rows"`
	ImportedAt      core.Timestamp   `json:"importedAt"`
	Sheet           string           `json:"sheet,omitempty"`
	Fingerprint     string           `json:"fingerprint,omitempty"`
	Columns         map[Field]string `json:"columns"`
	UnmappedHeaders []string         `json:"unmappedHeaders,omitempty"`
	// Fallbacks counts rows per field where a default replaced the cell
	Fallbacks       map[Field]int `json:"fallbacks"`
	ClampedProgress int           `json:"clampedProgress"`
	ProgressMean    float64       `json:"progressMean"`
	ProgressMedian  float64       `json:"progressMedian"`
	// DueDateFallbackRows lists 1-based data row positions whose due date became today
	DueDateFallbackRows []int `json:"dueDateFallbackRows,omitempty"`
}

func newSummary() Summary {
	return Summary{
		Columns:   make(map[Field]string),
		Fallbacks: make(map[Field]int),
	}
}

// FallbackCount returns how many rows used the default for f
func (s Summary) FallbackCount(f Field) int {
	return s.Fallbacks[f]
}

// FallbackFields lists fields with at least one fallback, sorted by name
func (s Summary) FallbackFields() []Field {
	fields := make([]Field, 0, len(s.Fallbacks))
	for f, n := range s.Fallbacks {
		if n > 0 {
			fields = append(fields, f)
		}
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

func (s *Summary) fellBack(f Field) {
	s.Fallbacks[f]++
}

// computeProgressStats fills mean and median; both stay 0 for an empty import
func (s *Summary) computeProgressStats(progress []float64) {
	if len(progress) == 0 {
		return
	}
	data := stats.Float64Data(progress)
	if mean, err := data.Mean(); err == nil {
		s.ProgressMean, _ = stats.Round(mean, 1)
	}
	if median, err := data.Median(); err == nil {
		s.ProgressMedian = median
	}
}
