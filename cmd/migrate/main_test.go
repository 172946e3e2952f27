package main

import (
	"os"
	"path/filepath"
	"testing"

	"chantier/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindSpreadsheets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "2024"), 0o755))
	for _, name := range []string{"villa-lyon.xlsx", "2024/ecole.CSV", "gymnase.xls", "notes.txt", "2024/plan.pdf"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	files, err := findSpreadsheets(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "villa-lyon.xlsx"),
		filepath.Join(dir, "2024", "ecole.CSV"),
		filepath.Join(dir, "gymnase.xls"),
	}, files)
}

func TestProjectIDFromPath(t *testing.T) {
	assert.Equal(t, core.ProjectID("villa-lyon"), projectIDFromPath("/data/villa-lyon.xlsx"))
	assert.Equal(t, core.ProjectID("ecole.v2"), projectIDFromPath("ecole.v2.csv"))
}
