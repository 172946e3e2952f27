package container

import (
	"context"
	"strings"
	"testing"

	"chantier/app"
	"chantier/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8080", GinMode: "test"},
		Import: config.ImportConfig{
			MaxUploadMB:       1,
			AllowedExtensions: []string{".csv"},
		},
	}
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestInitInMemory_WiresImportPipeline(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)
	c.InitInMemory()
	defer c.Close()

	require.NotNil(t, c.ImportService)
	outcome, err := c.ImportService.Import(context.Background(), app.ImportRequest{
		ProjectID: "p1",
		Filename:  "planning.csv",
		Size:      -1,
		Reader:    strings.NewReader("Titre,Assigné\nCloisons,Nadia\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Imported)

	tasks, err := c.TaskStore.GetTasks(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Nadia", tasks[0].Assignee)
}

func TestInitWithDatabase_RejectsNil(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)
	assert.Error(t, c.InitWithDatabase(context.Background(), nil))
}
