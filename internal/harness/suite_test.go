package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindScenarios_Directory(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata/scenarios", "books_lifecycle.yaml"),
		filepath.Join("testdata/scenarios", "rejected_writes.yaml"),
	}, paths)
}

func TestFindScenarios_File(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios/books_lifecycle.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"testdata/scenarios/books_lifecycle.yaml"}, paths)
}

func TestFindScenarios_Missing(t *testing.T) {
	_, err := FindScenarios(filepath.Join(t.TempDir(), "nope"))
	var notFound *ScenarioNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRunSuite(t *testing.T) {
	dir := t.TempDir()

	failing := `
name: failing
description: expects a record that is never created
flow:
  - op: list
    expect: { count: 1 }
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "failing.yaml"), []byte(failing), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("name: [unterminated"), 0644))

	paths := []string{
		"testdata/scenarios/books_lifecycle.yaml",
		filepath.Join(dir, "failing.yaml"),
		filepath.Join(dir, "broken.yml"),
	}

	result := RunSuite(paths)
	assert.Equal(t, 3, result.TotalScenarios)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Failures, 2)

	assert.Equal(t, "failing", result.Failures[0].Scenario)
	assert.Equal(t, []string{"flow[0] list: expected count 1, got 0"}, result.Failures[0].Errors)

	assert.Empty(t, result.Failures[1].Scenario)
	require.Len(t, result.Failures[1].Errors, 1)
	assert.Contains(t, result.Failures[1].Errors[0], "failed to load scenario")
}
