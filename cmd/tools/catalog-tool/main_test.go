package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"mergington-activities/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefaultCatalog(t *testing.T) string {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "activities.json")
	require.NoError(t, reg.Save(path))
	return path
}

func TestRun_Validate(t *testing.T) {
	path := writeDefaultCatalog(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"validate", "-path", path}, &out))
	assert.Contains(t, out.String(), "22 activities")
}

func TestRun_ValidateRejectsBadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1","activities":[{"name":"X"}]}`), 0o600))

	err := run([]string{"validate", "-path", path}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog validation failed")
}

func TestRun_List(t *testing.T) {
	path := writeDefaultCatalog(t)

	var out bytes.Buffer
	require.NoError(t, run([]string{"list", "-path", path}, &out))
	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "Chess Club")
}

func TestRun_Add(t *testing.T) {
	path := writeDefaultCatalog(t)

	var out bytes.Buffer
	err := run([]string{
		"add", "-path", path,
		"-name", "Chess Club 2",
		"-description", "Second chess group",
		"-schedule", "Mondays, 4:00 PM",
		"-max", "8",
		"-participants", "a@mergington.edu, b@mergington.edu",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Added activity: Chess Club 2")

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.Activities, 23)
	added := reg.Activities[22]
	assert.Equal(t, "Chess Club 2", added.Name)
	assert.Equal(t, []string{"a@mergington.edu", "b@mergington.edu"}, added.Participants)
}

func TestRun_AddCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.json")

	err := run([]string{
		"add", "-path", path,
		"-name", "Knitting Circle",
		"-description", "Yarn",
		"-schedule", "Tuesdays",
		"-max", "5",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.Activities, 1)
	assert.Equal(t, []string{}, reg.Activities[0].Participants)
}

func TestRun_AddRejectsInvalid(t *testing.T) {
	path := writeDefaultCatalog(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing name", []string{"-description", "d", "-schedule", "s", "-max", "3"}},
		{"zero capacity", []string{"-name", "N", "-description", "d", "-schedule", "s"}},
		{"bad participant", []string{"-name", "N", "-description", "d", "-schedule", "s", "-max", "3", "-participants", "nope"}},
		{"duplicate", []string{"-name", "Chess Club", "-description", "d", "-schedule", "s", "-max", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"add", "-path", path}, tt.args...)
			require.Error(t, run(args, &bytes.Buffer{}))
		})
	}
}

func TestRun_Update(t *testing.T) {
	path := writeDefaultCatalog(t)

	require.NoError(t, run([]string{
		"update", "-path", path, "-name", "Chess Club", "-field", "max_participants", "-value", "20",
	}, &bytes.Buffer{}))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, 20, reg.Activities[0].MaxParticipants)

	err = run([]string{"update", "-path", path, "-name", "Nonexistent Club", "-field", "schedule", "-value", "x"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = run([]string{"update", "-path", path, "-name", "Chess Club", "-field", "color", "-value", "x"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestRun_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, run([]string{"frobnicate"}, &out))
	assert.Contains(t, out.String(), "Usage: catalog-tool")
}
