package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(append([]string{"--db", db}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestLogStatsAndReport(t *testing.T) {
	// GIVEN: A fresh database
	db := filepath.Join(t.TempDir(), "wt.db")

	// WHEN: Logging a day and a vacation range
	out, err := run(t, db, "log", "2025-03-10", "09:00", "17:00", "--break", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged 7.50h on 2025-03-10")

	out, err = run(t, db, "absence", "2025-03-14", "2025-03-17", "--type", "vacation", "--compensate", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 2 vacation day(s): 2025-03-14, 2025-03-17")
	assert.Contains(t, out, "Compensation: -4h")

	// THEN: Stats, report, and absences reflect them
	out, err = run(t, db, "stats", "--today", "2025-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Overtime as of 2025-03-10")
	assert.Contains(t, out, "-0.50h")

	out, err = run(t, db, "report", "2025-03")
	require.NoError(t, err)
	assert.Contains(t, out, "Report 2025-03")
	assert.Contains(t, out, "152.00h")
	assert.Contains(t, out, "-144.50h")

	out, err = run(t, db, "absences", "--year", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "2 used, 28 of 30 remaining")
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	blob := filepath.Join(dir, "backup.json")

	_, err := run(t, src, "log", "2025-03-10", "09:00", "17:00", "--break", "30")
	require.NoError(t, err)

	_, err = run(t, src, "export", blob)
	require.NoError(t, err)
	data, err := os.ReadFile(blob)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version": "1.0"`)

	out, err := run(t, dst, "import", blob)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 entries")

	out, err = run(t, dst, "report", "2025-03")
	require.NoError(t, err)
	assert.Contains(t, out, "7.50h")
}

func TestInvalidArguments(t *testing.T) {
	db := filepath.Join(t.TempDir(), "wt.db")

	tests := []struct {
		name string
		args []string
	}{
		{"bad clock", []string{"log", "2025-03-10", "9am", "17:00"}},
		{"bad month", []string{"report", "March"}},
		{"bad absence type", []string{"absence", "2025-03-14", "--type", "party"}},
		{"work as absence", []string{"absence", "2025-03-14", "--type", "work"}},
		{"missing file", []string{"import", filepath.Join(t.TempDir(), "none.json")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, db, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestFailingCommandClosesStore(t *testing.T) {
	// GIVEN: A command that opens the database and then fails
	// WHEN: Running it
	// THEN: The error is returned and the store has been released

	a := &app{}
	db := filepath.Join(t.TempDir(), "wt.db")
	var stdout, stderr bytes.Buffer

	err := executeApp(a, []string{"--db", db, "absence", "2025-03-14", "--type", "party"}, &stdout, &stderr)
	require.Error(t, err)
	assert.NotNil(t, a.service, "store was opened")
	assert.Nil(t, a.store)

	// the same file opens again for the next command
	out, err := run(t, db, "stats", "--today", "2025-03-14")
	require.NoError(t, err)
	assert.Contains(t, out, "Overtime as of 2025-03-14")
}
