package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/stoptracker/cmd/stopctl/cmd"
	"github.com/MrJamesThe3rd/stoptracker/internal/workday"
)

func setup(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("CACHE_PATH", filepath.Join(dir, "cache.db"))
	t.Setenv("REMOTE_DRIVER", "none")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SCOPE", "cli-test")

	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := cmd.NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)

	err := root.Execute()

	return out.String(), err
}

func TestAddAndList(t *testing.T) {
	setup(t)

	out, err := run(t, "add", "--date", "2024-01-15", "--stops", "120", "--notes", "rainy")
	require.NoError(t, err)
	assert.Contains(t, out, "total 232.60")

	out, err = run(t, "add", "--date", "16/01/2024", "--stops", "90", "--extra", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "total 183.20")

	out, err = run(t, "list", "--sort", "stops", "--order", "asc")
	require.NoError(t, err)
	assert.Contains(t, out, "232.60")
	assert.Contains(t, out, "rainy")
	assert.Contains(t, out, "Page 1 of 1, 2 workdays")
	assert.Less(t, bytes.Index([]byte(out), []byte("16/01/2024")), bytes.Index([]byte(out), []byte("15/01/2024")))
}

func TestAdd_Invalid(t *testing.T) {
	type testCase struct {
		name    string
		args    []string
		wantErr error
	}

	tests := []testCase{
		{name: "MissingStops", args: []string{"add", "--date", "2024-01-15"}, wantErr: workday.ErrMissingStops},
		{name: "NegativeStops", args: []string{"add", "--stops", "-3"}, wantErr: workday.ErrInvalidStops},
		{name: "NegativeExtra", args: []string{"add", "--stops", "3", "--extra", "-1"}, wantErr: workday.ErrInvalidExtra},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t)

			_, err := run(t, tt.args...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRatePresetAppliesToNewDays(t *testing.T) {
	setup(t)

	out, err := run(t, "rate", "preset", "125 Stops")
	require.NoError(t, err)
	assert.Contains(t, out, "2.10")

	out, err = run(t, "add", "--date", "2024-01-15", "--stops", "130")
	require.NoError(t, err)
	assert.Contains(t, out, "total 270.50")

	_, err = run(t, "rate", "preset", "nope")
	assert.Error(t, err)
}

func TestReconcile(t *testing.T) {
	setup(t)

	_, err := run(t, "add", "--date", "2024-01-15", "--stops", "100")
	require.NoError(t, err)

	out, err := run(t, "reconcile", "--start", "2024-01-15", "--end", "2024-01-21", "--reported", "100", "--invoice", "198")
	require.NoError(t, err)
	assert.Contains(t, out, "match")
	assert.Contains(t, out, "100.0%")

	out, err = run(t, "reconcile", "--start", "2024-01-15", "--end", "2024-01-21", "--reported", "110")
	require.NoError(t, err)
	assert.Contains(t, out, "under")
	assert.Contains(t, out, "-10")
}

func TestExportBackupRestore(t *testing.T) {
	dir := setup(t)

	_, err := run(t, "add", "--date", "2024-01-15", "--stops", "100")
	require.NoError(t, err)

	_, err = run(t, "expense", "add", "--category", "Fuel", "--amount", "40", "--date", "2024-01-15")
	require.NoError(t, err)

	out, err := run(t, "export", "--out", filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Contains(t, out, "stops-data-")

	backupPath := filepath.Join(dir, "backup.json")

	out, err = run(t, "backup", backupPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 workdays and 1 expenses")

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logs"`)

	t.Setenv("SCOPE", "restored")

	out, err = run(t, "restore", backupPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 1 workdays and 1 expenses")

	out, err = run(t, "expense", "list", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "40.00")
}

func TestImport(t *testing.T) {
	dir := setup(t)

	path := filepath.Join(dir, "days.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Stops,Extra\n15/01/2024,100,0\n16/01/2024,80,2.5\n"), 0o600))

	out, err := run(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 workdays")

	_, err = run(t, "import", path)
	assert.ErrorContains(t, err, "2 rows fall on logged dates")

	out, err = run(t, "import", "--force", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 workdays")
}

func TestToken(t *testing.T) {
	setup(t)

	_, err := run(t, "token")
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s3cret")

	out, err := run(t, "token", "--scope", "driver-1")
	require.NoError(t, err)
	assert.Regexp(t, `^[\w-]+\.[\w-]+\.[\w-]+\n$`, out)
}
