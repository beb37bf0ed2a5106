package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := Execute()
	return out.String(), err
}

func TestNumberCommand(t *testing.T) {
	out, err := execute(t, "number", "--date", "2024-03-15", "--count", "41")
	require.NoError(t, err)
	assert.Equal(t, "FAC-2024-0042\n", out)
}

func TestNumberCommand_BadDate(t *testing.T) {
	_, err := execute(t, "number", "--date", "15/03/2024", "--count", "0")
	assert.Error(t, err)
}

func TestComputeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.json")
	doc := `{"lines": [{"description": "Consulting", "quantity": 2, "unit_price": "100.00", "vat_rate": 20}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	out, err := execute(t, "compute", path, "-f", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Consulting")
	assert.Contains(t, out, "240.00")
}

func TestComputeCommand_RejectedRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines.json")
	doc := `{"lines": [{"description": "Consulting", "quantity": 1, "unit_price": 10, "vat_rate": 15}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	_, err := execute(t, "compute", path, "-f", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VAT rate not allowed")
}

func TestMigrateAndCountFromDB(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "billing.db")

	out, err := execute(t, "migrate", "--db-driver", "sqlite", "--db-dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "Schema up to date")

	out, err = execute(t, "number", "--date", "2024-01-01", "--from-db", "--db-driver", "sqlite", "--db-dsn", dsn)
	require.NoError(t, err)
	assert.Equal(t, "FAC-2024-0001\n", out)
}
