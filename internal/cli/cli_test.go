package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/leadboard/internal/core"
	"github.com/JonMunkholm/leadboard/internal/leadimport"
)

const sampleCSV = "full_name;email;phone_raw;city;postal_code;produit;statut\n" +
	"Jean Dupont;jean@example.fr;0601020304;Paris;75001;;\n" +
	"Marie Curie;marie@example.fr;0602030405;Lyon;;;\n" +
	"Paul Martin;paul@example.fr;0603040506;Nice;06000;Isolation;Phoning\n"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestParseCommand_JSON(t *testing.T) {
	path := writeTemp(t, "leads.csv", sampleCSV)

	out, _, err := run(t, "parse", path)
	require.NoError(t, err)

	var res leadimport.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Jean Dupont", res.Rows[0].FullName)
	assert.Equal(t, leadimport.StatusPhoning, res.Rows[1].Status)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 3, res.Failed[0].LineNumber)
}

func TestParseCommand_Summary(t *testing.T) {
	path := writeTemp(t, "leads.csv", sampleCSV)

	out, _, err := run(t, "parse", "--summary", path)
	require.NoError(t, err)
	assert.Equal(t, "2 valid, 1 skipped\nline 3: missing required field: postal_code\n", out)
}

func TestParseCommand_AliasFile(t *testing.T) {
	csv := "full_name;email;phone_raw;city;postal_code;Numero client\n" +
		"Jean Dupont;jean@example.fr;0601020304;Paris;75001;ACME\n"
	path := writeTemp(t, "leads.csv", csv)
	aliases := writeTemp(t, "aliases.yaml", "aliases:\n  Numero client: company\n")

	out, _, err := run(t, "parse", "--alias-file", aliases, path)
	require.NoError(t, err)

	var res leadimport.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "ACME", res.Rows[0].Company)
}

func TestParseCommand_Errors(t *testing.T) {
	_, _, err := run(t, "parse", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)

	empty := writeTemp(t, "empty.csv", "\n\n")
	_, _, err = run(t, "parse", empty)
	require.ErrorIs(t, err, core.ErrEmptyFile)

	_, _, err = run(t, "parse")
	require.Error(t, err, "file argument is required")
}

func TestColumnsCommand(t *testing.T) {
	path := writeTemp(t, "leads.csv", "Nom;Adresse e-mail;alpha\n")

	out, _, err := run(t, "columns", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[2], "alpha"))
	assert.True(t, strings.HasSuffix(lines[2], " -"))
	assert.NotContains(t, lines[1], " -")
}

func TestStatusesCommand(t *testing.T) {
	out, _, err := run(t, "statuses")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(leadimport.Statuses))
	assert.Equal(t, string(leadimport.StatusNonEligible), lines[0])
}

func TestImportCommand_RejectsBadFlagsBeforeConnecting(t *testing.T) {
	path := writeTemp(t, "leads.csv", sampleCSV)

	_, _, err := run(t, "import", "--assigned-to", "bob", path)
	require.ErrorIs(t, err, core.ErrInvalidID)

	_, _, err = run(t, "import", "--default-status", "Hot", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown status")
}
