package leadimport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTables_Overrides(t *testing.T) {
	doc := `
aliases:
  "Numéro client": company
  Téléphone fixe: phone_raw
statuses:
  En attente: "À rappeler"
  chaud: "Éligible"
`
	aliases, statuses, err := ReadTables(strings.NewReader(doc))
	require.NoError(t, err)

	f, ok := aliases.Lookup(NormalizeHeader("Numéro client"))
	require.True(t, ok)
	assert.Equal(t, FieldCompany, f)

	f, ok = aliases.Lookup("tlphonefixe")
	require.True(t, ok)
	assert.Equal(t, FieldPhone, f)

	// defaults survive the merge
	f, ok = aliases.Lookup("email")
	require.True(t, ok)
	assert.Equal(t, FieldEmail, f)

	st, ok := statuses.Normalize("EN ATTENTE")
	require.True(t, ok)
	assert.Equal(t, StatusARappeler, st)

	st, ok = statuses.Normalize("Chaud")
	require.True(t, ok)
	assert.Equal(t, StatusEligible, st)
}

func TestReadTables_Empty(t *testing.T) {
	aliases, statuses, err := ReadTables(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultAliasTable(), aliases)
	assert.Equal(t, DefaultStatusTable(), statuses)
}

func TestReadTables_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"unknown field", "aliases:\n  client: customer\n", "unknown field"},
		{"empty header", "aliases:\n  \"--\": email\n", "empty after normalization"},
		{"unknown status", "statuses:\n  chaud: Hot\n", "unknown label"},
		{"bad yaml", "aliases: [unterminated\n", "decode tables file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadTables(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aliases:\n  ref: company\n"), 0o600))

	aliases, _, err := LoadTables(path)
	require.NoError(t, err)
	assert.Equal(t, FieldCompany, aliases["ref"])

	_, _, err = LoadTables(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
