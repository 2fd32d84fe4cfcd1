package leadimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		folded string
	}{
		{"E-mail", "email", "email"},
		{"EMAIL", "email", "email"},
		{"Électronique Mail", "lectroniquemail", "electroniquemail"},
		{"Code Postal", "codepostal", "codepostal"},
		{"Téléphone", "tlphone", "telephone"},
		{"field_data", "fielddata", "fielddata"},
		{"Surface (m²)", "surfacem", "surfacem"},
		{"  ", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.in))
			assert.Equal(t, tt.folded, NormalizeHeaderFolded(tt.in))
		})
	}
}

func TestDefaultAliasTable_CoversEveryOutputField(t *testing.T) {
	covered := make(map[Field]bool)
	for key, f := range DefaultAliasTable() {
		assert.Equal(t, NormalizeHeader(key), key, "alias key %q is not normalized", key)
		covered[f] = true
	}

	for _, f := range []Field{
		FieldFullName, FieldEmail, FieldPhone, FieldCity, FieldPostalCode,
		FieldCompany, FieldProductName, FieldSurface, FieldSource, FieldStatus,
		FieldComment, FieldDateRdv, FieldHeureRdv,
	} {
		assert.True(t, covered[f], "no alias for %s", f)
	}
}

func TestDefaultAliasTable_ReturnsCopy(t *testing.T) {
	a := DefaultAliasTable()
	a["email"] = FieldCity

	f, ok := DefaultAliasTable().Lookup("email")
	require.True(t, ok)
	assert.Equal(t, FieldEmail, f)
}

func TestHeaderMatching_CaseAndAccentInsensitive(t *testing.T) {
	p := NewParser()

	for _, header := range []string{"E-mail", "EMAIL", "Électronique Mail"} {
		t.Run(header, func(t *testing.T) {
			content := "Nom;Téléphone;Ville;CP;" + header + "\n" +
				"Jean Dupont;0601020304;Lyon;69 001;jean@example.fr\n"

			res := p.Parse(content)
			require.Len(t, res.Rows, 1)
			assert.Equal(t, "jean@example.fr", res.Rows[0].Email)
			assert.Equal(t, "69001", res.Rows[0].PostalCode)
			assert.Equal(t, 0, res.Skipped)
		})
	}
}
