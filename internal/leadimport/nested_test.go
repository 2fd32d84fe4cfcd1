package leadimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldData(t *testing.T) {
	t.Run("values array", func(t *testing.T) {
		entries, ok := ParseFieldData(`[{"name":"first_name","values":["Marie"]},{"name":"last_name","values":["Dupont"]}]`)
		require.True(t, ok)
		require.Len(t, entries, 2)
		assert.Equal(t, "first_name", entries[0].EntryName())
		assert.Equal(t, "Marie", entries[0].Text())
	})

	t.Run("doubled quotes recovered", func(t *testing.T) {
		entries, ok := ParseFieldData(`"[{""name"":""email"",""values"":[""a@b.fr""]}]"`)
		require.True(t, ok)
		require.Len(t, entries, 1)
		assert.Equal(t, "a@b.fr", entries[0].Text())
	})

	t.Run("unrecoverable", func(t *testing.T) {
		_, ok := ParseFieldData(`[{"name":`)
		assert.False(t, ok)
	})

	t.Run("not an array", func(t *testing.T) {
		_, ok := ParseFieldData(`{"name":"email"}`)
		assert.False(t, ok)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := ParseFieldData("   ")
		assert.False(t, ok)
	})
}

func TestFieldDataEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    FieldDataEntry
		wantName string
		wantText string
	}{
		{
			name:     "multiple values joined",
			entry:    FieldDataEntry{Name: "travaux", Values: []any{"Isolation", " ", "PAC"}},
			wantName: "travaux",
			wantText: "Isolation, PAC",
		},
		{
			name:     "single value",
			entry:    FieldDataEntry{Key: "city", Value: "Nantes"},
			wantName: "city",
			wantText: "Nantes",
		},
		{
			name:     "numeric value",
			entry:    FieldDataEntry{Label: "surface", Value: float64(95.5)},
			wantName: "surface",
			wantText: "95.5",
		},
		{
			name:     "values win over value",
			entry:    FieldDataEntry{Name: "x", Value: "ignored", Values: []any{"kept"}},
			wantName: "x",
			wantText: "kept",
		},
		{
			name:     "nothing",
			entry:    FieldDataEntry{},
			wantName: "",
			wantText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantName, tt.entry.EntryName())
			assert.Equal(t, tt.wantText, tt.entry.Text())
		})
	}
}
