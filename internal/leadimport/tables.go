package leadimport

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// tablesFile is the on-disk shape of an alias/status override file:
//
//	aliases:
//	  numeroclient: company
//	statuses:
//	  en attente: "À rappeler"
type tablesFile struct {
	Aliases  map[string]string `yaml:"aliases"`
	Statuses map[string]string `yaml:"statuses"`
}

// LoadTables reads an override file and merges it over the default tables.
// Alias keys are passed through NormalizeHeader and status keys through
// CleanStatusText, so the file may use natural spellings.
func LoadTables(path string) (AliasTable, StatusTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open tables file: %w", err)
	}
	defer f.Close()

	return ReadTables(f)
}

// ReadTables is LoadTables over an io.Reader.
func ReadTables(r io.Reader) (AliasTable, StatusTable, error) {
	var tf tablesFile
	if err := yaml.NewDecoder(r).Decode(&tf); err != nil && err != io.EOF {
		return nil, nil, fmt.Errorf("decode tables file: %w", err)
	}

	aliases := DefaultAliasTable()
	for header, key := range tf.Aliases {
		field, ok := ParseField(key)
		if !ok {
			return nil, nil, fmt.Errorf("alias %q: unknown field %q", header, key)
		}
		norm := NormalizeHeader(header)
		if norm == "" {
			return nil, nil, fmt.Errorf("alias %q: empty after normalization", header)
		}
		aliases[norm] = field
	}

	statuses := DefaultStatusTable()
	for text, label := range tf.Statuses {
		st, ok := ParseStatus(label)
		if !ok {
			return nil, nil, fmt.Errorf("status %q: unknown label %q", text, label)
		}
		statuses[CleanStatusText(text)] = st
	}

	return aliases, statuses, nil
}
