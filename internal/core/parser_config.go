package core

import (
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/leadboard/internal/config"
	"github.com/JonMunkholm/leadboard/internal/leadimport"
)

// ParserFromConfig builds the lead parser described by cfg: alias and
// status overrides from cfg.AliasFile, and accent folding of headers when
// cfg.TransliterateHeaders is set. log receives malformed field_data
// warnings; nil discards them.
func ParserFromConfig(cfg config.ImportConfig, log *slog.Logger) (*leadimport.Parser, error) {
	var opts []leadimport.Option

	if cfg.AliasFile != "" {
		aliases, statuses, err := leadimport.LoadTables(cfg.AliasFile)
		if err != nil {
			return nil, fmt.Errorf("alias file %s: %w", cfg.AliasFile, err)
		}
		opts = append(opts, leadimport.WithAliases(aliases), leadimport.WithStatuses(statuses))
	}
	if cfg.TransliterateHeaders {
		opts = append(opts, leadimport.WithHeaderNormalizer(leadimport.NormalizeHeaderFolded))
	}
	if log != nil {
		opts = append(opts, leadimport.WithLogger(log))
	}

	return leadimport.NewParser(opts...), nil
}
