// Package cli implements the leadimport command: offline parsing of lead
// exports and direct imports into the database.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/leadboard/internal/config"
	"github.com/JonMunkholm/leadboard/internal/core"
	"github.com/JonMunkholm/leadboard/internal/leadimport"
	"github.com/JonMunkholm/leadboard/internal/logging"
)

// Execute runs the CLI application.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree. Output goes to the command's out and
// err writers so tests can capture it.
func NewRootCmd() *cobra.Command {
	var logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:          "leadimport",
		Short:        "Normalize CSV and Facebook Lead-Ads exports into leads",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is normal outside development
			_ = godotenv.Load()
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, logFormat))
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(columnsCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(statusesCmd())
	rootCmd.AddCommand(migrateCmd())

	return rootCmd
}

// parserFlags are shared by the commands that parse files.
type parserFlags struct {
	aliasFile   string
	foldHeaders bool
}

func (f *parserFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.aliasFile, "alias-file", "", "YAML file with extra header aliases and status variants (overrides IMPORT_ALIAS_FILE)")
	cmd.Flags().BoolVar(&f.foldHeaders, "fold-headers", false, "Transliterate accented headers instead of dropping accented letters")
}

// importConfig reads IMPORT_* settings and applies the command-line
// overrides.
func (f *parserFlags) importConfig(cmd *cobra.Command) (*config.ImportConfig, error) {
	cfg, err := config.LoadImport()
	if err != nil {
		return nil, err
	}
	if f.aliasFile != "" {
		cfg.AliasFile = f.aliasFile
	}
	if cmd.Flags().Changed("fold-headers") {
		cfg.TransliterateHeaders = f.foldHeaders
	}
	return cfg, nil
}

func parseCmd() *cobra.Command {
	var pf parserFlags
	var summary bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a lead export and print the normalized rows as JSON",
		Long: `Parses a CSV or Facebook Lead-Ads export without touching the database.
The output is a JSON object with the accepted rows, the number of skipped
lines and, for each skipped line, the fields it was missing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pf.importConfig(cmd)
			if err != nil {
				return err
			}
			parser, err := core.ParserFromConfig(*cfg, slog.Default())
			if err != nil {
				return err
			}

			content, err := readFile(args[0], cfg.MaxFileSize)
			if err != nil {
				return err
			}
			res := parser.Parse(content)

			if summary {
				fmt.Fprintf(cmd.OutOrStdout(), "%d valid, %d skipped\n", len(res.Rows), res.Skipped)
				writeFailed(cmd.OutOrStdout(), res.Failed)
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&summary, "summary", false, "Print counts and failed lines instead of JSON")

	return cmd
}

func columnsCmd() *cobra.Command {
	var pf parserFlags

	cmd := &cobra.Command{
		Use:   "columns <file>",
		Short: "Show which field each header column maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pf.importConfig(cmd)
			if err != nil {
				return err
			}
			parser, err := core.ParserFromConfig(*cfg, slog.Default())
			if err != nil {
				return err
			}

			content, err := readFile(args[0], cfg.MaxFileSize)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range parser.Columns(content) {
				target := "-"
				if c.Target != "" {
					target = c.Target + " (" + c.Via + ")"
				}
				fmt.Fprintf(out, "%-30s %s\n", c.Header, target)
			}
			return nil
		},
	}
	pf.register(cmd)

	return cmd
}

func importCmd() *cobra.Command {
	var (
		assignedTo     string
		organizationID string
		defaultProduct string
		defaultStatus  string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a lead export into the database",
		Long: `Parses the file and stores every accepted row in one batch.
Requires DATABASE_URL. Lines missing a required field are reported and
skipped; the rest of the file is still imported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			req := core.ImportRequest{DefaultProduct: defaultProduct}
			var err error
			if req.AssignedTo, err = parseOptionalUUID("assigned-to", assignedTo); err != nil {
				return err
			}
			if req.OrganizationID, err = parseOptionalUUID("org", organizationID); err != nil {
				return err
			}
			if defaultStatus != "" {
				st, ok := leadimport.ParseStatus(defaultStatus)
				if !ok {
					return fmt.Errorf("--default-status %q: unknown status", defaultStatus)
				}
				req.DefaultStatus = st
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			pool, err := pgxpool.New(ctx, cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			store := core.NewPgLeadStore(pool)
			if cfg.Database.EnsureSchema {
				if err := store.EnsureSchema(ctx); err != nil {
					return err
				}
			}

			parser, err := core.ParserFromConfig(cfg.Import, slog.Default())
			if err != nil {
				return err
			}
			service, err := core.NewService(store, parser, cfg.Import)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			req.FileName = args[0]
			req.Reader = f
			res, err := service.ImportLeads(ctx, req)
			if err != nil {
				slog.Error("import failed", "file", req.FileName, "error", err)
				return core.NewUserError(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
			writeFailed(cmd.OutOrStdout(), res.FailedRows)
			return nil
		},
	}
	cmd.Flags().StringVar(&assignedTo, "assigned-to", "", "UUID of the user the leads are assigned to")
	cmd.Flags().StringVar(&organizationID, "org", "", "UUID of the owning organization")
	cmd.Flags().StringVar(&defaultProduct, "default-product", "", "Product for rows without one")
	cmd.Flags().StringVar(&defaultStatus, "default-status", "", "Status label for rows without one (see the statuses command)")

	return cmd
}

func statusesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "statuses",
		Short: "List the lead status labels",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, st := range leadimport.Statuses {
				fmt.Fprintln(cmd.OutOrStdout(), st)
			}
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the lead tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pool, err := pgxpool.New(ctx, cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			if err := core.NewPgLeadStore(pool).EnsureSchema(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
			return nil
		},
	}
}

// setupContext cancels on SIGINT or SIGTERM.
func setupContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func readFile(path string, maxSize int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	content, err := core.ReadUpload(f, maxSize)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return content, nil
}

func parseOptionalUUID(flag, v string) (uuid.UUID, error) {
	if v == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--%s %q: %w", flag, v, core.ErrInvalidID)
	}
	return id, nil
}

func writeFailed(w io.Writer, rows []leadimport.FailedRow) {
	for _, row := range rows {
		fmt.Fprintf(w, "line %d: %s\n", row.LineNumber, row.Reason())
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
