// sheetsql runs SQL queries over spreadsheet workbooks and delimited files.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/nao1215/sheetsql"
	"github.com/nao1215/sheetsql/internal/cli"
	"github.com/nao1215/sheetsql/internal/config"
	"github.com/nao1215/sheetsql/internal/logger"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// flags holds the values of the global command line flags.
type flags struct {
	configFile string
	engine     string
	query      string
	format     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "sheetsql [paths...]",
		Short: "Query spreadsheets with SQL",
		Long: `sheetsql loads xlsx workbooks, csv/tsv/ltsv files and parquet files
(optionally compressed with gz, bz2, xz or zst) and runs read-only SQL
over their sheets. Each sheet is a table named workbook_sheet.

Run one query:
  sheetsql -q "SELECT * FROM sales_q1 LIMIT 5" sales.xlsx

Start the interactive shell:
  sheetsql data/`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), out, f, args)
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVarP(&f.configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&f.engine, "engine", "e", "", "execution engine: native or sqlite")
	rootCmd.Flags().StringVarP(&f.query, "query", "q", "", "run one statement and exit")
	rootCmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: table, csv, json or yaml")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "tables [paths...]",
		Short: "List the sheets of the given files as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(cmd.Context(), out, f, args)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sheetsql %s (built %s)\n", version, buildDate)
		},
	})

	return rootCmd
}

// session is a loaded configuration, logger and builder.
type session struct {
	cfg     *config.Config
	log     *logger.Logger
	builder *sheetsql.DBBuilder
}

func openSession(ctx context.Context, f *flags, args []string) (*session, error) {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	cfg.Merge(f.engine, args)
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Paths) == 0 {
		return nil, errors.New("no input files: pass paths as arguments or set paths in the config file")
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}

	builder, err := sheetsql.NewBuilder().
		AddPaths(cfg.Paths...).
		WithEngine(cfg.Engine).
		WithLogger(log.Zap()).
		Build(ctx)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	log.Debug("inputs loaded", "paths", len(cfg.Paths), "engine", cfg.Engine)
	return &session{cfg: cfg, log: log, builder: builder}, nil
}

func runQuery(ctx context.Context, out io.Writer, f *flags, args []string) error {
	s, err := openSession(ctx, f, args)
	if err != nil {
		return err
	}
	defer func() { _ = s.log.Sync() }()

	db, err := s.builder.Open(ctx)
	if err != nil {
		return err
	}
	defer closeDB(db, s.log)

	if f.query != "" {
		table, err := cli.Query(ctx, db, f.query)
		if err != nil {
			return err
		}
		return cli.Write(out, s.cfg.Output.Format, table)
	}

	repl := cli.NewREPL(s.cfg, s.log, db, s.builder.Tables)
	return repl.Run(ctx)
}

func runTables(ctx context.Context, out io.Writer, f *flags, args []string) error {
	s, err := openSession(ctx, f, args)
	if err != nil {
		return err
	}
	defer func() { _ = s.log.Sync() }()

	tables, err := s.builder.Tables(ctx)
	if err != nil {
		return err
	}
	return cli.WriteTables(out, tables)
}

func closeDB(db *sql.DB, log *logger.Logger) {
	if err := db.Close(); err != nil {
		log.Warn("failed to close database", "error", err)
	}
}
