// Package cli provides the interactive shell and result printing for sheetsql
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/nao1215/sheetsql"
	"github.com/nao1215/sheetsql/internal/config"
	"github.com/nao1215/sheetsql/internal/logger"
	"gopkg.in/yaml.v3"
)

const continuationPrompt = "      -> "

// TablesFunc lists the loaded sheets.
type TablesFunc func(ctx context.Context) ([]sheetsql.TableInfo, error)

// lineReader is the part of *readline.Instance the loop needs.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// REPL implements the Read-Eval-Print Loop for sheetsql
type REPL struct {
	config *config.Config
	log    *logger.Logger
	db     *sql.DB
	tables TablesFunc
	out    io.Writer
}

// NewREPL creates a new REPL instance
func NewREPL(cfg *config.Config, log *logger.Logger, db *sql.DB, tables TablesFunc) *REPL {
	return &REPL{
		config: cfg,
		log:    log,
		db:     db,
		tables: tables,
		out:    os.Stdout,
	}
}

// Run starts the REPL loop on the terminal.
func (r *REPL) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.config.REPL.Prompt,
		HistoryFile:     historyFile(r.config.REPL.HistoryFile),
		InterruptPrompt: "^C",
		EOFPrompt:       ".exit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem(".tables"),
			readline.PcItem(".help"),
			readline.PcItem(".exit"),
			readline.PcItem("SELECT"),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	r.out = rl.Stdout()

	fmt.Fprintln(r.out, "sheetsql interactive shell. Enter .help for usage hints.")
	return r.loop(ctx, rl)
}

func (r *REPL) loop(ctx context.Context, rl lineReader) error {
	defer rl.Close()

	var buffer strings.Builder
	for {
		if buffer.Len() > 0 {
			rl.SetPrompt(continuationPrompt)
		} else {
			rl.SetPrompt(r.config.REPL.Prompt)
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			continue
		} else if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buffer.Len() == 0 && strings.HasPrefix(line, ".") {
			if r.dotCommand(ctx, line) == commandExit {
				return nil
			}
			continue
		}

		if buffer.Len() > 0 {
			buffer.WriteByte(' ')
		}
		buffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			continue
		}

		statement := strings.TrimSpace(strings.TrimRight(buffer.String(), "; "))
		buffer.Reset()
		if statement == "" {
			continue
		}
		if err := r.Execute(ctx, statement); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
	}
}

type commandResult int

const (
	commandOK commandResult = iota
	commandExit
)

func (r *REPL) dotCommand(ctx context.Context, line string) commandResult {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ".exit", ".quit":
		return commandExit
	case ".help":
		r.printHelp()
	case ".tables":
		if err := r.printTables(ctx); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
	case ".mode":
		if len(fields) != 2 {
			fmt.Fprintf(r.out, "current mode: %s\n", r.config.Output.Format)
			break
		}
		mode := strings.ToLower(fields[1])
		previous := r.config.Output.Format
		r.config.Output.Format = mode
		if err := r.config.Validate(); err != nil {
			r.config.Output.Format = previous
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
	default:
		fmt.Fprintf(r.out, "Unknown command: %s\n", fields[0])
	}
	return commandOK
}

// Execute runs one statement and prints its result.
func (r *REPL) Execute(ctx context.Context, statement string) error {
	r.log.Debug("executing statement", "statement", statement)

	table, err := Query(ctx, r.db, statement)
	if err != nil {
		return err
	}
	return Write(r.out, r.config.Output.Format, table)
}

func (r *REPL) printTables(ctx context.Context) error {
	tables, err := r.tables(ctx)
	if err != nil {
		return err
	}
	return WriteTables(r.out, tables)
}

// WriteTables prints a sheet listing as YAML.
func WriteTables(w io.Writer, tables []sheetsql.TableInfo) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tables); err != nil {
		return err
	}
	return enc.Close()
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.out, `Statements end with ';' and may span several lines.
Tables are named workbook_sheet, or by sheet name when it is unique.

  .tables          list loaded sheets and their columns
  .mode [format]   show or set the output format (table, csv, json, yaml)
  .help            show this help
  .exit            leave the shell
`)
}

// historyFile returns the configured history path, defaulting to ~/.sheetsql_history.
func historyFile(configured string) string {
	if configured != "" {
		return configured
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sheetsql_history")
}
