package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/telcheck"
	telslog "github.com/fwojciec/telcheck/slog"
	"github.com/fwojciec/telcheck/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path for run history. Set before calling Run().
	DBPath string

	// SQLite database used by the history commands.
	DB *sqlite.DB

	// Fetcher, if set, is used by check instead of launching one.
	Fetcher telcheck.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:     ctx,
		Stdout:  stdout,
		Stderr:  stderr,
		Fetcher: m.Fetcher,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("telcheck"),
		kong.Description("Crawl a website and check its tel: links against the expected phone numbers."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'telcheck --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Debug = cli.Debug
	deps.Logger = newLogger(stderr, cli.Debug, cli.Quiet)

	cmd := strings.Fields(kongCtx.Command())[0]

	if cmd == "history" || cmd == "show" || (cmd == "check" && cli.Check.Record) {
		path := m.DBPath
		if cli.DB != "" {
			path = cli.DB
		}

		m.DB = sqlite.NewDB(path)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set TELCHECK_DB or --db to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", path, err)
		}
		defer m.Close()

		var runs telcheck.RunService = sqlite.NewRunService(m.DB)
		if cli.Debug {
			runs = telslog.NewLoggingRunService(runs, deps.Logger)
		}
		deps.Runs = runs
	}

	return kongCtx.Run(deps)
}

// newLogger returns a text logger on stderr. --debug lowers the level to
// Debug and --quiet raises it to Error.
func newLogger(w io.Writer, debug, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case debug:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if path := os.Getenv("TELCHECK_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "telcheck.db"
	}
	dir := filepath.Join(home, ".telcheck")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "telcheck.db")
}
