package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/telcheck"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Debug  bool

	// Fetcher, if set, replaces the fetcher check would otherwise create.
	Fetcher telcheck.Fetcher
	Runs    telcheck.RunService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Debug bool   `help:"Log every fetch, query and store call"`
	Quiet bool   `short:"q" help:"Only log errors"`
	DB    string `name:"db" help:"Run history database path (default: $TELCHECK_DB or ~/.telcheck/telcheck.db)"`

	Check   CheckCmd   `cmd:"" help:"Crawl a site and validate its tel: links"`
	History HistoryCmd `cmd:"" help:"List recorded check runs"`
	Show    ShowCmd    `cmd:"" help:"Show a recorded check run"`
}

// CheckCmd is the "check" subcommand. Flags left at their zero value fall
// back to the config file, then to the built-in defaults.
type CheckCmd struct {
	URL              string        `short:"u" env:"HOMEPAGE_URL" help:"Homepage URL to start crawling from"`
	Phones           []string      `name:"phone" short:"p" env:"PHONE_NUMBERS" sep:"," help:"Expected phone number (repeatable or comma-separated)"`
	HomepageOnly     bool          `env:"HOMEPAGE_ONLY" help:"Check only the homepage"`
	TopLevelOnly     bool          `env:"TOP_LEVEL_ONLY" help:"Follow only links with at most one path segment"`
	RecordEmptyPages bool          `help:"List visited pages that have no tel: links"`
	AllowEmpty       bool          `help:"Pass when no tel: links are found"`
	Format           string        `short:"f" help:"Report format: text, markdown or json"`
	Summary          string        `help:"Also write a Markdown report to this file"`
	Engine           string        `short:"e" help:"Page fetcher: browser or http"`
	UserAgent        string        `help:"User-Agent sent with every request"`
	Block            []string      `help:"Extra request URL substring to block (repeatable)"`
	Concurrency      int           `short:"c" help:"Pages fetched at once (default 1)"`
	MaxPages         int           `help:"Stop after this many pages (default unlimited)"`
	Timeout          time.Duration `short:"t" help:"Per-page load timeout (default 30s)"`
	Config           string        `help:"YAML config file (default: ./.telcheck.yaml or ~/.telcheck.yaml)"`
	Record           bool          `help:"Store the run in the history database"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	URL    string `short:"u" help:"Only runs for this base URL"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of runs"`
	Offset int    `help:"Skip this many runs"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID     string `arg:"" help:"Run ID"`
	Format string `short:"f" default:"text" enum:"text,json" help:"Output format"`
}
