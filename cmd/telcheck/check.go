package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/telcheck"
	"github.com/fwojciec/telcheck/crawl"
	"github.com/fwojciec/telcheck/fs"
	"github.com/fwojciec/telcheck/goquery"
	telhttp "github.com/fwojciec/telcheck/http"
	"github.com/fwojciec/telcheck/report"
	"github.com/fwojciec/telcheck/rod"
	telslog "github.com/fwojciec/telcheck/slog"
	"github.com/fwojciec/telcheck/yaml"
)

// ErrCheckFailed is returned when the report contains validation errors.
var ErrCheckFailed = errors.New("check failed")

// Fetcher engines.
const (
	EngineBrowser = "browser"
	EngineHTTP    = "http"
)

const defaultTimeout = 30 * time.Second

// checkSettings is the merged result of flags, config file and defaults.
type checkSettings struct {
	URL              string
	Phones           []string
	Scope            telcheck.Scope
	RecordEmptyPages bool
	Mode             report.Mode
	Format           string
	Engine           string
	UserAgent        string
	Blocklist        telcheck.Blocklist
	Concurrency      int
	MaxPages         int
	Timeout          time.Duration
}

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	s, err := c.settings()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", telcheck.ErrorMessage(err))
		return err
	}

	w, summary, err := c.writer(s, deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", telcheck.ErrorMessage(err))
		return err
	}
	if summary != nil {
		defer func() { _ = summary.Abort() }()
	}

	fetcher, err := newFetcher(s, deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: failed to create fetcher: %s\n", telcheck.ErrorMessage(err))
		return err
	}
	defer func() { _ = fetcher.Close() }()

	var links telcheck.LinkQuery = goquery.NewLinkQuery()
	if deps.Debug {
		fetcher = telslog.NewLoggingFetcher(fetcher, deps.Logger)
		links = telslog.NewLoggingLinkQuery(links, deps.Logger)
	}

	engine := &crawl.Engine{
		Fetcher:          fetcher,
		Links:            links,
		Logger:           deps.Logger,
		Concurrency:      s.Concurrency,
		MaxPages:         s.MaxPages,
		RecordEmptyPages: s.RecordEmptyPages,
	}

	fmt.Fprintln(deps.Stderr, s.Scope.Description())

	startedAt := time.Now()
	result, err := engine.Crawl(deps.Ctx, s.URL, s.Scope)
	if err != nil {
		if result == nil || deps.Ctx.Err() == nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", telcheck.ErrorMessage(err))
			return err
		}
		deps.Logger.Warn("crawl interrupted, reporting partial result", "err", err)
	}

	verdict := report.Validate(result, s.Phones, s.Mode)
	if _, err := w.Write(verdict); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if summary != nil {
		if err := summary.Commit(); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		fmt.Fprintf(deps.Stderr, "Summary written to %s\n", summary.Path())
	}

	if c.Record {
		if err := recordRun(deps, verdict, startedAt); err != nil {
			fmt.Fprintf(deps.Stderr, "error: failed to record run: %s\n", telcheck.ErrorMessage(err))
			return err
		}
	}

	if !verdict.Passed() {
		return ErrCheckFailed
	}
	return nil
}

// settings merges flags over the config file over defaults. Bool flags can
// only switch a setting on.
func (c *CheckCmd) settings() (*checkSettings, error) {
	file := &yaml.File{}
	if path := yaml.FindFile(c.Config); path != "" {
		f, err := yaml.Load(path)
		if err != nil {
			return nil, err
		}
		file = f
	}

	s := &checkSettings{
		URL:         firstNonEmpty(c.URL, file.URL),
		Format:      firstNonEmpty(c.Format, file.Format, report.FormatText),
		Engine:      strings.ToLower(firstNonEmpty(c.Engine, file.Engine, EngineBrowser)),
		UserAgent:   firstNonEmpty(c.UserAgent, file.UserAgent, telcheck.DefaultUserAgent),
		Concurrency: firstPositive(c.Concurrency, file.Concurrency, 1),
		MaxPages:    firstPositive(c.MaxPages, file.MaxPages, 0),
		Timeout:     firstPositive(c.Timeout, file.Timeout, defaultTimeout),
	}

	if s.URL == "" {
		return nil, telcheck.Errorf(telcheck.EINVALID, "homepage URL required (--url, HOMEPAGE_URL or url in config)")
	}

	for _, p := range c.Phones {
		if p = strings.TrimSpace(p); p != "" {
			s.Phones = append(s.Phones, p)
		}
	}
	if len(s.Phones) == 0 {
		s.Phones = file.PhoneNumbers
	}
	if len(s.Phones) == 0 {
		return nil, telcheck.Errorf(telcheck.EINVALID, "at least one phone number required (--phone, PHONE_NUMBERS or phone_numbers in config)")
	}

	if c.Concurrency < 0 || c.MaxPages < 0 || c.Timeout < 0 {
		return nil, telcheck.Errorf(telcheck.EINVALID, "concurrency, max pages and timeout must not be negative")
	}

	s.Scope = telcheck.ScopeFromFlags(
		c.HomepageOnly || deref(file.HomepageOnly),
		c.TopLevelOnly || deref(file.TopLevelOnly),
	)
	s.RecordEmptyPages = c.RecordEmptyPages || deref(file.RecordEmptyPages)

	mode, err := report.ParseMode(file.Mode)
	if err != nil {
		return nil, err
	}
	if c.AllowEmpty {
		mode = report.ModeAllowEmpty
	}
	s.Mode = mode

	s.Blocklist = append(file.Blocklist(), c.Block...)

	if s.Engine != EngineBrowser && s.Engine != EngineHTTP {
		return nil, telcheck.Errorf(telcheck.EINVALID, "unknown engine %q (use %s or %s)", s.Engine, EngineBrowser, EngineHTTP)
	}

	return s, nil
}

// writer returns the report writer for stdout and, with --summary, the
// file that receives a Markdown copy once the report is complete.
func (c *CheckCmd) writer(s *checkSettings, deps *Dependencies) (report.Writer, *fs.File, error) {
	w, err := report.NewWriter(s.Format, deps.Stdout)
	if err != nil {
		return nil, nil, err
	}
	if c.Summary == "" {
		return w, nil, nil
	}

	f, err := fs.Create(c.Summary)
	if err != nil {
		return nil, nil, fmt.Errorf("creating summary file: %w", err)
	}
	return report.NewMultiWriter(w, report.NewMarkdownWriter(f)), f, nil
}

func newFetcher(s *checkSettings, deps *Dependencies) (telcheck.Fetcher, error) {
	if deps.Fetcher != nil {
		return deps.Fetcher, nil
	}
	if s.Engine == EngineHTTP {
		return telhttp.NewFetcher(
			telhttp.WithTimeout(s.Timeout),
			telhttp.WithUserAgent(s.UserAgent),
		), nil
	}
	f, err := rod.NewFetcher(
		rod.WithFetchTimeout(s.Timeout),
		rod.WithUserAgent(s.UserAgent),
		rod.WithBlocklist(s.Blocklist),
		rod.WithLogger(deps.Logger),
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// recordRun stores the verdict and reports whether the site's tel: links
// changed since the previous run for the same base URL and scope.
func recordRun(deps *Dependencies, v *report.Verdict, startedAt time.Time) error {
	if deps.Runs == nil {
		return telcheck.Errorf(telcheck.EINTERNAL, "run history is not configured")
	}
	ctx := context.WithoutCancel(deps.Ctx)
	result := v.Result

	previous, err := deps.Runs.FindRuns(ctx, telcheck.RunFilter{
		BaseURL: &result.BaseURL,
		Scope:   &result.Scope,
		Limit:   1,
	})
	if err != nil {
		return err
	}

	run := &telcheck.Run{
		BaseURL:   result.BaseURL,
		Scope:     result.Scope,
		Passed:    v.Passed(),
		Pages:     result.Len(),
		Visited:   result.Visited,
		Failed:    len(result.Failures),
		Errors:    len(v.Errors),
		Digest:    crawl.Fingerprint(result),
		StartedAt: startedAt,
		Links:     make([]telcheck.RunLink, 0, len(v.Checks)),
	}
	for _, c := range v.Checks {
		run.Links = append(run.Links, telcheck.RunLink{
			PageURL: c.PageURL,
			Href:    c.Href,
			Text:    c.Text,
			Valid:   c.Valid,
		})
	}

	if err := deps.Runs.CreateRun(ctx, run); err != nil {
		return err
	}
	fmt.Fprintf(deps.Stderr, "Recorded run %s\n", run.ID)

	if len(previous) > 0 {
		if previous[0].Digest == run.Digest {
			fmt.Fprintf(deps.Stderr, "tel: links unchanged since run %s\n", previous[0].ID)
		} else {
			fmt.Fprintf(deps.Stderr, "tel: links changed since run %s\n", previous[0].ID)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive[T int | time.Duration](values ...T) T {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func deref(b *bool) bool {
	return b != nil && *b
}
