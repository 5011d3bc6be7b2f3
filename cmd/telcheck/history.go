package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/telcheck"
)

const timeLayout = "2006-01-02 15:04:05"

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := telcheck.RunFilter{Limit: c.Limit, Offset: c.Offset}
	if c.URL != "" {
		filter.BaseURL = &c.URL
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", telcheck.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded. Use 'telcheck check --record' to record one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  %s  %d page(s)  %d error(s)\n",
			r.ID, r.StartedAt.Local().Format(timeLayout), status(r.Passed), r.BaseURL, r.Visited, r.Errors)
	}

	return nil
}

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", telcheck.ErrorMessage(err))
		return err
	}

	if c.Format == "json" {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	fmt.Fprintf(deps.Stdout, "Run:      %s\n", run.ID)
	fmt.Fprintf(deps.Stdout, "URL:      %s\n", run.BaseURL)
	fmt.Fprintf(deps.Stdout, "Scope:    %s\n", run.Scope)
	fmt.Fprintf(deps.Stdout, "Started:  %s\n", run.StartedAt.Local().Format(timeLayout))
	fmt.Fprintf(deps.Stdout, "Duration: %s\n", run.FinishedAt.Sub(run.StartedAt).Round(10*time.Millisecond))
	fmt.Fprintf(deps.Stdout, "Status:   %s\n", status(run.Passed))
	fmt.Fprintf(deps.Stdout, "Pages:    %d visited, %d with links, %d failed\n", run.Visited, run.Pages, run.Failed)
	fmt.Fprintf(deps.Stdout, "Digest:   %s\n", run.Digest)

	if len(run.Links) == 0 {
		fmt.Fprintln(deps.Stdout, "\nNo tel: links recorded.")
		return nil
	}

	fmt.Fprintln(deps.Stdout, "\nLinks:")
	page := ""
	for _, l := range run.Links {
		if l.PageURL != page {
			page = l.PageURL
			fmt.Fprintf(deps.Stdout, "🔍 %s\n", page)
		}
		mark := "✅"
		if !l.Valid {
			mark = "❌"
		}
		fmt.Fprintf(deps.Stdout, "  %s %s (%s)\n", mark, l.Href, l.Text)
	}

	return nil
}

func status(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "FAILED"
}
