package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/telcheck"
	main "github.com/fwojciec/telcheck/cmd/telcheck"
	"github.com/fwojciec/telcheck/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sitePages is a two-page site: the homepage links to /contact.
var sitePages = map[string]string{
	"https://example.com/": `<html><body>
		<a href="tel:+18885551234">Call us</a>
		<a href="/contact">Contact</a>
		<a href="https://other.test/">Elsewhere</a>
	</body></html>`,
	"https://example.com/contact": `<html><body>
		<a href="tel:1-888-555-1234">Sales</a>
	</body></html>`,
}

func siteFetcher(pages map[string]string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(_ context.Context, url string) (string, error) {
			html, ok := pages[url]
			if !ok {
				return "", errors.New("HTTP 404 for " + url)
			}
			return html, nil
		},
		CloseFn: func() error { return nil },
	}
}

// emptyConfig returns the path of an empty config file so that no
// .telcheck.yaml from the environment is picked up.
func emptyConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	return path
}

func newCheckDeps(fetcher telcheck.Fetcher) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:     context.Background(),
		Stdout:  stdout,
		Stderr:  stderr,
		Fetcher: fetcher,
	}, stdout, stderr
}

func TestCheckCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("passes when every link matches", func(t *testing.T) {
		t.Parallel()

		deps, stdout, stderr := newCheckDeps(siteFetcher(sitePages))
		cmd := &main.CheckCmd{
			URL:    "https://example.com/",
			Phones: []string{"888-555-1234", "18885551234"},
			Config: emptyConfig(t),
		}

		err := cmd.Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "🔍 URL: https://example.com/\n")
		assert.Contains(t, out, "🔍 URL: https://example.com/contact\n")
		assert.Contains(t, out, "✅ PASSED: 2 tel: link(s) valid across 2 page(s) visited")
		assert.Contains(t, stderr.String(), "Crawling the entire website")
	})

	t.Run("fails on an unexpected number", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newCheckDeps(siteFetcher(sitePages))
		cmd := &main.CheckCmd{
			URL:    "https://example.com/",
			Phones: []string{"18005550000"},
			Config: emptyConfig(t),
		}

		err := cmd.Run(deps)

		require.ErrorIs(t, err, main.ErrCheckFailed)
		assert.Contains(t, stdout.String(), "❌ ERROR: Invalid tel: link found on https://example.com/contact")
		assert.Contains(t, stdout.String(), "❌ FAILED: 2 error(s)")
	})

	t.Run("homepage only skips internal pages", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		fetcher := siteFetcher(sitePages)
		next := fetcher.FetchFn
		fetcher.FetchFn = func(ctx context.Context, url string) (string, error) {
			fetched = append(fetched, url)
			return next(ctx, url)
		}

		deps, _, stderr := newCheckDeps(fetcher)
		cmd := &main.CheckCmd{
			URL:          "https://example.com/",
			Phones:       []string{"18885551234"},
			HomepageOnly: true,
			Config:       emptyConfig(t),
		}

		require.NoError(t, cmd.Run(deps))
		assert.Equal(t, []string{"https://example.com/"}, fetched)
		assert.Contains(t, stderr.String(), "Running in homepage-only mode")
	})

	t.Run("no links fails unless allowed", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{"https://example.com/": "<html><body><p>Nothing</p></body></html>"}

		deps, stdout, _ := newCheckDeps(siteFetcher(pages))
		cmd := &main.CheckCmd{URL: "https://example.com/", Phones: []string{"18885551234"}, Config: emptyConfig(t)}
		require.ErrorIs(t, cmd.Run(deps), main.ErrCheckFailed)
		assert.Contains(t, stdout.String(), "No tel: links found on the entire website.")

		deps, stdout, _ = newCheckDeps(siteFetcher(pages))
		cmd.AllowEmpty = true
		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "✅ PASSED")
	})

	t.Run("writes JSON", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newCheckDeps(siteFetcher(sitePages))
		cmd := &main.CheckCmd{
			URL:    "https://example.com/",
			Phones: []string{"18885551234"},
			Format: "json",
			Config: emptyConfig(t),
		}

		require.NoError(t, cmd.Run(deps))

		var got struct {
			Passed bool `json:"passed"`
		}
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
		assert.True(t, got.Passed)
	})

	t.Run("writes a Markdown summary file", func(t *testing.T) {
		t.Parallel()

		summary := filepath.Join(t.TempDir(), "summary.md")
		deps, _, _ := newCheckDeps(siteFetcher(sitePages))
		cmd := &main.CheckCmd{
			URL:     "https://example.com/",
			Phones:  []string{"18885551234"},
			Summary: summary,
			Config:  emptyConfig(t),
		}

		require.NoError(t, cmd.Run(deps))

		data, err := os.ReadFile(summary)
		require.NoError(t, err)
		assert.Contains(t, string(data), "# telcheck Report")
	})

	t.Run("reads settings from config file", func(t *testing.T) {
		t.Parallel()

		config := filepath.Join(t.TempDir(), "telcheck.yaml")
		require.NoError(t, os.WriteFile(config, []byte(`
url: https://example.com/
phone_numbers:
  - "18885551234"
homepage_only: true
format: markdown
`), 0o644))

		deps, stdout, _ := newCheckDeps(siteFetcher(sitePages))
		cmd := &main.CheckCmd{Config: config}

		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "# telcheck Report")
		assert.NotContains(t, stdout.String(), "https://example.com/contact")
	})

	t.Run("flags override config file", func(t *testing.T) {
		t.Parallel()

		config := filepath.Join(t.TempDir(), "telcheck.yaml")
		require.NoError(t, os.WriteFile(config, []byte(`
url: https://wrong.test/
phone_numbers: ["18005550000"]
`), 0o644))

		deps, stdout, _ := newCheckDeps(siteFetcher(sitePages))
		cmd := &main.CheckCmd{
			URL:    "https://example.com/",
			Phones: []string{"18885551234"},
			Config: config,
		}

		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "✅ PASSED")
	})

	t.Run("requires URL and phone numbers", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newCheckDeps(siteFetcher(sitePages))
		cmd := &main.CheckCmd{Phones: []string{"18885551234"}, Config: emptyConfig(t)}
		err := cmd.Run(deps)
		assert.Equal(t, telcheck.EINVALID, telcheck.ErrorCode(err))
		assert.Contains(t, stderr.String(), "homepage URL required")

		deps, _, stderr = newCheckDeps(siteFetcher(sitePages))
		cmd = &main.CheckCmd{URL: "https://example.com/", Phones: []string{" "}, Config: emptyConfig(t)}
		err = cmd.Run(deps)
		assert.Equal(t, telcheck.EINVALID, telcheck.ErrorCode(err))
		assert.Contains(t, stderr.String(), "at least one phone number required")
	})

	t.Run("rejects unknown engine and format", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newCheckDeps(siteFetcher(sitePages))
		cmd := &main.CheckCmd{URL: "https://example.com/", Phones: []string{"18885551234"}, Engine: "curl", Config: emptyConfig(t)}
		assert.Equal(t, telcheck.EINVALID, telcheck.ErrorCode(cmd.Run(deps)))

		deps, _, _ = newCheckDeps(siteFetcher(sitePages))
		cmd = &main.CheckCmd{URL: "https://example.com/", Phones: []string{"18885551234"}, Format: "xml", Config: emptyConfig(t)}
		assert.Equal(t, telcheck.EINVALID, telcheck.ErrorCode(cmd.Run(deps)))
	})

	t.Run("lists failed pages without failing the check", func(t *testing.T) {
		t.Parallel()

		pages := map[string]string{
			"https://example.com/": `<a href="tel:+18885551234">Call</a><a href="/missing">Missing</a>`,
		}
		deps, stdout, _ := newCheckDeps(siteFetcher(pages))
		cmd := &main.CheckCmd{URL: "https://example.com/", Phones: []string{"18885551234"}, Config: emptyConfig(t)}

		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "⚠️ https://example.com/missing: HTTP 404 for https://example.com/missing")
	})

	t.Run("records the run and compares with the previous one", func(t *testing.T) {
		t.Parallel()

		var created *telcheck.Run
		runs := &mock.RunService{
			FindRunsFn: func(_ context.Context, filter telcheck.RunFilter) ([]*telcheck.Run, error) {
				require.NotNil(t, filter.BaseURL)
				assert.Equal(t, "https://example.com/", *filter.BaseURL)
				require.NotNil(t, filter.Scope)
				assert.Equal(t, telcheck.ScopeFullSite, *filter.Scope)
				assert.Equal(t, 1, filter.Limit)
				return []*telcheck.Run{{ID: "prev-1", Digest: "0000000000000000"}}, nil
			},
			CreateRunFn: func(_ context.Context, run *telcheck.Run) error {
				run.ID = "run-2"
				created = run
				return nil
			},
		}

		deps, _, stderr := newCheckDeps(siteFetcher(sitePages))
		deps.Runs = runs
		cmd := &main.CheckCmd{
			URL:    "https://example.com/",
			Phones: []string{"18885551234"},
			Record: true,
			Config: emptyConfig(t),
		}

		require.NoError(t, cmd.Run(deps))
		require.NotNil(t, created)
		assert.True(t, created.Passed)
		assert.Equal(t, 2, created.Visited)
		assert.Len(t, created.Links, 2)
		assert.NotEmpty(t, created.Digest)
		assert.Contains(t, stderr.String(), "Recorded run run-2")
		assert.Contains(t, stderr.String(), "tel: links changed since run prev-1")
	})

	t.Run("reports a partial result when interrupted", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		fetcher := &mock.Fetcher{
			FetchFn: func(ctx context.Context, _ string) (string, error) {
				cancel()
				<-ctx.Done()
				return "", ctx.Err()
			},
			CloseFn: func() error { return nil },
		}

		deps, stdout, _ := newCheckDeps(fetcher)
		deps.Ctx = ctx
		cmd := &main.CheckCmd{URL: "https://example.com/", Phones: []string{"18885551234"}, Config: emptyConfig(t)}

		err := cmd.Run(deps)

		require.ErrorIs(t, err, main.ErrCheckFailed)
		assert.Contains(t, stdout.String(), "❌ No tel: links found on the entire website.")
	})
}
