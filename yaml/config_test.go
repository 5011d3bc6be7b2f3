package yaml_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/telcheck"
	"github.com/fwojciec/telcheck/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("decodes every key", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "telcheck.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
url: https://site.test/
phone_numbers:
  - "+18885551234"
  - "+15557654321"
top_level_only: true
record_empty_pages: true
mode: allow-empty
format: markdown
engine: http
user_agent: custom/1.0
block:
  - hotjar.com
concurrency: 4
max_pages: 200
timeout: 45s
`), 0o600))

		f, err := yaml.Load(path)

		require.NoError(t, err)
		assert.Equal(t, "https://site.test/", f.URL)
		assert.Equal(t, []string{"+18885551234", "+15557654321"}, f.PhoneNumbers)
		assert.Nil(t, f.HomepageOnly)
		require.NotNil(t, f.TopLevelOnly)
		assert.True(t, *f.TopLevelOnly)
		require.NotNil(t, f.RecordEmptyPages)
		assert.True(t, *f.RecordEmptyPages)
		assert.Equal(t, "allow-empty", f.Mode)
		assert.Equal(t, "markdown", f.Format)
		assert.Equal(t, "http", f.Engine)
		assert.Equal(t, "custom/1.0", f.UserAgent)
		assert.Equal(t, 4, f.Concurrency)
		assert.Equal(t, 200, f.MaxPages)
		assert.Equal(t, 45*time.Second, f.Timeout)
		assert.Contains(t, f.Blocklist(), "hotjar.com")
		assert.Contains(t, f.Blocklist(), "googletagmanager.com")
	})

	t.Run("returns not found for a missing file", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
		assert.Equal(t, telcheck.ENOTFOUND, telcheck.ErrorCode(err))
	})
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("accepts an empty document", func(t *testing.T) {
		t.Parallel()

		f, err := yaml.Parse(nil)

		require.NoError(t, err)
		assert.Equal(t, &yaml.File{}, f)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.Parse([]byte("phone_number: \"+18885551234\"\n"))

		require.Error(t, err)
		assert.Equal(t, telcheck.EINVALID, telcheck.ErrorCode(err))
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.Parse([]byte("url: [unterminated\n"))

		require.Error(t, err)
		assert.Equal(t, telcheck.EINVALID, telcheck.ErrorCode(err))
	})

	tests := []struct {
		name string
		doc  string
	}{
		{"negative concurrency", "concurrency: -1\n"},
		{"negative max pages", "max_pages: -5\n"},
		{"negative timeout", "timeout: -1s\n"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := yaml.Parse([]byte(tt.doc))

			require.Error(t, err)
			assert.Equal(t, telcheck.EINVALID, telcheck.ErrorCode(err))
		})
	}
}

func TestFindFile(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "explicit.yaml", yaml.FindFile("explicit.yaml"))
}
