package telcheck_test

import (
	"testing"

	"github.com/fwojciec/telcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeFromFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		homepageOnly bool
		topLevelOnly bool
		want         telcheck.Scope
	}{
		{"no flags crawls full site", false, false, telcheck.ScopeFullSite},
		{"homepage only", true, false, telcheck.ScopeHomepageOnly},
		{"top level only", false, true, telcheck.ScopeTopLevelOnly},
		{"homepage only wins over top level", true, true, telcheck.ScopeHomepageOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, telcheck.ScopeFromFlags(tt.homepageOnly, tt.topLevelOnly))
		})
	}
}

func TestParseScope(t *testing.T) {
	t.Parallel()

	t.Run("round trips scope names", func(t *testing.T) {
		t.Parallel()

		for _, s := range []telcheck.Scope{telcheck.ScopeFullSite, telcheck.ScopeHomepageOnly, telcheck.ScopeTopLevelOnly} {
			got, err := telcheck.ParseScope(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, got)
		}
	})

	t.Run("empty string is full site", func(t *testing.T) {
		t.Parallel()

		got, err := telcheck.ParseScope("")
		require.NoError(t, err)
		assert.Equal(t, telcheck.ScopeFullSite, got)
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		t.Parallel()

		_, err := telcheck.ParseScope("sideways")
		require.Error(t, err)
		assert.Equal(t, telcheck.EINVALID, telcheck.ErrorCode(err))
	})
}

func TestScope_Text(t *testing.T) {
	t.Parallel()

	for _, s := range []telcheck.Scope{telcheck.ScopeFullSite, telcheck.ScopeHomepageOnly, telcheck.ScopeTopLevelOnly} {
		t.Run(s.String(), func(t *testing.T) {
			t.Parallel()

			text, err := s.MarshalText()
			require.NoError(t, err)

			var got telcheck.Scope
			require.NoError(t, got.UnmarshalText(text))
			assert.Equal(t, s, got)
		})
	}

	t.Run("rejects unknown names", func(t *testing.T) {
		t.Parallel()

		var got telcheck.Scope
		err := got.UnmarshalText([]byte("everything"))
		require.Error(t, err)
		assert.Equal(t, telcheck.EINVALID, telcheck.ErrorCode(err))
	})
}
