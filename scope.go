package telcheck

import "strings"

// Scope restricts which discovered links the crawl engine follows.
type Scope int

// Supported scopes.
const (
	// ScopeFullSite follows every internal link.
	ScopeFullSite Scope = iota
	// ScopeHomepageOnly checks the base URL and follows nothing.
	ScopeHomepageOnly
	// ScopeTopLevelOnly follows links with at most one path segment.
	ScopeTopLevelOnly
)

// ScopeFromFlags maps the two independent configuration switches to a Scope.
// Homepage-only takes precedence when both are set.
func ScopeFromFlags(homepageOnly, topLevelOnly bool) Scope {
	switch {
	case homepageOnly:
		return ScopeHomepageOnly
	case topLevelOnly:
		return ScopeTopLevelOnly
	default:
		return ScopeFullSite
	}
}

// ParseScope parses the name returned by Scope.String.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full", "full-site":
		return ScopeFullSite, nil
	case "homepage", "homepage-only":
		return ScopeHomepageOnly, nil
	case "top-level", "top-level-only":
		return ScopeTopLevelOnly, nil
	}
	return ScopeFullSite, Errorf(EINVALID, "unknown scope %q", s)
}

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeHomepageOnly:
		return "homepage-only"
	case ScopeTopLevelOnly:
		return "top-level-only"
	default:
		return "full-site"
	}
}

// Description returns a human-readable summary of the crawl mode.
func (s Scope) Description() string {
	switch s {
	case ScopeHomepageOnly:
		return "Running in homepage-only mode"
	case ScopeTopLevelOnly:
		return "Running in top-level pages mode"
	default:
		return "Crawling the entire website"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scope) UnmarshalText(text []byte) error {
	v, err := ParseScope(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
