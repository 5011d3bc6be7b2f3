package telcheck

import (
	"context"
	"time"
)

// Run is a recorded check of a site. Runs are written after a crawl has been
// validated and are only read back for reporting; a crawl never starts from
// a previous run.
type Run struct {
	ID         string    `json:"id"`
	BaseURL    string    `json:"baseUrl"`
	Scope      Scope     `json:"scope"`
	Passed     bool      `json:"passed"`
	Pages      int       `json:"pages"`
	Visited    int       `json:"visited"`
	Failed     int       `json:"failed"`
	Errors     int       `json:"errors"`
	Digest     string    `json:"digest"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	// Links holds the tel: links found during the run.
	Links []RunLink `json:"links,omitempty"`
}

// RunLink is a tel: link stored with a run.
type RunLink struct {
	PageURL string `json:"pageUrl"`
	Href    string `json:"href"`
	Text    string `json:"text"`
	Valid   bool   `json:"valid"`
}

// Validate returns an error if the run contains invalid fields.
func (r *Run) Validate() error {
	if r.BaseURL == "" {
		return Errorf(EINVALID, "run base URL required")
	}
	if r.StartedAt.IsZero() {
		return Errorf(EINVALID, "run start time required")
	}
	return nil
}

// RunService represents a service for recording check runs.
type RunService interface {
	// CreateRun stores a run and its links, assigning the run ID.
	CreateRun(ctx context.Context, run *Run) error

	// FindRunByID retrieves a run and its links.
	// Returns ENOTFOUND if the run does not exist.
	FindRunByID(ctx context.Context, id string) (*Run, error)

	// FindRuns retrieves runs matching the filter, newest first.
	// Links are not loaded.
	FindRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
}

// RunFilter represents a filter for FindRuns.
type RunFilter struct {
	BaseURL *string `json:"baseUrl"`
	Scope   *Scope  `json:"scope"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
