package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/telcheck"
)

// Ensure LoggingLinkQuery implements telcheck.LinkQuery.
var _ telcheck.LinkQuery = (*LoggingLinkQuery)(nil)

// LoggingLinkQuery wraps a LinkQuery with debug logging.
type LoggingLinkQuery struct {
	next   telcheck.LinkQuery
	logger *slog.Logger
}

// NewLoggingLinkQuery creates a new LoggingLinkQuery.
func NewLoggingLinkQuery(next telcheck.LinkQuery, logger *slog.Logger) *LoggingLinkQuery {
	return &LoggingLinkQuery{next: next, logger: logger}
}

// QueryLinks logs the selector and match count and delegates to the wrapped query.
func (q *LoggingLinkQuery) QueryLinks(html string, selector string, baseURL string) (links []telcheck.Link, err error) {
	defer func(begin time.Time) {
		q.logger.Info("query links",
			"url", baseURL,
			"selector", selector,
			"matches", len(links),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return q.next.QueryLinks(html, selector, baseURL)
}
