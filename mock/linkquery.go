package mock

import "github.com/fwojciec/telcheck"

var _ telcheck.LinkQuery = (*LinkQuery)(nil)

// LinkQuery is a mock implementation of telcheck.LinkQuery.
type LinkQuery struct {
	QueryLinksFn func(html string, selector string, baseURL string) ([]telcheck.Link, error)
}

func (q *LinkQuery) QueryLinks(html string, selector string, baseURL string) ([]telcheck.Link, error) {
	return q.QueryLinksFn(html, selector, baseURL)
}
