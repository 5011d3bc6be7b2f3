package crawl

import "sync"

// Frontier is the stack of URLs waiting to be visited. Popping the most
// recently pushed URL first gives the same depth-first order as visiting
// each discovered link recursively, without growing the call stack.
//
// Frontier does not deduplicate; the VisitedSet decides whether a popped
// URL is visited. It is safe for concurrent use by multiple goroutines.
type Frontier struct {
	mu    sync.Mutex
	stack []string
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{}
}

// Push adds urls so that urls[0] is popped first.
func (f *Frontier) Push(urls ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(urls) - 1; i >= 0; i-- {
		f.stack = append(f.stack, urls[i])
	}
}

// Pop returns the next URL to visit.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(f.stack)
	if n == 0 {
		return "", false
	}
	url := f.stack[n-1]
	f.stack[n-1] = ""
	f.stack = f.stack[:n-1]
	return url, true
}

// Len returns the number of URLs waiting in the frontier.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stack)
}
