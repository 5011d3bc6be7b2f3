package rod

import (
	"fmt"
	"slices"
	"sync"

	"github.com/fwojciec/telcheck"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultMaxPages is the default number of pages before browser recycling.
const DefaultMaxPages = 75

// BrowserManager manages browser lifecycle with automatic recycling to prevent
// memory accumulation. Chrome's baseline memory keeps growing over a long
// crawl even with every tab closed, so the browser is periodically replaced.
//
// A replaced browser stays alive until the pages still open on it are
// released, so recycling never interrupts a fetch in progress.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	current  *generation
	retiring []*generation
	maxPages int64
	closed   bool
}

// generation is one launched browser process.
type generation struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	served   int64
	active   int
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets the maximum number of pages before the browser is recycled.
// Defaults to DefaultMaxPages if not specified.
func WithMaxPages(n int64) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// NewBrowserManager creates a new BrowserManager that launches a headless Chrome browser.
// Close must be called when the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(bm)
	}

	gen, err := launchBrowser()
	if err != nil {
		return nil, err
	}
	bm.current = gen

	return bm, nil
}

// Acquire returns the browser to open the next page on. The returned release
// func must be called once the page is closed. When the current browser has
// served maxPages pages a fresh one is launched first; if that launch fails
// the old browser keeps serving.
func (bm *BrowserManager) Acquire() (*rod.Browser, func(), error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil, nil, telcheck.Errorf(telcheck.EINVALID, "browser manager is closed")
	}

	if bm.maxPages > 0 && bm.current.served >= bm.maxPages {
		bm.recycle()
	}

	gen := bm.current
	gen.served++
	gen.active++

	var once sync.Once
	release := func() {
		once.Do(func() { bm.release(gen) })
	}
	return gen.browser, release, nil
}

// Browser returns the current browser instance without counting a page.
// It returns nil after Close.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.closed {
		return nil
	}
	return bm.current.browser
}

// Close releases all browser resources, including browsers still serving
// pages. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.closed {
		return nil
	}
	bm.closed = true

	err := bm.current.close()
	for _, gen := range bm.retiring {
		_ = gen.close()
	}
	bm.retiring = nil
	return err
}

// LauncherPID returns the process ID of the current browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.current == nil || bm.current.launcher == nil {
		return 0
	}
	return bm.current.launcher.PID()
}

// recycle swaps in a new browser. Must be called with mu held.
func (bm *BrowserManager) recycle() {
	next, err := launchBrowser()
	if err != nil {
		return
	}

	old := bm.current
	bm.current = next
	if old.active == 0 {
		_ = old.close()
		return
	}
	bm.retiring = append(bm.retiring, old)
}

func (bm *BrowserManager) release(gen *generation) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	gen.active--
	if gen == bm.current || gen.active > 0 || bm.closed {
		return
	}

	_ = gen.close()
	bm.retiring = slices.DeleteFunc(bm.retiring, func(g *generation) bool { return g == gen })
}

// launchBrowser starts a new browser instance with stability flags.
func launchBrowser() (*generation, error) {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &generation{browser: browser, launcher: lnchr}, nil
}

// close shuts down the browser and its launcher.
func (g *generation) close() error {
	var err error
	if g.browser != nil {
		err = g.browser.Close()
		g.browser = nil
	}
	if g.launcher != nil {
		g.launcher.Kill()
		g.launcher = nil
	}
	return err
}
