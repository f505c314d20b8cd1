package faq

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// ---------------------------------------------------------------------------
// Provider
// ---------------------------------------------------------------------------

// defaultDebounce collapses the burst of filesystem events most editors fire
// for a single save into one reload.
const defaultDebounce = 200 * time.Millisecond

// Provider serves the active FAQ corpus to the chat pipeline and hot-swaps it
// when the backing file changes. Readers call Current on every query; the
// swap is a single atomic pointer store, so no lock sits on the query path.
//
// A failed reload never degrades service: the previous corpus stays active
// and the failure is logged.
type Provider struct {
	current  atomic.Pointer[Corpus]
	path     string
	logger   logging.Logger
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// ProviderOption customizes a Provider.
type ProviderOption func(*Provider)

// WithLogger sets the logger used for reload outcomes and watcher errors.
func WithLogger(l logging.Logger) ProviderOption {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithDebounce overrides the reload debounce interval.
func WithDebounce(d time.Duration) ProviderOption {
	return func(p *Provider) {
		if d > 0 {
			p.debounce = d
		}
	}
}

// NewProvider returns a Provider serving the given corpus. Without a backing
// file the provider is static: Watch and Reload report an error.
func NewProvider(c *Corpus, opts ...ProviderOption) *Provider {
	p := &Provider{
		logger:   logging.Default(),
		debounce: defaultDebounce,
	}
	p.current.Store(c)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewProviderFromFile loads the corpus file at path and returns a Provider
// that can watch it for changes. Startup is strict: a file that fails to
// load or validate is an error here, unlike later reloads which fall back to
// the corpus already being served.
func NewProviderFromFile(path string, opts ...ProviderOption) (*Provider, error) {
	c, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	p := NewProvider(c, opts...)
	p.path = path
	return p, nil
}

// Current returns the active corpus. Safe for concurrent use.
func (p *Provider) Current() *Corpus {
	return p.current.Load()
}

// Swap installs c as the active corpus and returns the previous one.
func (p *Provider) Swap(c *Corpus) *Corpus {
	return p.current.Swap(c)
}

// Path returns the backing corpus file, or "" for a static provider.
func (p *Provider) Path() string {
	return p.path
}

// Reload re-reads the backing file and installs the result. The active
// corpus is untouched when loading fails.
func (p *Provider) Reload() error {
	if p.path == "" {
		return errors.New(errors.ErrCodeCorpusLoadFailed, "provider has no corpus file to reload")
	}
	c, err := LoadFile(p.path)
	if err != nil {
		return err
	}
	p.current.Store(c)
	return nil
}

// ---------------------------------------------------------------------------
// File watching
// ---------------------------------------------------------------------------

// Watch starts a background watcher that reloads the corpus when the backing
// file changes. The parent directory is watched rather than the file itself,
// so atomic saves (write temp, rename over) and symlink swaps are picked up.
// Watch is idempotent; the watcher stops when ctx is cancelled or Close is
// called.
func (p *Provider) Watch(ctx context.Context) error {
	if p.path == "" {
		return errors.New(errors.ErrCodeCorpusLoadFailed, "provider has no corpus file to watch")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCorpusLoadFailed, "create corpus watcher")
	}
	if err := w.Add(filepath.Dir(p.path)); err != nil {
		_ = w.Close()
		return errors.Wrap(err, errors.ErrCodeCorpusLoadFailed, "watch corpus directory")
	}

	p.watcher = w
	p.done = make(chan struct{})
	go p.watchLoop(ctx, w, p.done)

	p.logger.Info("watching corpus file", logging.String("path", p.path))
	return nil
}

// Close stops the watcher, if any, and waits for the watch goroutine to exit.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watcher == nil {
		return nil
	}
	err := p.watcher.Close()
	<-p.done
	p.watcher = nil
	p.done = nil
	return err
}

func (p *Provider) watchLoop(ctx context.Context, w *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(p.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	base := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(p.debounce)
			pending = true

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			p.logger.Warn("corpus watcher error", logging.Err(err))

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			p.reloadAndLog()
		}
	}
}

func (p *Provider) reloadAndLog() {
	c, err := LoadFile(p.path)
	if err != nil {
		// A broken edit must not take the fast-path down.
		p.logger.Error("corpus reload failed, keeping previous corpus",
			logging.String("path", p.path),
			logging.Err(err))
		return
	}
	prev := p.Swap(c)
	p.logger.Info("corpus reloaded",
		logging.String("path", p.path),
		logging.Int("entries", c.Len()),
		logging.Int("previous_entries", prev.Len()))
}
