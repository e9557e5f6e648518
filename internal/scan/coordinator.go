package scan

import (
	"errors"
	"sync"
)

// ErrNoRoots is the one setup failure that aborts a scan request before any
// session exists.
var ErrNoRoots = errors.New("no root directories supplied")

// Coordinator owns the process-wide single-flight slot: at most one session
// is active at any instant, and starting a new scan atomically cancels and
// drains the previous one.
type Coordinator struct {
	mu     sync.Mutex
	active *Session
}

// NewCoordinator creates an idle coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Start validates the request, cancels any in-flight session, and launches
// a new one. The returned session is already running.
func (c *Coordinator) Start(opts *Options) (*Session, error) {
	if opts == nil || len(opts.Roots) == 0 {
		return nil, ErrNoRoots
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.active.Cancel()
		<-c.active.Done()
	}

	s := newSession(opts)
	c.active = s
	s.start()
	return s, nil
}

// Cancel stops the active session, waiting until it has fully unwound. A
// no-op when nothing is active.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return
	}
	c.active.Cancel()
	<-c.active.Done()
	c.active = nil
}

// Active returns the currently running session, or nil.
func (c *Coordinator) Active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}
