package store

import (
	"context"
	"errors"
	"sync"
)

// ErrHelperClosed is returned by Helper.Store after Close.
var ErrHelperClosed = errors.New("store helper is closed")

// Helper opens the database lazily on first use and then hands out the same
// Store until Close. It is safe for concurrent use.
type Helper struct {
	path string

	mu     sync.Mutex
	store  *Store
	closed bool
}

// NewHelper returns a Helper for the database at path. Nothing is opened
// until Store is called.
func NewHelper(path string) *Helper {
	return &Helper{path: path}
}

// Path returns the database path.
func (h *Helper) Path() string {
	return h.path
}

// Store returns the open Store, opening the database on the first call.
// A failed open is not cached; the next call tries again.
func (h *Helper) Store(ctx context.Context) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHelperClosed
	}
	if h.store == nil {
		s, err := Open(h.path)
		if err != nil {
			return nil, err
		}
		h.store = s
	}
	return h.store, nil
}

// Opened reports whether the database has been opened.
func (h *Helper) Opened() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store != nil
}

// Close releases the database handle. Further calls to Store fail with
// ErrHelperClosed. Close is idempotent.
func (h *Helper) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	if h.store == nil {
		return nil
	}
	err := h.store.Close()
	h.store = nil
	return err
}
