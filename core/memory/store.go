package memory

import (
	"container/list"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrStorageRoot indicates a missing or unusable durable-storage root.
// This is a configuration error and aborts the run before any processing.
var ErrStorageRoot = errors.New("memory storage root unavailable")

// Store is a bounded, dirty-tracked cache over the durable memory tables.
type Store struct {
	root     string
	capacity int
	logger   *zap.Logger

	// recency list, front = most recently used; values are *Table
	ll    *list.List
	items map[TableID]*list.Element
}

// NewStore creates a store rooted at cfg.Root. The root directory must be
// configured and creatable; anything else is fatal.
func NewStore(cfg Config, l *zap.Logger) (*Store, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("%w: no root directory configured", ErrStorageRoot)
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageRoot, err)
	}
	capacity := cfg.CacheSize
	if capacity <= 0 {
		capacity = 16
	}
	return &Store{
		root:     cfg.Root,
		capacity: capacity,
		logger:   l,
		ll:       list.New(),
		items:    make(map[TableID]*list.Element),
	}, nil
}

// Root returns the durable-storage root directory.
func (s *Store) Root() string { return s.root }

// Load returns the cached table for id, moving it to most-recently-used.
// On a cache miss the table is read from disk (a missing file yields an empty
// table, not an error) and inserted, evicting the least-recently-used clean
// table if the cache is at capacity.
func (s *Store) Load(id TableID) (*Table, error) {
	if el, ok := s.items[id]; ok {
		s.ll.MoveToFront(el)
		return el.Value.(*Table), nil
	}

	path := filepath.Join(s.root, id.FileName())
	entries, err := readTableFile(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		entries = nil
	case errors.As(err, new(*decodeError)):
		// Corrupt or undecodable table: degrade to empty and keep going.
		s.logger.Error("Memory table unreadable, starting empty",
			zap.String("table", id.String()),
			zap.String("path", path),
			zap.Error(err))
		entries = nil
	default:
		// Permission or I/O errors are fatal; silently continuing would
		// orphan every decision already written into this table.
		return nil, fmt.Errorf("loading memory table %s: %w", id, err)
	}

	t := newTable(id, entries)
	s.insert(t)
	return t, nil
}

// Get returns the resolved value for key in the given table.
func (s *Store) Get(id TableID, key string) (string, bool, error) {
	t, err := s.Load(id)
	if err != nil {
		return "", false, err
	}
	v, ok := t.Get(key)
	return v, ok, nil
}

// Set stores key→value in the given table and marks it dirty.
func (s *Store) Set(id TableID, key, value string) error {
	t, err := s.Load(id)
	if err != nil {
		return err
	}
	t.Set(key, value)
	return nil
}

// Values returns the distinct resolved values of the given table.
func (s *Store) Values(id TableID) ([]string, error) {
	t, err := s.Load(id)
	if err != nil {
		return nil, err
	}
	return t.Values(), nil
}

// FlushAll persists every dirty cached table. A write failure for one table
// does not block flushing the others; the failed table stays dirty so a retry
// can pick it up, and the combined error is returned.
func (s *Store) FlushAll() error {
	var errs []error
	flushed := 0
	for el := s.ll.Front(); el != nil; el = el.Next() {
		t := el.Value.(*Table)
		if !t.dirty {
			continue
		}
		path := filepath.Join(s.root, t.id.FileName())
		if err := writeTableFile(path, t.Entries()); err != nil {
			s.logger.Error("Failed to flush memory table",
				zap.String("table", t.id.String()),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("flushing %s: %w", t.id, err))
			continue
		}
		t.dirty = false
		flushed++
	}
	if flushed > 0 {
		s.logger.Info("Flushed dirty memory tables", zap.Int("count", flushed))
	}
	return errors.Join(errs...)
}

// DirtyCount returns the number of cached tables with unsaved writes.
func (s *Store) DirtyCount() int {
	n := 0
	for el := s.ll.Front(); el != nil; el = el.Next() {
		if el.Value.(*Table).dirty {
			n++
		}
	}
	return n
}

func (s *Store) insert(t *Table) {
	if len(s.items) >= s.capacity {
		s.evict()
	}
	s.items[t.id] = s.ll.PushFront(t)
}

// evict removes the least-recently-used clean table. If every cached table is
// dirty, nothing is evicted and the cache grows past capacity; unsaved
// learned values are never dropped.
func (s *Store) evict() {
	for el := s.ll.Back(); el != nil; el = el.Prev() {
		t := el.Value.(*Table)
		if t.dirty {
			continue
		}
		s.ll.Remove(el)
		delete(s.items, t.id)
		s.logger.Debug("Evicted memory table", zap.String("table", t.id.String()))
		return
	}
	s.logger.Warn("Memory cache over capacity, all tables dirty, skipping eviction",
		zap.Int("cached", len(s.items)),
		zap.Int("capacity", s.capacity))
}
