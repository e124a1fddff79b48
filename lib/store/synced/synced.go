package synced

import (
	"io"
	"iter"

	"github.com/anydict/numstore/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
)

// syncedImpl decorates an inner store with locking. All invariants (zero
// means absent, cached counter, ascending iteration) are the inner store's.
type syncedImpl struct {
	mu    *xsync.RBMutex
	inner store.IStore
}

// New wraps inner with a reader-biased lock. The mutex must come from
// NewRBMutex - the zero value has no reader slots and degrades every RLock
// to the plain RWMutex path. The inner store must not be used directly
// afterwards.
func New(inner store.IStore) store.IStore {
	return &syncedImpl{
		mu:    xsync.NewRBMutex(),
		inner: inner,
	}
}

// --------------------------------------------------------------------------
// Write Operations (exclusive lock)
// --------------------------------------------------------------------------

// (docu see interface.go)
func (s *syncedImpl) Set(key uint64, value uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Set(key, value)
}

// (docu see interface.go)
func (s *syncedImpl) Delete(key uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Delete(key)
}

// (docu see interface.go)
func (s *syncedImpl) Pop(key uint64) (uint8, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Pop(key)
}

// (docu see interface.go)
func (s *syncedImpl) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Clear()
}

// Load replaces the whole inner state, so it is a write operation.
// (docu see interface.go)
func (s *syncedImpl) Load(r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Load(r)
}

// (docu see interface.go)
func (s *syncedImpl) LoadFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.LoadFile(path)
}

// --------------------------------------------------------------------------
// Read Operations (reader token)
// --------------------------------------------------------------------------

// (docu see interface.go)
func (s *syncedImpl) Get(key uint64) (uint8, bool, error) {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	return s.inner.Get(key)
}

// (docu see interface.go)
func (s *syncedImpl) Has(key uint64) (bool, error) {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	return s.inner.Has(key)
}

// (docu see interface.go)
func (s *syncedImpl) Len() (uint64, error) {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	return s.inner.Len()
}

// (docu see interface.go)
func (s *syncedImpl) IsEmpty() (bool, error) {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	return s.inner.IsEmpty()
}

// (docu see interface.go)
func (s *syncedImpl) Save(w io.Writer) error {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	return s.inner.Save(w)
}

// (docu see interface.go)
func (s *syncedImpl) SaveFile(path string) error {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	return s.inner.SaveFile(path)
}

// (docu see interface.go)
func (s *syncedImpl) GetInfo() (store.StoreInfo, error) {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	info, err := s.inner.GetInfo()
	if err == nil {
		info.StoreType = store.ImplSynced
	}
	return info, err
}

// --------------------------------------------------------------------------
// Iteration (snapshot under reader token)
// --------------------------------------------------------------------------

// snapshot materializes the occupied slots while holding a reader token.
func (s *syncedImpl) snapshot() ([]uint64, []uint8, error) {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)

	seq, err := s.inner.Items()
	if err != nil {
		return nil, nil, err
	}
	n, err := s.inner.Len()
	if err != nil {
		return nil, nil, err
	}

	keys := make([]uint64, 0, n)
	values := make([]uint8, 0, n)
	for k, v := range seq {
		keys = append(keys, k)
		values = append(values, v)
	}
	return keys, values, nil
}

// Keys iterates over a point-in-time snapshot, see package docs.
// (docu see interface.go)
func (s *syncedImpl) Keys() (iter.Seq[uint64], error) {
	keys, _, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return func(yield func(uint64) bool) {
		for _, k := range keys {
			if !yield(k) {
				return
			}
		}
	}, nil
}

// Values iterates over a point-in-time snapshot, see package docs.
// (docu see interface.go)
func (s *syncedImpl) Values() (iter.Seq[uint8], error) {
	_, values, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return func(yield func(uint8) bool) {
		for _, v := range values {
			if !yield(v) {
				return
			}
		}
	}, nil
}

// Items iterates over a point-in-time snapshot, see package docs.
// (docu see interface.go)
func (s *syncedImpl) Items() (iter.Seq2[uint64, uint8], error) {
	keys, values, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return func(yield func(uint64, uint8) bool) {
		for i := range keys {
			if !yield(keys[i], values[i]) {
				return
			}
		}
	}, nil
}

// --------------------------------------------------------------------------
// Metadata
// --------------------------------------------------------------------------

// Capacity is fixed for the life of the inner store except across Load,
// which holds the exclusive lock anyway.
// (docu see interface.go)
func (s *syncedImpl) Capacity() uint64 {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	return s.inner.Capacity()
}

// (docu see interface.go)
func (s *syncedImpl) SupportsFeature(feature store.Feature) bool {
	return s.inner.SupportsFeature(feature)
}

// (docu see interface.go)
func (s *syncedImpl) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Close()
}
