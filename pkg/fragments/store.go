package fragments

import (
	"sort"
	"sync"
)

// InsertResult describes what Store.Insert did with a fragment.
type InsertResult int

const (
	// Inserted means the index was new and the fragment was stored.
	Inserted InsertResult = iota
	// Duplicate means the index was already present; the store is unchanged.
	Duplicate
	// Rejected means the store is sealed or the index is negative.
	Rejected
)

func (r InsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time summary of a Store.
type Stats struct {
	Fragments int
	MaxIndex  int64
	Missing   []int64
}

// Store collects fragments keyed by index.
//
// The entry map, the maximum index seen and the wake-up signal are guarded
// by a single mutex and updated together by Insert.
type Store struct {
	mu       sync.Mutex
	entries  map[int64]string
	maxIndex int64
	sealed   bool
	notify   chan struct{}
}

// NewStore returns an empty store. Its maximum index starts at 0, so index 0
// is part of the expected range from the beginning.
func NewStore() *Store {
	return &Store{
		entries: make(map[int64]string),
		notify:  make(chan struct{}, 1),
	}
}

// Insert stores f unless its index is already present. The first text seen
// for an index wins. A new index raises the maximum if needed and fires the
// wake-up signal; pending signals are coalesced.
func (s *Store) Insert(f Fragment) InsertResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed || f.Index < 0 {
		return Rejected
	}
	if _, ok := s.entries[f.Index]; ok {
		return Duplicate
	}

	s.entries[f.Index] = f.Text
	if f.Index > s.maxIndex {
		s.maxIndex = f.Index
	}

	select {
	case s.notify <- struct{}{}:
	default:
	}
	return Inserted
}

// Notify returns the wake-up channel. A receive consumes the signal.
func (s *Store) Notify() <-chan struct{} {
	return s.notify
}

// Complete reports whether the stored indices are exactly [0, MaxIndex].
func (s *Store) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeLocked()
}

// SealIfComplete seals the store if it is complete and reports whether it
// did. Checking and sealing happen atomically, so no fragment can slip in
// between a positive completion check and teardown.
func (s *Store) SealIfComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.completeLocked() {
		return false
	}
	s.sealed = true
	return true
}

// Seal makes every later Insert return Rejected.
func (s *Store) Seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

func (s *Store) completeLocked() bool {
	if int64(len(s.entries)) != s.maxIndex+1 {
		return false
	}
	for i := int64(0); i <= s.maxIndex; i++ {
		if _, ok := s.entries[i]; !ok {
			return false
		}
	}
	return true
}

// Len returns the number of stored fragments.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// MaxIndex returns the highest index seen so far.
func (s *Store) MaxIndex() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxIndex
}

// Stats summarises the store. At most limit missing indices are listed
// (all of them if limit <= 0).
func (s *Store) Stats(limit int) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Fragments: len(s.entries), MaxIndex: s.maxIndex}
	for i := int64(0); i <= s.maxIndex; i++ {
		if limit > 0 && len(st.Missing) >= limit {
			break
		}
		if _, ok := s.entries[i]; !ok {
			st.Missing = append(st.Missing, i)
		}
	}
	return st
}

// Snapshot returns a copy of the stored entries.
func (s *Store) Snapshot() map[int64]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[int64]string, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Indices returns the stored indices in ascending order.
func (s *Store) Indices() []int64 {
	s.mu.Lock()
	idx := make([]int64, 0, len(s.entries))
	for k := range s.entries {
		idx = append(idx, k)
	}
	s.mu.Unlock()

	sort.Slice(idx, func(i, j int) bool { return idx[i] < idx[j] })
	return idx
}
