// Package instruction owns the system instruction that steers every chat relay call.
//
// A Store is a single-value cell. Writes swap the value atomically and reads
// return a snapshot, so a relay call observes whichever value was stored when
// it read the cell and is unaffected by later writes.
package instruction

import "sync/atomic"

type Store struct {
	value atomic.Pointer[string]
}

func NewStore(initial string) *Store {
	s := &Store{}
	s.value.Store(&initial)
	return s
}

// Get returns the current instruction.
func (s *Store) Get() string {
	return *s.value.Load()
}

// Set replaces the instruction and returns the stored value. Empty strings are accepted.
func (s *Store) Set(v string) string {
	s.value.Store(&v)
	return v
}

// Swap replaces the instruction and returns the previous value.
func (s *Store) Swap(v string) (old string) {
	return *s.value.Swap(&v)
}
