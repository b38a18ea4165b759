package packing

import (
	"sync/atomic"
)

// Slot is the "currently being packed" flag of one packing worker
// Claim and Free never block
type Slot struct {
	held atomic.Bool
}

// Claim takes the slot if it is free, returns false if it is held already
func (s *Slot) Claim() bool {
	return s.held.CompareAndSwap(false, true)
}

func (s *Slot) Free() {
	s.held.Store(false)
}

func (s *Slot) Held() bool {
	return s.held.Load()
}
