package granary

import "sync/atomic"

// EpochId is a monotonically increasing stamp used for change detection at
// the archetype, chunk, and entity level. The zero value compares as
// "before everything" and is never produced by a live EpochCounter (which
// starts at 1), so a freshly-allocated column can use the zero value to
// mean "never touched".
type EpochId struct {
	v uint64
}

// Before reports whether e happened strictly before other.
func (e EpochId) Before(other EpochId) bool {
	return e.v < other.v
}

// BeforeOrEqual reports whether e happened before or at the same time as other.
func (e EpochId) BeforeOrEqual(other EpochId) bool {
	return e.v <= other.v
}

// After reports whether e happened strictly after other.
func (e EpochId) After(other EpochId) bool {
	return other.v < e.v
}

// bump overwrites *dst with to if to is strictly newer than the current value.
func bump(dst *EpochId, to EpochId) {
	if dst.v < to.v {
		*dst = to
	}
}

// bumpAgain overwrites *dst with to if to is at least as new as the current
// value. It differs from bump only when to equals the current value; the
// package's own stamping paths all go through bump.
func bumpAgain(dst *EpochId, to EpochId) {
	if dst.v <= to.v {
		*dst = to
	}
}

// EpochCounter is the World's global monotonic clock. Readers may observe
// Current concurrently with a writer holding the World exclusively; the
// atomic load/store pair is sufficient synchronization because Go requires
// exclusive (*World) access for any call that advances the counter, which
// stands in for the happens-before relationship a borrow checker would
// otherwise have to prove. No additional fence is required.
type EpochCounter struct {
	v atomic.Uint64
}

// NewEpochCounter returns a counter whose Current() is 1 and whose first
// Next() yields epoch 2, reserving 0 to mean "never touched".
func NewEpochCounter() *EpochCounter {
	c := &EpochCounter{}
	c.v.Store(1)
	return c
}

// Current returns the counter's present value without advancing it. Safe
// to call from a reader holding only a shared World reference.
func (c *EpochCounter) Current() EpochId {
	return EpochId{c.v.Load()}
}

// Next advances the counter and returns the new epoch. The caller must
// hold the World exclusively. Spawn, Despawn, Insert, Remove, Touch,
// InsertBundle, RemoveBundle and NewView each call this once and stamp
// every column they touch with the result; relation operations advance it
// once per component write they make.
func (c *EpochCounter) Next() EpochId {
	return EpochId{c.v.Add(1)}
}

// CurrentMut reads the counter from a call site that already holds the
// World exclusively. It is equivalent to Current but documents that the
// atomic load is a formality here, not a race guard.
func (c *EpochCounter) CurrentMut() EpochId {
	return EpochId{c.v.Load()}
}
