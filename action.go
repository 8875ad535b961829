package granary

// Action is a deferred World mutation queued by a component or relation
// hook. It runs with exclusive World access, strictly after the call that
// triggered it returns.
type Action func(world *World, buf *ActionBuffer)

// ActionBuffer is the FIFO queue of deferred actions. Hooks never see it
// directly -- they see an ActionEncoder, which can only enqueue, never
// run anything immediately. The queue, then drain once unlocked shape is
// generalized from a fixed enum of operation structs to arbitrary
// closures, since relation/component hooks need to defer anything a World
// call can do, not just a handful of fixed operations.
type ActionBuffer struct {
	queue    []Action
	draining bool
}

// NewActionBuffer returns an empty buffer.
func NewActionBuffer() *ActionBuffer {
	return &ActionBuffer{}
}

func (b *ActionBuffer) enqueue(a Action) {
	b.queue = append(b.queue, a)
}

// Execute drains the buffer against world in FIFO order. Actions enqueued
// by an action that runs during this call are appended to the same queue
// and are executed before Execute returns. Calling Execute while already
// draining is a no-op: only the outermost call runs the loop, so a nested
// World mutation triggered by an action enqueues into the same buffer and
// rides the outer loop around to pick it up.
func (b *ActionBuffer) Execute(world *World) {
	if b.draining {
		return
	}
	b.draining = true
	defer func() { b.draining = false }()
	for len(b.queue) > 0 {
		next := b.queue[0]
		b.queue = b.queue[1:]
		next(world, b)
	}
}

// ActionEncoder is the scoped handle passed to hooks. It can only enqueue
// deferred work, never mutate the World directly, so a hook can never
// observe the World mid-structural-change.
type ActionEncoder struct {
	buf *ActionBuffer
}

func newActionEncoder(buf *ActionBuffer) *ActionEncoder {
	return &ActionEncoder{buf: buf}
}

// Defer queues an arbitrary World mutation to run once the triggering call
// returns.
func (e *ActionEncoder) Defer(fn Action) {
	e.buf.enqueue(fn)
}

// DespawnLater defers despawning id.
func DespawnLater(e *ActionEncoder, id EntityId) {
	e.Defer(func(w *World, _ *ActionBuffer) {
		_ = w.Despawn(id)
	})
}

// InsertLater defers inserting value as entity id's T component.
func InsertLater[T any](e *ActionEncoder, id EntityId, def ComponentDef[T], value T) {
	e.Defer(func(w *World, _ *ActionBuffer) {
		_ = Insert(w, id, def, value)
	})
}

// RemoveLater defers removing entity id's T component.
func RemoveLater[T any](e *ActionEncoder, id EntityId, def ComponentDef[T]) {
	e.Defer(func(w *World, _ *ActionBuffer) {
		_ = Remove(w, id, def)
	})
}
