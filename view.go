package granary

// View binds a World, a Query, and an epoch snapshot, and drives the
// chunk/item visit protocol: structural pre-filter, then per-chunk
// visit/touch, then per-row visit/get. Cursor (cursor.go) walked
// archetypes in registration order yielding (index, table.Table) pairs;
// View generalizes that into a query-driven, epoch-aware traversal while
// keeping the same "one archetype at a time, in registration order"
// iteration shape.
type View[Item any] struct {
	world *World
	query Query[Item]
	epoch EpochId
}

// NewView builds a mutating view: the View bumps the world's global epoch
// once at construction, so every row it touches is stamped with a single,
// shared epoch for this pass.
func NewView[Item any](w *World, q Query[Item]) *View[Item] {
	return &View[Item]{world: w, query: q, epoch: w.epoch.Next()}
}

// NewViewReadOnly builds a view that does not advance the global epoch.
// Use it for queries built only from Read/Copied/With/Without, where no
// write ever occurs and bumping the clock would only cost other systems'
// Modified windows a false positive.
func NewViewReadOnly[Item any](w *World, q Query[Item]) *View[Item] {
	return &View[Item]{world: w, query: q, epoch: w.epoch.Current()}
}

// All is the iteration entry point, shaped as a Go 1.23 range-over-func
// iterator: for id, item := range view.All { ... }.
func (v *View[Item]) All(yield func(EntityId, Item) bool) {
	for _, arch := range v.world.archetypes {
		if arch.IsEmpty() {
			continue
		}
		if !v.query.VisitArchetype(arch) || !v.query.VisitArchetypeLate(arch) {
			continue
		}
		if !v.visitArchetype(arch, yield) {
			return
		}
	}
}

func (v *View[Item]) visitArchetype(arch *Archetype, yield func(EntityId, Item) bool) bool {
	f := v.query.Fetch(arch, v.epoch)
	n := arch.Len()
	chunkOK := false
	touched := false
	for row := 0; row < n; row++ {
		if row%ChunkLen == 0 {
			chunk := chunkOf(row)
			chunkOK = f.VisitChunk(chunk)
			touched = false
			if !chunkOK {
				skip := ChunkLen - row%ChunkLen
				row += skip - 1
				continue
			}
		}
		if !chunkOK || !f.VisitItem(row) {
			continue
		}
		if !touched {
			f.TouchChunk(chunkOf(row))
			touched = true
		}
		if !yield(arch.IdAt(row), f.GetItem(row)) {
			return false
		}
	}
	return true
}

// View2 is the two-query convenience wrapper: NewView(w, Query2(qa, qb)).
// Go methods cannot carry their own type parameters, so tuple views are
// free functions rather than *World methods.
func View2[A, B any](w *World, qa Query[A], qb Query[B]) *View[Pair[A, B]] {
	return NewView(w, Query2(qa, qb))
}

// View2ReadOnly is View2's non-epoch-advancing counterpart.
func View2ReadOnly[A, B any](w *World, qa Query[A], qb Query[B]) *View[Pair[A, B]] {
	return NewViewReadOnly(w, Query2(qa, qb))
}

// View3 composes three queries into one read-write view.
func View3[A, B, C any](w *World, qa Query[A], qb Query[B], qc Query[C]) *View[Triple[A, B, C]] {
	return NewView(w, Query3(qa, qb, qc))
}

// View4 composes four queries into one read-write view.
func View4[A, B, C, D any](w *World, qa Query[A], qb Query[B], qc Query[C], qd Query[D]) *View[Quad[A, B, C, D]] {
	return NewView(w, Query4(qa, qb, qc, qd))
}
