package granary

import (
	"reflect"
	"sort"

	"github.com/TheBitDrifter/mask"
)

// Edges memoises archetype transitions so repeated insert/remove of the
// same type from the same archetype doesn't re-walk the archetype list:
// per-type cached edges (toAdd/toRemove tables) rather than only caching
// whole-bundle transitions.
type Edges struct {
	add    map[edgeKey]archetypeIdx
	remove map[edgeKey]archetypeIdx
}

type edgeKey struct {
	from archetypeIdx
	typ  reflect.Type
}

func newEdges() *Edges {
	return &Edges{
		add:    make(map[edgeKey]archetypeIdx),
		remove: make(map[edgeKey]archetypeIdx),
	}
}

// Insert returns the destination archetype index for "from + t", building
// or looking up the archetype if this edge hasn't been traversed yet.
func (e *Edges) Insert(w *World, from archetypeIdx, t reflect.Type) archetypeIdx {
	key := edgeKey{from, t}
	if idx, ok := e.add[key]; ok {
		return idx
	}
	fromArch := w.archetypes[from]
	if fromArch.HasComponent(t) {
		e.add[key] = from
		return from
	}
	types := append(append([]reflect.Type{}, fromArch.types...), t)
	idx := w.archetypeFor(types)
	e.add[key] = idx
	return idx
}

// Remove returns the destination archetype index for "from - t".
func (e *Edges) Remove(w *World, from archetypeIdx, t reflect.Type) archetypeIdx {
	key := edgeKey{from, t}
	if idx, ok := e.remove[key]; ok {
		return idx
	}
	fromArch := w.archetypes[from]
	if !fromArch.HasComponent(t) {
		e.remove[key] = from
		return from
	}
	types := make([]reflect.Type, 0, len(fromArch.types)-1)
	for _, existing := range fromArch.types {
		if existing != t {
			types = append(types, existing)
		}
	}
	idx := w.archetypeFor(types)
	e.remove[key] = idx
	return idx
}

// sortedTypes returns a stable, deterministic ordering for a type-set so
// the same set of types always hashes to the same archetype regardless of
// the order components were supplied in.
func sortedTypes(types []reflect.Type) []reflect.Type {
	out := append([]reflect.Type{}, types...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func maskFor(w *World, types []reflect.Type) mask.Mask {
	var m mask.Mask
	for _, t := range types {
		m.Mark(w.registry.BitFor(t))
	}
	return m
}
