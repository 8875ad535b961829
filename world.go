package granary

import (
	"reflect"
	"strings"

	"github.com/TheBitDrifter/table"
)

// World is the top-level API orchestrating the entity directory, the
// archetype list, the edge cache, and the component registry. Every
// structural mutation requires exclusive (*World) access. storage.go's
// flat component-bag store (storage struct, schema/archetypes fields) is
// generalized here into the full archetype/epoch/directory/relation
// machinery.
type World struct {
	directory    *EntityDirectory
	archetypes   []*Archetype
	archByKey    map[string]archetypeIdx
	edges        *Edges
	registry     *ComponentRegistry
	elementTypes map[reflect.Type]table.ElementType
	schema       table.Schema
	entryIndex   table.EntryIndex
	epoch        *EpochCounter
	actions      *ActionBuffer
	relations    map[reflect.Type]*RelationInfo
}

// Epoch returns the World's current global epoch without advancing it.
func (w *World) Epoch() EpochId { return w.epoch.Current() }

// Archetypes exposes the archetype list in registration order, the
// ordering View iterates in.
func (w *World) Archetypes() []*Archetype { return w.archetypes }

func archetypeKey(sorted []reflect.Type) string {
	var b strings.Builder
	for i, t := range sorted {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(t.String())
	}
	return b.String()
}

// archetypeFor returns the archetype holding exactly the given type-set,
// creating it (with its type-set mask from maskFor) if this is the first
// time the set has been seen.
func (w *World) archetypeFor(types []reflect.Type) archetypeIdx {
	sorted := sortedTypes(types)
	key := archetypeKey(sorted)
	if idx, ok := w.archByKey[key]; ok {
		return idx
	}
	elems := make([]table.ElementType, len(sorted))
	infos := make(map[reflect.Type]*ComponentInfo, len(sorted))
	for i, t := range sorted {
		elems[i] = w.elementTypes[t]
		infos[t] = w.registry.GetOrRegister(t)
	}
	w.schema.Register(elems...)
	m := maskFor(w, sorted)
	idx := archetypeIdx(len(w.archetypes))
	arch, err := newArchetype(idx, w.schema, w.entryIndex, sorted, elems, infos, m)
	if err != nil {
		panic(err)
	}
	w.archetypes = append(w.archetypes, arch)
	w.archByKey[key] = idx
	return idx
}

// Spawn creates one entity from bundle. Duplicate component types inside
// bundle panic; everything else is infallible once past that check.
func (w *World) Spawn(bundle Bundle) (EntityId, error) {
	bundle.validate()
	idx := w.archetypeFor(bundle.types())
	id := w.directory.Spawn()
	epoch := w.epoch.Next()
	row, err := w.archetypes[idx].Spawn(id, bundle, epoch)
	if err != nil {
		return Null, err
	}
	w.directory.SetLocation(id, idx, row)
	w.actions.Execute(w)
	return id, nil
}

// SpawnBatchN spawns n entities, calling build(i) to produce each one's
// bundle. The returned id slice is preallocated with capacity
// min(n, MaxSpawnReserve); each entity is spawned through Spawn in turn,
// so no archetype rows are reserved ahead of time.
func (w *World) SpawnBatchN(n int, build func(i int) Bundle) ([]EntityId, error) {
	ids := make([]EntityId, 0, min(n, MaxSpawnReserve))
	for i := 0; i < n; i++ {
		id, err := w.Spawn(build(i))
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Despawn removes an entity and every component it carries, running each
// component's on-drop hook (deferred through an ActionEncoder) before the
// row is deleted.
func (w *World) Despawn(id EntityId) error {
	loc, err := w.directory.Despawn(id)
	if err != nil {
		return err
	}
	w.epoch.Next()
	arch := w.archetypes[loc.archetype]
	enc := newActionEncoder(w.actions)
	moved, err := arch.DespawnUnchecked(loc.row, enc)
	if err != nil {
		return err
	}
	if moved != nil {
		w.directory.SetLocation(*moved, loc.archetype, loc.row)
	}
	w.actions.Execute(w)
	return nil
}

// Clear despawns every live entity without touching the archetype graph
// (archetypes stay registered; their row counts drop to zero). Supplements
// spec.md with edict::World::clear(), dropped by the distillation.
func (w *World) Clear() {
	for slot := range w.directory.entries {
		id := w.directory.FindEntity(uint32(slot))
		if w.directory.Contains(id) {
			_ = w.Despawn(id)
		}
	}
}

// Insert adds or overwrites entity id's T component. If T is new to id,
// the entity migrates to the archetype whose type-set is old ∪ {T}; every
// other component is preserved bitwise (spec invariant #5). If T already
// exists, this is the idempotent set path: the component's on_set hook
// runs first and may suppress the subsequent on_drop of the old value.
func Insert[T any](w *World, id EntityId, def ComponentDef[T], value T) error {
	loc, err := w.directory.Get(id)
	if err != nil {
		return err
	}
	arch := w.archetypes[loc.archetype]
	info := w.registry.GetOrRegister(def.typ())
	enc := newActionEncoder(w.actions)

	if arch.HasComponent(def.typ()) {
		slot := def.Get(arch.Table(), loc.row)
		old := *slot
		proceed := true
		if info.OnSet != nil {
			proceed = info.OnSet(enc, id, old, value)
		}
		if proceed && info.OnDrop != nil {
			info.OnDrop(enc, id, old)
		}
		*slot = value
		epoch := w.epoch.Next()
		arch.touch(def.typ(), loc.row, epoch)
		w.actions.Execute(w)
		return nil
	}

	destIdx := w.edges.Insert(w, loc.archetype, def.typ())
	dst := w.archetypes[destIdx]
	epoch := w.epoch.Next()
	dstRow, moved, err := arch.MoveInto(dst, loc.row, id, epoch)
	if err != nil {
		return err
	}
	*def.Get(dst.Table(), dstRow) = value
	dst.touch(def.typ(), dstRow, epoch)
	w.directory.SetLocation(id, destIdx, dstRow)
	if moved != nil {
		w.directory.SetLocation(*moved, loc.archetype, loc.row)
	}
	w.actions.Execute(w)
	return nil
}

// Remove drops entity id's T component, running its on_drop hook, and
// migrates the entity to the archetype whose type-set is old \ {T}.
// Returns MissingComponentError if id never had T.
func Remove[T any](w *World, id EntityId, def ComponentDef[T]) error {
	loc, err := w.directory.Get(id)
	if err != nil {
		return err
	}
	arch := w.archetypes[loc.archetype]
	if !arch.HasComponent(def.typ()) {
		return MissingComponentError{Entity: id, Type: def.typ()}
	}
	enc := newActionEncoder(w.actions)
	value := *def.Get(arch.Table(), loc.row)
	info := w.registry.GetOrRegister(def.typ())
	if info.OnDrop != nil {
		info.OnDrop(enc, id, value)
	}
	destIdx := w.edges.Remove(w, loc.archetype, def.typ())
	dst := w.archetypes[destIdx]
	epoch := w.epoch.Next()
	dstRow, moved, err := arch.MoveInto(dst, loc.row, id, epoch)
	if err != nil {
		return err
	}
	w.directory.SetLocation(id, destIdx, dstRow)
	if moved != nil {
		w.directory.SetLocation(*moved, loc.archetype, loc.row)
	}
	w.actions.Execute(w)
	return nil
}

// overwriteInPlace runs item's component's on_set/on_drop hooks against the
// value already in arch at row, then writes item's new value and touches
// the column, without any archetype migration. Used by InsertBundle;
// Insert[T] runs its own typed copy of the same steps.
func (w *World) overwriteInPlace(arch *Archetype, row int, id EntityId, item BundleItem, epoch EpochId, enc *ActionEncoder) {
	info := w.registry.GetOrRegister(item.typ)
	old := arch.rowValue(item.typ, row)
	proceed := true
	if info.OnSet != nil {
		proceed = info.OnSet(enc, id, old, item.value)
	}
	if proceed && info.OnDrop != nil {
		info.OnDrop(enc, id, old)
	}
	item.set(arch.Table(), row)
	arch.touch(item.typ, row, epoch)
}

func containsType(types []reflect.Type, t reflect.Type) bool {
	for _, existing := range types {
		if existing == t {
			return true
		}
	}
	return false
}

// InsertBundle adds or overwrites every component in bundle on entity id as
// a single migration, rather than one archetype hop per component.
// Components already present on id are overwritten in place (same
// on_set/on_drop dispatch as Insert[T]); the rest migrate the entity once
// to the archetype whose type-set is old ∪ bundle.types().
func (w *World) InsertBundle(id EntityId, bundle Bundle) error {
	bundle.validate()
	loc, err := w.directory.Get(id)
	if err != nil {
		return err
	}
	arch := w.archetypes[loc.archetype]
	enc := newActionEncoder(w.actions)
	epoch := w.epoch.Next()

	var newTypes []reflect.Type
	for _, item := range bundle {
		if !arch.HasComponent(item.typ) {
			newTypes = append(newTypes, item.typ)
		}
	}

	if len(newTypes) == 0 {
		for _, item := range bundle {
			w.overwriteInPlace(arch, loc.row, id, item, epoch, enc)
		}
		w.actions.Execute(w)
		return nil
	}

	for _, item := range bundle {
		if arch.HasComponent(item.typ) {
			w.overwriteInPlace(arch, loc.row, id, item, epoch, enc)
		}
	}

	destTypes := append(append([]reflect.Type{}, arch.types...), newTypes...)
	destIdx := w.archetypeFor(destTypes)
	dst := w.archetypes[destIdx]
	dstRow, moved, err := arch.MoveInto(dst, loc.row, id, epoch)
	if err != nil {
		return err
	}
	for _, item := range bundle {
		if containsType(newTypes, item.typ) {
			item.set(dst.Table(), dstRow)
			dst.touch(item.typ, dstRow, epoch)
		}
	}
	w.directory.SetLocation(id, destIdx, dstRow)
	if moved != nil {
		w.directory.SetLocation(*moved, loc.archetype, loc.row)
	}
	w.actions.Execute(w)
	return nil
}

// RemoveBundle drops every type in types from entity id in a single
// migration, running each
// present component's on_drop hook via Archetype.dropMissing before the
// row moves. Types id doesn't carry are silently skipped, matching
// remove_bundle's bulk-cleanup use (e.g. Despawn-adjacent teardown) rather
// than Remove[T]'s single-component strict contract.
func (w *World) RemoveBundle(id EntityId, types []reflect.Type) error {
	loc, err := w.directory.Get(id)
	if err != nil {
		return err
	}
	arch := w.archetypes[loc.archetype]
	enc := newActionEncoder(w.actions)

	destTypes := make([]reflect.Type, 0, len(arch.types))
	for _, t := range arch.types {
		if !containsType(types, t) {
			destTypes = append(destTypes, t)
		}
	}
	if len(destTypes) == len(arch.types) {
		return nil
	}
	destIdx := w.archetypeFor(destTypes)
	dst := w.archetypes[destIdx]
	arch.dropMissing(dst, loc.row, enc)
	epoch := w.epoch.Next()
	dstRow, moved, err := arch.MoveInto(dst, loc.row, id, epoch)
	if err != nil {
		return err
	}
	w.directory.SetLocation(id, destIdx, dstRow)
	if moved != nil {
		w.directory.SetLocation(*moved, loc.archetype, loc.row)
	}
	w.actions.Execute(w)
	return nil
}

// Get reads entity id's T component, or MissingComponentError if absent.
func Get[T any](w *World, id EntityId, def ComponentDef[T]) (*T, error) {
	loc, err := w.directory.Get(id)
	if err != nil {
		return nil, err
	}
	arch := w.archetypes[loc.archetype]
	if !arch.HasComponent(def.typ()) {
		return nil, MissingComponentError{Entity: id, Type: def.typ()}
	}
	return def.Get(arch.Table(), loc.row), nil
}

// Has reports whether entity id currently carries a T component.
func Has[T any](w *World, id EntityId, def ComponentDef[T]) bool {
	loc, err := w.directory.Get(id)
	if err != nil {
		return false
	}
	return w.archetypes[loc.archetype].HasComponent(def.typ())
}

// Touch advances the world's epoch and stamps id's T column with it without
// otherwise changing the value, for callers that mutated a value obtained through
// Get directly and need change detection to notice. Relation bookkeeping
// (relation.go) is the main internal user.
func Touch[T any](w *World, id EntityId, def ComponentDef[T]) error {
	loc, err := w.directory.Get(id)
	if err != nil {
		return err
	}
	arch := w.archetypes[loc.archetype]
	if !arch.HasComponent(def.typ()) {
		return MissingComponentError{Entity: id, Type: def.typ()}
	}
	arch.touch(def.typ(), loc.row, w.epoch.Next())
	return nil
}

// QueryOneEntity fetches a single entity through a Query without building
// a View, returning QueryNotSatisfiedError if the query's filter rejects
// it. Supplements spec.md with edict::World::query_one_entity.
func QueryOneEntity[Item any](w *World, id EntityId, q Query[Item]) (Item, error) {
	var zero Item
	loc, err := w.directory.Get(id)
	if err != nil {
		return zero, err
	}
	arch := w.archetypes[loc.archetype]
	if !q.VisitArchetype(arch) || !q.VisitArchetypeLate(arch) {
		return zero, QueryNotSatisfiedError{Entity: id}
	}
	f := q.Fetch(arch, w.epoch.Current())
	if !f.VisitChunk(chunkOf(loc.row)) || !f.VisitItem(loc.row) {
		return zero, QueryNotSatisfiedError{Entity: id}
	}
	f.TouchChunk(chunkOf(loc.row))
	return f.GetItem(loc.row), nil
}
