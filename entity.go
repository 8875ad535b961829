package granary

import "fmt"

// EntityId is an opaque handle identifying an entity: a slot index paired
// with a generation counter. Two handles are the same entity only if both
// fields are equal; a stale handle (wrong generation for a reused slot)
// never resolves.
type EntityId struct {
	Slot       uint32
	Generation uint32
}

// Null is never a valid live entity.
var Null = EntityId{}

func (id EntityId) String() string {
	return fmt.Sprintf("Entity(%d#%d)", id.Slot, id.Generation)
}

// location is where a live entity's row currently lives.
type location struct {
	archetype archetypeIdx
	row       int
}

type directoryEntry struct {
	generation uint32
	live       bool
	loc        location
	nextFree   uint32
}

const sentinelFree = ^uint32(0)

// EntityDirectory is the single-writer slot + generation + location map.
// Slots form a free-list threaded through nextFree; despawn bumps the
// generation so stale handles are detectable without ever needing to
// garbage-collect them.
type EntityDirectory struct {
	entries  []directoryEntry
	freeHead uint32
}

// NewEntityDirectory returns an empty directory.
func NewEntityDirectory() *EntityDirectory {
	return &EntityDirectory{freeHead: sentinelFree}
}

// Spawn allocates a fresh EntityId, reusing a free slot if one exists.
func (d *EntityDirectory) Spawn() EntityId {
	if d.freeHead != sentinelFree {
		slot := d.freeHead
		entry := &d.entries[slot]
		d.freeHead = entry.nextFree
		entry.live = true
		entry.loc = location{}
		return EntityId{Slot: slot, Generation: entry.generation}
	}
	slot := uint32(len(d.entries))
	d.entries = append(d.entries, directoryEntry{generation: 1, live: true})
	return EntityId{Slot: slot, Generation: 1}
}

// Get resolves a live entity's location. Returns NoSuchEntityError if the
// slot is free or the generation is stale.
func (d *EntityDirectory) Get(id EntityId) (location, error) {
	if int(id.Slot) >= len(d.entries) {
		return location{}, NoSuchEntityError{Entity: id}
	}
	entry := &d.entries[id.Slot]
	if !entry.live || entry.generation != id.Generation {
		return location{}, NoSuchEntityError{Entity: id}
	}
	return entry.loc, nil
}

// SetLocation updates where a live entity's row lives. Panics if the
// entity is not live; callers must resolve the entity first.
func (d *EntityDirectory) SetLocation(id EntityId, arch archetypeIdx, row int) {
	entry := &d.entries[id.Slot]
	if !entry.live || entry.generation != id.Generation {
		panic(fmt.Sprintf("granary: SetLocation on dead entity %v", id))
	}
	entry.loc = location{archetype: arch, row: row}
}

// Despawn frees the entity's slot, bumping its generation, and returns the
// location it occupied so the archetype layer can remove the row.
func (d *EntityDirectory) Despawn(id EntityId) (location, error) {
	loc, err := d.Get(id)
	if err != nil {
		return loc, err
	}
	entry := &d.entries[id.Slot]
	entry.live = false
	entry.generation++
	if entry.generation == 0 {
		// Wrap-around: a wrapped generation retires the slot rather than
		// reusing it; we retire by simply never returning it to the free
		// list again.
		return loc, nil
	}
	entry.nextFree = d.freeHead
	d.freeHead = id.Slot
	return loc, nil
}

// FindEntity reconstructs the current EntityId occupying a slot, used when
// an archetype reports a row moved during swap-remove compaction.
func (d *EntityDirectory) FindEntity(slot uint32) EntityId {
	return EntityId{Slot: slot, Generation: d.entries[slot].generation}
}

// Contains reports whether id currently resolves to a live entity.
func (d *EntityDirectory) Contains(id EntityId) bool {
	_, err := d.Get(id)
	return err == nil
}
