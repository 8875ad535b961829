package granary

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/TheBitDrifter/table"
)

// archetypeIdx is the stable index of an Archetype inside World.archetypes.
// Archetype 0 is always the null archetype (no columns).
type archetypeIdx int

// columnEpochs is the three-level change stamp for one component column
// inside one archetype: archetype_epoch >= max(chunk_epochs) >=
// max(entity_epochs), maintained by touch.
type columnEpochs struct {
	archetypeEpoch EpochId
	chunkEpochs    []EpochId
	entityEpochs   []EpochId
}

func (c *columnEpochs) grow(row int) {
	for len(c.entityEpochs) <= row {
		c.entityEpochs = append(c.entityEpochs, EpochId{})
	}
	needed := chunkOf(row) + 1
	for len(c.chunkEpochs) < needed {
		c.chunkEpochs = append(c.chunkEpochs, EpochId{})
	}
}

func (c *columnEpochs) shrinkTo(newLen int) {
	c.entityEpochs = c.entityEpochs[:newLen]
	needed := 0
	if newLen > 0 {
		needed = chunkOf(newLen-1) + 1
	}
	if len(c.chunkEpochs) > needed {
		c.chunkEpochs = c.chunkEpochs[:needed]
	}
}

// touch stamps all three levels for row with epoch, per the "bump" policy
// (strict monotonic advance, see bump in epoch.go).
func (c *columnEpochs) touch(row int, epoch EpochId) {
	bump(&c.entityEpochs[row], epoch)
	bump(&c.chunkEpochs[chunkOf(row)], epoch)
	bump(&c.archetypeEpoch, epoch)
}

// Archetype is the columnar, chunked storage for one component-set. It
// wraps a table.Table with three-level epoch tracking and a parallel
// EntityId column that table has no opinion about.
type Archetype struct {
	idx      archetypeIdx
	tbl      table.Table
	compMask mask.Mask
	types    []reflect.Type
	infos    map[reflect.Type]*ComponentInfo
	ids      []EntityId
	epochs   map[reflect.Type]*columnEpochs
}

func newArchetype(
	idx archetypeIdx,
	schema table.Schema,
	entryIndex table.EntryIndex,
	types []reflect.Type,
	elems []table.ElementType,
	infos map[reflect.Type]*ComponentInfo,
	compMask mask.Mask,
) (*Archetype, error) {
	tbl, err := table.NewTableBuilder().
		WithSchema(schema).
		WithEntryIndex(entryIndex).
		WithElementTypes(elems...).
		WithEvents(Config.tableEvents).
		Build()
	if err != nil {
		return nil, err
	}
	epochs := make(map[reflect.Type]*columnEpochs, len(types))
	for _, t := range types {
		epochs[t] = &columnEpochs{}
	}
	return &Archetype{
		idx:      idx,
		tbl:      tbl,
		compMask: compMask,
		types:    types,
		infos:    infos,
		epochs:   epochs,
	}, nil
}

func (a *Archetype) ID() archetypeIdx    { return a.idx }
func (a *Archetype) Table() table.Table  { return a.tbl }
func (a *Archetype) Mask() mask.Mask     { return a.compMask }
func (a *Archetype) Len() int            { return len(a.ids) }
func (a *Archetype) IsEmpty() bool       { return len(a.ids) == 0 }
func (a *Archetype) Types() []reflect.Type { return a.types }

// HasComponent reports whether t is one of this archetype's columns.
func (a *Archetype) HasComponent(t reflect.Type) bool {
	_, ok := a.infos[t]
	return ok
}

// IdAt returns the EntityId stored at row, used to verify invariant #1
// (archetype[arch].id_at(row) == E for every live E resolved to (arch,row)).
func (a *Archetype) IdAt(row int) EntityId { return a.ids[row] }

// ArchetypeEpoch returns the column-level epoch for t, or the zero EpochId
// if t is not a column of this archetype.
func (a *Archetype) ArchetypeEpoch(t reflect.Type) EpochId {
	if ce, ok := a.epochs[t]; ok {
		return ce.archetypeEpoch
	}
	return EpochId{}
}

// chunkEpoch / entityEpoch are used by Fetch implementations in query.go.
func (a *Archetype) chunkEpoch(t reflect.Type, chunk int) EpochId {
	ce := a.epochs[t]
	if chunk >= len(ce.chunkEpochs) {
		return EpochId{}
	}
	return ce.chunkEpochs[chunk]
}

func (a *Archetype) entityEpoch(t reflect.Type, row int) EpochId {
	return a.epochs[t].entityEpochs[row]
}

func (a *Archetype) touch(t reflect.Type, row int, epoch EpochId) {
	a.epochs[t].touch(row, epoch)
}

// touchArchetypeEpoch bumps only the archetype-level stamp for t, used when
// a write query is constructed against an archetype before any row is
// actually visited.
func (a *Archetype) touchArchetypeEpoch(t reflect.Type, epoch EpochId) {
	bump(&a.epochs[t].archetypeEpoch, epoch)
}

// touchChunkEpoch bumps the chunk- and archetype-level stamps for t,
// leaving per-entity stamps alone until GetItem touches a specific row.
func (a *Archetype) touchChunkEpoch(t reflect.Type, chunk int, epoch EpochId) {
	ce := a.epochs[t]
	bump(&ce.chunkEpochs[chunk], epoch)
	bump(&ce.archetypeEpoch, epoch)
}

// rowValue reads the current value of column t at row as an any, used for
// on-drop hook dispatch and cross-archetype raw copy bookkeeping, via a
// reflect-based walk of Table.Rows().
func (a *Archetype) rowValue(t reflect.Type, row int) any {
	for _, col := range a.tbl.Rows() {
		rv := reflect.Value(col)
		if rv.Type().Elem() == t {
			return rv.Index(row).Interface()
		}
	}
	return nil
}

// appendRow grows every column's epoch tracking and the id column for a
// freshly appended row (used by Spawn and the destination side of a
// migration).
func (a *Archetype) appendRow(id EntityId, row int) {
	if row == len(a.ids) {
		a.ids = append(a.ids, id)
	} else {
		a.ids[row] = id
	}
	for _, ce := range a.epochs {
		ce.grow(row)
	}
}

// swapRemove drops the last row into hole (unless hole is already last)
// and shrinks every column. Returns the id that moved into hole, if any.
// The moved row's chunk epoch at its new position is raised to cover the
// epoch it carried at the old position, since hole and last can fall in
// different chunks and chunk_epoch must stay >= every entity_epoch it
// covers.
func (a *Archetype) swapRemove(hole int) *EntityId {
	last := len(a.ids) - 1
	var moved *EntityId
	if hole != last {
		m := a.ids[last]
		moved = &m
		a.ids[hole] = a.ids[last]
		for _, ce := range a.epochs {
			movedEpoch := ce.entityEpochs[last]
			ce.entityEpochs[hole] = movedEpoch
			bump(&ce.chunkEpochs[chunkOf(hole)], movedEpoch)
		}
	}
	a.ids = a.ids[:last]
	for _, ce := range a.epochs {
		ce.shrinkTo(last)
	}
	return moved
}

// Spawn appends a row for id, sets every bundle-supplied column, and
// stamps all three epoch levels of every touched column to epoch.
func (a *Archetype) Spawn(id EntityId, bundle Bundle, epoch EpochId) (int, error) {
	entries, err := a.tbl.NewEntries(1)
	if err != nil {
		return 0, err
	}
	row := entries[0].Index()
	a.appendRow(id, row)
	for _, item := range bundle {
		item.set(a.tbl, row)
		a.touch(item.typ, row, epoch)
	}
	return row, nil
}

// DespawnUnchecked runs on-drop hooks for every component at row, deletes
// the row from storage, and reports the entity (if any) that was moved
// into row by swap-remove compaction so the caller can fix its directory.
func (a *Archetype) DespawnUnchecked(row int, enc *ActionEncoder) (*EntityId, error) {
	id := a.ids[row]
	for _, t := range a.types {
		info := a.infos[t]
		if info == nil || info.OnDrop == nil {
			continue
		}
		info.OnDrop(enc, id, a.rowValue(t, row))
	}
	entry, err := a.tbl.Entry(row)
	if err != nil {
		return nil, err
	}
	if _, err := a.tbl.DeleteEntries(int(entry.ID())); err != nil {
		return nil, err
	}
	return a.swapRemove(row), nil
}

// MoveInto transfers the row at src's index `row` into dst, preserving
// every column common to both by table's raw-copy TransferEntries, and
// returns dst's new row index plus any entity moved into the vacated src
// row by swap-remove compaction.
func (src *Archetype) MoveInto(dst *Archetype, row int, id EntityId, epoch EpochId) (int, *EntityId, error) {
	if err := src.tbl.TransferEntries(dst.tbl, row); err != nil {
		return 0, nil, err
	}
	dstRow := dst.tbl.Length() - 1
	dst.appendRow(id, dstRow)
	for _, t := range dst.types {
		if src.HasComponent(t) {
			dst.touch(t, dstRow, epoch)
		}
	}
	return dstRow, src.swapRemove(row), nil
}

// dropMissing runs on-drop hooks for every component present in src but
// absent from dst, reading the value before the migrating TransferEntries
// call discards it. Call before MoveInto.
func (src *Archetype) dropMissing(dst *Archetype, row int, enc *ActionEncoder) {
	id := src.ids[row]
	for _, t := range src.types {
		if dst.HasComponent(t) {
			continue
		}
		info := src.infos[t]
		if info == nil || info.OnDrop == nil {
			continue
		}
		info.OnDrop(enc, id, src.rowValue(t, row))
	}
}
