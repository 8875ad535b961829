package granary

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// Relation connects two entities together instead of describing one, the
// way a Component does. Grounded on
// original_source/src/relation/mod.rs's Relation trait, trimmed to the two
// flags that change storage shape; the optional on_drop/on_set/
// on_target_drop hooks become the separate RelationDropHook /
// RelationSetHook / RelationTargetDropHook interfaces below, checked by
// type assertion the way Go expresses optional trait methods (the
// io.ReaderFrom pattern) since a plain interface can't give them default
// no-op bodies.
type Relation interface {
	// Exclusive reports whether an origin can hold at most one instance
	// of this relation at a time; adding a second replaces the first.
	Exclusive() bool
	// Symmetric reports whether adding this relation to an origin also
	// adds the mirror image (target/origin swapped) to the target.
	Symmetric() bool
}

// RelationDropHook runs when a relation instance is removed: by
// DropRelation, by the origin despawning, or by cascade when the target
// despawns.
type RelationDropHook[R Relation] interface {
	OnRelationDrop(origin, target EntityId, value R, enc *ActionEncoder)
}

// RelationSetHook runs when AddRelation overwrites an existing
// origin-target pair (exclusive re-target, or re-adding the same target).
// Returning false suppresses the OnRelationDrop call that would otherwise
// follow for the replaced value.
type RelationSetHook[R Relation] interface {
	OnRelationSet(old R, new R, origin, oldTarget, newTarget EntityId, enc *ActionEncoder) bool
}

// RelationTargetDropHook runs once per recorded origin when a
// non-symmetric relation's target entity despawns, ahead of that origin's
// own OnRelationDrop call -- it exists so a listener can distinguish "the
// target went away out from under me" from every other way a relation
// entry gets removed.
type RelationTargetDropHook[R Relation] interface {
	OnRelationTargetDrop(origin, target EntityId, value R, enc *ActionEncoder)
}

type relationOrigin[R Relation] struct {
	target   EntityId
	relation R
}

// OriginComponent is the component installed on a relation's origin
// entity. It is a table-backed column like any other Component; the
// slice holds exactly one entry when R.Exclusive(), more otherwise.
// Adapted from OriginComponent<R>'s exclusive/non_exclusive union in
// original_source -- Go has no safe union type, so a capacity-checked
// slice plays both roles at the cost of one empty allocation in the
// exclusive case.
type OriginComponent[R Relation] struct {
	origins []relationOrigin[R]
}

func (c *OriginComponent[R]) indexOf(target EntityId) int {
	for i := range c.origins {
		if c.origins[i].target == target {
			return i
		}
	}
	return -1
}

func (c *OriginComponent[R]) removeAt(i int) {
	last := len(c.origins) - 1
	c.origins[i] = c.origins[last]
	c.origins = c.origins[:last]
}

// TargetComponent is installed on the target entity of a non-symmetric
// relation, recording which origins currently point at it. It carries no
// relation data of its own -- that lives on the origin side -- it exists
// purely so despawning a target can cascade back to every origin.
type TargetComponent[R Relation] struct {
	origins []EntityId
}

func (c *TargetComponent[R]) indexOf(origin EntityId) int {
	for i, o := range c.origins {
		if o == origin {
			return i
		}
	}
	return -1
}

func (c *TargetComponent[R]) removeAt(i int) {
	last := len(c.origins) - 1
	c.origins[i] = c.origins[last]
	c.origins = c.origins[:last]
}

// RelationInfo is the bookkeeping World keeps per registered relation
// type, independent of the concrete R so World doesn't need to be
// generic.
type RelationInfo struct {
	Symmetric bool
	Exclusive bool
}

// RelationDef is the handle RegisterRelation returns: the component
// definitions backing a relation type plus its static flags.
type RelationDef[R Relation] struct {
	origin    ComponentDef[OriginComponent[R]]
	target    ComponentDef[TargetComponent[R]]
	symmetric bool
	exclusive bool
}

// RegisterRelation registers R's backing components and installs the
// on-drop cascades that keep both sides of a relation consistent.
func RegisterRelation[R Relation](b *WorldBuilder) RelationDef[R] {
	var zero R
	def := RelationDef[R]{symmetric: zero.Symmetric(), exclusive: zero.Exclusive()}
	def.origin = RegisterComponent[OriginComponent[R]](b)
	RegisterComponentHooks[OriginComponent[R]](b, def.origin, originDropHook(def), nil)
	if !def.symmetric {
		def.target = RegisterComponent[TargetComponent[R]](b)
		RegisterComponentHooks[TargetComponent[R]](b, def.target, targetDropHook(def), nil)
	}
	b.relations[reflect.TypeOf(zero)] = &RelationInfo{Symmetric: def.symmetric, Exclusive: def.exclusive}
	return def
}

// originDropHook fires whenever an OriginComponent[R] is fully removed
// from an entity: by World.Remove, by Despawn, or by DropRelation
// emptying it out. Every entry it held is unwound: the relation's own
// OnRelationDrop hook runs, then the other half of the bookkeeping
// (symmetric mirror, or non-symmetric target backlink) is cleared via a
// deferred action, since that mutates a *different* entity's components.
func originDropHook[R Relation](def RelationDef[R]) DropHook {
	return func(enc *ActionEncoder, entity EntityId, value any) {
		comp := value.(OriginComponent[R])
		for _, o := range comp.origins {
			target := o.target
			rel := o.relation
			if hook, ok := any(rel).(RelationDropHook[R]); ok {
				hook.OnRelationDrop(entity, target, rel, enc)
			}
			if def.symmetric {
				if target != entity {
					enc.Defer(func(w *World, _ *ActionBuffer) {
						removeSymmetricMirror(w, def, target, entity)
					})
				}
			} else {
				enc.Defer(func(w *World, _ *ActionBuffer) {
					removeTargetBacklink(w, def, target, entity)
				})
			}
		}
	}
}

// targetDropHook fires when a non-symmetric relation's target entity is
// despawned: every recorded origin has its half of the relation removed,
// with OnRelationTargetDrop invoked for each before OnRelationDrop.
func targetDropHook[R Relation](def RelationDef[R]) DropHook {
	return func(enc *ActionEncoder, target EntityId, value any) {
		comp := value.(TargetComponent[R])
		for _, originID := range comp.origins {
			o := originID
			enc.Defer(func(w *World, _ *ActionBuffer) {
				removeOriginEntry(w, def, o, target, true)
			})
		}
	}
}

// removeSymmetricMirror drops the entry pointing at origin out of
// target's own OriginComponent[R] (target is also an origin under a
// symmetric relation), without re-running hooks: the real removal
// already fired them on the triggering side.
func removeSymmetricMirror[R Relation](w *World, def RelationDef[R], target, origin EntityId) {
	comp, err := Get(w, target, def.origin)
	if err != nil {
		return
	}
	if i := comp.indexOf(origin); i >= 0 {
		comp.removeAt(i)
	}
	if len(comp.origins) == 0 {
		_ = Remove(w, target, def.origin)
	} else {
		_ = Touch(w, target, def.origin)
	}
}

// removeTargetBacklink drops origin out of target's TargetComponent[R]
// list, the non-symmetric counterpart to removeSymmetricMirror.
func removeTargetBacklink[R Relation](w *World, def RelationDef[R], target, origin EntityId) {
	comp, err := Get(w, target, def.target)
	if err != nil {
		return
	}
	if i := comp.indexOf(origin); i >= 0 {
		comp.removeAt(i)
	}
	if len(comp.origins) == 0 {
		_ = Remove(w, target, def.target)
	} else {
		_ = Touch(w, target, def.target)
	}
}

// removeOriginEntry drops the target entry out of origin's
// OriginComponent[R]. When viaTargetDrop is true (the target entity
// despawned, cascading back through targetDropHook) OnRelationTargetDrop
// runs first, then OnRelationDrop runs either way. This is the
// counterpart targetDropHook defers for each recorded origin.
func removeOriginEntry[R Relation](w *World, def RelationDef[R], origin, target EntityId, viaTargetDrop bool) {
	comp, err := Get(w, origin, def.origin)
	if err != nil {
		return
	}
	i := comp.indexOf(target)
	if i < 0 {
		return
	}
	rel := comp.origins[i].relation
	comp.removeAt(i)
	if len(comp.origins) == 0 {
		_ = Remove(w, origin, def.origin)
	} else {
		_ = Touch(w, origin, def.origin)
	}
	enc := newActionEncoder(w.actions)
	if viaTargetDrop {
		if hook, ok := any(rel).(RelationTargetDropHook[R]); ok {
			hook.OnRelationTargetDrop(origin, target, rel, enc)
		}
	}
	if hook, ok := any(rel).(RelationDropHook[R]); ok {
		hook.OnRelationDrop(origin, target, rel, enc)
	}
}

// AddRelation adds or overwrites the R relation from origin to target.
// Exclusive relations replace whatever single instance origin held.
// Symmetric relations also add the mirror image to target, unless
// origin == target (a self-relation is its own mirror). Non-symmetric
// relations additionally record origin on target's TargetComponent so a
// later despawn of target cascades back. Drains the action buffer before
// returning: a retarget can defer removeSymmetricMirror/
// removeTargetBacklink through Touch, which (unlike Insert) never drains
// the buffer itself.
func AddRelation[R Relation](w *World, def RelationDef[R], origin, target EntityId, rel R) error {
	err := addOrigin(w, def, origin, target, rel)
	if err == nil {
		if def.symmetric {
			if origin != target {
				err = addOrigin(w, def, target, origin, rel)
			}
		} else {
			err = addTargetBacklink(w, def, origin, target)
		}
	}
	w.actions.Execute(w)
	return err
}

func addOrigin[R Relation](w *World, def RelationDef[R], origin, target EntityId, rel R) error {
	if !Has(w, origin, def.origin) {
		return Insert(w, origin, def.origin, OriginComponent[R]{origins: []relationOrigin[R]{{target: target, relation: rel}}})
	}
	comp, err := Get(w, origin, def.origin)
	if err != nil {
		return err
	}
	enc := newActionEncoder(w.actions)
	if def.exclusive {
		old := comp.origins[0]
		replaceOrigin(def, origin, old, target, rel, enc)
		comp.origins[0] = relationOrigin[R]{target: target, relation: rel}
	} else if i := comp.indexOf(target); i >= 0 {
		old := comp.origins[i]
		replaceOrigin(def, origin, old, target, rel, enc)
		comp.origins[i] = relationOrigin[R]{target: target, relation: rel}
	} else {
		comp.origins = append(comp.origins, relationOrigin[R]{target: target, relation: rel})
	}
	return Touch(w, origin, def.origin)
}

func replaceOrigin[R Relation](def RelationDef[R], origin EntityId, old relationOrigin[R], newTarget EntityId, newRel R, enc *ActionEncoder) {
	drop := true
	if hook, ok := any(old.relation).(RelationSetHook[R]); ok {
		drop = hook.OnRelationSet(old.relation, newRel, origin, old.target, newTarget, enc)
	}
	if drop {
		if hook, ok := any(old.relation).(RelationDropHook[R]); ok {
			hook.OnRelationDrop(origin, old.target, old.relation, enc)
		}
	}
	if old.target != newTarget {
		if def.symmetric {
			enc.Defer(func(w *World, _ *ActionBuffer) { removeSymmetricMirror(w, def, old.target, origin) })
		} else {
			enc.Defer(func(w *World, _ *ActionBuffer) { removeTargetBacklink(w, def, old.target, origin) })
		}
	}
}

func addTargetBacklink[R Relation](w *World, def RelationDef[R], origin, target EntityId) error {
	if !Has(w, target, def.target) {
		return Insert(w, target, def.target, TargetComponent[R]{origins: []EntityId{origin}})
	}
	comp, err := Get(w, target, def.target)
	if err != nil {
		return err
	}
	if comp.indexOf(origin) < 0 {
		comp.origins = append(comp.origins, origin)
	}
	return Touch(w, target, def.target)
}

// DropRelation removes the origin->target instance of R, running its
// OnRelationDrop hook. Returns MissingComponentError if origin carries no
// R relation to target.
func DropRelation[R Relation](w *World, def RelationDef[R], origin, target EntityId) error {
	comp, err := Get(w, origin, def.origin)
	if err != nil {
		return err
	}
	i := comp.indexOf(target)
	if i < 0 {
		return MissingComponentError{Entity: origin, Type: def.origin.typ()}
	}
	rel := comp.origins[i].relation
	enc := newActionEncoder(w.actions)
	if hook, ok := any(rel).(RelationDropHook[R]); ok {
		hook.OnRelationDrop(origin, target, rel, enc)
	}
	comp.removeAt(i)
	if len(comp.origins) == 0 {
		if err := Remove(w, origin, def.origin); err != nil {
			return err
		}
	} else if err := Touch(w, origin, def.origin); err != nil {
		return err
	}
	if def.symmetric {
		if origin != target {
			removeSymmetricMirror(w, def, target, origin)
		}
	} else {
		removeTargetBacklink(w, def, target, origin)
	}
	w.actions.Execute(w)
	return nil
}

// ---- relation queries ----

// Related filters to entities that are an origin of R, yielding every
// current target.
type relatedQuery[R Relation] struct{ def RelationDef[R] }

func Related[R Relation](def RelationDef[R]) Query[[]EntityId] { return relatedQuery[R]{def} }

func (q relatedQuery[R]) column() reflect.Type { return q.def.origin.typ() }
func (q relatedQuery[R]) ComponentAccess(info *ComponentInfo) Access {
	if info.Type == q.def.origin.typ() {
		return AccessRead
	}
	return AccessNone
}
func (q relatedQuery[R]) VisitArchetype(arch *Archetype) bool {
	return arch.HasComponent(q.def.origin.typ())
}
func (q relatedQuery[R]) VisitArchetypeLate(*Archetype) bool { return true }
func (q relatedQuery[R]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	if arch.HasComponent(q.def.origin.typ()) {
		report(q.def.origin.typ(), AccessRead)
	}
}
func (q relatedQuery[R]) Fetch(arch *Archetype, _ EpochId) Fetch[[]EntityId] {
	return relatedFetch[R]{tbl: arch.Table(), def: q.def}
}

type relatedFetch[R Relation] struct {
	tbl table.Table
	def RelationDef[R]
}

func (f relatedFetch[R]) VisitChunk(int) bool { return true }
func (f relatedFetch[R]) VisitItem(int) bool  { return true }
func (f relatedFetch[R]) TouchChunk(int)      {}
func (f relatedFetch[R]) GetItem(row int) []EntityId {
	comp := f.def.origin.Get(f.tbl, row)
	out := make([]EntityId, len(comp.origins))
	for i, o := range comp.origins {
		out[i] = o.target
	}
	return out
}

// RelatesExclusive filters to entities holding an exclusive R relation,
// yielding the single current target.
type relatesExclusiveQuery[R Relation] struct{ def RelationDef[R] }

func RelatesExclusive[R Relation](def RelationDef[R]) Query[EntityId] {
	return relatesExclusiveQuery[R]{def}
}

func (q relatesExclusiveQuery[R]) column() reflect.Type { return q.def.origin.typ() }
func (q relatesExclusiveQuery[R]) ComponentAccess(info *ComponentInfo) Access {
	if info.Type == q.def.origin.typ() {
		return AccessRead
	}
	return AccessNone
}
func (q relatesExclusiveQuery[R]) VisitArchetype(arch *Archetype) bool {
	return arch.HasComponent(q.def.origin.typ())
}
func (q relatesExclusiveQuery[R]) VisitArchetypeLate(*Archetype) bool { return true }
func (q relatesExclusiveQuery[R]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	if arch.HasComponent(q.def.origin.typ()) {
		report(q.def.origin.typ(), AccessRead)
	}
}
func (q relatesExclusiveQuery[R]) Fetch(arch *Archetype, _ EpochId) Fetch[EntityId] {
	return relatesExclusiveFetch[R]{tbl: arch.Table(), def: q.def}
}

type relatesExclusiveFetch[R Relation] struct {
	tbl table.Table
	def RelationDef[R]
}

func (f relatesExclusiveFetch[R]) VisitChunk(int) bool { return true }
func (f relatesExclusiveFetch[R]) VisitItem(int) bool  { return true }
func (f relatesExclusiveFetch[R]) TouchChunk(int)      {}
func (f relatesExclusiveFetch[R]) GetItem(row int) EntityId {
	comp := f.def.origin.Get(f.tbl, row)
	if len(comp.origins) == 0 {
		return Null
	}
	return comp.origins[0].target
}

// RelationTo filters to entities related to exactly `target` via R,
// yielding a copy of the relation value.
type relationToQuery[R Relation] struct {
	def    RelationDef[R]
	target EntityId
}

func RelationTo[R Relation](def RelationDef[R], target EntityId) Query[R] {
	return relationToQuery[R]{def, target}
}

func (q relationToQuery[R]) column() reflect.Type { return q.def.origin.typ() }
func (q relationToQuery[R]) ComponentAccess(info *ComponentInfo) Access {
	if info.Type == q.def.origin.typ() {
		return AccessRead
	}
	return AccessNone
}
func (q relationToQuery[R]) VisitArchetype(arch *Archetype) bool {
	return arch.HasComponent(q.def.origin.typ())
}
func (q relationToQuery[R]) VisitArchetypeLate(*Archetype) bool { return true }
func (q relationToQuery[R]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	if arch.HasComponent(q.def.origin.typ()) {
		report(q.def.origin.typ(), AccessRead)
	}
}
func (q relationToQuery[R]) Fetch(arch *Archetype, _ EpochId) Fetch[R] {
	return relationToFetch[R]{tbl: arch.Table(), def: q.def, target: q.target}
}

type relationToFetch[R Relation] struct {
	tbl    table.Table
	def    RelationDef[R]
	target EntityId
}

func (f relationToFetch[R]) VisitChunk(int) bool { return true }
func (f relationToFetch[R]) VisitItem(row int) bool {
	comp := f.def.origin.Get(f.tbl, row)
	return comp.indexOf(f.target) >= 0
}
func (f relationToFetch[R]) TouchChunk(int) {}
func (f relationToFetch[R]) GetItem(row int) R {
	comp := f.def.origin.Get(f.tbl, row)
	i := comp.indexOf(f.target)
	return comp.origins[i].relation
}
