package granary

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// Access describes what a Query asks of a component type.
type Access int

const (
	AccessNone Access = iota
	AccessRead
	AccessWrite
	// AccessConflict (WriteAlias) signals a composite query declared
	// conflicting access (typically &mut T twice) against the same
	// component type.
	AccessConflict
)

// Query is a typed specification of what a View reads or writes and which
// archetypes are relevant. Item is the value produced per matching row.
// QueryNode/Evaluate's boolean filter tree (query.go) is generalized here
// from a pure boolean predicate into an item-producing, per-archetype-
// stateful protocol.
type Query[Item any] interface {
	// ComponentAccess reports what this query asks of a component type,
	// for cross-system conflict checking by an external scheduler.
	ComponentAccess(info *ComponentInfo) Access
	// VisitArchetype is the pure structural pre-filter.
	VisitArchetype(arch *Archetype) bool
	// VisitArchetypeLate may read archetype-level change data.
	VisitArchetypeLate(arch *Archetype) bool
	// AccessArchetype enumerates per-type accesses actually exercised
	// against this archetype.
	AccessArchetype(arch *Archetype, report func(t reflect.Type, access Access))
	// Fetch constructs per-archetype iteration state.
	Fetch(arch *Archetype, epoch EpochId) Fetch[Item]
}

// Fetch is a stateful per-archetype cursor realizing a Query for one
// archetype's rows.
type Fetch[Item any] interface {
	// VisitChunk reports whether any row in this chunk can match.
	VisitChunk(chunk int) bool
	// VisitItem reports whether a specific row matches.
	VisitItem(row int) bool
	// TouchChunk is invoked exactly once per chunk that yields >=1 item,
	// before the first GetItem in that chunk.
	TouchChunk(chunk int)
	// GetItem produces the item for row.
	GetItem(row int) Item
}

// columnQuery is implemented by the single-component query kinds
// (Read/Write/Alt/Copied) so Modified and write-alias detection can find
// the concrete type they target.
type columnQuery interface {
	column() reflect.Type
}

// ---- Read[T] ----

type readQuery[T any] struct{ def ComponentDef[T] }

// Read declares read-only access to T (&T).
func Read[T any](def ComponentDef[T]) Query[*T] { return readQuery[T]{def} }

func (q readQuery[T]) column() reflect.Type { return q.def.typ() }

func (q readQuery[T]) ComponentAccess(info *ComponentInfo) Access {
	if info.Type == q.def.typ() {
		return AccessRead
	}
	return AccessNone
}
func (q readQuery[T]) VisitArchetype(arch *Archetype) bool { return arch.HasComponent(q.def.typ()) }
func (q readQuery[T]) VisitArchetypeLate(*Archetype) bool  { return true }
func (q readQuery[T]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	if arch.HasComponent(q.def.typ()) {
		report(q.def.typ(), AccessRead)
	}
}
func (q readQuery[T]) Fetch(arch *Archetype, _ EpochId) Fetch[*T] {
	return readFetch[T]{tbl: arch.Table(), def: q.def}
}

type readFetch[T any] struct {
	tbl table.Table
	def ComponentDef[T]
}

func (f readFetch[T]) VisitChunk(int) bool { return true }
func (f readFetch[T]) VisitItem(int) bool  { return true }
func (f readFetch[T]) TouchChunk(int)      {}
func (f readFetch[T]) GetItem(row int) *T  { return f.def.Get(f.tbl, row) }

// ---- Write[T] ----

type writeQuery[T any] struct{ def ComponentDef[T] }

// Write declares read-write access to T (&mut T); touching or getting an
// item bumps all three epoch levels to the current epoch.
func Write[T any](def ComponentDef[T]) Query[*T] { return writeQuery[T]{def} }

func (q writeQuery[T]) column() reflect.Type { return q.def.typ() }

func (q writeQuery[T]) ComponentAccess(info *ComponentInfo) Access {
	if info.Type == q.def.typ() {
		return AccessWrite
	}
	return AccessNone
}
func (q writeQuery[T]) VisitArchetype(arch *Archetype) bool { return arch.HasComponent(q.def.typ()) }
func (q writeQuery[T]) VisitArchetypeLate(*Archetype) bool  { return true }
func (q writeQuery[T]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	if arch.HasComponent(q.def.typ()) {
		report(q.def.typ(), AccessWrite)
	}
}
func (q writeQuery[T]) Fetch(arch *Archetype, epoch EpochId) Fetch[*T] {
	arch.touchArchetypeEpoch(q.def.typ(), epoch)
	return &writeFetch[T]{arch: arch, def: q.def, epoch: epoch}
}

type writeFetch[T any] struct {
	arch  *Archetype
	def   ComponentDef[T]
	epoch EpochId
}

func (f *writeFetch[T]) VisitChunk(int) bool { return true }
func (f *writeFetch[T]) VisitItem(int) bool  { return true }
func (f *writeFetch[T]) TouchChunk(chunk int) {
	f.arch.touchChunkEpoch(f.def.typ(), chunk, f.epoch)
}
func (f *writeFetch[T]) GetItem(row int) *T {
	f.arch.touch(f.def.typ(), row, f.epoch)
	return f.def.Get(f.arch.Table(), row)
}

// ---- Alt[T] (lazy write) ----

// RefMut is the item type of an Alt query: it bumps epochs only when the
// caller actually dereferences mutably, not merely on touch/get.
type RefMut[T any] struct {
	value *T
	arch  *Archetype
	typ   reflect.Type
	row   int
	epoch EpochId
}

// Get reads without recording a change.
func (r RefMut[T]) Get() *T { return r.value }

// GetMut records a change at all three epoch levels and returns a mutable
// pointer.
func (r RefMut[T]) GetMut() *T {
	r.arch.touch(r.typ, r.row, r.epoch)
	return r.value
}

type altQuery[T any] struct{ def ComponentDef[T] }

// Alt declares deferred-write access to T: the item is a RefMut[T] whose
// epoch bump happens only at the point of GetMut.
func Alt[T any](def ComponentDef[T]) Query[RefMut[T]] { return altQuery[T]{def} }

func (q altQuery[T]) column() reflect.Type { return q.def.typ() }
func (q altQuery[T]) ComponentAccess(info *ComponentInfo) Access {
	if info.Type == q.def.typ() {
		return AccessWrite
	}
	return AccessNone
}
func (q altQuery[T]) VisitArchetype(arch *Archetype) bool { return arch.HasComponent(q.def.typ()) }
func (q altQuery[T]) VisitArchetypeLate(*Archetype) bool  { return true }
func (q altQuery[T]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	if arch.HasComponent(q.def.typ()) {
		report(q.def.typ(), AccessWrite)
	}
}
func (q altQuery[T]) Fetch(arch *Archetype, epoch EpochId) Fetch[RefMut[T]] {
	return altFetch[T]{arch: arch, def: q.def, epoch: epoch}
}

type altFetch[T any] struct {
	arch  *Archetype
	def   ComponentDef[T]
	epoch EpochId
}

func (f altFetch[T]) VisitChunk(int) bool { return true }
func (f altFetch[T]) VisitItem(int) bool  { return true }
func (f altFetch[T]) TouchChunk(int)      {}
func (f altFetch[T]) GetItem(row int) RefMut[T] {
	return RefMut[T]{
		value: f.def.Get(f.arch.Table(), row),
		arch:  f.arch,
		typ:   f.def.typ(),
		row:   row,
		epoch: f.epoch,
	}
}

// ---- Copied[T] ----

type copiedQuery[T any] struct{ def ComponentDef[T] }

// Copied declares read-only access yielding a value copy rather than a
// pointer, for component types the caller wants to treat as Copy.
func Copied[T any](def ComponentDef[T]) Query[T] { return copiedQuery[T]{def} }

func (q copiedQuery[T]) column() reflect.Type { return q.def.typ() }
func (q copiedQuery[T]) ComponentAccess(info *ComponentInfo) Access {
	if info.Type == q.def.typ() {
		return AccessRead
	}
	return AccessNone
}
func (q copiedQuery[T]) VisitArchetype(arch *Archetype) bool { return arch.HasComponent(q.def.typ()) }
func (q copiedQuery[T]) VisitArchetypeLate(*Archetype) bool  { return true }
func (q copiedQuery[T]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	if arch.HasComponent(q.def.typ()) {
		report(q.def.typ(), AccessRead)
	}
}
func (q copiedQuery[T]) Fetch(arch *Archetype, _ EpochId) Fetch[T] {
	return copiedFetch[T]{tbl: arch.Table(), def: q.def}
}

type copiedFetch[T any] struct {
	tbl table.Table
	def ComponentDef[T]
}

func (f copiedFetch[T]) VisitChunk(int) bool { return true }
func (f copiedFetch[T]) VisitItem(int) bool  { return true }
func (f copiedFetch[T]) TouchChunk(int)      {}
func (f copiedFetch[T]) GetItem(row int) T   { return *f.def.Get(f.tbl, row) }

// ---- With[T] / Without[T] ----

type withQuery[T any] struct{ def ComponentDef[T] }

// With filters to archetypes that contain T, without reading it.
func With[T any](def ComponentDef[T]) Query[struct{}] { return withQuery[T]{def} }

func (q withQuery[T]) ComponentAccess(info *ComponentInfo) Access {
	if info.Type == q.def.typ() {
		return AccessRead
	}
	return AccessNone
}
func (q withQuery[T]) VisitArchetype(arch *Archetype) bool { return arch.HasComponent(q.def.typ()) }
func (q withQuery[T]) VisitArchetypeLate(*Archetype) bool  { return true }
func (q withQuery[T]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	if arch.HasComponent(q.def.typ()) {
		report(q.def.typ(), AccessRead)
	}
}
func (q withQuery[T]) Fetch(*Archetype, EpochId) Fetch[struct{}] { return filterFetch{} }

type withoutQuery[T any] struct{ def ComponentDef[T] }

// Without filters to archetypes that do NOT contain T.
func Without[T any](def ComponentDef[T]) Query[struct{}] { return withoutQuery[T]{def} }

func (q withoutQuery[T]) ComponentAccess(*ComponentInfo) Access { return AccessNone }
func (q withoutQuery[T]) VisitArchetype(arch *Archetype) bool {
	return !arch.HasComponent(q.def.typ())
}
func (q withoutQuery[T]) VisitArchetypeLate(*Archetype) bool { return true }
func (q withoutQuery[T]) AccessArchetype(*Archetype, func(reflect.Type, Access)) {}
func (q withoutQuery[T]) Fetch(*Archetype, EpochId) Fetch[struct{}]              { return filterFetch{} }

type filterFetch struct{}

func (filterFetch) VisitChunk(int) bool  { return true }
func (filterFetch) VisitItem(int) bool   { return true }
func (filterFetch) TouchChunk(int)       {}
func (filterFetch) GetItem(int) struct{} { return struct{}{} }

// ---- Option[Q] ----

// Opt is the item produced by Option[Item]: Ok is false when the
// archetype lacks the wrapped query's column.
type Opt[Item any] struct {
	Value Item
	Ok    bool
}

type optionQuery[Item any] struct{ inner Query[Item] }

// Option makes inner's absence non-filtering: archetypes without inner's
// column still match, yielding Opt{Ok: false}.
func Option[Item any](inner Query[Item]) Query[Opt[Item]] { return optionQuery[Item]{inner} }

func (q optionQuery[Item]) ComponentAccess(info *ComponentInfo) Access {
	return q.inner.ComponentAccess(info)
}
func (q optionQuery[Item]) VisitArchetype(*Archetype) bool     { return true }
func (q optionQuery[Item]) VisitArchetypeLate(*Archetype) bool { return true }
func (q optionQuery[Item]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	if q.inner.VisitArchetype(arch) {
		q.inner.AccessArchetype(arch, report)
	}
}
func (q optionQuery[Item]) Fetch(arch *Archetype, epoch EpochId) Fetch[Opt[Item]] {
	if !q.inner.VisitArchetype(arch) {
		return optionFetchNone[Item]{}
	}
	return optionFetchSome[Item]{inner: q.inner.Fetch(arch, epoch)}
}

type optionFetchNone[Item any] struct{}

func (optionFetchNone[Item]) VisitChunk(int) bool { return true }
func (optionFetchNone[Item]) VisitItem(int) bool  { return true }
func (optionFetchNone[Item]) TouchChunk(int)      {}
func (optionFetchNone[Item]) GetItem(int) Opt[Item] {
	return Opt[Item]{Ok: false}
}

type optionFetchSome[Item any] struct{ inner Fetch[Item] }

func (f optionFetchSome[Item]) VisitChunk(c int) bool { return f.inner.VisitChunk(c) }
func (f optionFetchSome[Item]) VisitItem(r int) bool  { return f.inner.VisitItem(r) }
func (f optionFetchSome[Item]) TouchChunk(c int)      { f.inner.TouchChunk(c) }
func (f optionFetchSome[Item]) GetItem(r int) Opt[Item] {
	return Opt[Item]{Value: f.inner.GetItem(r), Ok: true}
}

// ---- Modified[Q] ----

type modifiedQuery[Item any] struct {
	inner Query[Item]
	col   reflect.Type
	after EpochId
}

// ModifiedQuery is Modified[Q]'s concrete type, exposing SetAfterEpoch so
// a caller can snap its window to the world's current epoch before each
// run.
type ModifiedQuery[Item any] struct {
	modifiedQuery[Item]
}

// Modified wraps inner (which must be one of Read/Write/Alt/Copied) so it
// visits only entries whose column was touched strictly after afterEpoch.
// Panics if inner isn't a single-column query: there is no well-defined
// "the epoch" for a composite.
func Modified[Item any](inner Query[Item], afterEpoch EpochId) *ModifiedQuery[Item] {
	cq, ok := inner.(columnQuery)
	if !ok {
		modifiedRequiresColumnPanic()
	}
	return &ModifiedQuery[Item]{modifiedQuery[Item]{inner: inner, col: cq.column(), after: afterEpoch}}
}

// SetAfterEpoch rebases the change-detection window.
func (q *ModifiedQuery[Item]) SetAfterEpoch(e EpochId) { q.after = e }

func (q *modifiedQuery[Item]) ComponentAccess(info *ComponentInfo) Access {
	return q.inner.ComponentAccess(info)
}
func (q *modifiedQuery[Item]) VisitArchetype(arch *Archetype) bool {
	return q.inner.VisitArchetype(arch)
}
func (q *modifiedQuery[Item]) VisitArchetypeLate(arch *Archetype) bool {
	return arch.ArchetypeEpoch(q.col).After(q.after) && q.inner.VisitArchetypeLate(arch)
}
func (q *modifiedQuery[Item]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	q.inner.AccessArchetype(arch, report)
}
func (q *modifiedQuery[Item]) Fetch(arch *Archetype, epoch EpochId) Fetch[Item] {
	return &modifiedFetch[Item]{inner: q.inner.Fetch(arch, epoch), arch: arch, col: q.col, after: q.after}
}

type modifiedFetch[Item any] struct {
	inner Fetch[Item]
	arch  *Archetype
	col   reflect.Type
	after EpochId
}

func (f *modifiedFetch[Item]) VisitChunk(chunk int) bool {
	return f.arch.chunkEpoch(f.col, chunk).After(f.after) && f.inner.VisitChunk(chunk)
}
func (f *modifiedFetch[Item]) VisitItem(row int) bool {
	return f.arch.entityEpoch(f.col, row).After(f.after) && f.inner.VisitItem(row)
}
func (f *modifiedFetch[Item]) TouchChunk(chunk int) { f.inner.TouchChunk(chunk) }
func (f *modifiedFetch[Item]) GetItem(row int) Item { return f.inner.GetItem(row) }

// ---- tuples ----

// Pair is the item type of Query2.
type Pair[A, B any] struct {
	A A
	B B
}

type query2[A, B any] struct {
	qa Query[A]
	qb Query[B]
}

// Query2 composes two queries into one, matching archetypes that satisfy
// both. Panics with a WriteAlias failure if both declare conflicting
// access to the same single component type.
func Query2[A, B any](qa Query[A], qb Query[B]) Query[Pair[A, B]] {
	checkAlias2(qa, qb)
	return query2[A, B]{qa, qb}
}

func checkAlias2[A, B any](qa Query[A], qb Query[B]) {
	ca, aok := qa.(columnQuery)
	cb, bok := qb.(columnQuery)
	if aok && bok && ca.column() == cb.column() {
		info := &ComponentInfo{Type: ca.column()}
		if combineAccess(qa.ComponentAccess(info), qb.ComponentAccess(info)) == AccessConflict {
			writeAliasPanic(ca.column())
		}
	}
}

func combineAccess(a, b Access) Access {
	if a == AccessWrite && b != AccessNone {
		return AccessConflict
	}
	if b == AccessWrite && a != AccessNone {
		return AccessConflict
	}
	if a != AccessNone {
		return a
	}
	return b
}

func (q query2[A, B]) ComponentAccess(info *ComponentInfo) Access {
	return combineAccess(q.qa.ComponentAccess(info), q.qb.ComponentAccess(info))
}
func (q query2[A, B]) VisitArchetype(arch *Archetype) bool {
	return q.qa.VisitArchetype(arch) && q.qb.VisitArchetype(arch)
}
func (q query2[A, B]) VisitArchetypeLate(arch *Archetype) bool {
	return q.qa.VisitArchetypeLate(arch) && q.qb.VisitArchetypeLate(arch)
}
func (q query2[A, B]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	q.qa.AccessArchetype(arch, report)
	q.qb.AccessArchetype(arch, report)
}
func (q query2[A, B]) Fetch(arch *Archetype, epoch EpochId) Fetch[Pair[A, B]] {
	return &fetch2[A, B]{fa: q.qa.Fetch(arch, epoch), fb: q.qb.Fetch(arch, epoch)}
}

type fetch2[A, B any] struct {
	fa Fetch[A]
	fb Fetch[B]
}

func (f *fetch2[A, B]) VisitChunk(c int) bool { return f.fa.VisitChunk(c) && f.fb.VisitChunk(c) }
func (f *fetch2[A, B]) VisitItem(r int) bool  { return f.fa.VisitItem(r) && f.fb.VisitItem(r) }
func (f *fetch2[A, B]) TouchChunk(c int)      { f.fa.TouchChunk(c); f.fb.TouchChunk(c) }
func (f *fetch2[A, B]) GetItem(r int) Pair[A, B] {
	return Pair[A, B]{A: f.fa.GetItem(r), B: f.fb.GetItem(r)}
}

// Triple is the item type of Query3.
type Triple[A, B, C any] struct {
	A A
	B B
	C C
}

// Query3 composes three queries, matching archetypes that satisfy all.
// Every pair of operands is checked for conflicting access to the same
// component type, not just the last operand against the combined rest.
func Query3[A, B, C any](qa Query[A], qb Query[B], qc Query[C]) Query[Triple[A, B, C]] {
	checkAlias2(qa, qb)
	checkAlias2(qa, qc)
	checkAlias2(qb, qc)
	return query3[A, B, C]{qa, qb, qc}
}

type query3[A, B, C any] struct {
	qa Query[A]
	qb Query[B]
	qc Query[C]
}

func (q query3[A, B, C]) ComponentAccess(info *ComponentInfo) Access {
	return combineAccess(combineAccess(q.qa.ComponentAccess(info), q.qb.ComponentAccess(info)), q.qc.ComponentAccess(info))
}
func (q query3[A, B, C]) VisitArchetype(arch *Archetype) bool {
	return q.qa.VisitArchetype(arch) && q.qb.VisitArchetype(arch) && q.qc.VisitArchetype(arch)
}
func (q query3[A, B, C]) VisitArchetypeLate(arch *Archetype) bool {
	return q.qa.VisitArchetypeLate(arch) && q.qb.VisitArchetypeLate(arch) && q.qc.VisitArchetypeLate(arch)
}
func (q query3[A, B, C]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	q.qa.AccessArchetype(arch, report)
	q.qb.AccessArchetype(arch, report)
	q.qc.AccessArchetype(arch, report)
}
func (q query3[A, B, C]) Fetch(arch *Archetype, epoch EpochId) Fetch[Triple[A, B, C]] {
	return &fetch3[A, B, C]{q.qa.Fetch(arch, epoch), q.qb.Fetch(arch, epoch), q.qc.Fetch(arch, epoch)}
}

type fetch3[A, B, C any] struct {
	fa Fetch[A]
	fb Fetch[B]
	fc Fetch[C]
}

func (f *fetch3[A, B, C]) VisitChunk(c int) bool {
	return f.fa.VisitChunk(c) && f.fb.VisitChunk(c) && f.fc.VisitChunk(c)
}
func (f *fetch3[A, B, C]) VisitItem(r int) bool {
	return f.fa.VisitItem(r) && f.fb.VisitItem(r) && f.fc.VisitItem(r)
}
func (f *fetch3[A, B, C]) TouchChunk(c int) { f.fa.TouchChunk(c); f.fb.TouchChunk(c); f.fc.TouchChunk(c) }
func (f *fetch3[A, B, C]) GetItem(r int) Triple[A, B, C] {
	return Triple[A, B, C]{A: f.fa.GetItem(r), B: f.fb.GetItem(r), C: f.fc.GetItem(r)}
}

// Quad is the item type of Query4.
type Quad[A, B, C, D any] struct {
	A A
	B B
	C C
	D D
}

// Query4 composes four queries, matching archetypes that satisfy all.
// Every pair of operands is checked for conflicting access to the same
// component type, not just the last operand against the combined rest.
func Query4[A, B, C, D any](qa Query[A], qb Query[B], qc Query[C], qd Query[D]) Query[Quad[A, B, C, D]] {
	checkAlias2(qa, qb)
	checkAlias2(qa, qc)
	checkAlias2(qa, qd)
	checkAlias2(qb, qc)
	checkAlias2(qb, qd)
	checkAlias2(qc, qd)
	return query4[A, B, C, D]{qa, qb, qc, qd}
}

type query4[A, B, C, D any] struct {
	qa Query[A]
	qb Query[B]
	qc Query[C]
	qd Query[D]
}

func (q query4[A, B, C, D]) ComponentAccess(info *ComponentInfo) Access {
	acc := combineAccess(q.qa.ComponentAccess(info), q.qb.ComponentAccess(info))
	acc = combineAccess(acc, q.qc.ComponentAccess(info))
	return combineAccess(acc, q.qd.ComponentAccess(info))
}
func (q query4[A, B, C, D]) VisitArchetype(arch *Archetype) bool {
	return q.qa.VisitArchetype(arch) && q.qb.VisitArchetype(arch) && q.qc.VisitArchetype(arch) && q.qd.VisitArchetype(arch)
}
func (q query4[A, B, C, D]) VisitArchetypeLate(arch *Archetype) bool {
	return q.qa.VisitArchetypeLate(arch) && q.qb.VisitArchetypeLate(arch) && q.qc.VisitArchetypeLate(arch) && q.qd.VisitArchetypeLate(arch)
}
func (q query4[A, B, C, D]) AccessArchetype(arch *Archetype, report func(reflect.Type, Access)) {
	q.qa.AccessArchetype(arch, report)
	q.qb.AccessArchetype(arch, report)
	q.qc.AccessArchetype(arch, report)
	q.qd.AccessArchetype(arch, report)
}
func (q query4[A, B, C, D]) Fetch(arch *Archetype, epoch EpochId) Fetch[Quad[A, B, C, D]] {
	return &fetch4[A, B, C, D]{q.qa.Fetch(arch, epoch), q.qb.Fetch(arch, epoch), q.qc.Fetch(arch, epoch), q.qd.Fetch(arch, epoch)}
}

type fetch4[A, B, C, D any] struct {
	fa Fetch[A]
	fb Fetch[B]
	fc Fetch[C]
	fd Fetch[D]
}

func (f *fetch4[A, B, C, D]) VisitChunk(c int) bool {
	return f.fa.VisitChunk(c) && f.fb.VisitChunk(c) && f.fc.VisitChunk(c) && f.fd.VisitChunk(c)
}
func (f *fetch4[A, B, C, D]) VisitItem(r int) bool {
	return f.fa.VisitItem(r) && f.fb.VisitItem(r) && f.fc.VisitItem(r) && f.fd.VisitItem(r)
}
func (f *fetch4[A, B, C, D]) TouchChunk(c int) {
	f.fa.TouchChunk(c)
	f.fb.TouchChunk(c)
	f.fc.TouchChunk(c)
	f.fd.TouchChunk(c)
}
func (f *fetch4[A, B, C, D]) GetItem(r int) Quad[A, B, C, D] {
	return Quad[A, B, C, D]{A: f.fa.GetItem(r), B: f.fb.GetItem(r), C: f.fc.GetItem(r), D: f.fd.GetItem(r)}
}
