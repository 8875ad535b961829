package granary

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// Component is any data type registered as an ECS component column: a
// table.ElementType, nothing more.
type Component interface {
	table.ElementType
}

// DropHook runs when a component instance is removed from an entity, via
// despawn, remove, or a relation container emptying out. Hooks never fail;
// any reported failure from within a hook is fatal.
type DropHook func(encoder *ActionEncoder, entity EntityId, value any)

// SetHook runs when a component value is overwritten in place. Returning
// false suppresses the subsequent drop of the replaced value -- used by
// exclusive relations to let the hook decide whether the displaced target
// gets its own on_drop call.
type SetHook func(encoder *ActionEncoder, entity EntityId, old, new any) bool

// BorrowKind describes the dynamic access a query declares against a
// trait-object style component, for cross-system conflict checking done
// by an external scheduler.
type BorrowKind int

const (
	BorrowNone BorrowKind = iota
	BorrowRead
	BorrowWrite
)

// ComponentInfo is the type-erased vtable the archetype layer dispatches
// hooks through. Size/alignment/layout are table's concern (table.ElementType);
// granary only adds what table has no opinion about.
type ComponentInfo struct {
	Type    reflect.Type
	OnDrop  DropHook
	OnSet   SetHook
	Borrows []BorrowKind
}

// ComponentRegistry is the get-or-register store of ComponentInfo, keyed
// by the String() form of the component's reflect.Type, built atop
// SimpleCache[T] (cache.go):
// same shape, component metadata instead of a generic asset cache.
type ComponentRegistry struct {
	cache *SimpleCache[ComponentInfo]
}

// NewComponentRegistry returns a registry that can hold up to cap distinct
// component types.
func NewComponentRegistry(cap int) *ComponentRegistry {
	return &ComponentRegistry{cache: NewSimpleCache[ComponentInfo](cap)}
}

// GetOrRegister returns the ComponentInfo for t, registering a default
// (hookless) entry the first time t is seen.
func (r *ComponentRegistry) GetOrRegister(t reflect.Type) *ComponentInfo {
	key := t.String()
	if idx, ok := r.cache.GetIndex(key); ok {
		return r.cache.GetItem(idx)
	}
	idx, err := r.cache.Register(key, ComponentInfo{Type: t})
	if err != nil {
		panic(err)
	}
	return r.cache.GetItem(idx)
}

// Register installs an explicit ComponentInfo (with hooks), overwriting
// any default entry GetOrRegister may have created lazily.
func (r *ComponentRegistry) Register(info ComponentInfo) {
	if _, err := r.cache.Register(info.Type.String(), info); err != nil {
		panic(err)
	}
}

// BitFor returns the stable mask bit assigned to t, assigning the next
// free bit (registration order) the first time t is seen. This doubles
// the registry's cache index as both "where is this type's ComponentInfo"
// and "which mask.Mask bit represents this type" -- one registration-order
// integer serving both purposes.
func (r *ComponentRegistry) BitFor(t reflect.Type) uint32 {
	key := t.String()
	if idx, ok := r.cache.GetIndex(key); ok {
		return uint32(idx)
	}
	r.GetOrRegister(t)
	idx, _ := r.cache.GetIndex(key)
	return uint32(idx)
}

// ComponentDef is a registered, strongly-typed component definition
// returned by RegisterComponent. It wraps table.Accessor[T] and
// additionally knows how to build Bundle entries and dispatch its own
// typed hooks.
type ComponentDef[T any] struct {
	Component
	table.Accessor[T]
	registry *ComponentRegistry
}

// typ returns the reflect.Type this definition is keyed by throughout the
// registry, archetype, and directory layers.
func (c ComponentDef[T]) typ() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// New builds a Bundle entry initializing this column to value when used in
// World.Spawn / SpawnBatchN / InsertBundle.
func (c ComponentDef[T]) New(value T) BundleItem {
	v := value
	return BundleItem{
		typ:   c.typ(),
		value: v,
		set: func(tbl table.Table, row int) {
			*c.Accessor.Get(row, tbl) = v
		},
	}
}

// Get reads the column value for the entity at the given cursor position.
func (c ComponentDef[T]) Get(tbl table.Table, row int) *T {
	return c.Accessor.Get(row, tbl)
}

// Has reports whether tbl's archetype carries this column at all.
func (c ComponentDef[T]) Has(tbl table.Table) bool {
	return c.Accessor.Check(tbl)
}

// BundleItem is one (type, value, setter) triple inside a Bundle passed to
// Spawn or InsertBundle. value is kept boxed alongside set so bundle-level
// operations can hand it to a component's on_set/on_drop hook without
// needing T's type parameter in scope.
type BundleItem struct {
	typ   reflect.Type
	value any
	set   func(tbl table.Table, row int)
}

// Bundle is the set of component values used to initialize a freshly
// spawned entity. Duplicate component types inside a single bundle are a
// programmer error and panic before reaching the archetype layer.
type Bundle []BundleItem

func (b Bundle) validate() {
	seen := make(map[reflect.Type]bool, len(b))
	for _, item := range b {
		if seen[item.typ] {
			invalidBundlePanic(item.typ)
		}
		seen[item.typ] = true
	}
}

func (b Bundle) types() []reflect.Type {
	out := make([]reflect.Type, len(b))
	for i, item := range b {
		out[i] = item.typ
	}
	return out
}
