package granary

import (
	"reflect"

	"github.com/TheBitDrifter/table"
)

// WorldBuilder pre-registers component and relation types before Build
// hands back a usable World, the two-step
// "schema := table.Factory.NewSchema(); storage := Factory.NewStorage(schema)"
// construction sequence (factory.go, doc.go).
type WorldBuilder struct {
	schema       table.Schema
	entryIndex   table.EntryIndex
	registry     *ComponentRegistry
	elementTypes map[reflect.Type]table.ElementType
	relations    map[reflect.Type]*RelationInfo
}

// NewWorldBuilder returns a builder with an empty schema, ready to
// register components and relations.
func NewWorldBuilder() *WorldBuilder {
	return &WorldBuilder{
		schema:       table.Factory.NewSchema(),
		entryIndex:   table.Factory.NewEntryIndex(),
		registry:     NewComponentRegistry(1024),
		elementTypes: make(map[reflect.Type]table.ElementType),
		relations:    make(map[reflect.Type]*RelationInfo),
	}
}

// RegisterComponent registers T as a component type and returns the typed
// definition used to build bundles, queries, and direct Get/Insert/Remove
// calls against it.
func RegisterComponent[T any](b *WorldBuilder) ComponentDef[T] {
	iden := table.FactoryNewElementType[T]()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.elementTypes[t] = iden
	b.registry.GetOrRegister(t)
	return ComponentDef[T]{
		Component: iden,
		Accessor:  table.FactoryNewAccessor[T](iden),
		registry:  b.registry,
	}
}

// RegisterComponentHooks installs on_drop/on_set hooks for an already
// registered component type.
func RegisterComponentHooks[T any](b *WorldBuilder, def ComponentDef[T], onDrop DropHook, onSet SetHook) {
	b.registry.Register(ComponentInfo{Type: def.typ(), OnDrop: onDrop, OnSet: onSet})
}

// Build finalizes the World. The returned World always has archetype 0
// registered as the null (no-column) archetype.
func (b *WorldBuilder) Build() *World {
	w := &World{
		directory:    NewEntityDirectory(),
		archByKey:    make(map[string]archetypeIdx),
		edges:        newEdges(),
		registry:     b.registry,
		elementTypes: b.elementTypes,
		schema:       b.schema,
		entryIndex:   b.entryIndex,
		epoch:        NewEpochCounter(),
		actions:      NewActionBuffer(),
		relations:    b.relations,
	}
	w.archetypeFor(nil)
	return w
}
