package granary

import (
	"fmt"
	"reflect"

	"github.com/TheBitDrifter/bark"
)

// NoSuchEntityError is returned from every entity-scoped operation when the
// id's slot is free or its generation is stale.
type NoSuchEntityError struct {
	Entity EntityId
}

func (e NoSuchEntityError) Error() string {
	return fmt.Sprintf("granary: no such entity: %v", e.Entity)
}

// MissingComponentError is returned when an entity lacks the component a
// read/remove/drop/query_one call names.
type MissingComponentError struct {
	Entity EntityId
	Type   reflect.Type
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("granary: entity %v has no component %s", e.Entity, e.Type)
}

// QueryNotSatisfiedError is returned from a single-entity query when the
// query's filter rejects the entity.
type QueryNotSatisfiedError struct {
	Entity EntityId
}

func (e QueryNotSatisfiedError) Error() string {
	return fmt.Sprintf("granary: entity %v does not satisfy query", e.Entity)
}

// LockedWorldError describes a structural mutation attempted while the
// World is mid-mutation. No operation in this package returns it: hooks
// receive only an ActionEncoder, so their mutations are queued rather than
// rejected.
type LockedWorldError struct{}

func (e LockedWorldError) Error() string {
	return "granary: world is locked for a deferred action drain"
}

// writeAliasPanic is raised at query construction when the same component
// type is declared &mut twice (or two conflicting accesses target the same
// type). This is a programmer error, not a runtime condition, so it is
// fatal rather than returned.
func writeAliasPanic(t reflect.Type) {
	panic(bark.AddTrace(fmt.Errorf("granary: write-alias on component %s", t)))
}

// invalidBundlePanic is raised when a bundle passed to Spawn/SpawnBatchN
// names the same component type twice.
func invalidBundlePanic(t reflect.Type) {
	panic(bark.AddTrace(fmt.Errorf("granary: duplicate component %s in bundle", t)))
}

// modifiedRequiresColumnPanic is raised when Modified is given a composite
// query -- there is no single column to snap an epoch window to.
func modifiedRequiresColumnPanic() {
	panic(bark.AddTrace(fmt.Errorf("granary: Modified requires a single-column query (Read/Write/Alt/Copied)")))
}
