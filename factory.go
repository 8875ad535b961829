package granary

// factory implements the factory pattern for granary's top-level
// constructors.
type factory struct{}

// Factory is the global factory instance for creating granary worlds and
// caches.
var Factory factory

// NewWorldBuilder returns a builder ready to register components and
// relations before Build produces a usable World.
func (f factory) NewWorldBuilder() *WorldBuilder {
	return NewWorldBuilder()
}

// FactoryNewCache creates a new Cache with the specified capacity, for callers
// that want the registry's get-or-register shape for their own lookup
// tables (prefab names, archetype labels) without going through
// ComponentRegistry.
func FactoryNewCache[T any](cap int) Cache[T] {
	return NewSimpleCache[T](cap)
}
