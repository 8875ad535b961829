/*
Package granary provides an archetype-based Entity-Component-System (ECS)
data engine.

Entities are (slot, generation) handles. Components live in columnar,
chunked storage, one archetype per distinct component-set, so entities
sharing the same set sit together for cache-friendly iteration. Queries
compose typed access requests (read, write, filter, change-detection) and
a View drives them over the archetype list a chunk at a time, recording
which rows were touched via per-column epoch stamps. Relations connect
two entities rather than describing one, with cascade cleanup on
despawn.

Basic Usage:

	builder := granary.NewWorldBuilder()
	position := granary.RegisterComponent[Position](builder)
	velocity := granary.RegisterComponent[Velocity](builder)
	world := builder.Build()

	entity, _ := world.Spawn(granary.Bundle{
		position.New(Position{X: 0, Y: 0}),
		velocity.New(Velocity{X: 1, Y: 0}),
	})

	view := granary.NewView(world, granary.Query2(
		granary.Write[Position](position),
		granary.Read[Velocity](velocity),
	))
	for _, pair := range view.All {
		pair.A.X += pair.B.X
		pair.A.Y += pair.B.Y
	}

Granary is the engine underneath a game's simulation loop but works as a
standalone library for any system that needs archetype storage, change
detection, and relations without the rest of a framework attached.
*/
package granary
