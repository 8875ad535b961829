package granary

import "testing"

// ChildOf is an exclusive, non-symmetric relation: a child has at most one
// parent, and despawning the parent cascades to remove it from the child.
type ChildOf struct{}

func (ChildOf) Exclusive() bool { return true }
func (ChildOf) Symmetric() bool { return false }

// Likes is a non-exclusive, non-symmetric relation: an entity can like any
// number of targets independently.
type Likes struct{ Strength int }

func (Likes) Exclusive() bool { return false }
func (Likes) Symmetric() bool { return false }

// MarriedTo is a symmetric, exclusive relation: adding it to one entity
// mirrors it onto the other, and each side can hold only one.
type MarriedTo struct{}

func (MarriedTo) Exclusive() bool { return true }
func (MarriedTo) Symmetric() bool { return true }

type trackedRelationEvent struct {
	kind   string
	origin EntityId
	target EntityId
}

// TrackedChildOf is a non-exclusive, non-symmetric relation whose hooks
// record every invocation, used to assert on_target_drop fires once per
// recorded origin when the target despawns.
type TrackedChildOf struct {
	events *[]trackedRelationEvent
}

func (TrackedChildOf) Exclusive() bool { return false }
func (TrackedChildOf) Symmetric() bool { return false }

func (r TrackedChildOf) OnRelationTargetDrop(origin, target EntityId, value TrackedChildOf, enc *ActionEncoder) {
	*r.events = append(*r.events, trackedRelationEvent{kind: "target_drop", origin: origin, target: target})
}

func (r TrackedChildOf) OnRelationDrop(origin, target EntityId, value TrackedChildOf, enc *ActionEncoder) {
	*r.events = append(*r.events, trackedRelationEvent{kind: "drop", origin: origin, target: target})
}

func relationWorld() (*World, RelationDef[ChildOf], RelationDef[Likes], RelationDef[MarriedTo]) {
	b := NewWorldBuilder()
	childOf := RegisterRelation[ChildOf](b)
	likes := RegisterRelation[Likes](b)
	marriedTo := RegisterRelation[MarriedTo](b)
	return b.Build(), childOf, likes, marriedTo
}

func TestAddRelationExclusiveTracksSingleTarget(t *testing.T) {
	w, childOf, _, _ := relationWorld()
	child, _ := w.Spawn(Bundle{})
	parentA, _ := w.Spawn(Bundle{})
	parentB, _ := w.Spawn(Bundle{})

	if err := AddRelation(w, childOf, child, parentA, ChildOf{}); err != nil {
		t.Fatalf("AddRelation: %v", err)
	}
	target, err := QueryOneEntity(w, child, RelatesExclusive[ChildOf](childOf))
	if err != nil || target != parentA {
		t.Fatalf("expected child related to parentA, got %v err=%v", target, err)
	}

	if err := AddRelation(w, childOf, child, parentB, ChildOf{}); err != nil {
		t.Fatalf("re-add AddRelation: %v", err)
	}
	target, err = QueryOneEntity(w, child, RelatesExclusive[ChildOf](childOf))
	if err != nil || target != parentB {
		t.Fatalf("exclusive relation should have replaced parentA with parentB, got %v", target)
	}
}

func TestAddRelationNonExclusiveAccumulates(t *testing.T) {
	w, _, likes, _ := relationWorld()
	e, _ := w.Spawn(Bundle{})
	a, _ := w.Spawn(Bundle{})
	b, _ := w.Spawn(Bundle{})

	if err := AddRelation(w, likes, e, a, Likes{Strength: 1}); err != nil {
		t.Fatalf("AddRelation a: %v", err)
	}
	if err := AddRelation(w, likes, e, b, Likes{Strength: 2}); err != nil {
		t.Fatalf("AddRelation b: %v", err)
	}

	targets, err := QueryOneEntity(w, e, Related[Likes](likes))
	if err != nil {
		t.Fatalf("QueryOneEntity: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("expected 2 accumulated targets, got %d: %v", len(targets), targets)
	}
}

func TestAddRelationSymmetricMirrorsBothSides(t *testing.T) {
	w, _, _, marriedTo := relationWorld()
	alice, _ := w.Spawn(Bundle{})
	bob, _ := w.Spawn(Bundle{})

	if err := AddRelation(w, marriedTo, alice, bob, MarriedTo{}); err != nil {
		t.Fatalf("AddRelation: %v", err)
	}

	aliceTarget, err := QueryOneEntity(w, alice, RelatesExclusive[MarriedTo](marriedTo))
	if err != nil || aliceTarget != bob {
		t.Fatalf("alice should be related to bob, got %v err=%v", aliceTarget, err)
	}
	bobTarget, err := QueryOneEntity(w, bob, RelatesExclusive[MarriedTo](marriedTo))
	if err != nil || bobTarget != alice {
		t.Fatalf("bob should be related to alice (mirror), got %v err=%v", bobTarget, err)
	}
}

func TestAddRelationSymmetricSelfRelationStoresOnce(t *testing.T) {
	w, _, _, marriedTo := relationWorld()
	loner, _ := w.Spawn(Bundle{})

	if err := AddRelation(w, marriedTo, loner, loner, MarriedTo{}); err != nil {
		t.Fatalf("AddRelation self: %v", err)
	}
	comp, err := Get(w, loner, marriedTo.origin)
	if err != nil {
		t.Fatalf("Get OriginComponent: %v", err)
	}
	if len(comp.origins) != 1 {
		t.Fatalf("self-relation should store exactly one entry, got %d", len(comp.origins))
	}
}

func TestDropRelationRemovesBothSidesOfSymmetric(t *testing.T) {
	w, _, _, marriedTo := relationWorld()
	alice, _ := w.Spawn(Bundle{})
	bob, _ := w.Spawn(Bundle{})
	AddRelation(w, marriedTo, alice, bob, MarriedTo{})

	if err := DropRelation(w, marriedTo, alice, bob); err != nil {
		t.Fatalf("DropRelation: %v", err)
	}
	if Has(w, alice, marriedTo.origin) {
		t.Fatalf("alice should have no OriginComponent left after DropRelation")
	}
	if Has(w, bob, marriedTo.origin) {
		t.Fatalf("bob's mirrored OriginComponent should be gone too")
	}
}

func TestDespawnOriginCascadesToTargetBacklink(t *testing.T) {
	w, childOf, _, _ := relationWorld()
	child, _ := w.Spawn(Bundle{})
	parent, _ := w.Spawn(Bundle{})
	AddRelation(w, childOf, child, parent, ChildOf{})

	if err := w.Despawn(child); err != nil {
		t.Fatalf("Despawn: %v", err)
	}
	comp, err := Get(w, parent, childOf.target)
	if err == nil && comp.indexOf(child) >= 0 {
		t.Fatalf("parent's TargetComponent should no longer list the despawned child")
	}
}

func TestDespawnTargetCascadesToOrigin(t *testing.T) {
	w, childOf, _, _ := relationWorld()
	child, _ := w.Spawn(Bundle{})
	parent, _ := w.Spawn(Bundle{})
	AddRelation(w, childOf, child, parent, ChildOf{})

	if err := w.Despawn(parent); err != nil {
		t.Fatalf("Despawn: %v", err)
	}
	if Has(w, child, childOf.origin) {
		t.Fatalf("child's OriginComponent should be gone after its parent despawns")
	}
}

func TestAddRelationExclusiveRetargetDrainsStaleBacklink(t *testing.T) {
	w, childOf, _, _ := relationWorld()
	child1, _ := w.Spawn(Bundle{})
	child2, _ := w.Spawn(Bundle{})
	parent1, _ := w.Spawn(Bundle{})
	parent2, _ := w.Spawn(Bundle{})

	if err := AddRelation(w, childOf, child1, parent1, ChildOf{}); err != nil {
		t.Fatalf("AddRelation child1->parent1: %v", err)
	}
	// parent2 already carries a TargetComponent so addTargetBacklink below
	// returns through Touch, not Insert -- only AddRelation's own drain can
	// flush the retarget's deferred removeTargetBacklink.
	if err := AddRelation(w, childOf, child2, parent2, ChildOf{}); err != nil {
		t.Fatalf("AddRelation child2->parent2: %v", err)
	}

	if err := AddRelation(w, childOf, child1, parent2, ChildOf{}); err != nil {
		t.Fatalf("AddRelation retarget child1->parent2: %v", err)
	}

	comp, err := Get(w, parent1, childOf.target)
	if err == nil && comp.indexOf(child1) >= 0 {
		t.Fatalf("parent1's TargetComponent should no longer list child1 after the retarget")
	}
	comp2, err := Get(w, parent2, childOf.target)
	if err != nil {
		t.Fatalf("Get parent2 TargetComponent: %v", err)
	}
	if comp2.indexOf(child1) < 0 {
		t.Fatalf("parent2's TargetComponent should list child1 after the retarget")
	}
}

func TestDespawnTargetInvokesOnRelationTargetDropPerOrigin(t *testing.T) {
	b := NewWorldBuilder()
	def := RegisterRelation[TrackedChildOf](b)
	w := b.Build()

	var events []trackedRelationEvent
	a, _ := w.Spawn(Bundle{})
	c, _ := w.Spawn(Bundle{})
	target, _ := w.Spawn(Bundle{})

	if err := AddRelation(w, def, a, target, TrackedChildOf{events: &events}); err != nil {
		t.Fatalf("AddRelation a->target: %v", err)
	}
	if err := AddRelation(w, def, c, target, TrackedChildOf{events: &events}); err != nil {
		t.Fatalf("AddRelation c->target: %v", err)
	}

	if err := w.Despawn(target); err != nil {
		t.Fatalf("Despawn target: %v", err)
	}

	var targetDrops, drops []trackedRelationEvent
	for _, e := range events {
		switch e.kind {
		case "target_drop":
			targetDrops = append(targetDrops, e)
		case "drop":
			drops = append(drops, e)
		}
	}
	if len(targetDrops) != 2 {
		t.Fatalf("expected OnRelationTargetDrop to fire exactly twice, got %d: %+v", len(targetDrops), targetDrops)
	}
	gotOrigins := map[EntityId]bool{targetDrops[0].origin: true, targetDrops[1].origin: true}
	if !gotOrigins[a] || !gotOrigins[c] {
		t.Fatalf("expected origins {%v,%v}, got %+v", a, c, targetDrops)
	}
	for _, e := range targetDrops {
		if e.target != target {
			t.Fatalf("expected every OnRelationTargetDrop target to be %v, got %v", target, e.target)
		}
	}
	if len(drops) != 2 {
		t.Fatalf("expected OnRelationDrop to also fire exactly twice, got %d", len(drops))
	}
	if Has(w, a, def.origin) {
		t.Fatalf("origin a's OriginComponent should be removed once its only entry is gone")
	}
	if Has(w, c, def.origin) {
		t.Fatalf("origin c's OriginComponent should be removed once its only entry is gone")
	}
}

func TestRelationToFiltersByExactTarget(t *testing.T) {
	w, _, likes, _ := relationWorld()
	e, _ := w.Spawn(Bundle{})
	a, _ := w.Spawn(Bundle{})
	b, _ := w.Spawn(Bundle{})
	AddRelation(w, likes, e, a, Likes{Strength: 7})
	AddRelation(w, likes, e, b, Likes{Strength: 3})

	rel, err := QueryOneEntity(w, e, RelationTo[Likes](likes, a))
	if err != nil {
		t.Fatalf("QueryOneEntity RelationTo a: %v", err)
	}
	if rel.Strength != 7 {
		t.Fatalf("RelationTo(a) returned wrong value: %+v", rel)
	}

	other, _ := w.Spawn(Bundle{})
	if _, err := QueryOneEntity(w, e, RelationTo[Likes](likes, other)); err == nil {
		t.Fatalf("RelationTo should fail for a target the entity isn't related to")
	}
}
