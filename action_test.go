package granary

import "testing"

func TestActionBufferExecutesInFIFOOrder(t *testing.T) {
	w, _, _, _, _ := testWorld()

	var order []int
	buf := NewActionBuffer()
	buf.enqueue(func(*World, *ActionBuffer) { order = append(order, 1) })
	buf.enqueue(func(*World, *ActionBuffer) { order = append(order, 2) })
	buf.Execute(w)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("actions ran out of FIFO order: %v", order)
	}
}

func TestActionBufferNestedEnqueueRunsWithinOuterDrain(t *testing.T) {
	w, _, _, _, _ := testWorld()
	buf := NewActionBuffer()

	var order []string
	buf.enqueue(func(world *World, inner *ActionBuffer) {
		order = append(order, "first")
		inner.enqueue(func(*World, *ActionBuffer) { order = append(order, "nested") })
	})

	buf.Execute(w)

	if len(order) != 2 || order[0] != "first" || order[1] != "nested" {
		t.Fatalf("nested enqueue should run before the outer Execute returns: %v", order)
	}
}

func TestActionBufferReentrantExecuteIsNoOp(t *testing.T) {
	w, _, _, _, _ := testWorld()
	buf := NewActionBuffer()

	ran := false
	reentrantCalls := 0
	buf.enqueue(func(world *World, inner *ActionBuffer) {
		ran = true
		inner.Execute(world) // must be a no-op: we're already draining
		reentrantCalls++
	})
	buf.Execute(w)

	if !ran {
		t.Fatalf("action never ran")
	}
	if reentrantCalls != 1 {
		t.Fatalf("reentrant Execute should not cause the action to rerun, got %d calls", reentrantCalls)
	}
}

func TestDespawnLaterDefersDespawn(t *testing.T) {
	w, pos, _, _, _ := testWorld()
	id, _ := w.Spawn(Bundle{pos.New(Position{})})

	buf := NewActionBuffer()
	enc := newActionEncoder(buf)
	DespawnLater(enc, id)

	if !w.directory.Contains(id) {
		t.Fatalf("DespawnLater must not despawn synchronously")
	}
	buf.Execute(w)
	if w.directory.Contains(id) {
		t.Fatalf("entity should be despawned once the buffer drains")
	}
}

func TestInsertLaterAndRemoveLaterDeferMutation(t *testing.T) {
	w, pos, vel, _, _ := testWorld()
	id, _ := w.Spawn(Bundle{pos.New(Position{})})

	buf := NewActionBuffer()
	enc := newActionEncoder(buf)
	InsertLater(enc, id, vel, Velocity{X: 9})
	if Has(w, id, vel) {
		t.Fatalf("InsertLater must not mutate synchronously")
	}
	buf.Execute(w)
	if !Has(w, id, vel) {
		t.Fatalf("Velocity should be present after the buffer drains")
	}

	buf2 := NewActionBuffer()
	enc2 := newActionEncoder(buf2)
	RemoveLater(enc2, id, vel)
	if !Has(w, id, vel) {
		t.Fatalf("RemoveLater must not mutate synchronously")
	}
	buf2.Execute(w)
	if Has(w, id, vel) {
		t.Fatalf("Velocity should be gone after the buffer drains")
	}
}
