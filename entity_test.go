package granary

import "testing"

func TestEntityDirectorySpawnAssignsGenerationOne(t *testing.T) {
	d := NewEntityDirectory()
	id := d.Spawn()
	if id.Generation != 1 {
		t.Fatalf("first spawn generation = %d, want 1", id.Generation)
	}
	if !d.Contains(id) {
		t.Fatalf("freshly spawned entity should be live")
	}
}

func TestEntityDirectoryDespawnInvalidatesHandle(t *testing.T) {
	d := NewEntityDirectory()
	id := d.Spawn()
	if _, err := d.Despawn(id); err != nil {
		t.Fatalf("Despawn on live entity: %v", err)
	}
	if d.Contains(id) {
		t.Fatalf("despawned entity must no longer be contained")
	}
	if _, err := d.Get(id); err == nil {
		t.Fatalf("Get on a despawned handle should error")
	}
}

func TestEntityDirectoryReusesSlotWithBumpedGeneration(t *testing.T) {
	d := NewEntityDirectory()
	first := d.Spawn()
	if _, err := d.Despawn(first); err != nil {
		t.Fatalf("Despawn: %v", err)
	}
	second := d.Spawn()
	if second.Slot != first.Slot {
		t.Fatalf("expected slot reuse: first=%d second=%d", first.Slot, second.Slot)
	}
	if second.Generation != first.Generation+1 {
		t.Fatalf("expected generation bump: first=%d second=%d", first.Generation, second.Generation)
	}
	if d.Contains(first) {
		t.Fatalf("stale handle with old generation must not resolve")
	}
}

func TestEntityDirectoryDoubleDespawnErrors(t *testing.T) {
	d := NewEntityDirectory()
	id := d.Spawn()
	if _, err := d.Despawn(id); err != nil {
		t.Fatalf("first Despawn: %v", err)
	}
	if _, err := d.Despawn(id); err == nil {
		t.Fatalf("despawning an already-dead entity should error")
	}
}

func TestEntityDirectorySetLocationPanicsOnDeadEntity(t *testing.T) {
	d := NewEntityDirectory()
	id := d.Spawn()
	d.Despawn(id)
	defer func() {
		if recover() == nil {
			t.Fatalf("SetLocation on a dead entity should panic")
		}
	}()
	d.SetLocation(id, 0, 0)
}
