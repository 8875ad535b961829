package granary

import "testing"

func TestComponentAccessReportsReadAndWrite(t *testing.T) {
	_, pos, vel, _, _ := testWorld()
	posInfo := ComponentInfo{Type: pos.typ()}
	velInfo := ComponentInfo{Type: vel.typ()}

	r := Read[Position](pos)
	if got := r.ComponentAccess(&posInfo); got != AccessRead {
		t.Fatalf("Read.ComponentAccess(matching) = %v, want AccessRead", got)
	}
	if got := r.ComponentAccess(&velInfo); got != AccessNone {
		t.Fatalf("Read.ComponentAccess(non-matching) = %v, want AccessNone", got)
	}

	w := Write[Position](pos)
	if got := w.ComponentAccess(&posInfo); got != AccessWrite {
		t.Fatalf("Write.ComponentAccess(matching) = %v, want AccessWrite", got)
	}
}

func TestCombineAccessDetectsConflict(t *testing.T) {
	cases := []struct {
		a, b Access
		want Access
	}{
		{AccessRead, AccessRead, AccessRead},
		{AccessNone, AccessWrite, AccessWrite},
		{AccessWrite, AccessRead, AccessConflict},
		{AccessWrite, AccessWrite, AccessConflict},
		{AccessNone, AccessNone, AccessNone},
	}
	for _, c := range cases {
		if got := combineAccess(c.a, c.b); got != c.want {
			t.Fatalf("combineAccess(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestQuery3ComposesThreeColumns(t *testing.T) {
	w, pos, vel, hp, _ := testWorld()
	full, _ := w.Spawn(Bundle{pos.New(Position{X: 1}), vel.New(Velocity{X: 2}), hp.New(Health{Current: 3, Max: 10})})
	w.Spawn(Bundle{pos.New(Position{X: 9}), vel.New(Velocity{X: 9})}) // missing Health

	count := 0
	v := View3(w, Read[Position](pos), Read[Velocity](vel), Read[Health](hp))
	for id, tri := range v.All {
		count++
		if id != full || tri.A.X != 1 || tri.B.X != 2 || tri.C.Current != 3 {
			t.Fatalf("unexpected triple for %v: %+v", id, tri)
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 fully-matching entity, got %d", count)
	}
}

func TestQuery4ComposesFourColumns(t *testing.T) {
	w, pos, vel, hp, tag := testWorld()
	full, _ := w.Spawn(Bundle{
		pos.New(Position{X: 1}), vel.New(Velocity{X: 2}), hp.New(Health{Current: 3}), tag.New(Tag{}),
	})
	w.Spawn(Bundle{pos.New(Position{}), vel.New(Velocity{}), hp.New(Health{})}) // missing Tag

	count := 0
	v := View4(w, Read[Position](pos), Read[Velocity](vel), Read[Health](hp), Read[Tag](tag))
	for id := range v.All {
		count++
		if id != full {
			t.Fatalf("unexpected match %v", id)
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 quad match, got %d", count)
	}
}

func TestQuery3WriteAliasPanics(t *testing.T) {
	_, pos, vel, _, _ := testWorld()
	defer func() {
		if recover() == nil {
			t.Fatalf("Query3 should panic when two sub-queries conflict on the same column")
		}
	}()
	Query3(Write[Position](pos), Read[Velocity](vel), Write[Position](pos))
}

func TestQuery4WriteAliasPanics(t *testing.T) {
	_, pos, vel, hp, _ := testWorld()
	defer func() {
		if recover() == nil {
			t.Fatalf("Query4 should panic when two sub-queries conflict on the same column")
		}
	}()
	Query4(Read[Position](pos), Write[Velocity](vel), Read[Health](hp), Write[Velocity](vel))
}

func TestQuery3WriteAliasPanicsOnFirstTwoOperands(t *testing.T) {
	_, pos, _, hp, _ := testWorld()
	defer func() {
		if recover() == nil {
			t.Fatalf("Query3 should panic when the first two operands conflict, not just the last")
		}
	}()
	Query3(Write[Position](pos), Write[Position](pos), Read[Health](hp))
}

func TestQuery4WriteAliasPanicsOnFirstTwoOperands(t *testing.T) {
	_, pos, _, hp, tag := testWorld()
	defer func() {
		if recover() == nil {
			t.Fatalf("Query4 should panic when the first two operands conflict, not just the last")
		}
	}()
	Query4(Write[Position](pos), Write[Position](pos), Read[Health](hp), Read[Tag](tag))
}

func TestQuery2ReadReadDoesNotPanic(t *testing.T) {
	_, pos, vel, _, _ := testWorld()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Query2(Read, Read) on different columns should not panic, got %v", r)
		}
	}()
	Query2(Read[Position](pos), Read[Velocity](vel))
}

func TestWithoutQueryHasNoAccess(t *testing.T) {
	_, pos, _, _, _ := testWorld()
	q := Without[Position](pos)
	if got := q.ComponentAccess(&ComponentInfo{Type: pos.typ()}); got != AccessNone {
		t.Fatalf("Without.ComponentAccess = %v, want AccessNone (it never reads)", got)
	}
}
