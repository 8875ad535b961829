package granary

import "testing"

func TestEpochCounterStartsAtOne(t *testing.T) {
	c := NewEpochCounter()
	if got := c.Current(); got.v != 1 {
		t.Fatalf("Current() on fresh counter = %d, want 1", got.v)
	}
}

func TestEpochCounterNextAdvances(t *testing.T) {
	c := NewEpochCounter()
	first := c.Next()
	second := c.Next()
	if !first.Before(second) {
		t.Fatalf("successive Next() calls did not advance: %v then %v", first, second)
	}
}

func TestEpochZeroValueIsBeforeEverything(t *testing.T) {
	var zero EpochId
	c := NewEpochCounter()
	if !zero.Before(c.Current()) {
		t.Fatalf("zero EpochId should be before a live counter's current epoch")
	}
}

func TestBumpIsStrictlyMonotonic(t *testing.T) {
	var dst EpochId
	older := EpochId{v: 3}
	newer := EpochId{v: 5}
	bump(&dst, newer)
	if dst != newer {
		t.Fatalf("bump to higher epoch failed: got %v want %v", dst, newer)
	}
	bump(&dst, older)
	if dst != newer {
		t.Fatalf("bump with a lower epoch must not regress: got %v want %v", dst, newer)
	}
}

func TestBumpAgainAllowsEqual(t *testing.T) {
	var dst EpochId
	e := EpochId{v: 7}
	bump(&dst, e)
	bumpAgain(&dst, e)
	if dst != e {
		t.Fatalf("bumpAgain with an equal epoch changed the value: got %v want %v", dst, e)
	}
}
