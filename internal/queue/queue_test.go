package queue

import "testing"

func TestQueue_Empty(t *testing.T) {
	q := New()

	if !q.IsEmpty() {
		t.Error("new queue should be empty")
	}
	if _, ok := q.Next("a", false); ok {
		t.Error("Next on empty queue should not be ok")
	}
	if _, ok := q.Previous("a", false); ok {
		t.Error("Previous on empty queue should not be ok")
	}
	if _, ok := q.Next("a", true); ok {
		t.Error("shuffled Next on empty queue should not be ok")
	}
}

func TestQueue_Set_ReplacesOrder(t *testing.T) {
	q := New()
	q.Set([]string{"a", "b"})
	q.Set([]string{"c"})

	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}
	if q.Contains("a") {
		t.Error("replaced queue should not contain old ids")
	}
	if !q.Contains("c") {
		t.Error("queue should contain c")
	}
}

func TestQueue_Set_AllowsDuplicates(t *testing.T) {
	q := New()
	q.Set([]string{"a", "b", "a"})

	if q.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (duplicates are not suppressed)", q.Len())
	}
}

func TestQueue_Next_Sequential(t *testing.T) {
	q := New()
	q.Set([]string{"a", "b", "c"})

	id, ok := q.Next("b", false)
	if !ok || id != "c" {
		t.Errorf("Next(b) = %q, %v, want c, true", id, ok)
	}

	// Wrap from the last entry back to the first
	id, ok = q.Next("c", false)
	if !ok || id != "a" {
		t.Errorf("Next(c) = %q, %v, want a, true (wrap)", id, ok)
	}
}

func TestQueue_Next_UnknownDefaultsToFirst(t *testing.T) {
	q := New()
	q.Set([]string{"a", "b", "c"})

	id, ok := q.Next("missing", false)
	if !ok || id != "a" {
		t.Errorf("Next(missing) = %q, %v, want a, true", id, ok)
	}
}

func TestQueue_Previous_Sequential(t *testing.T) {
	q := New()
	q.Set([]string{"a", "b", "c"})

	id, ok := q.Previous("b", false)
	if !ok || id != "a" {
		t.Errorf("Previous(b) = %q, %v, want a, true", id, ok)
	}

	// Wrap from the first entry back to the last
	id, ok = q.Previous("a", false)
	if !ok || id != "c" {
		t.Errorf("Previous(a) = %q, %v, want c, true (wrap)", id, ok)
	}
}

func TestQueue_Previous_UnknownDefaultsToLast(t *testing.T) {
	q := New()
	q.Set([]string{"a", "b", "c"})

	id, ok := q.Previous("missing", false)
	if !ok || id != "c" {
		t.Errorf("Previous(missing) = %q, %v, want c, true", id, ok)
	}
}

func TestQueue_Next_Shuffle_ExcludesCurrent(t *testing.T) {
	q := New()
	q.Set([]string{"a", "b", "c"})

	for i := 0; i < 100; i++ {
		id, ok := q.Next("a", true)
		if !ok {
			t.Fatal("shuffled Next should be ok on non-empty queue")
		}
		if id == "a" {
			t.Fatal("shuffled Next should never return the current id")
		}
		if id != "b" && id != "c" {
			t.Fatalf("shuffled Next returned %q, not in queue", id)
		}
	}
}

func TestQueue_Previous_Shuffle_ExcludesCurrent(t *testing.T) {
	q := New()
	q.Set([]string{"a", "b", "c"})

	for i := 0; i < 100; i++ {
		id, ok := q.Previous("b", true)
		if !ok {
			t.Fatal("shuffled Previous should be ok on non-empty queue")
		}
		if id == "b" {
			t.Fatal("shuffled Previous should never return the current id")
		}
	}
}

func TestQueue_Shuffle_SingleEntry(t *testing.T) {
	q := New()
	q.Set([]string{"only"})

	// The exclusion set would be empty, so the single id is returned.
	id, ok := q.Next("only", true)
	if !ok || id != "only" {
		t.Errorf("Next(only, shuffle) = %q, %v, want only, true", id, ok)
	}
}

func TestQueue_Shuffle_CoversAllCandidates(t *testing.T) {
	q := New()
	q.Set([]string{"a", "b", "c", "d"})

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id, _ := q.Next("a", true)
		seen[id] = true
	}
	for _, want := range []string{"b", "c", "d"} {
		if !seen[want] {
			t.Errorf("shuffle never drew %q in 200 picks", want)
		}
	}
}

func TestQueue_IndexOf(t *testing.T) {
	q := New()
	q.Set([]string{"a", "b"})

	if got := q.IndexOf("b"); got != 1 {
		t.Errorf("IndexOf(b) = %d, want 1", got)
	}
	if got := q.IndexOf("z"); got != -1 {
		t.Errorf("IndexOf(z) = %d, want -1", got)
	}
}
