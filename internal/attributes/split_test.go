package attributes

import (
	"math/rand"
	"strconv"
	"testing"
)

func TestSplitPartitionsByMembership(t *testing.T) {
	values := map[string]any{"author_id": 1, "title": "Hello", "body": "World"}
	base, translatable := Split(values, NewSet("title", "body", "summary"))

	if len(base) != 1 || base["author_id"] != 1 {
		t.Fatalf("unexpected base %v", base)
	}
	if len(translatable) != 2 || translatable["title"] != "Hello" || translatable["body"] != "World" {
		t.Fatalf("unexpected translatable %v", translatable)
	}
	if len(values) != 3 {
		t.Fatalf("input must not be mutated, got %v", values)
	}
}

func TestSplitKeepsNilValues(t *testing.T) {
	_, translatable := Split(map[string]any{"title": nil}, NewSet("title"))
	if value, ok := translatable["title"]; !ok || value != nil {
		t.Fatalf("expected explicit nil to be kept, got %v", translatable)
	}
}

// Randomised check of the partition invariants: the parts are disjoint, their
// union is the input, and only set members land in the translatable part.
func TestSplitInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		values := map[string]any{}
		var names []string
		for i := 0; i < rng.Intn(12); i++ {
			key := "k" + strconv.Itoa(rng.Intn(16))
			values[key] = i
		}
		for i := 0; i < rng.Intn(8); i++ {
			names = append(names, "k"+strconv.Itoa(rng.Intn(16)))
		}
		set := NewSet(names...)

		base, translatable := Split(values, set)

		if len(base)+len(translatable) != len(values) {
			t.Fatalf("round %d: sizes do not add up: %d + %d != %d", round, len(base), len(translatable), len(values))
		}
		for key, value := range values {
			_, inBase := base[key]
			_, inTr := translatable[key]
			if inBase == inTr {
				t.Fatalf("round %d: key %q must be in exactly one part", round, key)
			}
			if inTr != set.Has(key) {
				t.Fatalf("round %d: key %q placed against membership", round, key)
			}
			if inBase && base[key] != value || inTr && translatable[key] != value {
				t.Fatalf("round %d: value for %q changed", round, key)
			}
		}
	}
}

func TestNewSetDeduplicatesAndTrims(t *testing.T) {
	set := NewSet(" title", "body", "title", "")
	names := set.Names()
	if len(names) != 2 || names[0] != "title" || names[1] != "body" {
		t.Fatalf("unexpected names %v", names)
	}
	if !set.Has("title") || set.Has("") {
		t.Fatalf("unexpected membership")
	}
}

func TestExcept(t *testing.T) {
	out := Except(map[string]any{"id": 1, "title": "x", "locale": "en"}, "id", "locale")
	if len(out) != 1 || out["title"] != "x" {
		t.Fatalf("unexpected result %v", out)
	}
}

func TestZeroSetSendsEverythingToBase(t *testing.T) {
	base, translatable := Split(map[string]any{"a": 1}, Set{})
	if len(base) != 1 || len(translatable) != 0 {
		t.Fatalf("unexpected split %v %v", base, translatable)
	}
}

func TestNormalizeConvertsBytes(t *testing.T) {
	values := Normalize(map[string]any{"title": []byte("Hello"), "id": int64(1), "body": nil})
	if values["title"] != "Hello" || values["id"] != int64(1) || values["body"] != nil {
		t.Fatalf("unexpected values %v", values)
	}
}
