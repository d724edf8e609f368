package matches

import (
	"testing"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
)

func TestPairIDStable(t *testing.T) {
	book := collectors.Event{ID: "b1", SideA: "Heat", SideB: "Nuggets"}
	market := collectors.Event{ID: "m1", SideA: "Nuggets", SideB: "Heat"}
	if PairID(book, market) != PairID(book, market) {
		t.Fatal("pair id not deterministic")
	}
	other := collectors.Event{ID: "m2"}
	if PairID(book, market) == PairID(book, other) {
		t.Error("different candidates should give different pair ids")
	}
	// the same raw id on both sources must not collide with its mirror
	if PairID(collectors.Event{ID: "x"}, collectors.Event{ID: "y"}) == PairID(collectors.Event{ID: "y"}, collectors.Event{ID: "x"}) {
		t.Error("source prefix should distinguish mirrored ids")
	}
}

func TestVerdictCacheKeyIgnoresCandidateOrder(t *testing.T) {
	target := collectors.Event{ID: "b1", SideA: "Brooklyn Nets", SideB: "Charlotte Hornets"}
	c1 := collectors.Event{ID: "c1"}
	c2 := collectors.Event{ID: "c2"}
	k1 := VerdictCacheKey(target, []collectors.Event{c1, c2})
	k2 := VerdictCacheKey(target, []collectors.Event{c2, c1})
	if k1 == "" || k1 != k2 {
		t.Errorf("keys differ: %q vs %q", k1, k2)
	}
	if VerdictCacheKey(target, nil) != "" {
		t.Error("no candidates should give an empty key")
	}
	if VerdictCacheKey(target, []collectors.Event{c1}) == k1 {
		t.Error("candidate set should be part of the key")
	}
}
