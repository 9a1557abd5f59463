package extract

import (
	"reflect"
	"testing"
)

func TestMergeKeepsFirstOnEqualStart(t *testing.T) {
	input := []Entity{
		{Type: TypeDate, StartPos: 0, EndPos: 9},
		{Type: TypePerson, StartPos: 0, EndPos: 5},
	}

	merged := Merge(input)

	if len(merged) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(merged))
	}
	if merged[0].Type != TypeDate {
		t.Errorf("expected first-listed DATE to win the tie, got %s", merged[0].Type)
	}
}

func TestMergeDropsOverlaps(t *testing.T) {
	input := []Entity{
		{Type: TypePerson, StartPos: 10, EndPos: 20},
		{Type: TypeOrg, StartPos: 15, EndPos: 25},
		{Type: TypeDate, StartPos: 30, EndPos: 38},
		{Type: TypeTime, StartPos: 0, EndPos: 4},
	}

	merged := Merge(input)

	if len(merged) != 3 {
		t.Fatalf("expected 3 entities, got %d", len(merged))
	}
	types := []string{merged[0].Type, merged[1].Type, merged[2].Type}
	want := []string{TypeTime, TypePerson, TypeDate}
	if !reflect.DeepEqual(types, want) {
		t.Errorf("merged order %v, want %v", types, want)
	}
}

func TestMergeAdjacentSpansBothKept(t *testing.T) {
	// [0,5) and [5,10) share a boundary but do not overlap.
	input := []Entity{
		{Type: TypePerson, StartPos: 0, EndPos: 5},
		{Type: TypeOrg, StartPos: 5, EndPos: 10},
	}

	if got := len(Merge(input)); got != 2 {
		t.Errorf("adjacent spans should both survive, got %d entities", got)
	}
}

func TestMergeIdempotent(t *testing.T) {
	base := []Entity{
		{Type: TypePerson, StartPos: 0, EndPos: 4},
		{Type: TypeDate, StartPos: 6, EndPos: 14},
		{Type: TypeEmail, StartPos: 20, EndPos: 31},
	}

	merged := Merge(base)
	doubled := append(append([]Entity{}, merged...), merged...)
	again := Merge(doubled)

	if !reflect.DeepEqual(merged, again) {
		t.Errorf("merging a merged list with itself changed the result:\n%v\n%v", merged, again)
	}
}

func TestMergeEmpty(t *testing.T) {
	if got := Merge(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
