package service

import (
	"testing"

	"github.com/sunnytsang0917/office-inventory-sub002/internal/inventory/entity"
)

func strPtr(s string) *string { return &s }

func flatLocations() []entity.Location {
	return []entity.Location{
		{ID: "a", Code: "A-01", Level: 0},
		{ID: "b", Code: "A-01-01", ParentID: strPtr("a"), Level: 1},
		{ID: "c", Code: "A-01-02", ParentID: strPtr("a"), Level: 1},
		{ID: "d", Code: "A-01-01-01", ParentID: strPtr("b"), Level: 2},
		{ID: "e", Code: "B-01", Level: 0},
	}
}

// dfs 按编码序展开森林，便于结构比较
func dfs(nodes []*entity.LocationNode) []string {
	var out []string
	for _, n := range nodes {
		out = append(out, n.Code)
		out = append(out, dfs(n.Children)...)
	}
	return out
}

func TestBuildHierarchy(t *testing.T) {
	roots := BuildHierarchy(flatLocations())
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	got := dfs(roots)
	want := []string{"A-01", "A-01-01", "A-01-01-01", "A-01-02", "B-01"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

// 输入顺序不同,两次构建的结构必须一致
func TestBuildHierarchyOrderIndependent(t *testing.T) {
	locs := flatLocations()
	reversed := make([]entity.Location, len(locs))
	for i := range locs {
		reversed[len(locs)-1-i] = locs[i]
	}

	first := dfs(BuildHierarchy(locs))
	second := dfs(BuildHierarchy(reversed))
	if len(first) != len(second) {
		t.Fatalf("forest shapes differ: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("forest shapes differ: %v vs %v", first, second)
		}
	}
}

func TestDescendantIDs(t *testing.T) {
	locs := flatLocations()

	descA := DescendantIDs("a", locs)
	if len(descA) != 3 {
		t.Fatalf("expected 3 descendants of a, got %d", len(descA))
	}
	for _, id := range []string{"b", "c", "d"} {
		if _, ok := descA[id]; !ok {
			t.Fatalf("expected %s in descendants of a", id)
		}
	}
	if _, ok := descA["e"]; ok {
		t.Fatal("e is not a descendant of a")
	}

	if len(DescendantIDs("d", locs)) != 0 {
		t.Fatal("leaf node must have no descendants")
	}
}

func TestSubtreeDepth(t *testing.T) {
	index := childrenIndex(flatLocations())
	if d := subtreeDepth("a", index); d != 2 {
		t.Fatalf("expected depth 2 under a, got %d", d)
	}
	if d := subtreeDepth("d", index); d != 0 {
		t.Fatalf("expected depth 0 under d, got %d", d)
	}
}
