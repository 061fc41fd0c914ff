package merkle

import (
	"testing"

	"github.com/pixperk/dynamokv/store"
)

func TestBuildFromStoreEmpty(t *testing.T) {
	tree := BuildFromStore(nil)
	if tree.root != nil {
		t.Fatal("expected empty tree for empty snapshot")
	}
}

func TestBuildFromStoreSingleEntry(t *testing.T) {
	tree := BuildFromStore(map[string]store.Entry{"a": {Value: "1", Timestamp: 1}})
	if tree.root == nil {
		t.Fatal("expected non-nil root")
	}
	if tree.root.key != "a" {
		t.Fatalf("expected leaf key 'a', got %q", tree.root.key)
	}
}

func TestBuildFromStoreDeterministic(t *testing.T) {
	entries := map[string]store.Entry{
		"c": {Value: "1", Timestamp: 1},
		"a": {Value: "1", Timestamp: 1},
		"b": {Value: "1", Timestamp: 1},
	}
	t1 := BuildFromStore(entries)
	t2 := BuildFromStore(entries)
	if t1.root.sum != t2.root.sum {
		t.Fatal("building the same snapshot twice should yield the same root digest")
	}
}

func TestBuildFromStoreValueChangeAltersDigest(t *testing.T) {
	base := BuildFromStore(map[string]store.Entry{"a": {Value: "v1", Timestamp: 100}})
	changed := BuildFromStore(map[string]store.Entry{"a": {Value: "v2", Timestamp: 100}})
	if base.root.sum == changed.root.sum {
		t.Fatal("expected digest to change when value changes")
	}
}

func TestBuildFromStoreTimestampChangeAltersDigest(t *testing.T) {
	base := BuildFromStore(map[string]store.Entry{"a": {Value: "v1", Timestamp: 100}})
	changed := BuildFromStore(map[string]store.Entry{"a": {Value: "v1", Timestamp: 200}})
	if base.root.sum == changed.root.sum {
		t.Fatal("expected digest to change when timestamp changes even if value is identical")
	}
}

func TestBuildFromStorePadsToPowerOfTwo(t *testing.T) {
	tree := BuildFromStore(map[string]store.Entry{
		"a": {Value: "1"}, "b": {Value: "2"}, "c": {Value: "3"},
	})
	if tree.root == nil || tree.root.left == nil || tree.root.right == nil {
		t.Fatal("expected a balanced root for a padded 3-entry snapshot")
	}
}

func TestDivergedIdenticalSnapshots(t *testing.T) {
	entries := map[string]store.Entry{
		"a": {Value: "1"}, "b": {Value: "2"}, "c": {Value: "3"},
	}
	got := Diverged(BuildFromStore(entries), BuildFromStore(entries))
	if len(got) != 0 {
		t.Fatalf("expected no divergence for identical snapshots, got %v", got)
	}
}

func TestDivergedOneKeyDiffers(t *testing.T) {
	local := map[string]store.Entry{
		"a": {Value: "v1"}, "b": {Value: "v1"}, "c": {Value: "v1"},
	}
	remote := map[string]store.Entry{
		"a": {Value: "v1"}, "b": {Value: "v2"}, "c": {Value: "v1"},
	}
	got := Diverged(BuildFromStore(local), BuildFromStore(remote))
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected diverged [b], got %v", got)
	}
}

func TestDivergedMultipleKeysDiffer(t *testing.T) {
	local := map[string]store.Entry{
		"a": {Value: "v1"}, "b": {Value: "v1"}, "c": {Value: "v1"}, "d": {Value: "v1"},
	}
	remote := map[string]store.Entry{
		"a": {Value: "v2"}, "b": {Value: "v1"}, "c": {Value: "v1"}, "d": {Value: "v2"},
	}
	got := Diverged(BuildFromStore(local), BuildFromStore(remote))
	set := map[string]bool{}
	for _, k := range got {
		set[k] = true
	}
	if len(got) != 2 || !set["a"] || !set["d"] {
		t.Fatalf("expected diverged [a d], got %v", got)
	}
}

func TestDivergedBothEmpty(t *testing.T) {
	got := Diverged(BuildFromStore(nil), BuildFromStore(nil))
	if len(got) != 0 {
		t.Fatalf("expected no divergence for two empty snapshots, got %v", got)
	}
}

func TestDivergedOneSideEmpty(t *testing.T) {
	tree := BuildFromStore(map[string]store.Entry{"a": {Value: "1"}, "b": {Value: "2"}})
	empty := BuildFromStore(nil)

	got := Diverged(tree, empty)
	if len(got) != 2 {
		t.Fatalf("expected 2 keys from the non-empty side, got %v", got)
	}

	got = Diverged(empty, tree)
	if len(got) != 2 {
		t.Fatalf("expected 2 keys from the non-empty side, got %v", got)
	}
}

func TestDivergedAllKeysDiffer(t *testing.T) {
	local := map[string]store.Entry{"x": {Value: "old"}, "y": {Value: "old"}}
	remote := map[string]store.Entry{"x": {Value: "new"}, "y": {Value: "new"}}
	got := Diverged(BuildFromStore(local), BuildFromStore(remote))
	if len(got) != 2 {
		t.Fatalf("expected 2 diverged keys, got %v", got)
	}
}
