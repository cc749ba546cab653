package merkle

import (
	"errors"
	"testing"

	"github.com/Zibelmann/snarkVM/internal/network"
)

func leaf(v uint64) network.Field {
	var f network.Field
	f.SetUint64(v)
	return f
}

func TestEmptyTreeRootStable(t *testing.T) {
	r1 := New(4).Root()
	r2 := New(4).Root()
	if !r1.Equal(&r2) {
		t.Errorf("empty roots of equal depth differ")
	}
	r3 := New(5).Root()
	if r1.Equal(&r3) {
		t.Errorf("empty roots of different depths should differ")
	}
}

func TestAppendChangesRoot(t *testing.T) {
	tree := New(4)
	before := tree.Root()
	if err := tree.Append(leaf(1)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	after := tree.Root()
	if before.Equal(&after) {
		t.Errorf("append did not change the root")
	}
}

func TestProveVerify(t *testing.T) {
	tree := New(4)
	for i := uint64(0); i < 9; i++ {
		if err := tree.Append(leaf(i + 100)); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}
	root := tree.Root()
	for i := uint64(0); i < 9; i++ {
		path, err := tree.Prove(i)
		if err != nil {
			t.Fatalf("Prove(%d) failed: %v", i, err)
		}
		if !path.Verify() {
			t.Errorf("path %d does not verify", i)
		}
		if !path.Root.Equal(&root) {
			t.Errorf("path %d resolves to a different root", i)
		}
		want := leaf(i + 100)
		if !path.Leaf.Equal(&want) {
			t.Errorf("path %d carries the wrong leaf", i)
		}
		if len(path.Siblings) != 4 {
			t.Errorf("path %d has %d siblings, expected 4", i, len(path.Siblings))
		}
	}
}

func TestVerifyRejectsTamperedPath(t *testing.T) {
	tree := New(4)
	for i := uint64(0); i < 5; i++ {
		tree.Append(leaf(i))
	}
	path, err := tree.Prove(2)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}
	path.Siblings[1].SetUint64(999999)
	if path.Verify() {
		t.Errorf("tampered path still verifies")
	}
}

func TestProveOutOfRange(t *testing.T) {
	tree := New(4)
	tree.Append(leaf(1))
	if _, err := tree.Prove(1); err == nil {
		t.Errorf("expected error proving an absent leaf, got nil")
	}
}

func TestFullTreeRejectsAppend(t *testing.T) {
	tree := New(2)
	for i := uint64(0); i < 4; i++ {
		if err := tree.Append(leaf(i)); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}
	err := tree.Append(leaf(4))
	if !errors.Is(err, network.ErrStateConflict) {
		t.Errorf("expected state conflict for full tree, got %v", err)
	}
}

func TestJoinProvesThroughTwoTrees(t *testing.T) {
	lower := New(2)
	for i := uint64(0); i < 3; i++ {
		lower.Append(leaf(i + 10))
	}
	lowerRoot := lower.Root()

	upper := New(3)
	upper.Append(leaf(77))
	upper.Append(lowerRoot)

	lowerPath, err := lower.Prove(2)
	if err != nil {
		t.Fatalf("lower Prove failed: %v", err)
	}
	upperPath, err := upper.Prove(1)
	if err != nil {
		t.Fatalf("upper Prove failed: %v", err)
	}

	joined, err := Join(lowerPath, upperPath)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if !joined.Verify() {
		t.Errorf("joined path does not verify")
	}
	upperRoot := upper.Root()
	if !joined.Root.Equal(&upperRoot) {
		t.Errorf("joined path resolves to the wrong root")
	}
	want := leaf(12)
	if !joined.Leaf.Equal(&want) {
		t.Errorf("joined path carries the wrong leaf")
	}
	if len(joined.Siblings) != 5 {
		t.Errorf("joined path has %d siblings, expected 5", len(joined.Siblings))
	}
}

func TestJoinRejectsMismatchedMidpoint(t *testing.T) {
	lower := New(2)
	lower.Append(leaf(1))
	upper := New(3)
	upper.Append(leaf(2))

	lowerPath, _ := lower.Prove(0)
	upperPath, _ := upper.Prove(0)
	_, err := Join(lowerPath, upperPath)
	if !errors.Is(err, network.ErrProofInput) {
		t.Errorf("expected proof input error, got %v", err)
	}
}
