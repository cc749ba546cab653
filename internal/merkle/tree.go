// tree.go - Append-only fixed-depth Merkle tree over field elements.
//
// Leaves beyond the appended prefix are the zero element; empty-subtree
// digests are precomputed per level so the root of a sparse tree is cheap.
// The fixed depth is what lets a single circuit shape verify every path.

package merkle

import (
	"fmt"

	"github.com/Zibelmann/snarkVM/internal/network"
)

// Tree is an append-only Merkle tree of fixed depth. Interior nodes are the
// MiMC digest of their children; leaf slots hold field values directly.
type Tree struct {
	depth  int
	leaves []network.Field
	empty  []network.Field // empty[i] is the digest of an empty subtree of height i
}

// New returns an empty tree of the given depth.
func New(depth int) *Tree {
	empty := make([]network.Field, depth+1)
	// empty[0] is the zero leaf.
	for i := 1; i <= depth; i++ {
		empty[i] = network.HashFields(&empty[i-1], &empty[i-1])
	}
	return &Tree{depth: depth, empty: empty}
}

// Depth returns the tree depth.
func (t *Tree) Depth() int { return t.depth }

// Size returns the number of appended leaves.
func (t *Tree) Size() int { return len(t.leaves) }

// Append inserts a leaf at the next index. Fails when the tree is full.
func (t *Tree) Append(leaf network.Field) error {
	if len(t.leaves) >= 1<<t.depth {
		return fmt.Errorf("%w: merkle tree of depth %d is full", network.ErrStateConflict, t.depth)
	}
	t.leaves = append(t.leaves, leaf)
	return nil
}

// Root returns the current root. An empty tree has the empty-subtree digest
// of the full depth as its root.
func (t *Tree) Root() network.Field {
	level := make([]network.Field, len(t.leaves))
	copy(level, t.leaves)
	for h := 0; h < t.depth; h++ {
		next := make([]network.Field, (len(level)+1)/2)
		for i := range next {
			left := t.node(level, 2*i, h)
			right := t.node(level, 2*i+1, h)
			next[i] = network.HashFields(&left, &right)
		}
		level = next
	}
	if len(level) == 0 {
		return t.empty[t.depth]
	}
	return level[0]
}

// Prove returns the state path witness for the leaf at the given index.
func (t *Tree) Prove(index uint64) (StatePath, error) {
	if index >= uint64(len(t.leaves)) {
		return StatePath{}, fmt.Errorf("%w: leaf index %d out of range (%d leaves)", network.ErrProofInput, index, len(t.leaves))
	}

	siblings := make([]network.Field, t.depth)
	level := make([]network.Field, len(t.leaves))
	copy(level, t.leaves)
	pos := int(index)
	for h := 0; h < t.depth; h++ {
		siblings[h] = t.node(level, pos^1, h)
		next := make([]network.Field, (len(level)+1)/2)
		for i := range next {
			left := t.node(level, 2*i, h)
			right := t.node(level, 2*i+1, h)
			next[i] = network.HashFields(&left, &right)
		}
		level = next
		pos >>= 1
	}

	return StatePath{
		Leaf:      t.leaves[index],
		LeafIndex: index,
		Siblings:  siblings,
		Root:      level[0],
	}, nil
}

// node returns the node at the given position of a partially materialized
// level, substituting the empty-subtree digest past the occupied prefix.
func (t *Tree) node(level []network.Field, pos, height int) network.Field {
	if pos < len(level) {
		return level[pos]
	}
	return t.empty[height]
}
