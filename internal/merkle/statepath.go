// statepath.go - Merkle inclusion witnesses from a leaf to a root.

package merkle

import (
	"fmt"

	"github.com/Zibelmann/snarkVM/internal/network"
)

// StatePath is an inclusion witness: the leaf value, its index, the sibling
// digest at each level, and the root the path resolves to.
type StatePath struct {
	Leaf      network.Field
	LeafIndex uint64
	Siblings  []network.Field
	Root      network.Field
}

// Verify recomputes the path natively and reports whether it resolves to the
// recorded root.
func (p *StatePath) Verify() bool {
	cur := p.Leaf
	idx := p.LeafIndex
	for _, sibling := range p.Siblings {
		if idx&1 == 0 {
			cur = network.HashFields(&cur, &sibling)
		} else {
			cur = network.HashFields(&sibling, &cur)
		}
		idx >>= 1
	}
	return cur.Equal(&p.Root)
}

// Join concatenates a lower path with an upper path into one witness. The
// lower root must be the upper leaf: a transition-tree path joined to a
// transaction-tree path proves a commitment against the transaction root.
func Join(lower, upper StatePath) (StatePath, error) {
	if !lower.Root.Equal(&upper.Leaf) {
		return StatePath{}, fmt.Errorf("%w: lower path root does not match upper path leaf", network.ErrProofInput)
	}
	siblings := make([]network.Field, 0, len(lower.Siblings)+len(upper.Siblings))
	siblings = append(siblings, lower.Siblings...)
	siblings = append(siblings, upper.Siblings...)
	return StatePath{
		Leaf:      lower.Leaf,
		LeafIndex: upper.LeafIndex<<uint(len(lower.Siblings)) | lower.LeafIndex,
		Siblings:  siblings,
		Root:      upper.Root,
	}, nil
}
