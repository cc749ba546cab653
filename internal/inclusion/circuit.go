// circuit.go - State-path circuit: proves that a consumed record commitment
// sits in a commitment tree and that its serial number was derived honestly.
//
// One circuit shape covers both cases. The merkle fold always runs over the
// full path depth; a boolean selector picks which public root the computed
// root must equal, so the verifier never learns whether the record was
// locally produced or globally committed.

package inclusion

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/sw_bls12377"
	"github.com/consensys/gnark/std/hash/mimc"

	"github.com/Zibelmann/snarkVM/internal/network"
)

// StatePathCircuit is the inclusion statement for one record input.
type StatePathCircuit struct {
	// Public inputs
	GlobalStateRoot frontend.Variable `gnark:",public"` // Root of the ledger's commitment tree
	LocalStateRoot  frontend.Variable `gnark:",public"` // Root of the in-flight transaction tree
	SerialNumber    frontend.Variable `gnark:",public"` // Nullifier of the consumed record

	// Private inputs (hidden from verifier)
	Commitment frontend.Variable                         // Consumed record's commitment
	Gamma      sw_bls12377.G1Affine                      // Nullifier group element
	IsGlobal   frontend.Variable                         // 1 = prove against the global root
	LeafIndex  frontend.Variable                         // Leaf position in the commitment tree
	Siblings   [network.StatePathDepth]frontend.Variable // Merkle authentication path, leaf to root
}

// Define implements the inclusion constraints.
func (c *StatePathCircuit) Define(api frontend.API) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	// 1. Verify serial number derivation: sn = MiMC(cm, MiMC(gamma.X, gamma.Y))
	hasher.Write(c.Gamma.X)
	hasher.Write(c.Gamma.Y)
	gammaDigest := hasher.Sum()

	hasher.Reset()
	hasher.Write(c.Commitment)
	hasher.Write(gammaDigest)
	sn := hasher.Sum()
	api.AssertIsEqual(c.SerialNumber, sn)

	// 2. Fold the authentication path from the commitment up to the root.
	// Index bits pick whether the running digest is the left or right child.
	api.AssertIsBoolean(c.IsGlobal)
	indexBits := api.ToBinary(c.LeafIndex, network.StatePathDepth)
	node := c.Commitment
	for i, sibling := range c.Siblings {
		left := api.Select(indexBits[i], sibling, node)
		right := api.Select(indexBits[i], node, sibling)
		hasher.Reset()
		hasher.Write(left)
		hasher.Write(right)
		node = hasher.Sum()
	}

	// 3. The computed root must match the selected public root.
	root := api.Select(c.IsGlobal, c.GlobalStateRoot, c.LocalStateRoot)
	api.AssertIsEqual(node, root)

	return nil
}

// toGnarkPoint converts a native BLS12-377 point to gnark format.
func toGnarkPoint(p *network.Group) sw_bls12377.G1Affine {
	xBytes := p.X.Bytes()
	yBytes := p.Y.Bytes()
	return sw_bls12377.G1Affine{
		X: new(big.Int).SetBytes(xBytes[:]).String(),
		Y: new(big.Int).SetBytes(yBytes[:]).String(),
	}
}
