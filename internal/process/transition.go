// transition.go - Transitions: one function call's consumed inputs and produced outputs.
//
// A transition's inputs and outputs occupy a single contiguous leaf-index
// space (input i at index i, output j at index len(inputs)+j) inside a
// fixed-depth leaf tree. The transition id is that tree's root, which is what
// lets a local inclusion path run commitment -> transition id -> transaction
// root without extra glue.

package process

import (
	"fmt"

	"github.com/Zibelmann/snarkVM/internal/merkle"
	"github.com/Zibelmann/snarkVM/internal/network"
	"github.com/Zibelmann/snarkVM/internal/program"
	"github.com/Zibelmann/snarkVM/internal/record"
)

// InputKind tags a transition input.
type InputKind uint8

const (
	InputPublic InputKind = iota
	InputPrivate
	InputRecord
)

// Input is one consumed transition input. For record inputs the ID is the
// serial number; for public and private inputs it is a digest of the value.
type Input struct {
	Kind InputKind
	ID   network.Field
	Tag  network.Field
}

// OutputKind tags a transition output.
type OutputKind uint8

const (
	OutputPublic OutputKind = iota
	OutputPrivate
	OutputRecord
)

// Output is one produced transition output. For record outputs the ID is the
// record commitment and the record itself is carried alongside.
type Output struct {
	Kind   OutputKind
	ID     network.Field
	Record *record.Record
}

// Commitment returns the record commitment of a record output.
func (o *Output) Commitment() network.Field { return o.ID }

// Transition is one function call's effect: ordered inputs consumed, ordered
// outputs produced, and an identifier derived from its content. Immutable
// once constructed.
type Transition struct {
	ID        network.Field
	ProgramID program.Identifier
	Function  program.Identifier
	Inputs    []Input
	Outputs   []Output
}

// NewTransition assembles a transition and derives its identifier as the
// root of its leaf tree.
func NewTransition(programID, function program.Identifier, inputs []Input, outputs []Output) (*Transition, error) {
	t := &Transition{ProgramID: programID, Function: function, Inputs: inputs, Outputs: outputs}
	tree, err := t.LeafTree()
	if err != nil {
		return nil, err
	}
	t.ID = tree.Root()
	return t, nil
}

// LeafTree builds the transition's leaf tree: every input and output id at
// its absolute leaf index.
func (t *Transition) LeafTree() (*merkle.Tree, error) {
	if len(t.Inputs)+len(t.Outputs) > network.MaxTransitionLeaves {
		return nil, fmt.Errorf("%w: transition of '%s/%s' has %d leaves, max %d",
			network.ErrMalformedInput, t.ProgramID, t.Function, len(t.Inputs)+len(t.Outputs), network.MaxTransitionLeaves)
	}
	tree := merkle.New(network.TransitionDepth)
	for _, in := range t.Inputs {
		if err := tree.Append(in.ID); err != nil {
			return nil, err
		}
	}
	for _, out := range t.Outputs {
		if err := tree.Append(out.ID); err != nil {
			return nil, err
		}
	}
	return tree, nil
}
