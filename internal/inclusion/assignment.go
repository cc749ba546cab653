package inclusion

import (
	"fmt"
	"sync"

	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark-crypto/ecc"
	lru "github.com/hashicorp/golang-lru"

	"github.com/Zibelmann/snarkVM/internal/merkle"
	"github.com/Zibelmann/snarkVM/internal/network"
)

// InclusionAssignment is one fully resolved inclusion statement: the state
// path and nullifier material for a single consumed record, ready to be
// turned into a circuit witness.
type InclusionAssignment struct {
	StatePath       merkle.StatePath
	Commitment      network.Field
	Gamma           network.Group
	SerialNumber    network.Field
	GlobalStateRoot network.Field
	LocalStateRoot  network.Field
	IsGlobal        bool
}

// VerifierInputs returns the public-input row for this assignment, in
// verifier order: [1, global_state_root, local_state_root, serial_number].
func (a *InclusionAssignment) VerifierInputs() []network.Field {
	var one network.Field
	one.SetOne()
	return []network.Field{one, a.GlobalStateRoot, a.LocalStateRoot, a.SerialNumber}
}

// Check validates the assignment natively before it reaches the prover. A
// failing assignment can only produce an unsatisfiable witness, so catching
// it here gives a useful error instead of a solver failure.
func (a *InclusionAssignment) Check() error {
	if len(a.StatePath.Siblings) != network.StatePathDepth {
		return fmt.Errorf("%w: state path has depth %d, expected %d",
			network.ErrProofInput, len(a.StatePath.Siblings), network.StatePathDepth)
	}
	if !a.StatePath.Leaf.Equal(&a.Commitment) {
		return fmt.Errorf("%w: state path leaf does not match the record commitment",
			network.ErrProofInput)
	}
	if !a.StatePath.Verify() {
		return fmt.Errorf("%w: state path does not verify against its root",
			network.ErrProofInput)
	}
	root := a.LocalStateRoot
	if a.IsGlobal {
		root = a.GlobalStateRoot
	}
	if !a.StatePath.Root.Equal(&root) {
		return fmt.Errorf("%w: state path root does not match the selected state root",
			network.ErrProofInput)
	}
	sn := network.SerialNumberFromGamma(&a.Gamma, &a.Commitment)
	if !sn.Equal(&a.SerialNumber) {
		return fmt.Errorf("%w: serial number does not match its gamma derivation",
			network.ErrProofInput)
	}
	return nil
}

// ToCircuitAssignment validates the assignment and builds its circuit
// witness under the context's ownership discipline. Callers that already
// hold the context for proving use Prove instead.
func (a *InclusionAssignment) ToCircuitAssignment(ctx *CircuitContext) (*StatePathCircuit, error) {
	if err := ctx.Acquire(); err != nil {
		return nil, err
	}
	defer ctx.Release()
	if err := a.Check(); err != nil {
		return nil, err
	}
	return a.toCircuit(), nil
}

// toCircuit builds the full circuit witness for this assignment.
func (a *InclusionAssignment) toCircuit() *StatePathCircuit {
	isGlobal := 0
	if a.IsGlobal {
		isGlobal = 1
	}
	circuit := &StatePathCircuit{
		GlobalStateRoot: a.GlobalStateRoot.String(),
		LocalStateRoot:  a.LocalStateRoot.String(),
		SerialNumber:    a.SerialNumber.String(),
		Commitment:      a.Commitment.String(),
		Gamma:           toGnarkPoint(&a.Gamma),
		IsGlobal:        isGlobal,
		LeafIndex:       a.StatePath.LeafIndex,
	}
	for i := range a.StatePath.Siblings {
		circuit.Siblings[i] = a.StatePath.Siblings[i].String()
	}
	return circuit
}

const statePathKey = "state_path"

// CircuitContext owns the compiled constraint system for the state-path
// circuit. Compilation is expensive, so compiled systems are cached; the
// context is single-owner, and a caller must acquire it before proving and
// release it after. Acquiring a held context is an error, not a wait.
type CircuitContext struct {
	mu      sync.Mutex
	held    bool
	systems *lru.Cache
}

// NewCircuitContext returns a released context with an empty cache.
func NewCircuitContext() (*CircuitContext, error) {
	cache, err := lru.New(4)
	if err != nil {
		return nil, err
	}
	return &CircuitContext{systems: cache}, nil
}

// Acquire takes exclusive ownership of the context.
func (c *CircuitContext) Acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.held {
		return fmt.Errorf("%w: circuit context is already in use", network.ErrCircuitPrecondition)
	}
	c.held = true
	return nil
}

// Release returns the context to its clean state.
func (c *CircuitContext) Release() {
	c.mu.Lock()
	c.held = false
	c.mu.Unlock()
}

// ConstraintSystem compiles the state-path circuit, or returns the cached
// compilation. The caller must hold the context.
func (c *CircuitContext) ConstraintSystem() (constraint.ConstraintSystem, error) {
	c.mu.Lock()
	held := c.held
	c.mu.Unlock()
	if !held {
		return nil, fmt.Errorf("%w: circuit context must be acquired before compiling", network.ErrCircuitPrecondition)
	}
	if cached, ok := c.systems.Get(statePathKey); ok {
		return cached.(constraint.ConstraintSystem), nil
	}
	var circuit StatePathCircuit
	ccs, err := frontend.Compile(ecc.BW6_761.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("circuit compilation failed: %w", err)
	}
	c.systems.Add(statePathKey, ccs)
	return ccs, nil
}
