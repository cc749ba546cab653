package inclusion

import (
	"fmt"
	"sync"

	"github.com/Zibelmann/snarkVM/internal/merkle"
	"github.com/Zibelmann/snarkVM/internal/network"
)

// Query resolves globally committed records against persisted ledger state.
// Implementations must return paths that verify against the returned root.
type Query interface {
	// StateRoot returns the current root of the global commitment tree.
	StateRoot() (network.Field, error)
	// StatePath returns an inclusion path for a committed record.
	StatePath(commitment network.Field) (merkle.StatePath, error)
}

// MemoryLedger is an in-process Query: a single global commitment tree with
// an index from commitment to leaf position. Safe for concurrent use.
type MemoryLedger struct {
	mu    sync.RWMutex
	tree  *merkle.Tree
	index map[network.Field]uint64
}

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		tree:  merkle.New(network.StatePathDepth),
		index: make(map[network.Field]uint64),
	}
}

// AddCommitment appends a record commitment to the global tree.
func (l *MemoryLedger) AddCommitment(commitment network.Field) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.index[commitment]; ok {
		return fmt.Errorf("%w: commitment %s is already on the ledger",
			network.ErrStateConflict, commitment.String())
	}
	position := uint64(l.tree.Size())
	if err := l.tree.Append(commitment); err != nil {
		return err
	}
	l.index[commitment] = position
	return nil
}

// StateRoot implements Query.
func (l *MemoryLedger) StateRoot() (network.Field, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tree.Root(), nil
}

// StatePath implements Query.
func (l *MemoryLedger) StatePath(commitment network.Field) (merkle.StatePath, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	position, ok := l.index[commitment]
	if !ok {
		return merkle.StatePath{}, fmt.Errorf("%w: commitment %s is not on the ledger",
			network.ErrProofInput, commitment.String())
	}
	return l.tree.Prove(position)
}
