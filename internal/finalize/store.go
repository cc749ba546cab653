// store.go - The key-value mapping store contract and an in-memory implementation.
//
// Reads and writes must be linearized per block by the enclosing finalization
// driver; this package only specifies the single-step contracts.

package finalize

import (
	"fmt"

	"github.com/Zibelmann/snarkVM/internal/network"
)

// Store is the persisted key-value mapping store, keyed by
// (program id, mapping name, key).
type Store interface {
	// Get returns the value under the key and whether the key is present.
	Get(program, mapping string, key network.Field) (network.Field, bool, error)
	// Set writes the value under the key, creating or replacing it.
	Set(program, mapping string, key, value network.Field) error
	// Contains reports whether the key is present.
	Contains(program, mapping string, key network.Field) (bool, error)
}

// MemoryStore is a Store held entirely in memory, for tests and for dry runs
// of finalize execution.
type MemoryStore struct {
	entries map[string]network.Field
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]network.Field)}
}

func storeKey(program, mapping string, key network.Field) string {
	return fmt.Sprintf("%s/%s/%s", program, mapping, key.String())
}

func (s *MemoryStore) Get(program, mapping string, key network.Field) (network.Field, bool, error) {
	v, ok := s.entries[storeKey(program, mapping, key)]
	return v, ok, nil
}

func (s *MemoryStore) Set(program, mapping string, key, value network.Field) error {
	s.entries[storeKey(program, mapping, key)] = value
	return nil
}

func (s *MemoryStore) Contains(program, mapping string, key network.Field) (bool, error) {
	_, ok := s.entries[storeKey(program, mapping, key)]
	return ok, nil
}
