package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Zibelmann/snarkVM/internal/network"
)

func fieldOf(v uint64) network.Field {
	var f network.Field
	f.SetUint64(v)
	return f
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestMappingGetSetContains(t *testing.T) {
	s, _ := openTestStore(t)

	key, value := fieldOf(1), fieldOf(100)
	if _, ok, err := s.Get("token", "balances", key); err != nil || ok {
		t.Fatalf("expected absent key: ok=%v err=%v", ok, err)
	}
	ok, err := s.Contains("token", "balances", key)
	if err != nil || ok {
		t.Fatalf("Contains on absent key: ok=%v err=%v", ok, err)
	}

	if err := s.Set("token", "balances", key, value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok, err := s.Get("token", "balances", key)
	if err != nil || !ok {
		t.Fatalf("Get after Set: ok=%v err=%v", ok, err)
	}
	if !got.Equal(&value) {
		t.Errorf("value mismatch: %s", got.String())
	}
	ok, err = s.Contains("token", "balances", key)
	if err != nil || !ok {
		t.Errorf("Contains after Set: ok=%v err=%v", ok, err)
	}

	// Same key under a different program or mapping is independent.
	if _, ok, _ := s.Get("other", "balances", key); ok {
		t.Errorf("key leaked across programs")
	}
	if _, ok, _ := s.Get("token", "supply", key); ok {
		t.Errorf("key leaked across mappings")
	}

	// Set replaces.
	next := fieldOf(200)
	if err := s.Set("token", "balances", key, next); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}
	got, _, _ = s.Get("token", "balances", key)
	if !got.Equal(&next) {
		t.Errorf("replacement value mismatch: %s", got.String())
	}
}

func TestCommitmentsPersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	commitments := []network.Field{fieldOf(11), fieldOf(22), fieldOf(33)}
	for _, cm := range commitments {
		if err := s.AddCommitment(cm); err != nil {
			t.Fatalf("AddCommitment failed: %v", err)
		}
	}
	root, err := s.StateRoot()
	if err != nil {
		t.Fatalf("StateRoot failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	again, err := reopened.StateRoot()
	if err != nil {
		t.Fatalf("StateRoot after reopen failed: %v", err)
	}
	if !again.Equal(&root) {
		t.Errorf("state root changed across reopen")
	}
	for _, cm := range commitments {
		p, err := reopened.StatePath(cm)
		if err != nil {
			t.Fatalf("StatePath failed: %v", err)
		}
		if !p.Verify() || !p.Root.Equal(&root) {
			t.Errorf("path for %s does not verify against the root", cm.String())
		}
	}
}

func TestDuplicateCommitmentRejected(t *testing.T) {
	s, _ := openTestStore(t)
	cm := fieldOf(7)
	if err := s.AddCommitment(cm); err != nil {
		t.Fatalf("AddCommitment failed: %v", err)
	}
	err := s.AddCommitment(cm)
	if !errors.Is(err, network.ErrStateConflict) {
		t.Errorf("expected state conflict, got %v", err)
	}
}

func TestStatePathUnknownCommitment(t *testing.T) {
	s, _ := openTestStore(t)
	_, err := s.StatePath(fieldOf(404))
	if !errors.Is(err, network.ErrProofInput) {
		t.Errorf("expected proof input error, got %v", err)
	}
}
