// Package store persists the key-value mapping state and the global
// commitment tree in SQLite. The commitment tree is mirrored in memory so
// state roots and inclusion paths never touch the database on the read path;
// the mirror is rebuilt from the commitments table on open.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Zibelmann/snarkVM/internal/inclusion"
	"github.com/Zibelmann/snarkVM/internal/merkle"
	"github.com/Zibelmann/snarkVM/internal/network"
)

// Store is a SQLite-backed mapping store and commitment ledger. It satisfies
// both the finalize store contract and the inclusion query contract.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	ledger *inclusion.MemoryLedger
}

// Open opens or creates the database at path and rebuilds the in-memory
// commitment tree from the persisted commitments, in position order.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating db schema: %w", err)
	}

	ledger := inclusion.NewMemoryLedger()
	rows, err := db.Query("SELECT commitment FROM commitments ORDER BY position ASC")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading commitments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bits []byte
		if err := rows.Scan(&bits); err != nil {
			db.Close()
			return nil, fmt.Errorf("scanning commitment: %w", err)
		}
		commitment, err := network.FieldFromBytesLE(bits)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("parsing commitment: %w", err)
		}
		if err := ledger.AddCommitment(commitment); err != nil {
			db.Close()
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("iterating commitments: %w", err)
	}

	return &Store{db: db, ledger: ledger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value under (program, mapping, key) and whether it exists.
func (s *Store) Get(program, mapping string, key network.Field) (network.Field, bool, error) {
	var bits []byte
	err := s.db.QueryRow(
		"SELECT value FROM mappings WHERE program = $1 AND mapping = $2 AND key = $3",
		program, mapping, network.FieldToBytesLE(&key),
	).Scan(&bits)
	if err == sql.ErrNoRows {
		return network.Field{}, false, nil
	}
	if err != nil {
		return network.Field{}, false, fmt.Errorf("reading mapping value: %w", err)
	}
	value, err := network.FieldFromBytesLE(bits)
	if err != nil {
		return network.Field{}, false, fmt.Errorf("parsing mapping value: %w", err)
	}
	return value, true, nil
}

// Set writes the value under (program, mapping, key), replacing any previous
// value.
func (s *Store) Set(program, mapping string, key, value network.Field) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO mappings (program, mapping, key, value) VALUES ($1, $2, $3, $4)",
		program, mapping, network.FieldToBytesLE(&key), network.FieldToBytesLE(&value),
	)
	if err != nil {
		return fmt.Errorf("writing mapping value: %w", err)
	}
	return nil
}

// Contains reports whether (program, mapping, key) is present.
func (s *Store) Contains(program, mapping string, key network.Field) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM mappings WHERE program = $1 AND mapping = $2 AND key = $3",
		program, mapping, network.FieldToBytesLE(&key),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking mapping key: %w", err)
	}
	return n > 0, nil
}

// AddCommitment appends a record commitment to the global tree and persists
// it. The database row and the in-memory tree are updated together under the
// store lock.
func (s *Store) AddCommitment(commitment network.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	position, err := s.nextPosition()
	if err != nil {
		return err
	}
	if err := s.ledger.AddCommitment(commitment); err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT INTO commitments (position, commitment) VALUES ($1, $2)",
		position, network.FieldToBytesLE(&commitment),
	)
	if err != nil {
		return fmt.Errorf("writing commitment: %w", err)
	}
	return nil
}

// StateRoot returns the root of the global commitment tree.
func (s *Store) StateRoot() (network.Field, error) {
	return s.ledger.StateRoot()
}

// StatePath returns an inclusion path for a persisted commitment.
func (s *Store) StatePath(commitment network.Field) (merkle.StatePath, error) {
	return s.ledger.StatePath(commitment)
}

func (s *Store) nextPosition() (int64, error) {
	var position sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(position) FROM commitments").Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("reading commitment position: %w", err)
	}
	if !position.Valid {
		return 0, nil
	}
	return position.Int64 + 1, nil
}
