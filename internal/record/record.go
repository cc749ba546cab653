// record.go - The on-ledger record type: an owner, ordered data entries, and a nonce.
//
// Records are created when a function execution emits an output, are immutable
// thereafter, and are consumed exactly once. Consumption derives a serial
// number (nullifier) that forever forbids re-use.

package record

import (
	"fmt"
	"sync"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/Zibelmann/snarkVM/internal/network"
)

// Visibility tags how a value is exposed on the ledger.
type Visibility uint8

const (
	// Plaintext values appear on the ledger in the clear.
	Plaintext Visibility = iota
	// Ciphertext values appear masked under the owner's view key.
	Ciphertext
)

// Owner is the record owner: an address when plaintext, or the ciphertext of
// one when the record is encrypted.
type Owner struct {
	Visibility Visibility
	Value      network.Field
}

// Entry is one named data entry of a record.
type Entry struct {
	Visibility Visibility
	Value      network.Field
}

// Record is a typed container of ledger value. The data map preserves
// insertion order; that order is part of the hashed representation, so two
// records with the same entries in different order commit differently.
type Record struct {
	Owner Owner
	Data  *linkedhashmap.Map // identifier (string) -> Entry
	Nonce network.Group

	bitsOnce sync.Once
	bits     []bool
}

// New returns a record with the given owner and nonce and no data entries.
func New(owner Owner, nonce network.Group) *Record {
	return &Record{Owner: owner, Data: linkedhashmap.New(), Nonce: nonce}
}

// With appends a data entry and returns the record for chaining. Appending
// after the bit encoding has been computed is a programming error and panics,
// because the cached encoding would go stale. The identifier must fit the
// one-byte length of the wire framing.
func (r *Record) With(identifier string, entry Entry) *Record {
	if r.bits != nil {
		panic("record: data entry appended after encoding was computed")
	}
	if len(identifier) == 0 || len(identifier) > 255 {
		panic(fmt.Sprintf("record: identifier of %d bytes does not fit a one-byte length", len(identifier)))
	}
	r.Data.Put(identifier, entry)
	return r
}

// Entry returns the named data entry.
func (r *Record) Entry(identifier string) (Entry, bool) {
	v, ok := r.Data.Get(identifier)
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

// Commitment returns the binding digest uniquely identifying this record
// instance, computed over the framed bit encoding.
func (r *Record) Commitment() network.Field {
	return network.HashBits(r.ToBitsLE())
}

// SerialNumber derives the record's nullifier from its commitment and the
// blinding element gamma. Deterministic: a fixed (commitment, gamma) pair
// always yields the same field element.
func (r *Record) SerialNumber(gamma *network.Group) network.Field {
	commitment := r.Commitment()
	return network.SerialNumberFromGamma(gamma, &commitment)
}

// Equal reports whether two records encode identically.
func (r *Record) Equal(other *Record) bool {
	a := r.ToBitsLE()
	b := other.ToBitsLE()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (r *Record) String() string {
	cm := r.Commitment()
	return fmt.Sprintf("record(owner=%s, entries=%d, commitment=%s)", r.Owner.Value.String(), r.Data.Size(), cm.String())
}
