// encrypt.go - Record encryption under a shared group key.
//
// Uses a MiMC mask chain keyed by the shared element: each field of the
// record is masked by the next link of the chain. Decryption subtracts the
// same masks, so owners can scan the ledger for records addressed to them.

package record

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/Zibelmann/snarkVM/internal/network"
)

// maskChain derives n field masks from the shared key element.
func maskChain(shared *network.Group, n int) []network.Field {
	masks := make([]network.Field, n)
	prev := network.HashGroup(shared)
	for i := 0; i < n; i++ {
		masks[i] = prev
		prev = network.HashFields(&prev)
	}
	return masks
}

// Encrypt returns the ciphertext form of a record under the shared key: the
// owner and every ciphertext-visibility entry are masked, plaintext entries
// and the nonce stay readable so the recipient can recompute the shared key.
// Entry visibilities are carried through unchanged.
func (r *Record) Encrypt(shared *network.Group) *Record {
	masks := maskChain(shared, 1+r.Data.Size())

	var owner network.Field
	owner.Add(&r.Owner.Value, &masks[0])

	entries := linkedhashmap.New()
	i := 1
	it := r.Data.Iterator()
	for it.Next() {
		entry := it.Value().(Entry)
		value := entry.Value
		if entry.Visibility == Ciphertext {
			value.Add(&entry.Value, &masks[i])
		}
		entries.Put(it.Key(), Entry{Visibility: entry.Visibility, Value: value})
		i++
	}

	return &Record{
		Owner: Owner{Visibility: Ciphertext, Value: owner},
		Data:  entries,
		Nonce: r.Nonce,
	}
}

// Decrypt reverses Encrypt under the same shared key.
func (r *Record) Decrypt(shared *network.Group) *Record {
	masks := maskChain(shared, 1+r.Data.Size())

	var owner network.Field
	owner.Sub(&r.Owner.Value, &masks[0])

	entries := linkedhashmap.New()
	i := 1
	it := r.Data.Iterator()
	for it.Next() {
		entry := it.Value().(Entry)
		value := entry.Value
		if entry.Visibility == Ciphertext {
			value.Sub(&entry.Value, &masks[i])
		}
		entries.Put(it.Key(), Entry{Visibility: entry.Visibility, Value: value})
		i++
	}

	return &Record{
		Owner: Owner{Visibility: Plaintext, Value: owner},
		Data:  entries,
		Nonce: r.Nonce,
	}
}

// IsOwner reports whether decrypting with the shared key reveals the given
// address as the record owner. Used when scanning the ledger.
func (r *Record) IsOwner(shared *network.Group, address *network.Field) bool {
	masks := maskChain(shared, 1)
	var owner network.Field
	owner.Sub(&r.Owner.Value, &masks[0])
	return owner.Equal(address)
}
