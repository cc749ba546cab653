package record

import (
	"errors"
	"strings"
	"testing"

	"github.com/Zibelmann/snarkVM/internal/network"
)

func testRecord() *Record {
	var owner, amount, data network.Field
	owner.SetUint64(11111)
	amount.SetUint64(1000)
	data.SetUint64(4242)
	nonce := network.ScalarBaseMul(network.HashToScalar(&owner, &amount))
	return New(Owner{Visibility: Plaintext, Value: owner}, nonce).
		With("amount", Entry{Visibility: Plaintext, Value: amount}).
		With("data", Entry{Visibility: Ciphertext, Value: data})
}

func TestRecordBitsRoundTrip(t *testing.T) {
	r := testRecord()
	bits := r.ToBitsLE()
	back, err := FromBitsLE(bits)
	if err != nil {
		t.Fatalf("FromBitsLE failed: %v", err)
	}
	if !back.Equal(r) {
		t.Errorf("decoded record differs from original")
	}
	cm1 := r.Commitment()
	cm2 := back.Commitment()
	if !cm1.Equal(&cm2) {
		t.Errorf("decoded record commits differently")
	}
}

func TestRecordBitsTrailing(t *testing.T) {
	bits := append(testRecord().ToBitsLE(), false)
	if _, err := FromBitsLE(bits); err == nil {
		t.Errorf("expected error for trailing bits, got nil")
	}
}

func TestRecordBitsTruncated(t *testing.T) {
	bits := testRecord().ToBitsLE()
	if _, err := FromBitsLE(bits[:len(bits)/2]); err == nil {
		t.Errorf("expected error for truncated bits, got nil")
	}
}

func TestRecordEntryOrderChangesCommitment(t *testing.T) {
	var owner, a, b network.Field
	owner.SetUint64(1)
	a.SetUint64(2)
	b.SetUint64(3)
	nonce := network.ScalarBaseMul(network.HashToScalar(&owner))

	r1 := New(Owner{Visibility: Plaintext, Value: owner}, nonce).
		With("a", Entry{Visibility: Plaintext, Value: a}).
		With("b", Entry{Visibility: Plaintext, Value: b})
	r2 := New(Owner{Visibility: Plaintext, Value: owner}, nonce).
		With("b", Entry{Visibility: Plaintext, Value: b}).
		With("a", Entry{Visibility: Plaintext, Value: a})

	cm1 := r1.Commitment()
	cm2 := r2.Commitment()
	if cm1.Equal(&cm2) {
		t.Errorf("entry order should change the commitment")
	}
}

func TestRecordCommitmentStable(t *testing.T) {
	r := testRecord()
	cm1 := r.Commitment()
	cm2 := r.Commitment()
	if !cm1.Equal(&cm2) {
		t.Errorf("commitment is not stable across calls")
	}
}

func TestWithAfterEncodingPanics(t *testing.T) {
	r := testRecord()
	r.ToBitsLE()
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic when appending after encoding")
		}
	}()
	r.With("late", Entry{Visibility: Plaintext, Value: network.Field{}})
}

func TestWithOversizedIdentifierPanics(t *testing.T) {
	r := testRecord()
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for an identifier that cannot be framed")
		}
	}()
	r.With(strings.Repeat("a", 256), Entry{Visibility: Plaintext, Value: network.Field{}})
}

func TestDuplicateIdentifierRejected(t *testing.T) {
	var owner, v network.Field
	owner.SetUint64(9)
	v.SetUint64(10)
	nonce := network.ScalarBaseMul(network.HashToScalar(&owner))
	dup := New(Owner{Visibility: Plaintext, Value: owner}, nonce).
		With("x", Entry{Visibility: Plaintext, Value: v})

	// Duplicate the single entry's bit span inside the length-framed region.
	dupBits := dup.ToBitsLE()
	ownerBits := 8 + network.FieldBytes*8
	lenBits := 32
	nonceBits := 2 * network.FieldBytes * 8
	entrySpan := dupBits[ownerBits+lenBits : len(dupBits)-nonceBits]

	forged := make([]bool, 0, len(dupBits)+len(entrySpan))
	forged = append(forged, dupBits[:ownerBits]...)
	forged = append(forged, network.U32ToBitsLE(uint32(2*len(entrySpan)))...)
	forged = append(forged, entrySpan...)
	forged = append(forged, entrySpan...)
	forged = append(forged, dupBits[len(dupBits)-nonceBits:]...)

	_, err := FromBitsLE(forged)
	if !errors.Is(err, network.ErrMalformedInput) {
		t.Errorf("expected malformed input error for duplicate identifier, got %v", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	r := testRecord()
	var secret network.Field
	secret.SetUint64(5555)
	cm := r.Commitment()
	shared := network.ScalarBaseMul(network.HashToScalar(&secret, &cm))

	enc := r.Encrypt(&shared)
	if enc.Equal(r) {
		t.Errorf("encryption left the record unchanged")
	}

	// Plaintext entries stay readable; ciphertext entries are masked. The
	// declared visibilities survive in both directions.
	plainEntry := mustEntry(t, r, "amount")
	cipherEntry := mustEntry(t, r, "data")
	if got := mustEntry(t, enc, "amount"); got.Visibility != Plaintext || !got.Value.Equal(&plainEntry.Value) {
		t.Errorf("plaintext entry was not carried through encryption unchanged")
	}
	if got := mustEntry(t, enc, "data"); got.Visibility != Ciphertext || got.Value.Equal(&cipherEntry.Value) {
		t.Errorf("ciphertext entry was not masked")
	}

	dec := enc.Decrypt(&shared)
	if !dec.Equal(r) {
		t.Errorf("decryption did not restore the record")
	}
	if got := mustEntry(t, dec, "data"); got.Visibility != Ciphertext {
		t.Errorf("decryption did not preserve the entry visibility")
	}
}

func mustEntry(t *testing.T, r *Record, name string) Entry {
	t.Helper()
	v, ok := r.Data.Get(name)
	if !ok {
		t.Fatalf("record has no entry %q", name)
	}
	return v.(Entry)
}

func TestSerialNumberPerGamma(t *testing.T) {
	r := testRecord()
	cm := r.Commitment()
	gamma1 := network.ScalarBaseMul(network.HashToScalar(fieldOf(1), &cm))
	gamma2 := network.ScalarBaseMul(network.HashToScalar(fieldOf(2), &cm))

	sn1 := r.SerialNumber(&gamma1)
	sn1again := r.SerialNumber(&gamma1)
	if !sn1.Equal(&sn1again) {
		t.Errorf("serial number is not deterministic")
	}
	sn2 := r.SerialNumber(&gamma2)
	if sn1.Equal(&sn2) {
		t.Errorf("distinct keys should nullify the same record differently")
	}
}

func fieldOf(v uint64) *network.Field {
	var f network.Field
	f.SetUint64(v)
	return &f
}
