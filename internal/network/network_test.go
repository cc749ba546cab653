package network

import (
	"testing"
)

func TestFieldBytesRoundTrip(t *testing.T) {
	var f Field
	f.SetUint64(123456789)
	b := FieldToBytesLE(&f)
	if len(b) != FieldBytes {
		t.Fatalf("expected %d bytes, got %d", FieldBytes, len(b))
	}
	back, err := FieldFromBytesLE(b)
	if err != nil {
		t.Fatalf("FieldFromBytesLE failed: %v", err)
	}
	if !back.Equal(&f) {
		t.Errorf("round trip mismatch: %s != %s", back.String(), f.String())
	}
}

func TestFieldBitsRoundTrip(t *testing.T) {
	var f Field
	f.SetUint64(987654321)
	bits := FieldToBitsLE(&f)
	if len(bits) != FieldBytes*8 {
		t.Fatalf("expected %d bits, got %d", FieldBytes*8, len(bits))
	}
	back, err := FieldFromBitsLE(bits)
	if err != nil {
		t.Fatalf("FieldFromBitsLE failed: %v", err)
	}
	if !back.Equal(&f) {
		t.Errorf("round trip mismatch")
	}
}

func TestFieldFromBitsLEShort(t *testing.T) {
	_, err := FieldFromBitsLE(make([]bool, 7))
	if err == nil {
		t.Errorf("expected error for short bit string, got nil")
	}
}

func TestBytesToBitsRoundTrip(t *testing.T) {
	data := []byte{0x01, 0xff, 0x80, 0x00, 0x42}
	bits := BytesToBitsLE(data)
	if len(bits) != len(data)*8 {
		t.Fatalf("expected %d bits, got %d", len(data)*8, len(bits))
	}
	back, err := BitsToBytesLE(bits)
	if err != nil {
		t.Fatalf("BitsToBytesLE failed: %v", err)
	}
	for i := range data {
		if back[i] != data[i] {
			t.Errorf("byte %d mismatch: %02x != %02x", i, back[i], data[i])
		}
	}
}

func TestGroupBitsRoundTrip(t *testing.T) {
	g := ScalarBaseMul(HashToScalar(fieldOf(42)))
	bits := GroupToBitsLE(&g)
	back, err := GroupFromBitsLE(bits)
	if err != nil {
		t.Fatalf("GroupFromBitsLE failed: %v", err)
	}
	if !back.Equal(&g) {
		t.Errorf("group round trip mismatch")
	}
}

func TestHashFieldsDeterministic(t *testing.T) {
	a, b := fieldOf(1), fieldOf(2)
	h1 := HashFields(a, b)
	h2 := HashFields(a, b)
	if !h1.Equal(&h2) {
		t.Errorf("same inputs produced different digests")
	}
	h3 := HashFields(b, a)
	if h1.Equal(&h3) {
		t.Errorf("argument order should change the digest")
	}
}

func TestSerialNumberDeterministic(t *testing.T) {
	commitment := fieldOf(777)
	gamma := ScalarBaseMul(HashToScalar(fieldOf(5), commitment))
	sn1 := SerialNumberFromGamma(&gamma, commitment)
	sn2 := SerialNumberFromGamma(&gamma, commitment)
	if !sn1.Equal(&sn2) {
		t.Errorf("serial number is not deterministic")
	}

	other := ScalarBaseMul(HashToScalar(fieldOf(6), commitment))
	sn3 := SerialNumberFromGamma(&other, commitment)
	if sn1.Equal(&sn3) {
		t.Errorf("different gammas produced the same serial number")
	}
}

func TestHashBitsChunking(t *testing.T) {
	short := make([]bool, 100)
	short[3] = true
	long := make([]bool, 1000)
	long[3] = true
	h1 := HashBits(short)
	h2 := HashBits(long)
	if h1.Equal(&h2) {
		t.Errorf("different length bit strings produced the same digest")
	}
	h3 := HashBits(short)
	if !h1.Equal(&h3) {
		t.Errorf("hash of identical bits differs")
	}
}

func fieldOf(v uint64) *Field {
	var f Field
	f.SetUint64(v)
	return &f
}
