// network.go - Field, group, and hash plumbing shared by every protocol package.
//
// The network field is the BW6-761 scalar field, which coincides with the
// BLS12-377 base field. Group elements (nonces, gamma values) therefore embed
// into the field coordinate-wise, and one native MiMC instance hashes both.

package network

import (
	"errors"
	"math/big"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	bls12377_fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	fr "github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
)

// Field is the network field element (BW6-761 scalar field).
type Field = fr.Element

// Group is the network group element (BLS12-377 G1).
type Group = bls12377.G1Affine

// FieldBytes is the serialized size of one field element.
const FieldBytes = fr.Bytes

// Merkle tree depths. A transition tree holds the inputs and outputs of one
// transition in a contiguous leaf-index space; a transaction tree holds
// transition identifiers. A local state path is a transition segment joined
// to a transaction segment, and the global commitment tree uses the same
// total depth so a single circuit shape verifies either root.
const (
	TransitionDepth  = 5
	TransactionDepth = 5
	StatePathDepth   = TransitionDepth + TransactionDepth
)

// MaxTransitionLeaves is the maximum number of inputs plus outputs in one transition.
const MaxTransitionLeaves = 1 << TransitionDepth

// MaxTransitions is the maximum number of transitions in one transaction.
const MaxTransitions = 1 << TransactionDepth

var ErrBitStream = errors.New("malformed bit stream")

// HashFields computes the MiMC digest of a sequence of field elements.
func HashFields(fields ...*Field) Field {
	h := mimcNative.NewMiMC()
	for _, f := range fields {
		b := f.Bytes()
		h.Write(b[:])
	}
	var out Field
	out.SetBytes(h.Sum(nil))
	return out
}

// HashGroup folds a group element into a single field digest.
func HashGroup(g *Group) Field {
	h := mimcNative.NewMiMC()
	x := g.X.Bytes()
	y := g.Y.Bytes()
	h.Write(x[:])
	h.Write(y[:])
	var out Field
	out.SetBytes(h.Sum(nil))
	return out
}

// HashBits packs a little-endian bit string into sub-modulus chunks and folds
// the chunks with MiMC. This is the streaming hash used for record
// commitments: the framed bit encoding feeds it directly.
func HashBits(bits []bool) Field {
	const chunk = 256 // bits per chunk, comfortably below the field modulus
	h := mimcNative.NewMiMC()
	for off := 0; off < len(bits) || off == 0; off += chunk {
		end := off + chunk
		if end > len(bits) {
			end = len(bits)
		}
		v := new(big.Int)
		for i := end - 1; i >= off; i-- {
			v.Lsh(v, 1)
			if bits[i] {
				v.SetBit(v, 0, 1)
			}
		}
		var e Field
		e.SetBigInt(v)
		b := e.Bytes()
		h.Write(b[:])
		if len(bits) == 0 {
			break
		}
	}
	var out Field
	out.SetBytes(h.Sum(nil))
	return out
}

// HashToScalar reduces a MiMC digest of the given field elements into the
// BLS12-377 scalar field, for use as a group exponent.
func HashToScalar(fields ...*Field) *big.Int {
	digest := HashFields(fields...)
	v := digest.BigInt(new(big.Int))
	return v.Mod(v, bls12377_fr.Modulus())
}

// ScalarBaseMul returns scalar*G for the BLS12-377 G1 generator.
func ScalarBaseMul(scalar *big.Int) Group {
	g1Jac, _, _, _ := bls12377.Generators()
	var g Group
	g.FromJacobian(&g1Jac)
	g.ScalarMultiplication(&g, scalar)
	return g
}

// SerialNumberFromGamma derives the nullifier for a record: the MiMC digest
// of the commitment and the folded gamma element. Knowledge of gamma plus the
// commitment is required to produce it, and a given record yields exactly one
// serial number.
func SerialNumberFromGamma(gamma *Group, commitment *Field) Field {
	gh := HashGroup(gamma)
	return HashFields(commitment, &gh)
}

// FieldToBytesLE serializes a field element in little-endian order, the wire
// byte order used throughout the protocol encodings.
func FieldToBytesLE(f *Field) []byte {
	be := f.Bytes()
	out := make([]byte, FieldBytes)
	for i := range be {
		out[FieldBytes-1-i] = be[i]
	}
	return out
}

// FieldFromBytesLE deserializes a little-endian field element.
func FieldFromBytesLE(b []byte) (Field, error) {
	var f Field
	if len(b) != FieldBytes {
		return f, errors.New("invalid field element length")
	}
	be := make([]byte, FieldBytes)
	for i := range b {
		be[FieldBytes-1-i] = b[i]
	}
	f.SetBytes(be)
	return f, nil
}

// FieldToBitsLE returns the little-endian bits of a field element.
func FieldToBitsLE(f *Field) []bool {
	le := FieldToBytesLE(f)
	bits := make([]bool, FieldBytes*8)
	for i, b := range le {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (b>>uint(j))&1 == 1
		}
	}
	return bits
}

// FieldFromBitsLE reads one field element from a little-endian bit stream.
func FieldFromBitsLE(bits []bool) (Field, error) {
	var f Field
	if len(bits) < FieldBytes*8 {
		return f, ErrBitStream
	}
	le := make([]byte, FieldBytes)
	for i := range le {
		for j := 0; j < 8; j++ {
			if bits[i*8+j] {
				le[i] |= 1 << uint(j)
			}
		}
	}
	return FieldFromBytesLE(le)
}

// GroupToBitsLE returns the little-endian bits of a group element, coordinate-wise.
func GroupToBitsLE(g *Group) []bool {
	var x, y Field
	xb := g.X.Bytes()
	yb := g.Y.Bytes()
	x.SetBytes(xb[:])
	y.SetBytes(yb[:])
	return append(FieldToBitsLE(&x), FieldToBitsLE(&y)...)
}

// GroupFromBitsLE reads one group element from a little-endian bit stream.
func GroupFromBitsLE(bits []bool) (Group, error) {
	var g Group
	if len(bits) < 2*FieldBytes*8 {
		return g, ErrBitStream
	}
	x, err := FieldFromBitsLE(bits[:FieldBytes*8])
	if err != nil {
		return g, err
	}
	y, err := FieldFromBitsLE(bits[FieldBytes*8 : 2*FieldBytes*8])
	if err != nil {
		return g, err
	}
	xb := x.Bytes()
	yb := y.Bytes()
	g.X.SetBytes(xb[:])
	g.Y.SetBytes(yb[:])
	return g, nil
}

// BytesToBitsLE expands bytes into little-endian bits.
func BytesToBitsLE(data []byte) []bool {
	bits := make([]bool, len(data)*8)
	for i, b := range data {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (b>>uint(j))&1 == 1
		}
	}
	return bits
}

// BitsToBytesLE packs little-endian bits into bytes. The bit length must be a
// multiple of eight.
func BitsToBytesLE(bits []bool) ([]byte, error) {
	if len(bits)%8 != 0 {
		return nil, ErrBitStream
	}
	out := make([]byte, len(bits)/8)
	for i := range out {
		for j := 0; j < 8; j++ {
			if bits[i*8+j] {
				out[i] |= 1 << uint(j)
			}
		}
	}
	return out, nil
}

// U32ToBitsLE returns the 32 little-endian bits of v.
func U32ToBitsLE(v uint32) []bool {
	bits := make([]bool, 32)
	for i := 0; i < 32; i++ {
		bits[i] = (v>>uint(i))&1 == 1
	}
	return bits
}

// U32FromBitsLE reads a u32 from a little-endian bit stream.
func U32FromBitsLE(bits []bool) (uint32, error) {
	if len(bits) < 32 {
		return 0, ErrBitStream
	}
	var v uint32
	for i := 0; i < 32; i++ {
		if bits[i] {
			v |= 1 << uint(i)
		}
	}
	return v, nil
}

// U8ToBitsLE returns the 8 little-endian bits of v.
func U8ToBitsLE(v uint8) []bool {
	bits := make([]bool, 8)
	for i := 0; i < 8; i++ {
		bits[i] = (v>>uint(i))&1 == 1
	}
	return bits
}

// U8FromBitsLE reads a u8 from a little-endian bit stream.
func U8FromBitsLE(bits []bool) (uint8, error) {
	if len(bits) < 8 {
		return 0, ErrBitStream
	}
	var v uint8
	for i := 0; i < 8; i++ {
		if bits[i] {
			v |= 1 << uint(i)
		}
	}
	return v, nil
}
