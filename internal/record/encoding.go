// encoding.go - Deterministic bit-level encoding of records.
//
// The framing is owner || u32(bit length of data) || data || nonce, all
// little-endian. The length prefix makes the encoding self-describing, so a
// streaming hash can consume it without lookahead and a decoder can recover
// the exact entry boundaries.

package record

import (
	"fmt"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/Zibelmann/snarkVM/internal/network"
)

// ToBitsLE returns the record as a little-endian bit string. The encoding is
// computed once and cached; records are immutable after construction.
func (r *Record) ToBitsLE() []bool {
	r.bitsOnce.Do(func() {
		var data []bool
		it := r.Data.Iterator()
		for it.Next() {
			identifier := it.Key().(string)
			entry := it.Value().(Entry)
			data = append(data, identifierToBitsLE(identifier)...)
			data = append(data, network.U8ToBitsLE(uint8(entry.Visibility))...)
			data = append(data, network.FieldToBitsLE(&entry.Value)...)
		}

		var bits []bool
		bits = append(bits, network.U8ToBitsLE(uint8(r.Owner.Visibility))...)
		bits = append(bits, network.FieldToBitsLE(&r.Owner.Value)...)
		bits = append(bits, network.U32ToBitsLE(uint32(len(data)))...)
		bits = append(bits, data...)
		bits = append(bits, network.GroupToBitsLE(&r.Nonce)...)
		r.bits = bits
	})
	return r.bits
}

// FromBitsLE decodes a record from its little-endian bit encoding. The stream
// must be consumed exactly: trailing bits or a truncated stream are errors.
func FromBitsLE(bits []bool) (*Record, error) {
	cur := bits

	ownerVis, err := network.U8FromBitsLE(cur)
	if err != nil {
		return nil, fmt.Errorf("%w: record owner visibility: %v", network.ErrMalformedInput, err)
	}
	cur = cur[8:]
	ownerValue, err := network.FieldFromBitsLE(cur)
	if err != nil {
		return nil, fmt.Errorf("%w: record owner: %v", network.ErrMalformedInput, err)
	}
	cur = cur[network.FieldBytes*8:]

	dataLen, err := network.U32FromBitsLE(cur)
	if err != nil {
		return nil, fmt.Errorf("%w: record data length: %v", network.ErrMalformedInput, err)
	}
	cur = cur[32:]
	if uint32(len(cur)) < dataLen {
		return nil, fmt.Errorf("%w: record data truncated", network.ErrMalformedInput)
	}
	data := cur[:dataLen]
	cur = cur[dataLen:]

	entries := linkedhashmap.New()
	for len(data) > 0 {
		identifier, rest, err := identifierFromBitsLE(data)
		if err != nil {
			return nil, err
		}
		data = rest
		vis, err := network.U8FromBitsLE(data)
		if err != nil {
			return nil, fmt.Errorf("%w: entry visibility: %v", network.ErrMalformedInput, err)
		}
		data = data[8:]
		value, err := network.FieldFromBitsLE(data)
		if err != nil {
			return nil, fmt.Errorf("%w: entry value: %v", network.ErrMalformedInput, err)
		}
		data = data[network.FieldBytes*8:]
		if _, exists := entries.Get(identifier); exists {
			return nil, fmt.Errorf("%w: duplicate entry identifier '%s'", network.ErrMalformedInput, identifier)
		}
		entries.Put(identifier, Entry{Visibility: Visibility(vis), Value: value})
	}

	nonce, err := network.GroupFromBitsLE(cur)
	if err != nil {
		return nil, fmt.Errorf("%w: record nonce: %v", network.ErrMalformedInput, err)
	}
	cur = cur[2*network.FieldBytes*8:]
	if len(cur) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bits after record", network.ErrMalformedInput, len(cur))
	}

	return &Record{
		Owner: Owner{Visibility: Visibility(ownerVis), Value: ownerValue},
		Data:  entries,
		Nonce: nonce,
	}, nil
}

// identifierToBitsLE frames an identifier as u8(byte length) || bytes.
func identifierToBitsLE(identifier string) []bool {
	bits := network.U8ToBitsLE(uint8(len(identifier)))
	return append(bits, network.BytesToBitsLE([]byte(identifier))...)
}

func identifierFromBitsLE(bits []bool) (string, []bool, error) {
	n, err := network.U8FromBitsLE(bits)
	if err != nil {
		return "", nil, fmt.Errorf("%w: entry identifier length: %v", network.ErrMalformedInput, err)
	}
	bits = bits[8:]
	if len(bits) < int(n)*8 {
		return "", nil, fmt.Errorf("%w: entry identifier truncated", network.ErrMalformedInput)
	}
	raw, err := network.BitsToBytesLE(bits[:int(n)*8])
	if err != nil {
		return "", nil, fmt.Errorf("%w: entry identifier: %v", network.ErrMalformedInput, err)
	}
	return string(raw), bits[int(n)*8:], nil
}
