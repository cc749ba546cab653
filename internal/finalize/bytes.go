// bytes.go - Binary codec for finalize commands.
//
// Wire format, little-endian throughout: a one-byte variant tag
// (0=Instruction, 1=Get, 2=GetOrUse, 3=Set) followed by the variant payload.
// Any other tag is a decode error, and so is trailing input.

package finalize

import (
	"encoding/binary"
	"fmt"

	"github.com/Zibelmann/snarkVM/internal/network"
)

const (
	tagInstruction uint8 = iota
	tagGet
	tagGetOrUse
	tagSet
)

// EncodeCommand serializes a command to its wire format.
func EncodeCommand(c Command) []byte {
	var out []byte
	switch c := c.(type) {
	case *Instruction:
		out = append(out, tagInstruction, uint8(c.Opcode))
		out = appendOperand(out, c.Operands[0])
		out = appendOperand(out, c.Operands[1])
		out = binary.LittleEndian.AppendUint64(out, c.Destination)
	case *Get:
		out = append(out, tagGet)
		out = appendName(out, c.Mapping)
		out = appendOperand(out, c.Key)
		out = binary.LittleEndian.AppendUint64(out, c.Destination)
	case *GetOrUse:
		out = append(out, tagGetOrUse)
		out = appendName(out, c.Mapping)
		out = appendOperand(out, c.Key)
		out = appendOperand(out, c.Default)
		out = binary.LittleEndian.AppendUint64(out, c.Destination)
	case *Set:
		out = append(out, tagSet)
		out = appendOperand(out, c.Value)
		out = appendName(out, c.Mapping)
		out = appendOperand(out, c.Key)
	default:
		panic(fmt.Sprintf("finalize: unknown command type %T", c))
	}
	return out
}

// DecodeCommand deserializes a command, consuming the buffer exactly.
func DecodeCommand(data []byte) (Command, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty command", network.ErrMalformedInput)
	}
	tag := data[0]
	r := &byteReader{buf: data[1:]}

	var cmd Command
	switch tag {
	case tagInstruction:
		opcode, err := r.u8()
		if err != nil {
			return nil, err
		}
		if opcode > uint8(OpMul) {
			return nil, fmt.Errorf("%w: invalid opcode %d", network.ErrMalformedInput, opcode)
		}
		a, err := r.operand()
		if err != nil {
			return nil, err
		}
		b, err := r.operand()
		if err != nil {
			return nil, err
		}
		dest, err := r.u64()
		if err != nil {
			return nil, err
		}
		cmd = &Instruction{Opcode: Opcode(opcode), Operands: [2]Operand{a, b}, Destination: dest}
	case tagGet:
		mapping, err := r.name()
		if err != nil {
			return nil, err
		}
		key, err := r.operand()
		if err != nil {
			return nil, err
		}
		dest, err := r.u64()
		if err != nil {
			return nil, err
		}
		cmd = &Get{Mapping: mapping, Key: key, Destination: dest}
	case tagGetOrUse:
		mapping, err := r.name()
		if err != nil {
			return nil, err
		}
		key, err := r.operand()
		if err != nil {
			return nil, err
		}
		def, err := r.operand()
		if err != nil {
			return nil, err
		}
		dest, err := r.u64()
		if err != nil {
			return nil, err
		}
		cmd = &GetOrUse{Mapping: mapping, Key: key, Default: def, Destination: dest}
	case tagSet:
		value, err := r.operand()
		if err != nil {
			return nil, err
		}
		mapping, err := r.name()
		if err != nil {
			return nil, err
		}
		key, err := r.operand()
		if err != nil {
			return nil, err
		}
		cmd = &Set{Value: value, Mapping: mapping, Key: key}
	default:
		return nil, fmt.Errorf("%w: invalid command variant %d", network.ErrMalformedInput, tag)
	}

	if len(r.buf) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after command", network.ErrMalformedInput, len(r.buf))
	}
	return cmd, nil
}

func appendName(out []byte, name string) []byte {
	if len(name) > 255 {
		panic(fmt.Sprintf("finalize: mapping name of %d bytes does not fit a one-byte length", len(name)))
	}
	out = append(out, uint8(len(name)))
	return append(out, name...)
}

func appendOperand(out []byte, op Operand) []byte {
	out = append(out, uint8(op.Kind))
	if op.Kind == RegisterOperand {
		return binary.LittleEndian.AppendUint64(out, op.Register)
	}
	return append(out, network.FieldToBytesLE(&op.Literal)...)
}

type byteReader struct {
	buf []byte
}

func (r *byteReader) u8() (uint8, error) {
	if len(r.buf) < 1 {
		return 0, fmt.Errorf("%w: truncated command", network.ErrMalformedInput)
	}
	v := r.buf[0]
	r.buf = r.buf[1:]
	return v, nil
}

func (r *byteReader) u64() (uint64, error) {
	if len(r.buf) < 8 {
		return 0, fmt.Errorf("%w: truncated command", network.ErrMalformedInput)
	}
	v := binary.LittleEndian.Uint64(r.buf)
	r.buf = r.buf[8:]
	return v, nil
}

func (r *byteReader) name() (string, error) {
	n, err := r.u8()
	if err != nil {
		return "", err
	}
	if len(r.buf) < int(n) {
		return "", fmt.Errorf("%w: truncated mapping name", network.ErrMalformedInput)
	}
	name := string(r.buf[:n])
	r.buf = r.buf[n:]
	return name, nil
}

func (r *byteReader) operand() (Operand, error) {
	kind, err := r.u8()
	if err != nil {
		return Operand{}, err
	}
	switch OperandKind(kind) {
	case RegisterOperand:
		idx, err := r.u64()
		if err != nil {
			return Operand{}, err
		}
		return Reg(idx), nil
	case LiteralOperand:
		if len(r.buf) < network.FieldBytes {
			return Operand{}, fmt.Errorf("%w: truncated literal operand", network.ErrMalformedInput)
		}
		lit, err := network.FieldFromBytesLE(r.buf[:network.FieldBytes])
		if err != nil {
			return Operand{}, fmt.Errorf("%w: %v", network.ErrMalformedInput, err)
		}
		r.buf = r.buf[network.FieldBytes:]
		return Lit(lit), nil
	default:
		return Operand{}, fmt.Errorf("%w: invalid operand kind %d", network.ErrMalformedInput, kind)
	}
}
