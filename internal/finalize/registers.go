// registers.go - Register file and operands for finalize execution.

package finalize

import (
	"fmt"

	"github.com/Zibelmann/snarkVM/internal/network"
)

// OperandKind tags an operand as a register reference or a field literal.
type OperandKind uint8

const (
	RegisterOperand OperandKind = iota
	LiteralOperand
)

// Operand is a register reference or a literal field value.
type Operand struct {
	Kind     OperandKind
	Register uint64
	Literal  network.Field
}

// Reg returns a register operand.
func Reg(index uint64) Operand {
	return Operand{Kind: RegisterOperand, Register: index}
}

// Lit returns a literal operand.
func Lit(value network.Field) Operand {
	return Operand{Kind: LiteralOperand, Literal: value}
}

func (o Operand) String() string {
	if o.Kind == RegisterOperand {
		return fmt.Sprintf("r%d", o.Register)
	}
	return o.Literal.String()
}

// Registers is the register file for one finalize execution. Each register is
// written at most once; a second store to the same register is a conflict.
type Registers struct {
	values map[uint64]network.Field
}

// NewRegisters returns an empty register file.
func NewRegisters() *Registers {
	return &Registers{values: make(map[uint64]network.Field)}
}

// Load reads a register. Reading an unwritten register is an error.
func (r *Registers) Load(index uint64) (network.Field, error) {
	v, ok := r.values[index]
	if !ok {
		return network.Field{}, fmt.Errorf("%w: register r%d is not set", network.ErrMalformedInput, index)
	}
	return v, nil
}

// Store writes a register exactly once.
func (r *Registers) Store(index uint64, value network.Field) error {
	if _, ok := r.values[index]; ok {
		return fmt.Errorf("%w: register r%d is already set", network.ErrStateConflict, index)
	}
	r.values[index] = value
	return nil
}

// Resolve evaluates an operand against the register file.
func (r *Registers) Resolve(op Operand) (network.Field, error) {
	if op.Kind == LiteralOperand {
		return op.Literal, nil
	}
	return r.Load(op.Register)
}
