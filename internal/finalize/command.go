// command.go - Finalize commands: the state machine applied during block finalization.
//
// A command is one of four closed variants. Only Set yields a FinalizeOperation,
// because only a write must be folded into a state-root update; the surrounding
// ledger batches those operations per block.

package finalize

import (
	"fmt"

	"github.com/Zibelmann/snarkVM/internal/network"
)

// Context carries the program scope a command executes under.
type Context struct {
	ProgramID string
}

// Command is one step of on-chain mapping mutation or register computation.
// The variant set is closed: Instruction, Get, GetOrUse, Set.
type Command interface {
	// Finalize applies the command. Only Set returns a non-nil operation.
	Finalize(ctx *Context, store Store, registers *Registers) (*Operation, error)
	// String renders the command in its textual grammar, ending with ';'.
	String() string

	command()
}

// OperationType tags a persisted mapping mutation.
type OperationType uint8

const (
	// UpdateKeyValue records a write of value under (program, mapping, key).
	UpdateKeyValue OperationType = iota
)

// Operation describes one persisted mapping mutation, emitted for later
// application to on-chain storage.
type Operation struct {
	Type      OperationType
	ProgramID string
	Mapping   string
	Key       network.Field
	Value     network.Field
}

// Instruction evaluates a register computation. No storage effect.
type Instruction struct {
	Opcode      Opcode
	Operands    [2]Operand
	Destination uint64
}

// Opcode is the operation of an Instruction.
type Opcode uint8

const (
	OpAdd Opcode = iota
	OpSub
	OpMul
)

func (o Opcode) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	default:
		return fmt.Sprintf("opcode(%d)", uint8(o))
	}
}

func (c *Instruction) command() {}

// Finalize evaluates the instruction against the register file.
func (c *Instruction) Finalize(ctx *Context, store Store, registers *Registers) (*Operation, error) {
	a, err := registers.Resolve(c.Operands[0])
	if err != nil {
		return nil, err
	}
	b, err := registers.Resolve(c.Operands[1])
	if err != nil {
		return nil, err
	}
	var out network.Field
	switch c.Opcode {
	case OpAdd:
		out.Add(&a, &b)
	case OpSub:
		out.Sub(&a, &b)
	case OpMul:
		out.Mul(&a, &b)
	default:
		return nil, fmt.Errorf("%w: invalid opcode %d", network.ErrMalformedInput, c.Opcode)
	}
	return nil, registers.Store(c.Destination, out)
}

func (c *Instruction) String() string {
	return fmt.Sprintf("%s %s %s into r%d;", c.Opcode, c.Operands[0], c.Operands[1], c.Destination)
}

// Get reads mapping[key] into a destination register. Fails if the key is absent.
type Get struct {
	Mapping     string
	Key         Operand
	Destination uint64
}

func (c *Get) command() {}

// Finalize reads the mapping entry and stores it in the destination register.
func (c *Get) Finalize(ctx *Context, store Store, registers *Registers) (*Operation, error) {
	key, err := registers.Resolve(c.Key)
	if err != nil {
		return nil, err
	}
	value, ok, err := store.Get(ctx.ProgramID, c.Mapping, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: key %s absent from mapping '%s/%s'",
			network.ErrMalformedInput, key.String(), ctx.ProgramID, c.Mapping)
	}
	return nil, registers.Store(c.Destination, value)
}

func (c *Get) String() string {
	return fmt.Sprintf("get %s[%s] into r%d;", c.Mapping, c.Key, c.Destination)
}

// GetOrUse reads mapping[key], falling back to a default when the key is
// absent. Never fails on a missing key.
type GetOrUse struct {
	Mapping     string
	Key         Operand
	Default     Operand
	Destination uint64
}

func (c *GetOrUse) command() {}

// Finalize reads the mapping entry or the default into the destination register.
func (c *GetOrUse) Finalize(ctx *Context, store Store, registers *Registers) (*Operation, error) {
	key, err := registers.Resolve(c.Key)
	if err != nil {
		return nil, err
	}
	value, ok, err := store.Get(ctx.ProgramID, c.Mapping, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		value, err = registers.Resolve(c.Default)
		if err != nil {
			return nil, err
		}
	}
	return nil, registers.Store(c.Destination, value)
}

func (c *GetOrUse) String() string {
	return fmt.Sprintf("get.or_use %s[%s] %s into r%d;", c.Mapping, c.Key, c.Default, c.Destination)
}

// Set writes a value to mapping[key]. Always succeeds when the mapping
// exists, and is the only command that yields a FinalizeOperation.
type Set struct {
	Value   Operand
	Mapping string
	Key     Operand
}

func (c *Set) command() {}

// Finalize writes the mapping entry and returns the resulting operation.
func (c *Set) Finalize(ctx *Context, store Store, registers *Registers) (*Operation, error) {
	key, err := registers.Resolve(c.Key)
	if err != nil {
		return nil, err
	}
	value, err := registers.Resolve(c.Value)
	if err != nil {
		return nil, err
	}
	if err := store.Set(ctx.ProgramID, c.Mapping, key, value); err != nil {
		return nil, fmt.Errorf("set into mapping '%s/%s': %w", ctx.ProgramID, c.Mapping, err)
	}
	return &Operation{
		Type:      UpdateKeyValue,
		ProgramID: ctx.ProgramID,
		Mapping:   c.Mapping,
		Key:       key,
		Value:     value,
	}, nil
}

func (c *Set) String() string {
	return fmt.Sprintf("set %s into %s[%s];", c.Value, c.Mapping, c.Key)
}
