// program.go - Program definitions: identifiers, function signatures, values.
//
// A program here is its callable surface: an identifier plus an ordered set
// of functions with declared input and output types. The source and bytecode
// representation of function bodies lives outside this module; execution is
// delegated to an Evaluator collaborator supplied by the caller.

package program

import (
	"fmt"

	"github.com/Zibelmann/snarkVM/internal/finalize"
	"github.com/Zibelmann/snarkVM/internal/network"
	"github.com/Zibelmann/snarkVM/internal/record"
)

// Identifier is a validated program, function, or mapping name.
type Identifier string

// NewIdentifier validates a name: non-empty, at most 31 bytes, lowercase
// letters, digits, and underscores, starting with a letter.
func NewIdentifier(name string) (Identifier, error) {
	if len(name) == 0 || len(name) > 31 {
		return "", fmt.Errorf("%w: identifier '%s' has invalid length", network.ErrMalformedInput, name)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c == '_' && i > 0:
		case c >= '0' && c <= '9' && i > 0:
		default:
			return "", fmt.Errorf("%w: identifier '%s' has invalid character at %d", network.ErrMalformedInput, name, i)
		}
	}
	return Identifier(name), nil
}

// ValueType declares the kind of a function input or output.
type ValueType uint8

const (
	PublicType ValueType = iota
	PrivateType
	RecordType
)

func (t ValueType) String() string {
	switch t {
	case PublicType:
		return "public"
	case PrivateType:
		return "private"
	case RecordType:
		return "record"
	default:
		return fmt.Sprintf("valuetype(%d)", uint8(t))
	}
}

// Value is a function input or output: a plaintext field for public and
// private types, a record for record types. Exactly one side is set.
type Value struct {
	Type      ValueType
	Plaintext network.Field
	Record    *record.Record
}

// PlaintextValue wraps a field element as a public or private value.
func PlaintextValue(t ValueType, v network.Field) Value {
	return Value{Type: t, Plaintext: v}
}

// RecordValue wraps a record input or output.
func RecordValue(r *record.Record) Value {
	return Value{Type: RecordType, Record: r}
}

// Matches reports whether the value conforms to the declared type.
func (v Value) Matches(t ValueType) bool {
	if v.Type != t {
		return false
	}
	if t == RecordType {
		return v.Record != nil
	}
	return v.Record == nil
}

// Function is one callable unit: a name, ordered input and output types, and
// an optional finalize command list applied during block finalization.
type Function struct {
	Name     Identifier
	Inputs   []ValueType
	Outputs  []ValueType
	Finalize []finalize.Command
}

// Program is an identifier plus its functions, in declaration order.
type Program struct {
	id        Identifier
	functions []*Function
	byName    map[Identifier]*Function
}

// NewProgram validates the function set and returns the program. An empty
// function set, duplicate function names and oversized signatures are
// construction errors.
func NewProgram(id Identifier, functions ...*Function) (*Program, error) {
	if len(functions) == 0 {
		return nil, fmt.Errorf("%w: program '%s' declares no functions", network.ErrMalformedInput, id)
	}
	p := &Program{id: id, byName: make(map[Identifier]*Function, len(functions))}
	for _, f := range functions {
		if _, exists := p.byName[f.Name]; exists {
			return nil, fmt.Errorf("%w: program '%s' declares function '%s' twice", network.ErrMalformedInput, id, f.Name)
		}
		if len(f.Inputs)+len(f.Outputs) > network.MaxTransitionLeaves {
			return nil, fmt.Errorf("%w: function '%s' in program '%s' exceeds %d combined inputs and outputs",
				network.ErrMalformedInput, f.Name, id, network.MaxTransitionLeaves)
		}
		p.byName[f.Name] = f
		p.functions = append(p.functions, f)
	}
	return p, nil
}

// ID returns the program identifier.
func (p *Program) ID() Identifier { return p.id }

// Functions returns the functions in declaration order.
func (p *Program) Functions() []*Function { return p.functions }

// Function resolves a function by name.
func (p *Program) Function(name Identifier) (*Function, error) {
	f, ok := p.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: program '%s' has no function '%s'", network.ErrMalformedInput, p.id, name)
	}
	return f, nil
}

// Evaluator executes a function body against its inputs. It is an external
// collaborator: this module authorizes and accounts for executions but does
// not define function semantics.
type Evaluator interface {
	Evaluate(program Identifier, function Identifier, inputs []Value) ([]Value, error)
}
