// process.go - The process: a registry of program stacks.
//
// The process orchestrates deployment (build and certify a new program),
// verification of deployments, and dispatch of authorize/execute calls to
// the owning stack.

package process

import (
	"fmt"
	"io"

	"github.com/Zibelmann/snarkVM/internal/network"
	"github.com/Zibelmann/snarkVM/internal/program"
)

// Process is a registry of program stacks.
type Process struct {
	stacks map[program.Identifier]*Stack
}

// NewProcess returns an empty process.
func NewProcess() *Process {
	return &Process{stacks: make(map[program.Identifier]*Stack)}
}

// ContainsProgram reports whether a program is registered.
func (p *Process) ContainsProgram(id program.Identifier) bool {
	_, ok := p.stacks[id]
	return ok
}

// Stack resolves the stack for a program.
func (p *Process) Stack(id program.Identifier) (*Stack, error) {
	s, ok := p.stacks[id]
	if !ok {
		return nil, fmt.Errorf("%w: program '%s' is not deployed", network.ErrMalformedInput, id)
	}
	return s, nil
}

// addStack registers a stack. A second stack for the same program id is a
// conflict.
func (p *Process) addStack(s *Stack) error {
	id := s.Program().ID()
	if _, exists := p.stacks[id]; exists {
		return fmt.Errorf("%w: program '%s' already exists", network.ErrStateConflict, id)
	}
	p.stacks[id] = s
	return nil
}

// Deploy builds a stack for the program and produces a certified deployment.
// The process itself is not mutated.
func (p *Process) Deploy(prog *program.Program, rng io.Reader) (*Deployment, error) {
	stack, err := NewStack(prog, nil)
	if err != nil {
		return nil, err
	}
	return stack.Deploy(rng)
}

// VerifyDeployment validates a deployment without mutating the process: the
// program id must be new, the program must be well-formed (the stack must
// compute), and every function's certificate must check.
func (p *Process) VerifyDeployment(deployment *Deployment) error {
	id := deployment.Program.ID()
	if p.ContainsProgram(id) {
		return fmt.Errorf("%w: program '%s' already exists", network.ErrStateConflict, id)
	}
	stack, err := NewStack(deployment.Program, nil)
	if err != nil {
		return err
	}
	return stack.VerifyDeployment(deployment)
}

// LoadDeployment registers a deployment that already passed verification: it
// recomputes the stack, inserts each function's verifying key, and adds the
// stack to the registry. Loading the same program id twice fails.
func (p *Process) LoadDeployment(deployment *Deployment, evaluator program.Evaluator) error {
	stack, err := NewStack(deployment.Program, evaluator)
	if err != nil {
		return err
	}
	for _, key := range deployment.Keys {
		if err := stack.InsertVerifyingKey(key.Function, key.VerifyingKey); err != nil {
			return err
		}
	}
	return p.addStack(stack)
}

// Genesis authorizes and executes a bootstrap call in one step. A genesis
// transition runs before any ledger state exists, so the function must not
// consume record inputs; its record outputs seed the commitment tree.
func (p *Process) Genesis(
	priv *PrivateKey,
	programID, function program.Identifier,
	inputs []program.Value,
	rng io.Reader,
) (*Response, error) {
	stack, err := p.Stack(programID)
	if err != nil {
		return nil, err
	}
	f, err := stack.Program().Function(function)
	if err != nil {
		return nil, err
	}
	for _, valueType := range f.Inputs {
		if valueType == program.RecordType {
			return nil, fmt.Errorf("%w: function '%s' in program '%s' consumes a record and cannot run at genesis",
				network.ErrMalformedInput, function, programID)
		}
	}
	authorization, err := stack.Authorize(priv, function, inputs, rng)
	if err != nil {
		return nil, err
	}
	return p.Execute(authorization)
}

// Authorize dispatches an authorization to the owning stack.
func (p *Process) Authorize(
	priv *PrivateKey,
	programID, function program.Identifier,
	inputs []program.Value,
	rng io.Reader,
) (*Authorization, error) {
	stack, err := p.Stack(programID)
	if err != nil {
		return nil, err
	}
	return stack.Authorize(priv, function, inputs, rng)
}

// Execute runs an authorization against the owning stack and returns the
// resulting response and transition.
func (p *Process) Execute(authorization *Authorization) (*Response, error) {
	if authorization.Len() == 0 {
		return nil, fmt.Errorf("%w: authorization is empty", network.ErrMalformedInput)
	}
	stack, err := p.Stack(authorization.Requests()[0].ProgramID)
	if err != nil {
		return nil, err
	}
	callStack := CallStack{Mode: ExecuteMode, Authorization: authorization}
	return stack.ExecuteFunction(callStack)
}
