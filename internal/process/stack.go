// stack.go - The program stack: a compiled, callable unit for one program.
//
// A stack resolves the program's function signatures once at construction and
// then serves authorization, execution, and deployment for that program.

package process

import (
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/Zibelmann/snarkVM/internal/network"
	"github.com/Zibelmann/snarkVM/internal/program"
)

// Stack compiles a program definition into a callable unit.
type Stack struct {
	program       *program.Program
	evaluator     program.Evaluator
	verifyingKeys map[program.Identifier]VerifyingKey
}

// NewStack builds a stack for the program, validating its function set. The
// evaluator collaborator supplies function semantics and may be nil for
// stacks that only deploy or verify.
func NewStack(prog *program.Program, evaluator program.Evaluator) (*Stack, error) {
	if prog == nil {
		return nil, fmt.Errorf("%w: stack requires a program", network.ErrMalformedInput)
	}
	return &Stack{
		program:       prog,
		evaluator:     evaluator,
		verifyingKeys: make(map[program.Identifier]VerifyingKey, len(prog.Functions())),
	}, nil
}

// Program returns the stack's program.
func (s *Stack) Program() *program.Program { return s.program }

// Authorize turns a private call intent into a signed, provable request. The
// input arity is checked against the function's declared types before any
// cryptographic work, and the function is then run once in Authorize mode to
// perform execution bookkeeping.
func (s *Stack) Authorize(
	priv *PrivateKey,
	function program.Identifier,
	inputs []program.Value,
	rng io.Reader,
) (*Authorization, error) {
	f, err := s.program.Function(function)
	if err != nil {
		return nil, err
	}
	if len(inputs) != len(f.Inputs) {
		return nil, fmt.Errorf("%w: function '%s' in program '%s' expects %d inputs, but %d inputs were found",
			network.ErrMalformedInput, function, s.program.ID(), len(f.Inputs), len(inputs))
	}

	request, err := SignRequest(priv, s.program.ID(), function, inputs, f.Inputs, rng)
	if err != nil {
		return nil, err
	}
	authorization := NewAuthorization(request)

	// Run the function once in Authorize mode. The response is discarded;
	// the artifact of this mode is the authorization itself.
	callStack := CallStack{Mode: AuthorizeMode, Authorization: NewAuthorization(request)}
	if _, err := s.ExecuteFunction(callStack); err != nil {
		return nil, err
	}
	return authorization, nil
}

// Response is the result of one function execution.
type Response struct {
	Outputs    []program.Value
	Transition *Transition
}

// ExecuteFunction runs the next request of the call stack against the
// evaluator. In ExecuteMode the outputs are assembled into a transition;
// in AuthorizeMode the evaluation is bookkeeping only.
func (s *Stack) ExecuteFunction(callStack CallStack) (*Response, error) {
	request, err := callStack.Authorization.Next()
	if err != nil {
		return nil, err
	}
	if request.ProgramID != s.program.ID() {
		return nil, fmt.Errorf("%w: request targets program '%s', stack holds '%s'",
			network.ErrMalformedInput, request.ProgramID, s.program.ID())
	}
	if err := request.Verify(); err != nil {
		return nil, err
	}
	f, err := s.program.Function(request.Function)
	if err != nil {
		return nil, err
	}
	if s.evaluator == nil {
		return nil, fmt.Errorf("%w: stack for '%s' has no evaluator", network.ErrMalformedInput, s.program.ID())
	}

	outputs, err := s.evaluator.Evaluate(s.program.ID(), request.Function, request.Inputs)
	if err != nil {
		return nil, fmt.Errorf("evaluate '%s/%s': %w", s.program.ID(), request.Function, err)
	}
	if len(outputs) != len(f.Outputs) {
		return nil, fmt.Errorf("%w: function '%s' in program '%s' declares %d outputs, evaluator produced %d",
			network.ErrMalformedInput, request.Function, s.program.ID(), len(f.Outputs), len(outputs))
	}
	for i, out := range outputs {
		if !out.Matches(f.Outputs[i]) {
			return nil, fmt.Errorf("%w: output %d of function '%s' in program '%s' is not a %s",
				network.ErrMalformedInput, i, request.Function, s.program.ID(), f.Outputs[i])
		}
	}
	if callStack.Mode != ExecuteMode {
		return &Response{Outputs: outputs}, nil
	}

	inputs := make([]Input, len(request.InputIDs))
	for i, id := range request.InputIDs {
		switch id.Kind {
		case RecordID:
			inputs[i] = Input{Kind: InputRecord, ID: id.SerialNumber, Tag: id.Tag}
		case PrivateID:
			inputs[i] = Input{Kind: InputPrivate, ID: id.ID}
		default:
			inputs[i] = Input{Kind: InputPublic, ID: id.ID}
		}
	}

	transitionOutputs := make([]Output, len(outputs))
	for i, out := range outputs {
		switch f.Outputs[i] {
		case program.RecordType:
			transitionOutputs[i] = Output{Kind: OutputRecord, ID: out.Record.Commitment(), Record: out.Record}
		case program.PrivateType:
			transitionOutputs[i] = Output{Kind: OutputPrivate, ID: network.HashFields(&out.Plaintext)}
		default:
			transitionOutputs[i] = Output{Kind: OutputPublic, ID: network.HashFields(&out.Plaintext)}
		}
	}

	transition, err := NewTransition(s.program.ID(), request.Function, inputs, transitionOutputs)
	if err != nil {
		return nil, err
	}
	return &Response{Outputs: outputs, Transition: transition}, nil
}

// Deploy produces one verifying key and one certificate per function, signed
// under a fresh certification key. Key generation runs per function in
// parallel; the randomizers are drawn from rng up front so the output is
// deterministic given the randomness stream.
func (s *Stack) Deploy(rng io.Reader) (*Deployment, error) {
	certifier, err := GeneratePrivateKey(rng)
	if err != nil {
		return nil, fmt.Errorf("deploy '%s': %w", s.program.ID(), err)
	}

	functions := s.program.Functions()
	randomizers := make([]network.Field, len(functions))
	for i := range randomizers {
		var buf [network.FieldBytes]byte
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return nil, fmt.Errorf("deploy '%s': sample randomizer: %w", s.program.ID(), err)
		}
		randomizers[i].SetBytes(buf[:])
	}

	keys := make([]DeployedKey, len(functions))
	var g errgroup.Group
	for i, f := range functions {
		i, f := i, f
		g.Go(func() error {
			digest := keyDigest(s.program.ID(), f.Name, f, &randomizers[i])
			signature, err := certifier.sign(&digest)
			if err != nil {
				return fmt.Errorf("certify '%s/%s': %w", s.program.ID(), f.Name, err)
			}
			keys[i] = DeployedKey{
				Function: f.Name,
				VerifyingKey: VerifyingKey{
					Program:  s.program.ID(),
					Function: f.Name,
					Digest:   digest,
				},
				Certificate: Certificate{Signature: signature},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Deployment{
		Program:   s.program,
		Keys:      keys,
		Certifier: certifier.PublicKey(),
	}, nil
}

// VerifyDeployment checks that the deployment certifies exactly this stack's
// functions and that every certificate is valid.
func (s *Stack) VerifyDeployment(deployment *Deployment) error {
	functions := s.program.Functions()
	if len(deployment.Keys) != len(functions) {
		return fmt.Errorf("%w: deployment of '%s' carries %d keys for %d functions",
			network.ErrCryptoVerification, s.program.ID(), len(deployment.Keys), len(functions))
	}
	for i, f := range functions {
		key := &deployment.Keys[i]
		if key.Function != f.Name {
			return fmt.Errorf("%w: deployment of '%s' certifies '%s' at position %d, expected '%s'",
				network.ErrCryptoVerification, s.program.ID(), key.Function, i, f.Name)
		}
		if err := verifyCertificate(deployment.Certifier, s.program.ID(), key); err != nil {
			return err
		}
	}
	return nil
}

// InsertVerifyingKey registers a function's verifying key. Inserting twice
// for the same function is a conflict.
func (s *Stack) InsertVerifyingKey(function program.Identifier, vk VerifyingKey) error {
	if _, err := s.program.Function(function); err != nil {
		return err
	}
	if _, exists := s.verifyingKeys[function]; exists {
		return fmt.Errorf("%w: verifying key for '%s/%s' already inserted",
			network.ErrStateConflict, s.program.ID(), function)
	}
	s.verifyingKeys[function] = vk
	return nil
}

// VerifyingKey returns a previously inserted verifying key.
func (s *Stack) VerifyingKey(function program.Identifier) (VerifyingKey, error) {
	vk, ok := s.verifyingKeys[function]
	if !ok {
		return VerifyingKey{}, fmt.Errorf("%w: no verifying key for '%s/%s'",
			network.ErrMalformedInput, s.program.ID(), function)
	}
	return vk, nil
}
