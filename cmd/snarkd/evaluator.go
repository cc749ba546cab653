// evaluator.go - A token program and its evaluator, used to drive the
// deploy/execute/prove pipeline end to end.
package main

import (
	"fmt"

	"github.com/Zibelmann/snarkVM/internal/finalize"
	"github.com/Zibelmann/snarkVM/internal/network"
	"github.com/Zibelmann/snarkVM/internal/program"
	"github.com/Zibelmann/snarkVM/internal/record"
)

// tokenProgram declares a minimal token: mint creates a record holding an
// amount, transfer moves it to a new owner. Mint settles public balances
// through its finalize block.
func tokenProgram() (*program.Program, error) {
	mintFinalize, err := parseCommands(
		"get.or_use balances[r0] 0 into r2;",
		"add r2 r1 into r3;",
		"set r3 into balances[r0];",
	)
	if err != nil {
		return nil, err
	}

	mint := &program.Function{
		Name:     "mint",
		Inputs:   []program.ValueType{program.PublicType, program.PublicType},
		Outputs:  []program.ValueType{program.RecordType},
		Finalize: mintFinalize,
	}
	transfer := &program.Function{
		Name:    "transfer",
		Inputs:  []program.ValueType{program.RecordType, program.PublicType},
		Outputs: []program.ValueType{program.RecordType},
	}
	return program.NewProgram("token", mint, transfer)
}

func parseCommands(lines ...string) ([]finalize.Command, error) {
	commands := make([]finalize.Command, len(lines))
	for i, line := range lines {
		command, err := finalize.FromString(line)
		if err != nil {
			return nil, fmt.Errorf("parsing finalize command %q: %w", line, err)
		}
		commands[i] = command
	}
	return commands, nil
}

// tokenEvaluator implements the token program's function semantics. Record
// nonces are derived from the function arguments, so evaluation is
// deterministic.
type tokenEvaluator struct{}

func (tokenEvaluator) Evaluate(programID, function program.Identifier, inputs []program.Value) ([]program.Value, error) {
	switch function {
	case "mint":
		owner := inputs[0].Plaintext
		amount := inputs[1].Plaintext
		nonce := network.ScalarBaseMul(network.HashToScalar(&owner, &amount))
		minted := record.New(record.Owner{Visibility: record.Plaintext, Value: owner}, nonce).
			With("amount", record.Entry{Visibility: record.Plaintext, Value: amount})
		return []program.Value{program.RecordValue(minted)}, nil

	case "transfer":
		consumed := inputs[0].Record
		receiver := inputs[1].Plaintext
		entry, ok := consumed.Entry("amount")
		if !ok {
			return nil, fmt.Errorf("%w: consumed record has no amount entry", network.ErrMalformedInput)
		}
		commitment := consumed.Commitment()
		nonce := network.ScalarBaseMul(network.HashToScalar(&receiver, &commitment))
		moved := record.New(record.Owner{Visibility: record.Plaintext, Value: receiver}, nonce).
			With("amount", entry)
		return []program.Value{program.RecordValue(moved)}, nil

	default:
		return nil, fmt.Errorf("%w: program '%s' has no function '%s'", network.ErrMalformedInput, programID, function)
	}
}
