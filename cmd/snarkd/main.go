// snarkd drives the full private-state pipeline against a local SQLite
// ledger: deploy a program, execute a mint and a transfer, prove inclusion of
// the consumed record, and settle the finalize block.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/Zibelmann/snarkVM/internal/finalize"
	"github.com/Zibelmann/snarkVM/internal/inclusion"
	"github.com/Zibelmann/snarkVM/internal/network"
	"github.com/Zibelmann/snarkVM/internal/process"
	"github.com/Zibelmann/snarkVM/internal/program"
	"github.com/Zibelmann/snarkVM/internal/store"
)

func main() {
	configPath := flag.String("config", "snarkd.json", "path to config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snarkd: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("snarkd failed")
	}
}

func run(cfg *Config, logger zerolog.Logger) error {
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := os.MkdirAll(cfg.KeyDir, 0755); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}

	sender, err := process.GeneratePrivateKey(rand.Reader)
	if err != nil {
		return err
	}
	receiver, err := process.GeneratePrivateKey(rand.Reader)
	if err != nil {
		return err
	}
	senderAddr := sender.Address()
	receiverAddr := receiver.Address()
	logger.Info().
		Str("sender", senderAddr.String()).
		Str("receiver", receiverAddr.String()).
		Msg("generated accounts")

	// Deploy the token program: certify its verifying keys, check the
	// certificates, then register the stack.
	prog, err := tokenProgram()
	if err != nil {
		return err
	}
	proc := process.NewProcess()
	deployment, err := proc.Deploy(prog, rand.Reader)
	if err != nil {
		return err
	}
	if err := proc.VerifyDeployment(deployment); err != nil {
		return err
	}
	if err := proc.LoadDeployment(deployment, tokenEvaluator{}); err != nil {
		return err
	}
	logger.Info().Str("program", string(prog.ID())).Int("functions", len(deployment.Keys)).Msg("program deployed")

	// Mint a record to the sender and commit it to the global tree.
	var amount network.Field
	amount.SetUint64(1000)
	mintAuth, err := proc.Authorize(sender, prog.ID(), "mint",
		[]program.Value{
			program.PlaintextValue(program.PublicType, senderAddr),
			program.PlaintextValue(program.PublicType, amount),
		}, rand.Reader)
	if err != nil {
		return err
	}
	mintResponse, err := proc.Execute(mintAuth)
	if err != nil {
		return err
	}
	minted := mintResponse.Outputs[0].Record
	commitment := minted.Commitment()
	if err := db.AddCommitment(commitment); err != nil {
		return err
	}
	logger.Info().Str("commitment", commitment.String()).Msg("minted record committed")

	// Transfer the record: the consumed input gets an inclusion proof
	// against the global state root.
	transferAuth, err := proc.Authorize(sender, prog.ID(), "transfer",
		[]program.Value{
			program.RecordValue(minted),
			program.PlaintextValue(program.PublicType, receiverAddr),
		}, rand.Reader)
	if err != nil {
		return err
	}
	transferRequest := transferAuth.Requests()[0]
	transferResponse, err := proc.Execute(transferAuth)
	if err != nil {
		return err
	}
	transition := transferResponse.Transition
	logger.Info().Str("transition", transition.ID.String()).Msg("transfer executed")

	tracker := inclusion.New()
	if err := tracker.InsertTransition(transferRequest.InputIDs, transition); err != nil {
		return err
	}
	assignments, err := tracker.Prepare(db, []*process.Transition{transition})
	if err != nil {
		return err
	}
	globalStateRoot, err := db.StateRoot()
	if err != nil {
		return err
	}
	verifierInputs, err := inclusion.PrepareVerifierInputs(globalStateRoot, []*process.Transition{transition})
	if err != nil {
		return err
	}

	circuitCtx, err := inclusion.NewCircuitContext()
	if err != nil {
		return err
	}
	if err := circuitCtx.Acquire(); err != nil {
		return err
	}
	ccs, err := circuitCtx.ConstraintSystem()
	circuitCtx.Release()
	if err != nil {
		return err
	}
	logger.Info().Int("constraints", ccs.GetNbConstraints()).Msg("state path circuit compiled")

	pk, vk, err := inclusion.SetupOrLoadKeys(ccs,
		filepath.Join(cfg.KeyDir, "state_path.pk"),
		filepath.Join(cfg.KeyDir, "state_path.vk"))
	if err != nil {
		return err
	}

	for i := range assignments {
		proof, err := inclusion.Prove(circuitCtx, pk, &assignments[i])
		if err != nil {
			return err
		}
		if err := inclusion.VerifyProof(vk, proof, verifierInputs[i]); err != nil {
			return err
		}
		logger.Info().
			Int("input", i).
			Str("serial_number", assignments[i].SerialNumber.String()).
			Bool("global", assignments[i].IsGlobal).
			Msg("inclusion proof verified")
	}

	// Settle the mint's finalize block against the persisted mapping store.
	mintFunction, err := prog.Function("mint")
	if err != nil {
		return err
	}
	fctx := &finalize.Context{ProgramID: string(prog.ID())}
	registers := finalize.NewRegisters()
	if err := registers.Store(0, senderAddr); err != nil {
		return err
	}
	if err := registers.Store(1, amount); err != nil {
		return err
	}
	for _, command := range mintFunction.Finalize {
		operation, err := command.Finalize(fctx, db, registers)
		if err != nil {
			return err
		}
		if operation != nil {
			logger.Info().
				Str("mapping", operation.Mapping).
				Str("key", operation.Key.String()).
				Str("value", operation.Value.String()).
				Msg("mapping updated")
		}
	}

	balance, ok, err := db.Get(string(prog.ID()), "balances", senderAddr)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: balance missing after finalize", network.ErrStateConflict)
	}
	logger.Info().Str("balance", balance.String()).Msg("finalize settled")
	return nil
}
