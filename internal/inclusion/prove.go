// prove.go - Groth16 proving and verification for inclusion assignments.

package inclusion

import (
	"bytes"
	"fmt"
	"os"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark-crypto/ecc"

	"github.com/Zibelmann/snarkVM/internal/network"
)

// Prove generates a Groth16 proof for one inclusion assignment. The context
// is acquired for the duration of the call and released on every path out.
func Prove(ctx *CircuitContext, pk groth16.ProvingKey, assignment *InclusionAssignment) ([]byte, error) {
	if err := assignment.Check(); err != nil {
		return nil, err
	}
	if err := ctx.Acquire(); err != nil {
		return nil, err
	}
	defer ctx.Release()

	ccs, err := ctx.ConstraintSystem()
	if err != nil {
		return nil, err
	}
	w, err := frontend.NewWitness(assignment.toCircuit(), ecc.BW6_761.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, w)
	if err != nil {
		return nil, fmt.Errorf("proof generation failed: %w", err)
	}
	var proofBuf bytes.Buffer
	if _, err := proof.WriteTo(&proofBuf); err != nil {
		return nil, fmt.Errorf("proof marshaling failed: %w", err)
	}
	return proofBuf.Bytes(), nil
}

// VerifyProof checks a proof against one verifier-input row in the order
// [1, global_state_root, local_state_root, serial_number]. The constant
// first entry belongs to the proof system and is not part of the witness.
func VerifyProof(vk groth16.VerifyingKey, proofBytes []byte, verifierInputs []network.Field) error {
	if len(verifierInputs) != 4 {
		return fmt.Errorf("%w: expected 4 verifier inputs, got %d", network.ErrProofInput, len(verifierInputs))
	}
	if !verifierInputs[0].IsOne() {
		return fmt.Errorf("%w: expected the first verifier input to be one", network.ErrProofInput)
	}

	public := &StatePathCircuit{
		GlobalStateRoot: verifierInputs[1].String(),
		LocalStateRoot:  verifierInputs[2].String(),
		SerialNumber:    verifierInputs[3].String(),
	}
	w, err := frontend.NewWitness(public, ecc.BW6_761.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("public witness creation failed: %w", err)
	}

	proof := groth16.NewProof(ecc.BW6_761)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("proof unmarshaling failed: %w", err)
	}
	if err := groth16.Verify(proof, vk, w); err != nil {
		return fmt.Errorf("%w: %v", network.ErrCryptoVerification, err)
	}
	return nil
}

// SaveProvingKey saves a Groth16 proving key to disk.
func SaveProvingKey(path string, pk groth16.ProvingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = pk.WriteTo(f)
	return err
}

// SaveVerifyingKey saves a Groth16 verifying key to disk.
func SaveVerifyingKey(path string, vk groth16.VerifyingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = vk.WriteTo(f)
	return err
}

// LoadProvingKey loads a Groth16 proving key from disk.
func LoadProvingKey(path string) (groth16.ProvingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pk := groth16.NewProvingKey(ecc.BW6_761)
	_, err = pk.ReadFrom(f)
	return pk, err
}

// LoadVerifyingKey loads a Groth16 verifying key from disk.
func LoadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(ecc.BW6_761)
	_, err = vk.ReadFrom(f)
	return vk, err
}

// SetupOrLoadKeys generates or loads Groth16 keys for the state-path circuit.
// If keys exist on disk, loads them; otherwise, generates and saves new keys.
func SetupOrLoadKeys(ccs constraint.ConstraintSystem, pkPath, vkPath string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk, pkErr := LoadProvingKey(pkPath)
	vk, vkErr := LoadVerifyingKey(vkPath)
	if pkErr == nil && vkErr == nil {
		return pk, vk, nil
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, err
	}
	if err := SaveProvingKey(pkPath, pk); err != nil {
		return nil, nil, err
	}
	if err := SaveVerifyingKey(vkPath, vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}
