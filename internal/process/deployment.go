// deployment.go - Deployments: one verifying key and certificate per function.
//
// A certificate attests that the verifying key was generated for exactly this
// (program, function, signature) triple: the key digest binds the triple plus
// a fresh randomizer, and the certificate signs that digest under the
// deployment's certification key.

package process

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/twistededwards/eddsa"

	"github.com/Zibelmann/snarkVM/internal/network"
	"github.com/Zibelmann/snarkVM/internal/program"
)

// VerifyingKey is the per-function verification artifact.
type VerifyingKey struct {
	Program  program.Identifier
	Function program.Identifier
	Digest   network.Field
}

// Certificate attests a verifying key under the deployment's certification key.
type Certificate struct {
	Signature []byte
}

// DeployedKey pairs one function's verifying key with its certificate.
type DeployedKey struct {
	Function     program.Identifier
	VerifyingKey VerifyingKey
	Certificate  Certificate
}

// Deployment is a certified build of a program: the program definition, one
// verifying key and certificate per function in declaration order, and the
// certification public key.
type Deployment struct {
	Program   *program.Program
	Keys      []DeployedKey
	Certifier *eddsa.PublicKey
}

// keyDigest binds a verifying key to its function signature and randomizer.
func keyDigest(programID, function program.Identifier, f *program.Function, randomizer *network.Field) network.Field {
	fields := make([]*network.Field, 0, 3+len(f.Inputs)+len(f.Outputs))
	var programField, functionField network.Field
	programField.SetBytes([]byte(programID))
	functionField.SetBytes([]byte(function))
	fields = append(fields, &programField, &functionField)
	types := make([]network.Field, 0, len(f.Inputs)+len(f.Outputs))
	for _, t := range f.Inputs {
		var tf network.Field
		tf.SetUint64(uint64(t) + 1)
		types = append(types, tf)
	}
	for _, t := range f.Outputs {
		var tf network.Field
		tf.SetUint64(uint64(t) + 8)
		types = append(types, tf)
	}
	for i := range types {
		fields = append(fields, &types[i])
	}
	fields = append(fields, randomizer)
	return network.HashFields(fields...)
}

// verifyCertificate checks one deployed key's certificate. The verifying key
// must name the expected program and function, and the certificate must sign
// the key digest under the certifier.
func verifyCertificate(certifier *eddsa.PublicKey, programID program.Identifier, key *DeployedKey) error {
	if key.VerifyingKey.Program != programID || key.VerifyingKey.Function != key.Function {
		return fmt.Errorf("%w: verifying key for '%s/%s' names '%s/%s'",
			network.ErrCryptoVerification, programID, key.Function,
			key.VerifyingKey.Program, key.VerifyingKey.Function)
	}
	if err := verifySignature(certifier, &key.VerifyingKey.Digest, key.Certificate.Signature); err != nil {
		return fmt.Errorf("certificate for '%s/%s': %w", programID, key.Function, err)
	}
	return nil
}
