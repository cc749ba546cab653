// keys.go - Account keys and addresses.
//
// Accounts sign with EdDSA on the BW6-761 companion Edwards curve, so public
// key coordinates live in the network field and hash directly with MiMC.

package process

import (
	"fmt"
	"hash"
	"io"

	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bw6-761/twistededwards/eddsa"

	"github.com/Zibelmann/snarkVM/internal/network"
)

// newSignatureHash returns the hash instance EdDSA signs under.
func newSignatureHash() hash.Hash {
	return mimcNative.NewMiMC()
}

// PrivateKey is an account signing key with its derived address and the
// secret field used for gamma derivation.
type PrivateKey struct {
	sk      *eddsa.PrivateKey
	secret  network.Field
	address network.Field
}

// GeneratePrivateKey samples a fresh account key from the given randomness.
func GeneratePrivateKey(rng io.Reader) (*PrivateKey, error) {
	sk, err := eddsa.GenerateKey(rng)
	if err != nil {
		return nil, fmt.Errorf("generate account key: %w", err)
	}
	var secret network.Field
	secret.SetBytes(sk.Bytes())
	return &PrivateKey{
		sk:      sk,
		secret:  secret,
		address: addressOf(&sk.PublicKey),
	}, nil
}

// Address returns the account address, the MiMC digest of the public key.
func (k *PrivateKey) Address() network.Field { return k.address }

// PublicKey returns the account verification key.
func (k *PrivateKey) PublicKey() *eddsa.PublicKey { return &k.sk.PublicKey }

// Gamma derives the blinding group element for a record commitment:
// a scalar bound to this key and the commitment, applied to the group
// generator. Deterministic per (key, commitment) pair.
func (k *PrivateKey) Gamma(commitment *network.Field) network.Group {
	scalar := network.HashToScalar(&k.secret, commitment)
	return network.ScalarBaseMul(scalar)
}

// ViewScalar returns the scalar used to derive shared keys for record
// encryption addressed to this account.
func (k *PrivateKey) ViewScalar(commitment *network.Field) network.Group {
	scalar := network.HashToScalar(&k.secret, commitment, &k.address)
	return network.ScalarBaseMul(scalar)
}

// sign produces a signature over the digest under this key.
func (k *PrivateKey) sign(digest *network.Field) ([]byte, error) {
	b := digest.Bytes()
	return k.sk.Sign(b[:], newSignatureHash())
}

// verifySignature checks a signature over the digest under the public key.
func verifySignature(pub *eddsa.PublicKey, digest *network.Field, signature []byte) error {
	b := digest.Bytes()
	ok, err := pub.Verify(signature, b[:], newSignatureHash())
	if err != nil {
		return fmt.Errorf("%w: %v", network.ErrCryptoVerification, err)
	}
	if !ok {
		return fmt.Errorf("%w: signature does not verify", network.ErrCryptoVerification)
	}
	return nil
}

func addressOf(pub *eddsa.PublicKey) network.Field {
	var x, y network.Field
	x.Set(&pub.A.X)
	y.Set(&pub.A.Y)
	return network.HashFields(&x, &y)
}
