// errors.go - Shared error kinds for the protocol packages.
//
// Every failure surfaced by this module wraps exactly one of these sentinels,
// so callers can classify with errors.Is while the wrapped message carries the
// offending program id, function name, or mapping/key context.

package network

import "errors"

var (
	// ErrMalformedInput reports an arity mismatch, an unknown function or
	// variant tag, or trailing unconsumed input after a parse.
	ErrMalformedInput = errors.New("malformed input")

	// ErrStateConflict reports a duplicate deployment or an insertion that
	// violates an ordering invariant.
	ErrStateConflict = errors.New("state conflict")

	// ErrProofInput reports verifier inputs that cannot form a valid proof,
	// such as an empty public-input set against a zero global state root.
	ErrProofInput = errors.New("invalid proof input")

	// ErrCircuitPrecondition reports a circuit environment that was not clean
	// on entry. This is an integration error, not a data error.
	ErrCircuitPrecondition = errors.New("circuit environment not clean")

	// ErrCryptoVerification reports a certificate or verifying-key check
	// failure during deployment verification.
	ErrCryptoVerification = errors.New("cryptographic verification failed")
)
