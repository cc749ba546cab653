// request.go - Signed call requests and authorizations.
//
// A request binds (program id, function name, inputs, input types) under the
// caller's private key. Signing authenticates intent; it does not yet prove
// correct execution. Record inputs additionally carry their commitment, the
// blinding element gamma, and the derived serial number.

package process

import (
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/twistededwards/eddsa"

	"github.com/Zibelmann/snarkVM/internal/network"
	"github.com/Zibelmann/snarkVM/internal/program"
)

// InputIDKind tags the visibility of one request input.
type InputIDKind uint8

const (
	PublicID InputIDKind = iota
	PrivateID
	RecordID
)

// InputID identifies one request input. Public and private inputs carry a
// digest; record inputs carry (commitment, gamma, serial number, tag).
type InputID struct {
	Kind         InputIDKind
	ID           network.Field
	Commitment   network.Field
	Gamma        network.Group
	SerialNumber network.Field
	Tag          network.Field
}

// Request is a signed, provable call intent.
type Request struct {
	ProgramID program.Identifier
	Function  program.Identifier
	InputIDs  []InputID
	Inputs    []program.Value
	Signer    *eddsa.PublicKey
	Address   network.Field
	Signature []byte
}

// SignRequest builds and signs a request. The input count and value kinds
// must match the declared input types; this is checked before any
// cryptographic work.
func SignRequest(
	priv *PrivateKey,
	programID, function program.Identifier,
	inputs []program.Value,
	inputTypes []program.ValueType,
	rng io.Reader,
) (*Request, error) {
	if len(inputs) != len(inputTypes) {
		return nil, fmt.Errorf("%w: function '%s' in program '%s' expects %d inputs, but %d inputs were found",
			network.ErrMalformedInput, function, programID, len(inputTypes), len(inputs))
	}

	address := priv.Address()
	inputIDs := make([]InputID, len(inputs))
	for i, input := range inputs {
		if !input.Matches(inputTypes[i]) {
			return nil, fmt.Errorf("%w: input %d of function '%s' in program '%s' is not a %s",
				network.ErrMalformedInput, i, function, programID, inputTypes[i])
		}
		switch inputTypes[i] {
		case program.RecordType:
			commitment := input.Record.Commitment()
			gamma := priv.Gamma(&commitment)
			serialNumber := network.SerialNumberFromGamma(&gamma, &commitment)
			inputIDs[i] = InputID{
				Kind:         RecordID,
				ID:           serialNumber,
				Commitment:   commitment,
				Gamma:        gamma,
				SerialNumber: serialNumber,
				Tag:          network.HashFields(&address, &commitment),
			}
		default:
			kind := PublicID
			if inputTypes[i] == program.PrivateType {
				kind = PrivateID
			}
			digest := network.HashFields(&input.Plaintext)
			inputIDs[i] = InputID{Kind: kind, ID: digest}
		}
	}

	req := &Request{
		ProgramID: programID,
		Function:  function,
		InputIDs:  inputIDs,
		Inputs:    inputs,
		Signer:    priv.PublicKey(),
		Address:   address,
	}
	digest := req.digest()
	signature, err := priv.sign(&digest)
	if err != nil {
		return nil, fmt.Errorf("sign request for '%s/%s': %w", programID, function, err)
	}
	req.Signature = signature
	return req, nil
}

// Verify checks the request signature and that the signer matches the
// claimed address.
func (r *Request) Verify() error {
	if addr := addressOf(r.Signer); !addr.Equal(&r.Address) {
		return fmt.Errorf("%w: request signer does not match address for '%s/%s'",
			network.ErrCryptoVerification, r.ProgramID, r.Function)
	}
	digest := r.digest()
	if err := verifySignature(r.Signer, &digest, r.Signature); err != nil {
		return fmt.Errorf("request for '%s/%s': %w", r.ProgramID, r.Function, err)
	}
	return nil
}

// digest folds the request content into one field element for signing.
func (r *Request) digest() network.Field {
	fields := make([]*network.Field, 0, 2+4*len(r.InputIDs))
	var programField, functionField network.Field
	programField.SetBytes([]byte(r.ProgramID))
	functionField.SetBytes([]byte(r.Function))
	fields = append(fields, &programField, &functionField)
	for i := range r.InputIDs {
		id := &r.InputIDs[i]
		var kind network.Field
		kind.SetUint64(uint64(id.Kind))
		fields = append(fields, &kind, &id.ID)
		if id.Kind == RecordID {
			fields = append(fields, &id.Commitment, &id.SerialNumber)
		}
	}
	return network.HashFields(fields...)
}

// Authorization is an ordered list of signed requests for one execution.
type Authorization struct {
	requests []*Request
	next     int
}

// NewAuthorization wraps the given requests.
func NewAuthorization(requests ...*Request) *Authorization {
	return &Authorization{requests: requests}
}

// Requests returns every request in order.
func (a *Authorization) Requests() []*Request { return a.requests }

// Len returns the number of requests.
func (a *Authorization) Len() int { return len(a.requests) }

// Next pops the next unconsumed request.
func (a *Authorization) Next() (*Request, error) {
	if a.next >= len(a.requests) {
		return nil, fmt.Errorf("%w: authorization has no remaining requests", network.ErrMalformedInput)
	}
	r := a.requests[a.next]
	a.next++
	return r, nil
}

// CallStackMode selects what artifact an execution records.
type CallStackMode uint8

const (
	// AuthorizeMode runs the function for bookkeeping only: outputs are
	// checked against the declared types but no transition is assembled,
	// since the artifact of this mode is the authorization itself.
	AuthorizeMode CallStackMode = iota
	// ExecuteMode runs the function and produces a provable transition.
	ExecuteMode
)

// CallStack carries the execution mode and pending requests.
type CallStack struct {
	Mode          CallStackMode
	Authorization *Authorization
}
