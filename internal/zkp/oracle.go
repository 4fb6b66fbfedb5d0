package zkp

import (
	"context"
	"math/big"
)

// Signal positions inside PublicSignals. The order is protocol-fixed and must
// match the proving program's declared output order exactly.
const (
	SignalHashedSecret = iota
	SignalHashedOtp
	SignalTimeStep
	SignalActionHash
	SignalTxNonce
	signalCount
)

// PublicSignals is the ordered five-tuple of decimal field elements
// [hashedSecret, hashedOtp, timeStep, actionHash, txNonce].
type PublicSignals [signalCount]string

// HashedSecret returns the first signal.
func (s PublicSignals) HashedSecret() string { return s[SignalHashedSecret] }

// HashedOtp returns the second signal.
func (s PublicSignals) HashedOtp() string { return s[SignalHashedOtp] }

// TimeStep returns the third signal.
func (s PublicSignals) TimeStep() string { return s[SignalTimeStep] }

// ActionHash returns the fourth signal.
func (s PublicSignals) ActionHash() string { return s[SignalActionHash] }

// TxNonce returns the fifth signal.
func (s PublicSignals) TxNonce() string { return s[SignalTxNonce] }

// Proof is the proving oracle's raw output: a groth16 group-element triple in
// the projective snarkjs layout, coordinates as decimal strings.
type Proof struct {
	A [3]string    `json:"pi_a"`
	B [3][2]string `json:"pi_b"`
	C [3]string    `json:"pi_c"`
}

// CallProof is the verifying oracle's call format: the same triple with each
// group element's projective third coordinate dropped.
type CallProof struct {
	A [2]string    `json:"a"`
	B [2][2]string `json:"b"`
	C [2]string    `json:"c"`
}

// CallFormat reshapes the proof into the flat grouping the verifying oracle
// expects.
func (p *Proof) CallFormat() CallProof {
	return CallProof{
		A: [2]string{p.A[0], p.A[1]},
		B: [2][2]string{{p.B[0][0], p.B[0][1]}, {p.B[1][0], p.B[1][1]}},
		C: [2]string{p.C[0], p.C[1]},
	}
}

// Assignment is the named field-element input map handed to the proving
// oracle: the private pair plus the five public signals.
type Assignment struct {
	Secret  *big.Int
	OtpCode *big.Int
	Signals PublicSignals
}

// Prover is the opaque proving oracle: it turns a satisfying assignment into
// a succinct proof and echoes the public signals in declared output order.
type Prover interface {
	Prove(ctx context.Context, in Assignment) (*Proof, PublicSignals, error)
}

// Verifier is the opaque verifying oracle shared by the proof assembler's
// local self-check and the ledger routine.
type Verifier interface {
	Verify(proof CallProof, signals PublicSignals) (bool, error)
}
