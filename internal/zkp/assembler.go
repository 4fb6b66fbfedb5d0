package zkp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
)

// ErrProofGeneration indicates the proving oracle rejected the assignment or
// produced a proof that failed the local self-check. Callers surface it to
// users as a generic invalid-code condition so the failing check is not
// distinguishable from the outside.
var ErrProofGeneration = errors.New("zkp: proof generation failed")

// Authorization is an assembled, locally verified proof in the verifying
// oracle's call format together with its public-signal vector.
type Authorization struct {
	Proof   CallProof     `json:"proof"`
	Signals PublicSignals `json:"public_signals"`
}

// Assembler builds proving-oracle assignments and turns them into
// authorizations ready for the ledger routine.
type Assembler struct {
	prover   Prover
	verifier Verifier
}

// NewAssembler wires the assembler to its proving oracle and to the verifying
// oracle used for the post-generation self-check.
func NewAssembler(prover Prover, verifier Verifier) *Assembler {
	return &Assembler{prover: prover, verifier: verifier}
}

// Assemble hashes the private inputs, invokes the proving oracle and locally
// re-verifies the result before returning it (fail closed): an authorization
// that would be rejected on the ledger is never handed out.
func (a *Assembler) Assemble(ctx context.Context, secret *big.Int, otpCode uint64, timeStep uint64, actionHash string, nonce int64) (*Authorization, error) {
	otp := new(big.Int).SetUint64(otpCode)

	in := Assignment{
		Secret:  secret,
		OtpCode: otp,
		Signals: PublicSignals{
			SignalHashedSecret: HashField(secret),
			SignalHashedOtp:    HashField(otp),
			SignalTimeStep:     new(big.Int).SetUint64(timeStep).String(),
			SignalActionHash:   actionHash,
			SignalTxNonce:      big.NewInt(nonce).String(),
		},
	}

	proof, signals, err := a.prover.Prove(ctx, in)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.WarnContext(ctx, "proving oracle rejected assignment", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrProofGeneration, err)
	}
	if signals != in.Signals {
		slog.WarnContext(ctx, "proving oracle reordered public signals")
		return nil, ErrProofGeneration
	}

	auth := &Authorization{Proof: proof.CallFormat(), Signals: signals}

	ok, err := a.verifier.Verify(auth.Proof, auth.Signals)
	if err != nil {
		return nil, fmt.Errorf("%w: self-verify: %w", ErrProofGeneration, err)
	}
	if !ok {
		slog.ErrorContext(ctx, "generated proof failed local verification")
		return nil, ErrProofGeneration
	}

	return auth, nil
}
