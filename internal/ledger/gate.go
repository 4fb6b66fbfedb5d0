package ledger

import (
	"context"
	"log/slog"

	"github.com/zkotp-io/zkotp/internal/zkp"
)

// Gate is the reduced-feature variant of the authorization routine: proof
// validity alone flips a single boolean, with no nonce tracking and no action
// binding. It shares the verifying-oracle interface with Routine but is a
// deliberately separate, simpler contract.
type Gate struct {
	verifier zkp.Verifier
	unlocked bool
}

// NewGate creates a locked gate checking proofs against the given oracle.
func NewGate(verifier zkp.Verifier) *Gate {
	return &Gate{verifier: verifier}
}

// Submit verifies the proof and unlocks the gate on success.
func (g *Gate) Submit(ctx context.Context, proof zkp.CallProof, signals zkp.PublicSignals) error {
	ok, err := g.verifier.Verify(proof, signals)
	if err != nil || !ok {
		return ErrInvalidProof
	}

	g.unlocked = true
	slog.InfoContext(ctx, "gate unlocked")
	return nil
}

// Unlocked reports the gate state.
func (g *Gate) Unlocked() bool { return g.unlocked }
