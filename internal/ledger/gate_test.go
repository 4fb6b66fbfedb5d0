package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/zkotp-io/zkotp/internal/zkp"
)

func TestGateStartsLocked(t *testing.T) {
	g := NewGate(stubVerifier{ok: true})
	if g.Unlocked() {
		t.Fatal("a new gate must start locked")
	}
}

func TestGateRejectsInvalidProof(t *testing.T) {
	g := NewGate(stubVerifier{ok: false})

	err := g.Submit(context.Background(), zkp.CallProof{}, zkp.PublicSignals{})
	if !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("got %v, want ErrInvalidProof", err)
	}
	if g.Unlocked() {
		t.Fatal("invalid proof must not unlock the gate")
	}
}

func TestGateUnlocksAndStaysUnlocked(t *testing.T) {
	g := NewGate(stubVerifier{ok: true})

	if err := g.Submit(context.Background(), zkp.CallProof{}, zkp.PublicSignals{}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !g.Unlocked() {
		t.Fatal("valid proof must unlock the gate")
	}

	// A later invalid submission does not re-lock.
	locked := NewGate(stubVerifier{ok: false})
	locked.unlocked = true
	_ = locked.Submit(context.Background(), zkp.CallProof{}, zkp.PublicSignals{})
	if !locked.Unlocked() {
		t.Fatal("a failed submission must not re-lock the gate")
	}
}
