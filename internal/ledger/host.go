package ledger

import (
	"context"
	"sync"

	"github.com/zkotp-io/zkotp/internal/zkp"
)

// Host emulates the ledger's global serialized transaction ordering for an
// in-process routine: every call goes through one mutex, so the routine
// itself never needs internal locking.
type Host struct {
	mu      sync.Mutex
	routine *Routine
	gate    *Gate
}

// NewHost wraps a routine and its companion gate behind serialized ordering.
func NewHost(routine *Routine, gate *Gate) *Host {
	return &Host{routine: routine, gate: gate}
}

// Execute submits an authorization transaction.
func (h *Host) Execute(ctx context.Context, action zkp.Action, proof zkp.CallProof, signals zkp.PublicSignals) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.routine.Execute(ctx, action, proof, signals)
}

// SetOwner submits an owner-rotation transaction.
func (h *Host) SetOwner(ctx context.Context, caller, newOwner string) (ChangeEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.routine.SetOwner(ctx, caller, newOwner)
}

// SetAdmin submits an admin-rotation transaction.
func (h *Host) SetAdmin(ctx context.Context, caller, newAdmin string) (ChangeEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.routine.SetAdmin(ctx, caller, newAdmin)
}

// SetHashedSecretConfig submits a revocation-stamp update transaction.
func (h *Host) SetHashedSecretConfig(ctx context.Context, caller, hashedSecret string) (ChangeEvent, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.routine.SetHashedSecretConfig(ctx, caller, hashedSecret)
}

// SubmitGate submits a boolean-gate transaction.
func (h *Host) SubmitGate(ctx context.Context, proof zkp.CallProof, signals zkp.PublicSignals) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gate.Submit(ctx, proof, signals)
}

// GateUnlocked reads the gate state under the same ordering.
func (h *Host) GateUnlocked() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gate.Unlocked()
}
