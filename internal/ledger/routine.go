package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/zkotp-io/zkotp/internal/zkp"
)

// Rejection reasons. Each aborts the whole transaction atomically; callers
// can match them with errors.Is.
var (
	// ErrInvalidProof indicates the verifying oracle rejected the proof.
	ErrInvalidProof = errors.New("ledger: invalid proof")
	// ErrInvalidHashedSecret indicates the proof's hashed secret equals the
	// stored revocation stamp.
	ErrInvalidHashedSecret = errors.New("ledger: hashed secret is revoked")
	// ErrActionHashMismatch indicates the proof authorizes a different action
	// than the one being executed.
	ErrActionHashMismatch = errors.New("ledger: action hash mismatch")
	// ErrNonceReused indicates the transaction nonce was already consumed.
	ErrNonceReused = errors.New("ledger: nonce already used")
	// ErrInvalidTimeStep indicates the time step signal is not a uint64. A
	// verified signal can be any field element, so this is a distinct check.
	ErrInvalidTimeStep = errors.New("ledger: time step out of range")
	// ErrActionExecutionFailed wraps a failure from the target call itself.
	ErrActionExecutionFailed = errors.New("ledger: action execution failed")
	// ErrNotOwner rejects administrative calls from anyone but the owner.
	ErrNotOwner = errors.New("ledger: caller is not the owner")
)

// TargetCall executes the requested action once every check has passed.
type TargetCall func(ctx context.Context, action zkp.Action) error

// ChangeEvent records an administrative mutation, carrying the replaced and
// the new value.
type ChangeEvent struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// Routine is the ledger-resident authorization state machine. Its durable
// fields are the hashed-secret revocation stamp, the used-nonce set and the
// two role holders; there is no further state.
//
// The routine takes no locks: the host ledger serializes every transaction,
// and the nonce check is the sole guard against double-spending a proof.
type Routine struct {
	verifier zkp.Verifier
	call     TargetCall

	hashedSecretConfig string
	usedNonces         map[string]uint64 // nonce -> time step it arrived with
	owner              string
	admin              string

	// nonceWindow > 0 enables windowed nonce pruning: nonces older than the
	// window behind the newest seen step are rejected as stale and their
	// entries dropped. Zero keeps the grow-forever set.
	nonceWindow uint64
	maxStep     uint64
}

// Option configures a Routine at construction.
type Option func(*Routine)

// WithNonceWindow bounds the used-nonce set to the given number of recent
// time steps. This changes observable behavior: a proof older than the
// window is rejected even if its nonce was never used.
func WithNonceWindow(steps uint64) Option {
	return func(r *Routine) { r.nonceWindow = steps }
}

// WithAdmin sets the initial admin role holder.
func WithAdmin(admin string) Option {
	return func(r *Routine) { r.admin = admin }
}

// NewRoutine creates a routine owned by owner, verifying against the given
// oracle and dispatching accepted actions through call.
func NewRoutine(owner string, verifier zkp.Verifier, call TargetCall, opts ...Option) *Routine {
	r := &Routine{
		verifier:   verifier,
		call:       call,
		usedNonces: make(map[string]uint64),
		owner:      owner,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs the authorization checks in strict order, short-circuiting on
// the first failure, and performs the action. No state is mutated before all
// checks pass; the nonce is consumed before the target call so a reentrant
// call cannot replay the same proof.
func (r *Routine) Execute(ctx context.Context, action zkp.Action, proof zkp.CallProof, signals zkp.PublicSignals) error {
	// 1. Cheapest rejection first, no state touched.
	ok, err := r.verifier.Verify(proof, signals)
	if err != nil || !ok {
		return ErrInvalidProof
	}

	// 2. Equality with the stored stamp marks a revoked or placeholder
	// secret; the config is a blocklist entry, never a whitelist.
	if r.hashedSecretConfig != "" && signals.HashedSecret() == r.hashedSecretConfig {
		return ErrInvalidHashedSecret
	}

	// 3. Bind the abstract proof to this concrete call.
	want, err := zkp.HashAction(action)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrActionHashMismatch, err)
	}
	if signals.ActionHash() != want {
		return ErrActionHashMismatch
	}

	// 4. Nonce must be fresh; consumed before the call below.
	nonce := signals.TxNonce()
	if _, used := r.usedNonces[nonce]; used {
		return ErrNonceReused
	}
	step, err := strconv.ParseUint(signals.TimeStep(), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeStep, signals.TimeStep())
	}
	if r.nonceWindow > 0 {
		if step+r.nonceWindow < r.maxStep {
			return ErrNonceReused
		}
		if step > r.maxStep {
			r.maxStep = step
			r.pruneNonces()
		}
	}
	r.usedNonces[nonce] = step

	// 5. Perform the call with all checks passed and the nonce burned.
	if err := r.call(ctx, action); err != nil {
		return fmt.Errorf("%w: %w", ErrActionExecutionFailed, err)
	}

	slog.InfoContext(ctx, "authorized action executed",
		"target", action.Target, "value", action.Value, "nonce", nonce)
	return nil
}

func (r *Routine) pruneNonces() {
	for nonce, step := range r.usedNonces {
		if step+r.nonceWindow < r.maxStep {
			delete(r.usedNonces, nonce)
		}
	}
}

// Owner returns the current owner.
func (r *Routine) Owner() string { return r.owner }

// Admin returns the current admin.
func (r *Routine) Admin() string { return r.admin }

// HashedSecretConfig returns the stored revocation stamp, empty if unset.
func (r *Routine) HashedSecretConfig() string { return r.hashedSecretConfig }

// SetOwner reassigns the owner role. Owner-only, as are all administrative
// operations; the admin role carries no self-rotation right.
func (r *Routine) SetOwner(ctx context.Context, caller, newOwner string) (ChangeEvent, error) {
	return r.adminChange(ctx, caller, "owner", &r.owner, newOwner)
}

// SetAdmin reassigns the admin role. Owner-only.
func (r *Routine) SetAdmin(ctx context.Context, caller, newAdmin string) (ChangeEvent, error) {
	return r.adminChange(ctx, caller, "admin", &r.admin, newAdmin)
}

// SetHashedSecretConfig replaces the revocation stamp. Owner-only.
func (r *Routine) SetHashedSecretConfig(ctx context.Context, caller, hashedSecret string) (ChangeEvent, error) {
	return r.adminChange(ctx, caller, "hashed_secret_config", &r.hashedSecretConfig, hashedSecret)
}

func (r *Routine) adminChange(ctx context.Context, caller, field string, dst *string, value string) (ChangeEvent, error) {
	if caller != r.owner {
		return ChangeEvent{}, ErrNotOwner
	}

	ev := ChangeEvent{Field: field, Old: *dst, New: value}
	*dst = value

	slog.InfoContext(ctx, "ledger config changed", "field", field, "old", ev.Old, "new", ev.New)
	return ev, nil
}
