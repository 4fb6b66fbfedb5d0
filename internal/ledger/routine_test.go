package ledger

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/zkotp-io/zkotp/internal/zkp"
)

type stubVerifier struct {
	ok  bool
	err error
}

func (s stubVerifier) Verify(zkp.CallProof, zkp.PublicSignals) (bool, error) {
	return s.ok, s.err
}

func signalsFor(t *testing.T, action zkp.Action, step uint64, nonce string) zkp.PublicSignals {
	t.Helper()

	actionHash, err := zkp.HashAction(action)
	if err != nil {
		t.Fatalf("hash action: %v", err)
	}

	return zkp.PublicSignals{
		zkp.SignalHashedSecret: "1111",
		zkp.SignalHashedOtp:    "2222",
		zkp.SignalTimeStep:     strconv.FormatUint(step, 10),
		zkp.SignalActionHash:   actionHash,
		zkp.SignalTxNonce:      nonce,
	}
}

func TestExecuteHappyPath(t *testing.T) {
	action := zkp.Action{Target: "transfer", Value: 250}

	var called int
	r := NewRoutine("owner", stubVerifier{ok: true}, func(_ context.Context, got zkp.Action) error {
		called++
		if got.Target != action.Target || got.Value != action.Value {
			t.Fatalf("call received wrong action: %+v", got)
		}
		return nil
	})

	err := r.Execute(context.Background(), action, zkp.CallProof{}, signalsFor(t, action, 10, "1"))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if called != 1 {
		t.Fatalf("target call count: got %d, want 1", called)
	}
}

func TestExecuteInvalidProof(t *testing.T) {
	action := zkp.Action{Target: "transfer", Value: 250}

	r := NewRoutine("owner", stubVerifier{ok: false}, func(context.Context, zkp.Action) error {
		t.Fatal("target call must not run on invalid proof")
		return nil
	})

	err := r.Execute(context.Background(), action, zkp.CallProof{}, signalsFor(t, action, 10, "1"))
	if !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("got %v, want ErrInvalidProof", err)
	}
}

func TestExecuteVerifierErrorIsInvalidProof(t *testing.T) {
	action := zkp.Action{Target: "transfer", Value: 250}

	r := NewRoutine("owner", stubVerifier{err: errors.New("boom")}, func(context.Context, zkp.Action) error {
		return nil
	})

	err := r.Execute(context.Background(), action, zkp.CallProof{}, signalsFor(t, action, 10, "1"))
	if !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("got %v, want ErrInvalidProof", err)
	}
}

func TestExecuteRevokedHashedSecret(t *testing.T) {
	action := zkp.Action{Target: "transfer", Value: 250}
	signals := signalsFor(t, action, 10, "1")

	r := NewRoutine("owner", stubVerifier{ok: true}, func(context.Context, zkp.Action) error {
		t.Fatal("target call must not run for a revoked secret")
		return nil
	})

	if _, err := r.SetHashedSecretConfig(context.Background(), "owner", signals.HashedSecret()); err != nil {
		t.Fatalf("set hashed secret config: %v", err)
	}

	err := r.Execute(context.Background(), action, zkp.CallProof{}, signals)
	if !errors.Is(err, ErrInvalidHashedSecret) {
		t.Fatalf("got %v, want ErrInvalidHashedSecret", err)
	}

	// A different hashed secret passes; the stamp is a blocklist, not a whitelist.
	other := signals
	other[zkp.SignalHashedSecret] = "3333"
	r2 := NewRoutine("owner", stubVerifier{ok: true}, func(context.Context, zkp.Action) error { return nil })
	if _, err := r2.SetHashedSecretConfig(context.Background(), "owner", signals.HashedSecret()); err != nil {
		t.Fatalf("set hashed secret config: %v", err)
	}
	if err := r2.Execute(context.Background(), action, zkp.CallProof{}, other); err != nil {
		t.Fatalf("execute with non-revoked secret: %v", err)
	}
}

func TestExecuteActionHashMismatch(t *testing.T) {
	authorized := zkp.Action{Target: "transfer", Value: 100}
	requested := zkp.Action{Target: "transfer", Value: 999}

	r := NewRoutine("owner", stubVerifier{ok: true}, func(context.Context, zkp.Action) error {
		t.Fatal("target call must not run on a mismatched action")
		return nil
	})

	err := r.Execute(context.Background(), requested, zkp.CallProof{}, signalsFor(t, authorized, 10, "1"))
	if !errors.Is(err, ErrActionHashMismatch) {
		t.Fatalf("got %v, want ErrActionHashMismatch", err)
	}
}

func TestExecuteNonceReused(t *testing.T) {
	action := zkp.Action{Target: "transfer", Value: 250}
	signals := signalsFor(t, action, 10, "1")

	var called int
	r := NewRoutine("owner", stubVerifier{ok: true}, func(context.Context, zkp.Action) error {
		called++
		return nil
	})

	if err := r.Execute(context.Background(), action, zkp.CallProof{}, signals); err != nil {
		t.Fatalf("first execute: %v", err)
	}

	err := r.Execute(context.Background(), action, zkp.CallProof{}, signals)
	if !errors.Is(err, ErrNonceReused) {
		t.Fatalf("replay: got %v, want ErrNonceReused", err)
	}
	if called != 1 {
		t.Fatalf("target call count: got %d, want 1", called)
	}
}

func TestExecuteRejectionLeavesNonceUnspent(t *testing.T) {
	action := zkp.Action{Target: "transfer", Value: 250}
	signals := signalsFor(t, action, 10, "1")

	// First submission carries an invalid proof.
	rejecting := NewRoutine("owner", stubVerifier{ok: false}, nil)
	if err := rejecting.Execute(context.Background(), action, zkp.CallProof{}, signals); !errors.Is(err, ErrInvalidProof) {
		t.Fatalf("got %v, want ErrInvalidProof", err)
	}

	// The same nonce on the same routine is still fresh after a rejection.
	accepting := NewRoutine("owner", stubVerifier{ok: true}, func(context.Context, zkp.Action) error { return nil })
	mismatched := zkp.Action{Target: "withdraw", Value: 1}
	if err := accepting.Execute(context.Background(), mismatched, zkp.CallProof{}, signals); !errors.Is(err, ErrActionHashMismatch) {
		t.Fatalf("got %v, want ErrActionHashMismatch", err)
	}
	if err := accepting.Execute(context.Background(), action, zkp.CallProof{}, signals); err != nil {
		t.Fatalf("nonce should still be spendable after rejections: %v", err)
	}
}

func TestExecuteFailedCallBurnsNonce(t *testing.T) {
	action := zkp.Action{Target: "transfer", Value: 250}
	signals := signalsFor(t, action, 10, "1")

	fail := errors.New("downstream unavailable")
	r := NewRoutine("owner", stubVerifier{ok: true}, func(context.Context, zkp.Action) error {
		return fail
	})

	err := r.Execute(context.Background(), action, zkp.CallProof{}, signals)
	if !errors.Is(err, ErrActionExecutionFailed) || !errors.Is(err, fail) {
		t.Fatalf("got %v, want wrapped ErrActionExecutionFailed", err)
	}

	// The nonce was consumed before the call; the proof cannot be replayed.
	err = r.Execute(context.Background(), action, zkp.CallProof{}, signals)
	if !errors.Is(err, ErrNonceReused) {
		t.Fatalf("replay after failure: got %v, want ErrNonceReused", err)
	}
}

func TestExecuteReentrantCallCannotReplay(t *testing.T) {
	action := zkp.Action{Target: "transfer", Value: 250}
	signals := signalsFor(t, action, 10, "1")

	var r *Routine
	var innerErr error
	r = NewRoutine("owner", stubVerifier{ok: true}, func(ctx context.Context, _ zkp.Action) error {
		innerErr = r.Execute(ctx, action, zkp.CallProof{}, signals)
		return innerErr
	})

	err := r.Execute(context.Background(), action, zkp.CallProof{}, signals)
	if !errors.Is(innerErr, ErrNonceReused) {
		t.Fatalf("reentrant execute: got %v, want ErrNonceReused", innerErr)
	}
	if !errors.Is(err, ErrActionExecutionFailed) {
		t.Fatalf("outer execute: got %v, want ErrActionExecutionFailed", err)
	}
}

func TestExecuteNonceWindow(t *testing.T) {
	action := zkp.Action{Target: "transfer", Value: 250}

	r := NewRoutine("owner", stubVerifier{ok: true},
		func(context.Context, zkp.Action) error { return nil },
		WithNonceWindow(2))

	if err := r.Execute(context.Background(), action, zkp.CallProof{}, signalsFor(t, action, 100, "1")); err != nil {
		t.Fatalf("step 100: %v", err)
	}
	if err := r.Execute(context.Background(), action, zkp.CallProof{}, signalsFor(t, action, 103, "2")); err != nil {
		t.Fatalf("step 103: %v", err)
	}

	// A proof from far behind the newest step is stale.
	err := r.Execute(context.Background(), action, zkp.CallProof{}, signalsFor(t, action, 100, "3"))
	if !errors.Is(err, ErrNonceReused) {
		t.Fatalf("stale step: got %v, want ErrNonceReused", err)
	}

	// Within the window still passes.
	if err := r.Execute(context.Background(), action, zkp.CallProof{}, signalsFor(t, action, 102, "4")); err != nil {
		t.Fatalf("step 102: %v", err)
	}
}

func TestAdminChangesOwnerOnly(t *testing.T) {
	r := NewRoutine("owner", stubVerifier{ok: true}, nil, WithAdmin("admin"))

	if _, err := r.SetOwner(context.Background(), "admin", "mallory"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("admin rotating owner: got %v, want ErrNotOwner", err)
	}
	if _, err := r.SetAdmin(context.Background(), "admin", "mallory"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("admin rotating admin: got %v, want ErrNotOwner", err)
	}
	if _, err := r.SetHashedSecretConfig(context.Background(), "mallory", "1234"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("stranger setting stamp: got %v, want ErrNotOwner", err)
	}

	ev, err := r.SetAdmin(context.Background(), "owner", "admin2")
	if err != nil {
		t.Fatalf("owner rotating admin: %v", err)
	}
	if ev.Field != "admin" || ev.Old != "admin" || ev.New != "admin2" {
		t.Fatalf("change event: %+v", ev)
	}
	if r.Admin() != "admin2" {
		t.Fatalf("admin: got %s, want admin2", r.Admin())
	}

	// Ownership rotation takes effect immediately.
	if _, err := r.SetOwner(context.Background(), "owner", "owner2"); err != nil {
		t.Fatalf("rotate owner: %v", err)
	}
	if _, err := r.SetHashedSecretConfig(context.Background(), "owner", "1234"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("old owner after rotation: got %v, want ErrNotOwner", err)
	}
	if _, err := r.SetHashedSecretConfig(context.Background(), "owner2", "1234"); err != nil {
		t.Fatalf("new owner: %v", err)
	}
	if r.HashedSecretConfig() != "1234" {
		t.Fatalf("stamp: got %s, want 1234", r.HashedSecretConfig())
	}
}

// A verified time step signal can be any field element; values outside uint64
// must be rejected outright rather than coerced to step zero.
func TestExecuteRejectsOversizedTimeStep(t *testing.T) {
	action := zkp.Action{Target: "transfer", Value: 250}

	var called int
	r := NewRoutine("owner", stubVerifier{ok: true}, func(context.Context, zkp.Action) error {
		called++
		return nil
	}, WithNonceWindow(2))

	signals := signalsFor(t, action, 10, "1")
	signals[zkp.SignalTimeStep] = "18446744073709551616" // 2^64

	if err := r.Execute(context.Background(), action, zkp.CallProof{}, signals); !errors.Is(err, ErrInvalidTimeStep) {
		t.Fatalf("got %v, want ErrInvalidTimeStep", err)
	}
	if called != 0 {
		t.Fatal("target call must not run")
	}

	// Rejection leaves the nonce unspent.
	if err := r.Execute(context.Background(), action, zkp.CallProof{}, signalsFor(t, action, 10, "1")); err != nil {
		t.Fatalf("retry with valid step: %v", err)
	}
	if called != 1 {
		t.Fatalf("target call count: got %d, want 1", called)
	}
}
