package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/zkotp-io/zkotp/internal/ledger"
	"github.com/zkotp-io/zkotp/internal/pkg/goerror"
	"github.com/zkotp-io/zkotp/internal/pkg/idempotency"
	"github.com/zkotp-io/zkotp/internal/zkp"
)

type ExecuteInput struct {
	Target  string `validate:"required,max=32"`
	Value   uint64
	Payload []byte

	Proof   zkp.CallProof
	Signals zkp.PublicSignals

	// IdempotencyKey optionally deduplicates transport-level retries before
	// they ever reach the ledger; the nonce remains the protocol guard.
	IdempotencyKey string `validate:"omitempty,max=128"`
}

// ledgerRejections maps each distinct ledger rejection to its
// machine-checkable business error.
var ledgerRejections = []struct {
	is   error
	msg  string
	code goerror.Code
}{
	{ledger.ErrInvalidProof, "invalid proof", goerror.CodeUnauthorized},
	{ledger.ErrInvalidHashedSecret, "hashed secret is revoked", goerror.CodeForbidden},
	{ledger.ErrActionHashMismatch, "proof does not authorize this action", goerror.CodeForbidden},
	{ledger.ErrNonceReused, "authorization already spent", goerror.CodeConflict},
	{ledger.ErrInvalidTimeStep, "time step out of range", goerror.CodeInvalidInput},
}

// Execute submits an assembled authorization to the ledger routine. Every
// rejection aborts atomically with a distinct reason.
func (s *Usecase) Execute(ctx context.Context, in ExecuteInput) error {
	ctx, span := s.startSpan(ctx, "Execute")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	action := zkp.Action{Target: in.Target, Value: in.Value, Payload: in.Payload}

	submit := func(ctx context.Context) error {
		return s.ledger.Execute(ctx, action, in.Proof, in.Signals)
	}

	var err error
	if in.IdempotencyKey != "" {
		err = s.idemp.Exec(ctx, "authz:execute:"+in.IdempotencyKey, submit)
		if errors.Is(err, idempotency.ErrAlreadyCompleted) ||
			errors.Is(err, idempotency.ErrAlreadyInProgress) ||
			errors.Is(err, idempotency.ErrAlreadyFailed) {
			return goerror.NewBusiness("execution already submitted", goerror.CodeConflict)
		}
	} else {
		err = submit(ctx)
	}

	for _, rej := range ledgerRejections {
		if errors.Is(err, rej.is) {
			return goerror.NewBusiness(rej.msg, rej.code)
		}
	}
	if errors.Is(err, ledger.ErrActionExecutionFailed) {
		slog.ErrorContext(ctx, "target call failed", "target", in.Target, "error", err)
		return goerror.NewServer(err)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to submit execution", "target", in.Target, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

type GateSubmitInput struct {
	Proof   zkp.CallProof
	Signals zkp.PublicSignals
}

// GateSubmit drives the reduced boolean-gate variant: a valid proof flips the
// gate, nothing else is checked.
func (s *Usecase) GateSubmit(ctx context.Context, in GateSubmitInput) error {
	ctx, span := s.startSpan(ctx, "GateSubmit")
	defer span.End()

	err := s.ledger.SubmitGate(ctx, in.Proof, in.Signals)
	if errors.Is(err, ledger.ErrInvalidProof) {
		return goerror.NewBusiness("invalid proof", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to submit gate proof", "error", err)
		return goerror.NewServer(err)
	}

	return nil
}

type GateStatusOutput struct {
	Unlocked bool
}

// GateStatus reads the gate state.
func (s *Usecase) GateStatus(ctx context.Context) (*GateStatusOutput, error) {
	_, span := s.startSpan(ctx, "GateStatus")
	defer span.End()

	return &GateStatusOutput{Unlocked: s.ledger.GateUnlocked()}, nil
}
