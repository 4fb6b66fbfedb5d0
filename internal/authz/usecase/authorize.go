package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/zkotp-io/zkotp/internal/pkg/goerror"
	"github.com/zkotp-io/zkotp/internal/zkp"
)

type AuthorizeInput struct {
	AccountID string `validate:"required,accountid"`
	OTP       string `validate:"required,len=6,numeric"`
	Target    string `validate:"required,max=32"`
	Value     uint64
	Payload   []byte
}

type AuthorizeOutput struct {
	Authorization *zkp.Authorization
}

// errInvalidCode is the single user-visible rejection for every
// code-related failure, so a caller cannot tell which internal check failed.
func errInvalidCode() error {
	return goerror.NewBusiness("invalid code", goerror.CodeUnauthorized)
}

// Authorize proves that the caller currently holds a valid one-time code and
// binds the proof to the requested action. Proof generation is CPU-bound and
// runs on the bounded prover pool so it never blocks unrelated requests.
func (s *Usecase) Authorize(ctx context.Context, in AuthorizeInput) (*AuthorizeOutput, error) {
	ctx, span := s.startSpan(ctx, "Authorize")
	defer span.End()

	in.AccountID = strings.TrimSpace(in.AccountID)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.repoDB.GetAccount(ctx, in.AccountID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("account not registered", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	secret, err := s.vault.Open(in.AccountID, acc.SecretBlob)
	if err != nil {
		// Corrupt blob or wrong master key. Fatal for the request and loud
		// in the logs; never silently swallowed or retried.
		slog.ErrorContext(ctx, "failed to open account secret blob", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	step := s.otp.Step(s.clock.Now())

	ok, err := s.otp.Matches(in.OTP, secret, step)
	if err != nil {
		slog.ErrorContext(ctx, "failed to derive one-time code", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		return nil, errInvalidCode()
	}

	actionHash, err := zkp.HashAction(zkp.Action{Target: in.Target, Value: in.Value, Payload: in.Payload})
	if err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	code, err := strconv.ParseUint(in.OTP, 10, 64)
	if err != nil {
		return nil, goerror.NewInvalidFormat("otp must be a 6-digit code")
	}

	var auth *zkp.Authorization
	err = s.provePool.Do(ctx, func(ctx context.Context) error {
		auth, err = s.assembler.Assemble(ctx, zkp.SecretToField(secret), code, step, actionHash, s.nonce.Generate())
		return err
	})
	if errors.Is(err, zkp.ErrProofGeneration) {
		// Witness inconsistency is reported exactly like a wrong code; the
		// distinction would leak which check failed.
		slog.WarnContext(ctx, "proof generation rejected", "account_id", in.AccountID, "error", err)
		return nil, errInvalidCode()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to assemble authorization", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &AuthorizeOutput{Authorization: auth}, nil
}
