package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/zkotp-io/zkotp/internal/ledger"
	"github.com/zkotp-io/zkotp/internal/pkg/goerror"
	"github.com/zkotp-io/zkotp/internal/zkp"
)

type AdminChangeInput struct {
	Caller string `validate:"required,min=3,max=64"`
	Value  string `validate:"required,max=128"`
}

type AdminChangeOutput struct {
	Field string
	Old   string
	New   string
}

// SetOwner rotates the ledger owner. All administrative operations are
// owner-only; the admin role is informational and cannot self-rotate.
func (s *Usecase) SetOwner(ctx context.Context, in AdminChangeInput) (*AdminChangeOutput, error) {
	ctx, span := s.startSpan(ctx, "SetOwner")
	defer span.End()

	return s.adminChange(ctx, in, s.ledger.SetOwner)
}

// SetAdmin rotates the ledger admin. Owner-only.
func (s *Usecase) SetAdmin(ctx context.Context, in AdminChangeInput) (*AdminChangeOutput, error) {
	ctx, span := s.startSpan(ctx, "SetAdmin")
	defer span.End()

	return s.adminChange(ctx, in, s.ledger.SetAdmin)
}

// SetSecretConfig replaces the hashed-secret revocation stamp. Owner-only.
// The value must be a canonical decimal field element.
func (s *Usecase) SetSecretConfig(ctx context.Context, in AdminChangeInput) (*AdminChangeOutput, error) {
	ctx, span := s.startSpan(ctx, "SetSecretConfig")
	defer span.End()

	if _, err := zkp.ParseSignal(strings.TrimSpace(in.Value)); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	return s.adminChange(ctx, in, s.ledger.SetHashedSecretConfig)
}

func (s *Usecase) adminChange(
	ctx context.Context,
	in AdminChangeInput,
	op func(ctx context.Context, caller, value string) (ledger.ChangeEvent, error),
) (*AdminChangeOutput, error) {
	in.Caller = strings.TrimSpace(in.Caller)
	in.Value = strings.TrimSpace(in.Value)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ev, err := op(ctx, in.Caller, in.Value)
	if errors.Is(err, ledger.ErrNotOwner) {
		return nil, goerror.NewBusiness("only the owner may change ledger configuration", goerror.CodeForbidden)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to apply ledger change", "caller", in.Caller, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &AdminChangeOutput{Field: ev.Field, Old: ev.Old, New: ev.New}, nil
}
