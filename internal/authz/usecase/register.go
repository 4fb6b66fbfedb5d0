package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/zkotp-io/zkotp/internal/authz/entity"
	"github.com/zkotp-io/zkotp/internal/pkg/goerror"
)

type RegisterInput struct {
	AccountID string `validate:"required,accountid"`
	Secret    string `validate:"required,min=8,max=128"`
}

type RegisterOutput struct {
	AccountID       string
	ProvisioningURI string
}

// Register encrypts the shared secret for the account and persists it. The
// store's atomic insert is the only duplicate guard, so two concurrent
// registrations for one id cannot both win.
func (s *Usecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.AccountID = strings.TrimSpace(in.AccountID)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	blob, err := s.vault.Seal(in.AccountID, []byte(in.Secret))
	if err != nil {
		slog.ErrorContext(ctx, "failed to seal account secret", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	err = s.repoDB.CreateAccount(ctx, entity.Account{
		ID:         in.AccountID,
		SecretBlob: blob,
		CreatedAt:  s.clock.Now(),
	})
	if errors.Is(err, goerror.ErrConflict) {
		return nil, goerror.NewBusiness("account already registered", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create account", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	uri, err := s.otp.ProvisioningURI(in.AccountID, []byte(in.Secret))
	if err != nil {
		slog.ErrorContext(ctx, "failed to build provisioning uri", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &RegisterOutput{AccountID: in.AccountID, ProvisioningURI: uri}, nil
}

type CheckRegisteredInput struct {
	AccountID string `validate:"required,accountid"`
}

type CheckRegisteredOutput struct {
	Registered bool
}

// CheckRegistered reports whether an account exists. It never reveals
// anything about the secret itself.
func (s *Usecase) CheckRegistered(ctx context.Context, in CheckRegisteredInput) (*CheckRegisteredOutput, error) {
	ctx, span := s.startSpan(ctx, "CheckRegistered")
	defer span.End()

	in.AccountID = strings.TrimSpace(in.AccountID)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	_, err := s.repoDB.GetAccount(ctx, in.AccountID)
	if errors.Is(err, goerror.ErrNotFound) {
		return &CheckRegisteredOutput{Registered: false}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account", "account_id", in.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &CheckRegisteredOutput{Registered: true}, nil
}
