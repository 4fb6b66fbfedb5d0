package usecase

import (
	"context"
	"math/big"

	"go.opentelemetry.io/otel/trace"

	"github.com/zkotp-io/zkotp/internal/authz/entity"
	"github.com/zkotp-io/zkotp/internal/ledger"
	"github.com/zkotp-io/zkotp/internal/pkg/clock"
	"github.com/zkotp-io/zkotp/internal/pkg/config"
	"github.com/zkotp-io/zkotp/internal/pkg/idempotency"
	"github.com/zkotp-io/zkotp/internal/pkg/instrument"
	"github.com/zkotp-io/zkotp/internal/pkg/otpcode"
	"github.com/zkotp-io/zkotp/internal/pkg/uid"
	"github.com/zkotp-io/zkotp/internal/pkg/validator"
	"github.com/zkotp-io/zkotp/internal/pkg/vault"
	"github.com/zkotp-io/zkotp/internal/zkp"
)

// repoDB is the injected account store: postgres in production, memdb in
// tests. Create must be an atomic check-then-insert.
type repoDB interface {
	CreateAccount(ctx context.Context, acc entity.Account) error
	GetAccount(ctx context.Context, id string) (*entity.Account, error)
}

// proofAssembler builds and locally verifies an authorization.
type proofAssembler interface {
	Assemble(ctx context.Context, secret *big.Int, otpCode uint64, timeStep uint64, actionHash string, nonce int64) (*zkp.Authorization, error)
}

// ledgerHost is the serialized entry into the ledger-resident routine.
type ledgerHost interface {
	Execute(ctx context.Context, action zkp.Action, proof zkp.CallProof, signals zkp.PublicSignals) error
	SetOwner(ctx context.Context, caller, newOwner string) (ledger.ChangeEvent, error)
	SetAdmin(ctx context.Context, caller, newAdmin string) (ledger.ChangeEvent, error)
	SetHashedSecretConfig(ctx context.Context, caller, hashedSecret string) (ledger.ChangeEvent, error)
	SubmitGate(ctx context.Context, proof zkp.CallProof, signals zkp.PublicSignals) error
	GateUnlocked() bool
}

// Dependency lists everything the usecase needs; all fields are required.
type Dependency struct {
	RepoDB      repoDB
	Validator   validator.Validator
	Config      config.Config
	Clock       clock.Clocker
	Nonce       uid.NumberID
	Vault       *vault.Cipher
	OTP         *otpcode.Engine
	Assembler   proofAssembler
	ProvePool   *zkp.Pool
	Ledger      ledgerHost
	Idempotency idempotency.Idempotency
	Instrument  instrument.Instrumentation
}

// Usecase implements the authorization workflows.
type Usecase struct {
	repoDB    repoDB
	validator validator.Validator
	cfg       config.Config
	clock     clock.Clocker
	nonce     uid.NumberID
	vault     *vault.Cipher
	otp       *otpcode.Engine
	assembler proofAssembler
	provePool *zkp.Pool
	ledger    ledgerHost
	idemp     idempotency.Idempotency
	ins       instrument.Instrumentation
}

// New wires a Usecase from its dependencies.
func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		validator: dep.Validator,
		cfg:       dep.Config,
		clock:     dep.Clock,
		nonce:     dep.Nonce,
		vault:     dep.Vault,
		otp:       dep.OTP,
		assembler: dep.Assembler,
		provePool: dep.ProvePool,
		ledger:    dep.Ledger,
		idemp:     dep.Idempotency,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("authz.usecase").Start(ctx, name)
}
