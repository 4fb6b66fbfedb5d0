package authz

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zkotp-io/zkotp/internal/authz/entity"
	"github.com/zkotp-io/zkotp/internal/authz/inbound"
	"github.com/zkotp-io/zkotp/internal/authz/outbound/db"
	"github.com/zkotp-io/zkotp/internal/authz/outbound/memdb"
	"github.com/zkotp-io/zkotp/internal/authz/usecase"
	"github.com/zkotp-io/zkotp/internal/ledger"
	"github.com/zkotp-io/zkotp/internal/pkg/clock"
	"github.com/zkotp-io/zkotp/internal/pkg/config"
	"github.com/zkotp-io/zkotp/internal/pkg/idempotency"
	"github.com/zkotp-io/zkotp/internal/pkg/instrument"
	"github.com/zkotp-io/zkotp/internal/pkg/otpcode"
	"github.com/zkotp-io/zkotp/internal/pkg/router"
	"github.com/zkotp-io/zkotp/internal/pkg/uid"
	"github.com/zkotp-io/zkotp/internal/pkg/validator"
	"github.com/zkotp-io/zkotp/internal/pkg/vault"
	"github.com/zkotp-io/zkotp/internal/zkp"
)

// store is what the module needs from the account repository.
type store interface {
	CreateAccount(ctx context.Context, acc entity.Account) error
	GetAccount(ctx context.Context, id string) (*entity.Account, error)
}

type Dependency struct {
	// DBConn is optional; when nil the module falls back to the in-memory
	// store (database.driver "memory").
	DBConn      *pgxpool.Pool
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	Nonce       uid.NumberID               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	Vault       *vault.Cipher              `validate:"required"`
	OTP         *otpcode.Engine            `validate:"required"`
	Assembler   *zkp.Assembler             `validate:"required"`
	ProvePool   *zkp.Pool                  `validate:"required"`
	Ledger      *ledger.Host               `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	var repo store
	if dep.DBConn != nil {
		repo = db.NewDB(dep.DBConn, dep.Instrument)
	} else {
		repo = memdb.New()
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:      repo,
		Validator:   dep.Validator,
		Config:      dep.Config,
		Clock:       dep.Clock,
		Nonce:       dep.Nonce,
		Vault:       dep.Vault,
		OTP:         dep.OTP,
		Assembler:   dep.Assembler,
		ProvePool:   dep.ProvePool,
		Ledger:      dep.Ledger,
		Idempotency: dep.Idempotency,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
