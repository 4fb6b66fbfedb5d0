package app

import (
	"log/slog"
	"os"

	"github.com/zkotp-io/zkotp/internal/authz"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.authz.enabled") {
		if err := authz.New(authz.Dependency{
			DBConn:      a.dbConn,
			Router:      a.router,
			Idempotency: a.idemp,
			Config:      a.config,
			Instrument:  a.ins,
			Nonce:       a.nonce,
			Clock:       a.clock,
			Validator:   a.validator,
			Vault:       a.vault,
			OTP:         a.otp,
			Assembler:   a.assembler,
			ProvePool:   a.provePool,
			Ledger:      a.ledgerHost,
		}); err != nil {
			slog.Error("failed to init module authz", "error", err)
			os.Exit(1)
		}
	}
}
