package inbound

import (
	"context"

	"github.com/zkotp-io/zkotp/internal/authz/usecase"
	"github.com/zkotp-io/zkotp/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	CheckRegistered(ctx context.Context, in usecase.CheckRegisteredInput) (*usecase.CheckRegisteredOutput, error)

	Authorize(ctx context.Context, in usecase.AuthorizeInput) (*usecase.AuthorizeOutput, error)
	Execute(ctx context.Context, in usecase.ExecuteInput) error

	GateSubmit(ctx context.Context, in usecase.GateSubmitInput) error
	GateStatus(ctx context.Context) (*usecase.GateStatusOutput, error)

	SetOwner(ctx context.Context, in usecase.AdminChangeInput) (*usecase.AdminChangeOutput, error)
	SetAdmin(ctx context.Context, in usecase.AdminChangeInput) (*usecase.AdminChangeOutput, error)
	SetSecretConfig(ctx context.Context, in usecase.AdminChangeInput) (*usecase.AdminChangeOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Enrollment
	r.POST("/api/v1/authz/register", end.Register)
	r.GET("/api/v1/authz/registered/:id", end.CheckRegistered)

	// Authorization flow
	r.POST("/api/v1/authz/authorize", end.Authorize)
	r.POST("/api/v1/authz/execute", end.Execute)

	// Boolean-gate variant
	r.POST("/api/v1/authz/gate", end.GateSubmit)
	r.GET("/api/v1/authz/gate", end.GateStatus)

	// Ledger administration (owner-only, enforced by the routine)
	r.POST("/api/v1/authz/admin/owner", end.SetOwner)
	r.POST("/api/v1/authz/admin/admin", end.SetAdmin)
	r.POST("/api/v1/authz/admin/secret-config", end.SetSecretConfig)
}
