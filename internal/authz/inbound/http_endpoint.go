package inbound

import (
	"context"

	"github.com/zkotp-io/zkotp/internal/authz/usecase"
	"github.com/zkotp-io/zkotp/internal/pkg/router"
)

// HTTPEndpoint exposes the authorization workflows over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// Register enrolls an account with its shared secret.
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		AccountID: req.AccountID,
		Secret:    req.Secret,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{
		AccountID:       resp.AccountID,
		ProvisioningURI: resp.ProvisioningURI,
	}, nil
}

// CheckRegistered reports whether an account id is enrolled.
func (h *HTTPEndpoint) CheckRegistered(r *router.Request) (any, error) {
	resp, err := h.uc.CheckRegistered(r.Context(), usecase.CheckRegisteredInput{
		AccountID: r.GetParam("id"),
	})
	if err != nil {
		return nil, err
	}

	return CheckRegisteredResponse{Registered: resp.Registered}, nil
}

// Authorize proves possession of a valid code bound to the requested action.
func (h *HTTPEndpoint) Authorize(r *router.Request) (any, error) {
	var req AuthorizeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Authorize(r.Context(), usecase.AuthorizeInput{
		AccountID: req.AccountID,
		OTP:       req.OTP,
		Target:    req.Target,
		Value:     req.Value,
		Payload:   req.Payload,
	})
	if err != nil {
		return nil, err
	}

	return AuthorizeResponse{
		Status:        "authorized",
		Proof:         resp.Authorization.Proof,
		PublicSignals: resp.Authorization.Signals,
	}, nil
}

// Execute submits an authorization to the ledger routine.
func (h *HTTPEndpoint) Execute(r *router.Request) (any, error) {
	var req ExecuteRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	err := h.uc.Execute(r.Context(), usecase.ExecuteInput{
		Target:         req.Target,
		Value:          req.Value,
		Payload:        req.Payload,
		Proof:          req.Proof,
		Signals:        req.PublicSignals,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return nil, err
	}

	return nil, nil
}

// GateSubmit drives the boolean-gate variant.
func (h *HTTPEndpoint) GateSubmit(r *router.Request) (any, error) {
	var req GateSubmitRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.GateSubmit(r.Context(), usecase.GateSubmitInput{
		Proof:   req.Proof,
		Signals: req.PublicSignals,
	}); err != nil {
		return nil, err
	}

	return nil, nil
}

// GateStatus reads the gate state.
func (h *HTTPEndpoint) GateStatus(r *router.Request) (any, error) {
	resp, err := h.uc.GateStatus(r.Context())
	if err != nil {
		return nil, err
	}

	return GateStatusResponse{Unlocked: resp.Unlocked}, nil
}

// SetOwner rotates the ledger owner.
func (h *HTTPEndpoint) SetOwner(r *router.Request) (any, error) {
	return h.adminChange(r, h.uc.SetOwner)
}

// SetAdmin rotates the ledger admin.
func (h *HTTPEndpoint) SetAdmin(r *router.Request) (any, error) {
	return h.adminChange(r, h.uc.SetAdmin)
}

// SetSecretConfig replaces the hashed-secret revocation stamp.
func (h *HTTPEndpoint) SetSecretConfig(r *router.Request) (any, error) {
	return h.adminChange(r, h.uc.SetSecretConfig)
}

func (h *HTTPEndpoint) adminChange(
	r *router.Request,
	op func(ctx context.Context, in usecase.AdminChangeInput) (*usecase.AdminChangeOutput, error),
) (any, error) {
	var req AdminChangeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := op(r.Context(), usecase.AdminChangeInput{
		Caller: req.Caller,
		Value:  req.Value,
	})
	if err != nil {
		return nil, err
	}

	return AdminChangeResponse{Field: resp.Field, Old: resp.Old, New: resp.New}, nil
}
