package zkp

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// AuthorizationCircuit proves knowledge of a secret and a one-time code whose
// MiMC digests equal the published hashes, while binding the time step, the
// action hash and the transaction nonce as public inputs.
//
// Public variables are declared in protocol order; gnark assigns public
// witness positions by struct order, so this declaration order IS the
// five-tuple [hashedSecret, hashedOtp, timeStep, actionHash, txNonce] the
// verifying side expects. Do not reorder fields.
type AuthorizationCircuit struct {
	HashedSecret frontend.Variable `gnark:",public"`
	HashedOtp    frontend.Variable `gnark:",public"`
	TimeStep     frontend.Variable `gnark:",public"`
	ActionHash   frontend.Variable `gnark:",public"`
	TxNonce      frontend.Variable `gnark:",public"`

	Secret  frontend.Variable
	OtpCode frontend.Variable
}

// Define constrains the private witness to the published digests. TimeStep,
// ActionHash and TxNonce carry no in-circuit relation; they are bound into
// the proof as public inputs so the verifier pins them.
func (c *AuthorizationCircuit) Define(api frontend.API) error {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	h.Write(c.Secret)
	api.AssertIsEqual(h.Sum(), c.HashedSecret)

	h.Reset()
	h.Write(c.OtpCode)
	api.AssertIsEqual(h.Sum(), c.HashedOtp)

	api.AssertIsEqual(c.TimeStep, c.TimeStep)
	api.AssertIsEqual(c.ActionHash, c.ActionHash)
	api.AssertIsEqual(c.TxNonce, c.TxNonce)

	return nil
}
