package zkp

import (
	"context"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	gnarklogger "github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

// Groth16Oracle implements both oracle boundaries with a gnark groth16
// instance over BN254: the compiled constraint system with its proving key on
// the Prove side, and the verification key on the Verify side.
type Groth16Oracle struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

// NewGroth16Oracle compiles the authorization circuit and runs the trusted
// setup once; the result is held for the process lifetime. The setup draws
// fresh randomness, so proofs only verify against the oracle instance that
// produced them.
func NewGroth16Oracle() (*Groth16Oracle, error) {
	// gnark logs compilation progress through its own zerolog logger;
	// drop it so it does not bypass the application's slog handler.
	gnarklogger.Set(zerolog.New(io.Discard).Level(zerolog.Disabled))

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &AuthorizationCircuit{})
	if err != nil {
		return nil, fmt.Errorf("zkp: compile circuit: %w", err)
	}

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, fmt.Errorf("zkp: trusted setup: %w", err)
	}

	return &Groth16Oracle{ccs: ccs, pk: pk, vk: vk}, nil
}

// Prove generates a proof for the assignment. The context is consulted before
// the CPU-bound proving step so cancelled requests do not start proving.
func (o *Groth16Oracle) Prove(ctx context.Context, in Assignment) (*Proof, PublicSignals, error) {
	if err := ctx.Err(); err != nil {
		return nil, PublicSignals{}, err
	}

	assign, err := in.circuit()
	if err != nil {
		return nil, PublicSignals{}, err
	}

	w, err := frontend.NewWitness(assign, ecc.BN254.ScalarField())
	if err != nil {
		return nil, PublicSignals{}, fmt.Errorf("zkp: build witness: %w", err)
	}

	proof, err := groth16.Prove(o.ccs, o.pk, w)
	if err != nil {
		return nil, PublicSignals{}, fmt.Errorf("zkp: prove: %w", err)
	}

	p, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return nil, PublicSignals{}, fmt.Errorf("zkp: unexpected proof backend %T", proof)
	}

	return flattenProof(p), in.Signals, nil
}

// Verify checks a proof in call format against the five public signals.
// A structurally invalid proof or signal reports false with the parse error.
func (o *Groth16Oracle) Verify(proof CallProof, signals PublicSignals) (bool, error) {
	p, err := liftProof(proof)
	if err != nil {
		return false, err
	}

	pub, err := publicWitness(signals)
	if err != nil {
		return false, err
	}

	if err := groth16.Verify(p, o.vk, pub); err != nil {
		// gnark reports an invalid pairing as an error; for the oracle
		// boundary that is a clean "false", not a failure.
		return false, nil
	}
	return true, nil
}

// circuit maps the named assignment onto the circuit struct.
func (in Assignment) circuit() (*AuthorizationCircuit, error) {
	var c AuthorizationCircuit
	c.Secret = in.Secret
	c.OtpCode = in.OtpCode

	for i, name := range [signalCount]*frontend.Variable{
		&c.HashedSecret, &c.HashedOtp, &c.TimeStep, &c.ActionHash, &c.TxNonce,
	} {
		x, err := ParseSignal(in.Signals[i])
		if err != nil {
			return nil, err
		}
		*name = x
	}
	return &c, nil
}

func publicWitness(signals PublicSignals) (witness.Witness, error) {
	var c AuthorizationCircuit
	for i, v := range [signalCount]*frontend.Variable{
		&c.HashedSecret, &c.HashedOtp, &c.TimeStep, &c.ActionHash, &c.TxNonce,
	} {
		x, err := ParseSignal(signals[i])
		if err != nil {
			return nil, err
		}
		*v = x
	}

	w, err := frontend.NewWitness(&c, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return nil, fmt.Errorf("zkp: build public witness: %w", err)
	}
	return w, nil
}

// flattenProof renders the three group elements in the projective layout the
// proving-oracle boundary declares: affine coordinates plus the implicit
// projective third coordinate.
func flattenProof(p *groth16bn254.Proof) *Proof {
	return &Proof{
		A: [3]string{p.Ar.X.String(), p.Ar.Y.String(), "1"},
		B: [3][2]string{
			{p.Bs.X.A0.String(), p.Bs.X.A1.String()},
			{p.Bs.Y.A0.String(), p.Bs.Y.A1.String()},
			{"1", "0"},
		},
		C: [3]string{p.Krs.X.String(), p.Krs.Y.String(), "1"},
	}
}

// liftProof rebuilds the gnark proof object from the call format.
func liftProof(cp CallProof) (groth16.Proof, error) {
	var p groth16bn254.Proof

	coords := []struct {
		dst *fp.Element
		src string
	}{
		{&p.Ar.X, cp.A[0]}, {&p.Ar.Y, cp.A[1]},
		{&p.Bs.X.A0, cp.B[0][0]}, {&p.Bs.X.A1, cp.B[0][1]},
		{&p.Bs.Y.A0, cp.B[1][0]}, {&p.Bs.Y.A1, cp.B[1][1]},
		{&p.Krs.X, cp.C[0]}, {&p.Krs.Y, cp.C[1]},
	}
	for _, c := range coords {
		if _, err := c.dst.SetString(c.src); err != nil {
			return nil, fmt.Errorf("zkp: malformed proof coordinate: %w", err)
		}
	}

	if !p.Ar.IsOnCurve() || !p.Krs.IsOnCurve() || !p.Bs.IsOnCurve() {
		return nil, fmt.Errorf("zkp: proof point not on curve")
	}

	return &p, nil
}
