package zkp

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"

	"github.com/zkotp-io/zkotp/internal/pkg/goerror"
)

// fieldOrder is the BN254 scalar field order r. Every field element in this
// package (hash digests, public signals, secret projections) is an integer
// reduced modulo r:
// 21888242871839275222246405745257275088548364400416034343698204186575808495617
var fieldOrder = ecc.BN254.ScalarField()

// FieldOrder returns a copy of the scalar field order.
func FieldOrder() *big.Int {
	return new(big.Int).Set(fieldOrder)
}

// SecretToField projects raw secret bytes onto the scalar field: the bytes
// interpreted as a big-endian integer, reduced mod r.
func SecretToField(secret []byte) *big.Int {
	x := new(big.Int).SetBytes(secret)
	return x.Mod(x, fieldOrder)
}

// ParseSignal parses a decimal public-signal string into a field element.
// Values outside [0, r) are rejected rather than silently reduced, since a
// non-canonical signal means producer and consumer disagree.
func ParseSignal(s string) (*big.Int, error) {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok || x.Sign() < 0 {
		return nil, goerror.NewInvalidFormat("public signal is not a decimal field element")
	}
	if x.Cmp(fieldOrder) >= 0 {
		return nil, goerror.NewInvalidFormat("public signal exceeds the field order")
	}
	return x, nil
}
