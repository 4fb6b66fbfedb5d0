package zkp

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"golang.org/x/crypto/sha3"
)

// Byte widths of the packed action encoding. The proof producer and the
// ledger routine recompute the same hash from the same widths; changing
// either silently breaks the action binding.
const (
	targetWidth = 32
	valueWidth  = 32
)

// ErrTargetTooLong indicates a target identifier longer than its fixed width.
var ErrTargetTooLong = errors.New("zkp: target identifier exceeds 32 bytes")

// HashField computes the MiMC digest of a single field element, returned as a
// decimal string. The parameterization matches the in-circuit MiMC gadget
// exactly; the two must never diverge or no proof will verify.
func HashField(x *big.Int) string {
	var e fr.Element
	e.SetBigInt(x)
	b := e.Bytes()

	h := mimc.NewMiMC()
	h.Write(b[:])
	return new(big.Int).SetBytes(h.Sum(nil)).String()
}

// Action is one concrete requested operation: a call to a target carrying a
// value and an opaque payload.
type Action struct {
	Target  string
	Value   uint64
	Payload []byte
}

// HashAction binds an action into a single field element: keccak-256 over the
// tight concatenation of the 32-byte zero-padded target identifier, the
// 32-byte big-endian value, and the variable-length payload, reduced mod r
// and rendered as a decimal string.
func HashAction(a Action) (string, error) {
	if len(a.Target) > targetWidth {
		return "", ErrTargetTooLong
	}

	var target [targetWidth]byte
	copy(target[targetWidth-len(a.Target):], a.Target)

	var value [valueWidth]byte
	binary.BigEndian.PutUint64(value[valueWidth-8:], a.Value)

	h := sha3.NewLegacyKeccak256()
	h.Write(target[:])
	h.Write(value[:])
	h.Write(a.Payload)

	x := new(big.Int).SetBytes(h.Sum(nil))
	return x.Mod(x, fieldOrder).String(), nil
}
