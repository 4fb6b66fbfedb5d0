package otpcode

import (
	"crypto/subtle"
	"encoding/base32"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/pquerna/otp/totp"
)

// DefaultPeriod is the standard TOTP time step in seconds.
const DefaultPeriod uint64 = 30

// Engine derives time-stepped one-time codes from raw secret bytes.
//
// A code is HOTP (RFC 4226, HMAC-SHA1 with dynamic truncation) computed over
// the 8-byte big-endian time step floor(unix/period), which is exactly TOTP
// (RFC 6238) with an explicit step. Pure and deterministic; no I/O.
type Engine struct {
	issuer string
	period uint64
}

// NewEngine constructs an Engine. A zero period falls back to the common
// 30-second step.
func NewEngine(issuer string, period uint64) *Engine {
	if period == 0 {
		period = DefaultPeriod
	}
	return &Engine{issuer: issuer, period: period}
}

// Step returns the time step for the given instant.
func (e *Engine) Step(at time.Time) uint64 {
	return uint64(at.Unix()) / e.period
}

// Period returns the step length in seconds.
func (e *Engine) Period() uint64 {
	return e.period
}

// Code returns the 6-digit code for secret at the given time step,
// zero-padded to 6 characters.
func (e *Engine) Code(secret []byte, step uint64) (string, error) {
	return hotp.GenerateCodeCustom(encodeSecret(secret), step, hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}

// Matches reports whether a user-supplied code equals the code for secret at
// step. Comparison is constant time.
func (e *Engine) Matches(code string, secret []byte, step uint64) (bool, error) {
	want, err := e.Code(secret, step)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(want)) == 1, nil
}

// ProvisioningURI returns the otpauth:// URI for enrolling secret into an
// authenticator app under accountName.
func (e *Engine) ProvisioningURI(accountName string, secret []byte) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: accountName,
		Period:      uint(e.period),
		Secret:      secret,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return key.URL(), nil
}

func encodeSecret(secret []byte) string {
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret)
}
