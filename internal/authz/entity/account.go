package entity

import "time"

// Account binds an account identifier to its encrypted OTP secret. The secret
// blob is opaque ciphertext; re-registration is the only way to change it.
type Account struct {
	ID         string
	SecretBlob []byte
	CreatedAt  time.Time
}
