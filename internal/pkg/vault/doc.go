// Package vault encrypts durable per-account OTP secrets at rest.
//
// Secrets never leave the service unencrypted; business code stores the opaque
// blob produced by Seal and calls Open only when a secret is needed to derive
// a one-time code.
package vault
