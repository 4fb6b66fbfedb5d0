// Package zkp holds the zero-knowledge side of the authorization protocol:
// field-element derivation, the hash binding between secret, one-time code
// and requested action, the groth16 proving/verifying oracle over BN254, and
// the assembler that turns a request into a ledger-ready authorization.
//
// The central correctness risk lives here: the off-circuit MiMC and the
// in-circuit MiMC gadget, and the off-ledger and on-ledger action hashes,
// must agree bit for bit. Both pairs share one implementation each and are
// pinned by conformance tests.
package zkp
