// Package ledger holds the ledger-resident authorization routine: the state
// machine that verifies a proof, checks the revocation stamp, binds the proof
// to one concrete action, burns the nonce and performs the call, plus the
// reduced boolean-gate variant and the serializing host wrapper.
package ledger
