package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Cipher seals and opens per-account OTP secrets with AES-256-GCM.
//
// The encryption key is derived from a server-held master password with
// PBKDF2-SHA256, salted with the account id. Confidentiality rests on the
// master password alone; the salt only separates keys between accounts.
type Cipher struct {
	master []byte
}

// Blob format (binary):
// [0..1]   uint16 version (currently 1)
// [2..13]  12-byte random nonce
// [14..]   gcm.Seal output (ciphertext + tag)
const blobVersion uint16 = 1

const (
	gcmNonceSize = 12
	aesKeyLen    = 32
	kdfRounds    = 100_000
)

var (
	// ErrMasterPasswordEmpty indicates the cipher was built without a master password.
	ErrMasterPasswordEmpty = errors.New("vault: master password is empty")
	// ErrSecretEmpty indicates an empty secret input.
	ErrSecretEmpty = errors.New("vault: secret is empty")
	// ErrBlobTooShort indicates a truncated ciphertext blob.
	ErrBlobTooShort = errors.New("vault: ciphertext blob too short")
	// ErrUnsupportedBlobVersion indicates an unknown blob version prefix.
	ErrUnsupportedBlobVersion = errors.New("vault: unsupported blob version")
	// ErrDecryptFailed indicates decryption failure: corrupt blob or wrong master key.
	// Callers must treat it as fatal for the request and never swallow it.
	ErrDecryptFailed = errors.New("vault: decrypt failed")
)

// NewCipher constructs a Cipher from the server master password.
func NewCipher(masterPassword string) (*Cipher, error) {
	if masterPassword == "" {
		return nil, ErrMasterPasswordEmpty
	}
	return &Cipher{master: []byte(masterPassword)}, nil
}

// key derives the per-account AES key. The account id is the salt, so two
// accounts sharing a secret still produce unrelated ciphertexts.
func (c *Cipher) key(accountID string) []byte {
	return pbkdf2.Key(c.master, []byte(accountID), kdfRounds, aesKeyLen, sha256.New)
}

// Seal encrypts secret for accountID. A fresh random nonce is drawn per call,
// so repeated Seal calls over the same secret yield different blobs.
func (c *Cipher) Seal(accountID string, secret []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, ErrSecretEmpty
	}

	gcm, err := c.gcm(accountID)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("vault: nonce generation failed: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, secret, []byte(accountID))

	out := make([]byte, 2+gcmNonceSize+len(sealed))
	binary.BigEndian.PutUint16(out[0:2], blobVersion)
	copy(out[2:2+gcmNonceSize], nonce)
	copy(out[2+gcmNonceSize:], sealed)

	return out, nil
}

// Open decrypts a blob previously produced by Seal for the same account.
func (c *Cipher) Open(accountID string, blob []byte) ([]byte, error) {
	if len(blob) < 2+gcmNonceSize+1 {
		return nil, ErrBlobTooShort
	}

	version := binary.BigEndian.Uint16(blob[0:2])
	if version != blobVersion {
		return nil, fmt.Errorf("vault: blob version %d: %w", version, ErrUnsupportedBlobVersion)
	}

	gcm, err := c.gcm(accountID)
	if err != nil {
		return nil, err
	}

	nonce := blob[2 : 2+gcmNonceSize]
	sealed := blob[2+gcmNonceSize:]

	secret, err := gcm.Open(nil, nonce, sealed, []byte(accountID))
	if err != nil {
		// Do not leak whether the blob was tampered with or the key was wrong.
		return nil, ErrDecryptFailed
	}
	return secret, nil
}

func (c *Cipher) gcm(accountID string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key(accountID))
	if err != nil {
		return nil, fmt.Errorf("vault: aes init failed: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: gcm init failed: %w", err)
	}
	return gcm, nil
}
