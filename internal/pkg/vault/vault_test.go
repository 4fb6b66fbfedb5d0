package vault

import (
	"bytes"
	"errors"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	c, err := NewCipher("master-password")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	secret := []byte("12345678901234567890")
	blob, err := c.Seal("alice@example.com", secret)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	got, err := c.Open("alice@example.com", blob)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(got, secret) {
		t.Fatalf("open: got %q, want %q", got, secret)
	}
}

func TestSealProducesFreshCiphertext(t *testing.T) {
	c, _ := NewCipher("master-password")

	a, err := c.Seal("alice", []byte("secret-bytes"))
	if err != nil {
		t.Fatalf("seal a: %v", err)
	}
	b, err := c.Seal("alice", []byte("secret-bytes"))
	if err != nil {
		t.Fatalf("seal b: %v", err)
	}

	if bytes.Equal(a, b) {
		t.Fatal("two seals of the same secret must differ")
	}
}

func TestOpenWrongAccount(t *testing.T) {
	c, _ := NewCipher("master-password")

	blob, err := c.Seal("alice", []byte("secret-bytes"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	if _, err := c.Open("bob", blob); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("open with wrong account: got %v, want ErrDecryptFailed", err)
	}
}

func TestOpenWrongMasterPassword(t *testing.T) {
	c1, _ := NewCipher("master-password")
	c2, _ := NewCipher("other-password")

	blob, err := c1.Seal("alice", []byte("secret-bytes"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	if _, err := c2.Open("alice", blob); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("open with wrong master: got %v, want ErrDecryptFailed", err)
	}
}

func TestOpenTamperedBlob(t *testing.T) {
	c, _ := NewCipher("master-password")

	blob, err := c.Seal("alice", []byte("secret-bytes"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	blob[len(blob)-1] ^= 0xff
	if _, err := c.Open("alice", blob); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("open tampered blob: got %v, want ErrDecryptFailed", err)
	}
}

func TestOpenRejectsBadInput(t *testing.T) {
	c, _ := NewCipher("master-password")

	if _, err := c.Open("alice", []byte{0x00, 0x01}); !errors.Is(err, ErrBlobTooShort) {
		t.Fatalf("short blob: got %v, want ErrBlobTooShort", err)
	}

	blob, _ := c.Seal("alice", []byte("secret-bytes"))
	blob[0], blob[1] = 0x00, 0x07
	if _, err := c.Open("alice", blob); !errors.Is(err, ErrUnsupportedBlobVersion) {
		t.Fatalf("bad version: got %v, want ErrUnsupportedBlobVersion", err)
	}
}

func TestNewCipherEmptyMaster(t *testing.T) {
	if _, err := NewCipher(""); !errors.Is(err, ErrMasterPasswordEmpty) {
		t.Fatalf("got %v, want ErrMasterPasswordEmpty", err)
	}
}

func TestSealEmptySecret(t *testing.T) {
	c, _ := NewCipher("master-password")
	if _, err := c.Seal("alice", nil); !errors.Is(err, ErrSecretEmpty) {
		t.Fatalf("got %v, want ErrSecretEmpty", err)
	}
}
