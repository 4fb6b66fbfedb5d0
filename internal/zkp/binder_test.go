package zkp

import (
	"errors"
	"math/big"
	"strings"
	"testing"
)

func TestHashActionDeterministic(t *testing.T) {
	a := Action{Target: "transfer", Value: 250, Payload: []byte("to:bob")}

	h1, err := HashAction(a)
	if err != nil {
		t.Fatalf("hash action: %v", err)
	}
	h2, err := HashAction(a)
	if err != nil {
		t.Fatalf("hash action: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("same action hashed differently: %s vs %s", h1, h2)
	}

	if _, err := ParseSignal(h1); err != nil {
		t.Fatalf("hash is not a canonical field element: %v", err)
	}
}

func TestHashActionDistinguishesComponents(t *testing.T) {
	base := Action{Target: "transfer", Value: 250, Payload: []byte("to:bob")}
	variants := []Action{
		{Target: "withdraw", Value: 250, Payload: []byte("to:bob")},
		{Target: "transfer", Value: 251, Payload: []byte("to:bob")},
		{Target: "transfer", Value: 250, Payload: []byte("to:eve")},
		{Target: "transfer", Value: 250},
	}

	want, err := HashAction(base)
	if err != nil {
		t.Fatalf("hash action: %v", err)
	}

	for i, v := range variants {
		got, err := HashAction(v)
		if err != nil {
			t.Fatalf("variant %d: %v", i, err)
		}
		if got == want {
			t.Fatalf("variant %d collided with the base action", i)
		}
	}
}

func TestHashActionTargetTooLong(t *testing.T) {
	_, err := HashAction(Action{Target: strings.Repeat("x", 33)})
	if !errors.Is(err, ErrTargetTooLong) {
		t.Fatalf("got %v, want ErrTargetTooLong", err)
	}

	// Exactly 32 bytes is still valid.
	if _, err := HashAction(Action{Target: strings.Repeat("x", 32)}); err != nil {
		t.Fatalf("32-byte target: %v", err)
	}
}

func TestHashFieldCanonical(t *testing.T) {
	h := HashField(big.NewInt(42))

	x, err := ParseSignal(h)
	if err != nil {
		t.Fatalf("digest is not a canonical field element: %v", err)
	}
	if x.Sign() == 0 {
		t.Fatal("digest of a nonzero input should not be zero")
	}

	if h != HashField(big.NewInt(42)) {
		t.Fatal("hash is not deterministic")
	}
	if h == HashField(big.NewInt(43)) {
		t.Fatal("adjacent inputs collided")
	}
}

func TestSecretToField(t *testing.T) {
	got := SecretToField([]byte{0x01, 0x00})
	if got.Cmp(big.NewInt(256)) != 0 {
		t.Fatalf("got %s, want 256", got)
	}

	// Values at or above r wrap around.
	over := new(big.Int).Add(FieldOrder(), big.NewInt(7))
	got = SecretToField(over.Bytes())
	if got.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("got %s, want 7", got)
	}
}

func TestParseSignal(t *testing.T) {
	if _, err := ParseSignal("12345"); err != nil {
		t.Fatalf("valid signal rejected: %v", err)
	}
	if _, err := ParseSignal("0"); err != nil {
		t.Fatalf("zero rejected: %v", err)
	}

	bad := []string{
		"",
		"abc",
		"-1",
		"0x12",
		FieldOrder().String(), // exactly r
	}
	for _, s := range bad {
		if _, err := ParseSignal(s); err == nil {
			t.Fatalf("signal %q should have been rejected", s)
		}
	}
}
