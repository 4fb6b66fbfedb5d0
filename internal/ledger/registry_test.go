package ledger

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/zkotp-io/zkotp/internal/zkp"
)

func TestRegistryDispatch(t *testing.T) {
	reg := NewCallRegistry()

	var got zkp.Action
	reg.Register("transfer", func(_ context.Context, a zkp.Action) error {
		got = a
		return nil
	})

	action := zkp.Action{Target: "transfer", Value: 250, Payload: []byte("to:bob")}
	if err := reg.Call(context.Background(), action); err != nil {
		t.Fatalf("call: %v", err)
	}
	if got.Value != 250 || string(got.Payload) != "to:bob" {
		t.Fatalf("handler received %+v", got)
	}
}

func TestRegistryUnknownTarget(t *testing.T) {
	reg := NewCallRegistry()

	err := reg.Call(context.Background(), zkp.Action{Target: "missing"})
	if err == nil {
		t.Fatal("unregistered target must fail without a fallback")
	}
}

func TestRegistryFallback(t *testing.T) {
	reg := NewCallRegistry()

	var fellBack bool
	reg.SetFallback(func(context.Context, zkp.Action) error {
		fellBack = true
		return nil
	})

	if err := reg.Call(context.Background(), zkp.Action{Target: "missing"}); err != nil {
		t.Fatalf("fallback call: %v", err)
	}
	if !fellBack {
		t.Fatal("fallback was not invoked")
	}
}

func TestRegistryHandlerErrorPropagates(t *testing.T) {
	reg := NewCallRegistry()

	fail := errors.New("downstream unavailable")
	reg.Register("transfer", func(context.Context, zkp.Action) error { return fail })

	if err := reg.Call(context.Background(), zkp.Action{Target: "transfer"}); !errors.Is(err, fail) {
		t.Fatalf("got %v, want handler error", err)
	}
}

func TestRegistryTargetsSorted(t *testing.T) {
	reg := NewCallRegistry()
	reg.Register("withdraw", LogCall)
	reg.Register("transfer", LogCall)
	reg.Register("mint", LogCall)

	want := []string{"mint", "transfer", "withdraw"}
	if got := reg.Targets(); !reflect.DeepEqual(got, want) {
		t.Fatalf("targets: got %v, want %v", got, want)
	}
}
