package memdb

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zkotp-io/zkotp/internal/authz/entity"
	"github.com/zkotp-io/zkotp/internal/pkg/goerror"
)

func TestCreateAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	acc := entity.Account{ID: "alice", SecretBlob: []byte{1, 2, 3}, CreatedAt: time.Now()}
	if err := s.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "alice" || !bytes.Equal(got.SecretBlob, []byte{1, 2, 3}) {
		t.Fatalf("got %+v", got)
	}
}

func TestCreateDuplicate(t *testing.T) {
	s := New()
	ctx := context.Background()

	acc := entity.Account{ID: "alice", SecretBlob: []byte{1}}
	if err := s.CreateAccount(ctx, acc); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateAccount(ctx, acc); !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("duplicate create: got %v, want ErrConflict", err)
	}
}

func TestGetMissing(t *testing.T) {
	s := New()
	if _, err := s.GetAccount(context.Background(), "nobody"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestBlobsAreCopied(t *testing.T) {
	s := New()
	ctx := context.Background()

	blob := []byte{1, 2, 3}
	if err := s.CreateAccount(ctx, entity.Account{ID: "alice", SecretBlob: blob}); err != nil {
		t.Fatalf("create: %v", err)
	}
	blob[0] = 0xff

	got, err := s.GetAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SecretBlob[0] != 1 {
		t.Fatal("store must not alias the caller's blob")
	}

	got.SecretBlob[1] = 0xff
	again, _ := s.GetAccount(ctx, "alice")
	if again.SecretBlob[1] != 2 {
		t.Fatal("reads must not alias stored bytes")
	}
}

func TestClose(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.CreateAccount(ctx, entity.Account{ID: "alice", SecretBlob: []byte{1}})
	if err := s.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := s.GetAccount(ctx, "alice"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound after close", err)
	}
}
