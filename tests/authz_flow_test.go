package tests

import (
	"encoding/base32"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const flowSecret = "12345678901234567890"

func currentCode(t *testing.T, secret string, period uint64) string {
	t.Helper()

	key := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(secret))
	step := uint64(time.Now().Unix()) / period
	code, err := hotp.GenerateCodeCustom(key, step, hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}

	return code
}

type authorizeData struct {
	Status        string          `json:"status"`
	Proof         json.RawMessage `json:"proof"`
	PublicSignals json.RawMessage `json:"public_signals"`
}

func TestAuthzFullFlow(t *testing.T) {
	accountID := fmt.Sprintf("flow-%d", time.Now().UnixNano())

	// Register
	status, body := doJSON(t, http.MethodPost, "/api/v1/authz/register", map[string]any{
		"account_id": accountID,
		"secret":     flowSecret,
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", status, body)
	}

	var reg struct {
		AccountID       string `json:"account_id"`
		ProvisioningURI string `json:"provisioning_uri"`
	}
	decodeSuccess(t, body, &reg)
	if reg.AccountID != accountID {
		t.Fatalf("register: expected account id %q, got %q", accountID, reg.AccountID)
	}
	if reg.ProvisioningURI == "" {
		t.Fatal("register: expected a provisioning uri")
	}

	// Duplicate registration must be rejected
	status, body = doJSON(t, http.MethodPost, "/api/v1/authz/register", map[string]any{
		"account_id": accountID,
		"secret":     flowSecret,
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d: %s", status, body)
	}

	// Registered check
	status, body = doJSON(t, http.MethodGet, "/api/v1/authz/registered/"+accountID, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("registered: expected 200, got %d: %s", status, body)
	}
	var chk struct {
		Registered bool `json:"registered"`
	}
	decodeSuccess(t, body, &chk)
	if !chk.Registered {
		t.Fatal("registered: expected true")
	}

	// Authorize with the current code. Retried once in case the time step
	// rolls over between code generation and the server-side check.
	var auth authorizeData
	for attempt := 0; attempt < 2; attempt++ {
		status, body = doJSON(t, http.MethodPost, "/api/v1/authz/authorize", map[string]any{
			"account_id": accountID,
			"otp":        currentCode(t, flowSecret, 30),
			"target":     "transfer",
			"value":      250,
		}, nil)
		if status == http.StatusOK {
			break
		}
	}
	if status != http.StatusOK {
		t.Fatalf("authorize: expected 200, got %d: %s", status, body)
	}
	decodeSuccess(t, body, &auth)
	if auth.Status != "authorized" {
		t.Fatalf("authorize: expected status authorized, got %q", auth.Status)
	}

	// Execute the authorized action
	execPayload := map[string]any{
		"target":         "transfer",
		"value":          250,
		"proof":          auth.Proof,
		"public_signals": auth.PublicSignals,
	}
	status, body = doJSON(t, http.MethodPost, "/api/v1/authz/execute", execPayload, nil)
	if status != http.StatusNoContent {
		t.Fatalf("execute: expected 204, got %d: %s", status, body)
	}

	// Replaying the same proof must burn on the nonce
	status, body = doJSON(t, http.MethodPost, "/api/v1/authz/execute", execPayload, nil)
	if status != http.StatusConflict {
		t.Fatalf("execute replay: expected 409, got %d: %s", status, body)
	}
	if env := decodeError(t, body); env.Message != "authorization already spent" {
		t.Fatalf("execute replay: unexpected message %q", env.Message)
	}
}

func TestAuthzWrongCode(t *testing.T) {
	accountID := fmt.Sprintf("wrong-%d", time.Now().UnixNano())

	status, body := doJSON(t, http.MethodPost, "/api/v1/authz/register", map[string]any{
		"account_id": accountID,
		"secret":     flowSecret,
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", status, body)
	}

	status, body = doJSON(t, http.MethodPost, "/api/v1/authz/authorize", map[string]any{
		"account_id": accountID,
		"otp":        "000000",
		"target":     "transfer",
		"value":      1,
	}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("authorize: expected 401, got %d: %s", status, body)
	}
	if env := decodeError(t, body); env.Message != "invalid code" {
		t.Fatalf("authorize: unexpected message %q", env.Message)
	}
}

func TestAuthzMismatchedAction(t *testing.T) {
	accountID := fmt.Sprintf("mismatch-%d", time.Now().UnixNano())

	status, body := doJSON(t, http.MethodPost, "/api/v1/authz/register", map[string]any{
		"account_id": accountID,
		"secret":     flowSecret,
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", status, body)
	}

	var auth authorizeData
	for attempt := 0; attempt < 2; attempt++ {
		status, body = doJSON(t, http.MethodPost, "/api/v1/authz/authorize", map[string]any{
			"account_id": accountID,
			"otp":        currentCode(t, flowSecret, 30),
			"target":     "transfer",
			"value":      100,
		}, nil)
		if status == http.StatusOK {
			break
		}
	}
	if status != http.StatusOK {
		t.Fatalf("authorize: expected 200, got %d: %s", status, body)
	}
	decodeSuccess(t, body, &auth)

	// Executing a different action with the same proof must be refused
	status, body = doJSON(t, http.MethodPost, "/api/v1/authz/execute", map[string]any{
		"target":         "transfer",
		"value":          999,
		"proof":          auth.Proof,
		"public_signals": auth.PublicSignals,
	}, nil)
	if status != http.StatusForbidden {
		t.Fatalf("execute: expected 403, got %d: %s", status, body)
	}
	if env := decodeError(t, body); env.Message != "proof does not authorize this action" {
		t.Fatalf("execute: unexpected message %q", env.Message)
	}
}

func TestAuthzGate(t *testing.T) {
	accountID := fmt.Sprintf("gate-%d", time.Now().UnixNano())

	status, body := doJSON(t, http.MethodPost, "/api/v1/authz/register", map[string]any{
		"account_id": accountID,
		"secret":     flowSecret,
	}, nil)
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", status, body)
	}

	var auth authorizeData
	for attempt := 0; attempt < 2; attempt++ {
		status, body = doJSON(t, http.MethodPost, "/api/v1/authz/authorize", map[string]any{
			"account_id": accountID,
			"otp":        currentCode(t, flowSecret, 30),
			"target":     "gate",
			"value":      0,
		}, nil)
		if status == http.StatusOK {
			break
		}
	}
	if status != http.StatusOK {
		t.Fatalf("authorize: expected 200, got %d: %s", status, body)
	}
	decodeSuccess(t, body, &auth)

	status, body = doJSON(t, http.MethodPost, "/api/v1/authz/gate", map[string]any{
		"proof":          auth.Proof,
		"public_signals": auth.PublicSignals,
	}, nil)
	if status != http.StatusNoContent {
		t.Fatalf("gate submit: expected 204, got %d: %s", status, body)
	}

	status, body = doJSON(t, http.MethodGet, "/api/v1/authz/gate", nil, nil)
	if status != http.StatusOK {
		t.Fatalf("gate status: expected 200, got %d: %s", status, body)
	}
	var gate struct {
		Unlocked bool `json:"unlocked"`
	}
	decodeSuccess(t, body, &gate)
	if !gate.Unlocked {
		t.Fatal("gate status: expected unlocked")
	}
}
