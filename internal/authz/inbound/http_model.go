package inbound

import "github.com/zkotp-io/zkotp/internal/zkp"

type RegisterRequest struct {
	AccountID string `json:"account_id"`
	Secret    string `json:"secret"`
}

type RegisterResponse struct {
	AccountID       string `json:"account_id"`
	ProvisioningURI string `json:"provisioning_uri"`
}

func (RegisterResponse) StatusCode() int { return 201 }

type CheckRegisteredResponse struct {
	Registered bool `json:"registered"`
}

type AuthorizeRequest struct {
	AccountID string `json:"account_id"`
	OTP       string `json:"otp"`
	Target    string `json:"target"`
	Value     uint64 `json:"value"`
	Payload   []byte `json:"payload,omitempty"`
}

type AuthorizeResponse struct {
	Status        string             `json:"status"`
	Proof         zkp.CallProof      `json:"proof"`
	PublicSignals zkp.PublicSignals  `json:"public_signals"`
}

type ExecuteRequest struct {
	Target        string            `json:"target"`
	Value         uint64            `json:"value"`
	Payload       []byte            `json:"payload,omitempty"`
	Proof         zkp.CallProof     `json:"proof"`
	PublicSignals zkp.PublicSignals `json:"public_signals"`
}

type GateSubmitRequest struct {
	Proof         zkp.CallProof     `json:"proof"`
	PublicSignals zkp.PublicSignals `json:"public_signals"`
}

type GateStatusResponse struct {
	Unlocked bool `json:"unlocked"`
}

type AdminChangeRequest struct {
	Caller string `json:"caller"`
	Value  string `json:"value"`
}

type AdminChangeResponse struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}
