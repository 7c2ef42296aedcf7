package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Verifier checks transaction signatures against a Solana JSON-RPC node.
type Verifier struct {
	rpcURL     string
	httpClient *http.Client
}

func NewVerifier(rpcURL string) *Verifier {
	return &Verifier{
		rpcURL: rpcURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type signatureStatus struct {
	ConfirmationStatus string `json:"confirmationStatus"`
	Err                any    `json:"err"`
}

type signatureStatusesResponse struct {
	Result struct {
		Value []*signatureStatus `json:"value"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// VerifySignature reports whether the signature belongs to a finalized,
// non-failed transaction. An unknown signature is simply not finalized.
func (v *Verifier) VerifySignature(ctx context.Context, sig string) (bool, error) {
	payload := rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getSignatureStatuses",
		Params: []interface{}{
			[]string{sig},
			map[string]bool{"searchTransactionHistory": true},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.rpcURL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("RPC error %d: %s", resp.StatusCode, string(data))
	}

	var parsed signatureStatusesResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return false, fmt.Errorf("unmarshal: %w", err)
	}
	if parsed.Error != nil {
		return false, fmt.Errorf("RPC error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}

	if len(parsed.Result.Value) == 0 || parsed.Result.Value[0] == nil {
		return false, nil
	}
	status := parsed.Result.Value[0]
	return status.ConfirmationStatus == "finalized" && status.Err == nil, nil
}
