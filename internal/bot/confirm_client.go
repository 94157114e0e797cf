package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const internalSecretHeader = "X-Internal-Secret"

type ConfirmRequest struct {
	UserID       int64           `json:"user_id"`
	Plan         string          `json:"plan"`
	Amount       decimal.Decimal `json:"amount"`
	ChargeID     string          `json:"charge_id,omitempty"`
	LanguageCode string          `json:"language_code,omitempty"`
}

type ConfirmResponse struct {
	OK      bool   `json:"ok"`
	Sent    bool   `json:"sent"`
	CredsID string `json:"creds_id"`
	Note    string `json:"note"`
	Error   string `json:"error"`
}

// Confirmer reports a settled Stars payment to the web service.
type Confirmer interface {
	Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error)
}

// ConfirmError is a response from the confirm endpoint that was not a
// success.
type ConfirmError struct {
	StatusCode int
	Code       string
}

func (e *ConfirmError) Error() string {
	return fmt.Sprintf("confirm rejected [%s] (status: %d)", e.Code, e.StatusCode)
}

func IsConfirmError(err error) (*ConfirmError, bool) {
	var confirmErr *ConfirmError
	ok := errors.As(err, &confirmErr)
	return confirmErr, ok
}

type ConfirmClient struct {
	endpoint   string
	secret     string
	httpClient *http.Client
}

func NewConfirmClient(hostURL, secret string, timeout time.Duration) *ConfirmClient {
	return &ConfirmClient{
		endpoint: strings.TrimRight(hostURL, "/") + "/api/confirm_stars",
		secret:   secret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *ConfirmClient) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		httpReq.Header.Set(internalSecretHeader, c.secret)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var out ConfirmResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode != http.StatusOK || decodeErr != nil || !out.OK {
		code := out.Error
		if code == "" {
			code = "unexpected_response"
		}
		return nil, &ConfirmError{StatusCode: resp.StatusCode, Code: code}
	}
	return &out, nil
}
