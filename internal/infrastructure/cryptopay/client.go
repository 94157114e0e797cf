package cryptopay

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

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/config"
	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
)

const tokenHeader = "Crypto-Pay-API-Token"

type Client struct {
	baseURL    string
	apiToken   string
	asset      string
	expiresIn  time.Duration
	httpClient *http.Client
}

func NewClient(cfg config.CryptoPayConfig) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiToken:  cfg.APIToken,
		asset:     cfg.Asset,
		expiresIn: cfg.InvoiceExpiresIn,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

var _ application.InvoiceGateway = (*Client)(nil)

func (c *Client) CreateInvoice(ctx context.Context, req application.InvoiceRequest) (*domain.Invoice, error) {
	body := createInvoiceRequest{
		Asset:         c.asset,
		Amount:        req.Amount.String(),
		Description:   req.Description,
		HiddenMessage: req.HiddenMessage,
		Payload:       req.Payload,
		ExpiresIn:     int64(c.expiresIn / time.Second),
	}

	dto, err := sendRequest[createInvoiceRequest, invoiceDTO](c, ctx, "createInvoice", &body)
	if err != nil {
		return nil, err
	}

	inv := toDomain(*dto)
	if inv.PayURL == "" {
		return nil, &GatewayError{Op: "createInvoice", Err: errors.New("response has no pay url")}
	}
	return &inv, nil
}

func sendRequest[Req any, Resp any](c *Client, ctx context.Context, method string, reqBody *Req) (*Resp, error) {
	fail := func(status int, code string, err error) error {
		return &GatewayError{Op: method, Code: code, StatusCode: status, Err: err}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fail(0, "", fmt.Errorf("error marshalling json: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fail(0, "", fmt.Errorf("error creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(tokenHeader, c.apiToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fail(0, "", fmt.Errorf("error making request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fail(resp.StatusCode, "", fmt.Errorf("error reading response: %w", err))
	}

	var apiResp apiResponse[Resp]
	decodeErr := json.Unmarshal(raw, &apiResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		code := ""
		if decodeErr == nil && apiResp.Error != nil {
			code = apiResp.Error.Name
		}
		return nil, fail(resp.StatusCode, code, fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(raw))))
	}
	if decodeErr != nil {
		return nil, fail(resp.StatusCode, "", fmt.Errorf("error decoding json response: %w", decodeErr))
	}
	if !apiResp.OK {
		code := "unknown"
		if apiResp.Error != nil {
			code = apiResp.Error.Name
		}
		return nil, fail(resp.StatusCode, code, errors.New("api returned ok=false"))
	}
	if apiResp.Result == nil {
		return nil, fail(resp.StatusCode, "", errors.New("response has no result"))
	}

	return apiResp.Result, nil
}

func toDomain(d invoiceDTO) domain.Invoice {
	return domain.Invoice{
		ID:            string(d.InvoiceID),
		Status:        domain.ClassifyStatus(d.Status),
		RawStatus:     d.Status,
		Description:   d.Description,
		HiddenMessage: d.HiddenMessage,
		Payload:       d.Payload,
		PayURL:        d.payURL(),
	}
}
