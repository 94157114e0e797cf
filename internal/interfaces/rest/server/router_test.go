package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/application/mocks"
	"github.com/DanielPopoola/vpnshop-gateway/internal/application/services"
	"github.com/DanielPopoola/vpnshop-gateway/internal/config"
	"github.com/DanielPopoola/vpnshop-gateway/internal/credentials"
	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
	"github.com/DanielPopoola/vpnshop-gateway/internal/idempotency"
	"github.com/DanielPopoola/vpnshop-gateway/internal/initdata"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest/server"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	botToken       = "123456:TEST-token"
	webhookToken   = "hook-secret"
	internalSecret = "bot-secret"
)

type RouterTestSuite struct {
	suite.Suite
	gateway  *mocks.InvoiceGateway
	notifier *mocks.Notifier
	router   http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (suite *RouterTestSuite) SetupTest() {
	suite.gateway = mocks.NewInvoiceGateway(suite.T())
	suite.notifier = mocks.NewNotifier(suite.T())

	store := idempotency.NewStore(300 * time.Second)
	issuer := credentials.NewIssuer()
	ledger := application.NopLedger{}

	h := handlers.NewHandlers(
		services.NewOrderService(store, initdata.NewVerifier(botToken, 0, nil), suite.gateway, suite.notifier, false, nil),
		services.NewWebhookService(store, issuer, ledger, suite.notifier, services.WebhookConfig{Token: webhookToken}, nil),
		services.NewConfirmService(store, issuer, ledger, suite.notifier, internalSecret, nil),
		nil,
	)

	router, err := server.NewRouter(context.Background(), h, config.ServerConfig{
		RequestTimeout: 2 * time.Second,
		AllowedOrigins: []string{"https://miniapp.example"},
	}, webhookToken, discardLogger())
	suite.Require().NoError(err)
	suite.router = router
}

func (suite *RouterTestSuite) do(method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)

	var decoded map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func signedInitData(userID int64, queryID string) string {
	v := url.Values{}
	v.Set("user", `{"id":`+strconv.FormatInt(userID, 10)+`}`)
	v.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	v.Set("query_id", queryID)
	v.Set("hash", initdata.Sign(v, botToken))
	return v.Encode()
}

func orderBody(price, initData string) string {
	b, _ := json.Marshal(map[string]any{"plan": "1 месяц", "price": json.RawMessage(price), "initData": initData})
	return string(b)
}

func (suite *RouterTestSuite) Test_Health() {
	rec, body := suite.do(http.MethodGet, "/healthz", "", nil)

	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal(true, body["ok"])
}

func (suite *RouterTestSuite) Test_Order_CreatesAndDeduplicates() {
	t := suite.T()
	suite.gateway.On("CreateInvoice", mock.Anything, mock.MatchedBy(func(req application.InvoiceRequest) bool {
		return req.Amount.Equal(decimal.RequireFromString("5.5"))
	})).Return(&domain.Invoice{ID: "inv1", PayURL: "https://pay.example/inv1"}, nil).Once()
	suite.notifier.On("Send", mock.Anything, int64(42), mock.Anything).Return(true).Once()

	payload := orderBody("5.5", signedInitData(42, "q1"))

	rec, body := suite.do(http.MethodPost, "/api/order", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "https://pay.example/inv1", body["pay_url"])
	assert.Equal(t, true, body["verified"])
	assert.Equal(t, false, body["duplicate"])

	rec, body = suite.do(http.MethodPost, "/api/order", payload, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://pay.example/inv1", body["pay_url"])
	assert.Equal(t, true, body["duplicate"])
}

func (suite *RouterTestSuite) Test_Order_AcceptsStringPrice() {
	suite.gateway.On("CreateInvoice", mock.Anything, mock.Anything).
		Return(&domain.Invoice{ID: "inv2", PayURL: "https://pay.example/inv2"}, nil).Once()
	suite.notifier.On("Send", mock.Anything, int64(7), mock.Anything).Return(true).Once()

	rec, _ := suite.do(http.MethodPost, "/api/order", orderBody(`"12.00"`, signedInitData(7, "q2")), nil)

	suite.Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (suite *RouterTestSuite) Test_Order_RejectsBadBodies() {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing plan", `{"price":5,"initData":"x"}`},
		{"missing initData", `{"plan":"1 месяц","price":5}`},
		{"bad price", `{"plan":"1 месяц","price":"five","initData":"x"}`},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			rec, body := suite.do(http.MethodPost, "/api/order", tt.body, nil)
			suite.Equal(http.StatusBadRequest, rec.Code)
			suite.Equal(false, body["ok"])
			suite.Equal(domain.ErrCodeBadRequest, body["error"])
		})
	}
	suite.gateway.AssertNotCalled(suite.T(), "CreateInvoice", mock.Anything, mock.Anything)
}

func (suite *RouterTestSuite) Test_Order_InvoiceFailure() {
	suite.gateway.On("CreateInvoice", mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()

	rec, body := suite.do(http.MethodPost, "/api/order", orderBody("5", signedInitData(42, "q3")), nil)

	suite.Equal(http.StatusInternalServerError, rec.Code)
	suite.Equal(domain.ErrCodeInvoiceFailed, body["error"])
}

func (suite *RouterTestSuite) Test_Webhook_IssuesOnce() {
	t := suite.T()
	suite.notifier.On("Send", mock.Anything, int64(42), mock.Anything).Return(true).Once()
	headers := map[string]string{handlers.WebhookTokenHeader: webhookToken}
	payload := `{"invoice_id":"inv9","status":"paid","hidden_message":"User ID: 42","description":"1 месяц"}`

	rec, body := suite.do(http.MethodPost, "/cryptopay/webhook", payload, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["sent"])
	assert.NotEmpty(t, body["creds_id"])

	rec, body = suite.do(http.MethodPost, "/cryptopay/webhook", payload, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.NoteAlreadyProcessed, body["note"])
	assert.NotContains(t, body, "creds_id")
}

func (suite *RouterTestSuite) Test_Webhook_UnpaidEchoesStatus() {
	headers := map[string]string{handlers.WebhookTokenHeader: webhookToken}

	rec, body := suite.do(http.MethodPost, "/cryptopay/webhook", `{"invoice":{"invoice_id":1,"status":"expired"}}`, headers)

	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("expired", body["status"])
}

func (suite *RouterTestSuite) Test_Webhook_Rejections() {
	rec, body := suite.do(http.MethodPost, "/cryptopay/webhook", `{"invoice_id":"inv1","status":"paid"}`, nil)
	suite.Equal(http.StatusForbidden, rec.Code)
	suite.Equal(domain.ErrCodeUnauthorized, body["error"])

	rec, _ = suite.do(http.MethodPost, "/cryptopay/webhook", `[1,2]`, map[string]string{handlers.WebhookTokenHeader: webhookToken})
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *RouterTestSuite) Test_Webhook_TokenCheckedBeforeBody() {
	for _, body := range []string{`[1,2]`, `{`, `"paid"`} {
		rec, decoded := suite.do(http.MethodPost, "/cryptopay/webhook", body, map[string]string{handlers.WebhookTokenHeader: "wrong"})
		suite.Equal(http.StatusForbidden, rec.Code, body)
		suite.Equal(domain.ErrCodeUnauthorized, decoded["error"], body)
	}
}

func (suite *RouterTestSuite) Test_Confirm() {
	t := suite.T()
	suite.notifier.On("Send", mock.Anything, int64(77), mock.Anything).Return(false).Once()
	headers := map[string]string{handlers.InternalSecretHeader: internalSecret}
	payload := `{"user_id":77,"plan":"3 месяца","amount":"250","charge_id":"ch_1","language_code":"en"}`

	rec, body := suite.do(http.MethodPost, "/api/confirm_stars", payload, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, body["sent"])
	assert.NotEmpty(t, body["creds_id"])

	rec, body = suite.do(http.MethodPost, "/api/confirm_stars", payload, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.NoteAlreadyProcessed, body["note"])
}

func (suite *RouterTestSuite) Test_Confirm_SecretCheckedBeforeBody() {
	rec, body := suite.do(http.MethodPost, "/api/confirm_stars", `{"plan":"1 месяц"}`, map[string]string{handlers.InternalSecretHeader: "wrong"})
	suite.Equal(http.StatusForbidden, rec.Code)
	suite.Equal(domain.ErrCodeUnauthorized, body["error"])

	rec, body = suite.do(http.MethodPost, "/api/confirm_stars", `{"plan":"1 месяц"}`, map[string]string{handlers.InternalSecretHeader: internalSecret})
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Equal(domain.ErrCodeBadRequest, body["error"])
}

func (suite *RouterTestSuite) Test_CORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/order", nil)
	req.Header.Set("Origin", "https://miniapp.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	suite.router.ServeHTTP(rec, req)

	suite.Equal("https://miniapp.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func (suite *RouterTestSuite) Test_Docs() {
	rec, _ := suite.do(http.MethodGet, "/openapi.yaml", "", nil)
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), "openapi: 3.0.3")

	rec, body := suite.do(http.MethodGet, "/swagger/doc.json", "", nil)
	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("2.0", body["swagger"])
}
