// Package mocks holds testify mocks for the application ports.
package mocks

import (
	"context"

	"github.com/DanielPopoola/vpnshop-gateway/internal/application"
	"github.com/DanielPopoola/vpnshop-gateway/internal/domain"
	"github.com/stretchr/testify/mock"
)

type InvoiceGateway struct {
	mock.Mock
}

func NewInvoiceGateway(t mock.TestingT) *InvoiceGateway {
	m := &InvoiceGateway{}
	m.Test(t)
	return m
}

func (m *InvoiceGateway) CreateInvoice(ctx context.Context, req application.InvoiceRequest) (*domain.Invoice, error) {
	args := m.Called(ctx, req)
	inv, _ := args.Get(0).(*domain.Invoice)
	return inv, args.Error(1)
}

type Notifier struct {
	mock.Mock
}

func NewNotifier(t mock.TestingT) *Notifier {
	m := &Notifier{}
	m.Test(t)
	return m
}

func (m *Notifier) Send(ctx context.Context, chatID int64, text string) bool {
	return m.Called(ctx, chatID, text).Bool(0)
}

type IssuanceLedger struct {
	mock.Mock
}

func NewIssuanceLedger(t mock.TestingT) *IssuanceLedger {
	m := &IssuanceLedger{}
	m.Test(t)
	return m
}

func (m *IssuanceLedger) Record(ctx context.Context, rec application.IssuanceRecord) error {
	return m.Called(ctx, rec).Error(0)
}

type CredentialIssuer struct {
	mock.Mock
}

func NewCredentialIssuer(t mock.TestingT) *CredentialIssuer {
	m := &CredentialIssuer{}
	m.Test(t)
	return m
}

func (m *CredentialIssuer) Issue(plan string, userID int64) (domain.Credential, error) {
	args := m.Called(plan, userID)
	cred, _ := args.Get(0).(domain.Credential)
	return cred, args.Error(1)
}
