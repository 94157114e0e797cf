package apispec_test

import (
	"context"
	"testing"

	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest/apispec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	doc, err := apispec.Load(context.Background())
	require.NoError(t, err)

	for _, path := range []string{"/api/order", "/cryptopay/webhook", "/api/confirm_stars", "/healthz"} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}

func TestOrderSchema(t *testing.T) {
	doc, err := apispec.Load(context.Background())
	require.NoError(t, err)
	schema, err := apispec.Schema(doc, "OrderRequest")
	require.NoError(t, err)

	tests := []struct {
		name  string
		body  map[string]any
		valid bool
	}{
		{"numeric price", map[string]any{"plan": "1 месяц", "price": 5.5, "initData": "x"}, true},
		{"string price", map[string]any{"plan": "1 месяц", "price": "5.50", "initData": "x"}, true},
		{"missing plan", map[string]any{"price": 5.5, "initData": "x"}, false},
		{"empty initData", map[string]any{"plan": "1 месяц", "price": 5.5, "initData": ""}, false},
		{"garbage price", map[string]any{"plan": "1 месяц", "price": "five", "initData": "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.VisitJSON(tt.body)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSchemaMissing(t *testing.T) {
	doc, err := apispec.Load(context.Background())
	require.NoError(t, err)

	_, err = apispec.Schema(doc, "Nope")
	assert.Error(t, err)
}
