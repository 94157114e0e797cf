package docs_test

import (
	"encoding/json"
	"testing"

	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest/docs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestRegisteredDocIsValidJSON(t *testing.T) {
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Swagger string                    `json:"swagger"`
		Info    map[string]any            `json:"info"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "2.0", doc.Swagger)
	assert.Equal(t, "vpnshop gateway", doc.Info["title"])
	assert.Contains(t, doc.Paths, "/api/order")
	assert.Contains(t, doc.Paths, "/cryptopay/webhook")
	assert.Contains(t, doc.Paths, "/api/confirm_stars")
}
