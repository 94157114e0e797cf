// Package apispec embeds the OpenAPI document for the HTTP surface.
package apispec

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var document []byte

// Raw returns the document as served at /openapi.yaml.
func Raw() []byte {
	return document
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
}

// Schema returns a named component schema.
func Schema(doc *openapi3.T, name string) (*openapi3.Schema, error) {
	if doc.Components == nil {
		return nil, fmt.Errorf("schema %q: document has no components", name)
	}
	ref, ok := doc.Components.Schemas[name]
	if !ok || ref.Value == nil {
		return nil, fmt.Errorf("schema %q not found", name)
	}
	return ref.Value, nil
}
