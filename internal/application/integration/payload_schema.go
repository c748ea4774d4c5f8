package integration

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/erp/shopify-connector/internal/domain/integration"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://schemas.shopify-connector.local/"

// PayloadValidator checks stored payloads against the JSON Schema of their kind.
// Payloads are validated when enqueued and again when drained.
type PayloadValidator struct {
	schemas map[integration.EntityKind]*jsonschema.Schema
}

// NewPayloadValidator compiles the embedded schemas
func NewPayloadValidator() (*PayloadValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	v := &PayloadValidator{schemas: make(map[integration.EntityKind]*jsonschema.Schema, len(integration.AllEntityKinds))}
	for _, kind := range integration.AllEntityKinds {
		file := "schemas/" + kind.String() + ".json"
		data, err := schemaFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", file, err)
		}
		url := schemaBaseURL + kind.String() + ".json"
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", file, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", file, err)
		}
		v.schemas[kind] = schema
	}
	return v, nil
}

// MustPayloadValidator is NewPayloadValidator for wiring code; the schemas are embedded
func MustPayloadValidator() *PayloadValidator {
	v, err := NewPayloadValidator()
	if err != nil {
		panic(err)
	}
	return v
}

// Validate reports ErrMalformedPayload when raw is not valid JSON or does not
// satisfy the kind's schema
func (v *PayloadValidator) Validate(kind integration.EntityKind, raw json.RawMessage) error {
	schema, ok := v.schemas[kind]
	if !ok {
		return integration.ErrQueueInvalidKind
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrMalformedPayload, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", integration.ErrMalformedPayload, err)
	}
	return nil
}
