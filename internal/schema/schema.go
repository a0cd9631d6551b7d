// Package schema validates request documents against JSON Schemas.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
)

// Validator is a compiled JSON Schema.
type Validator struct {
	name   string
	schema *jsonschema.Schema
}

// Compile builds a validator from a schema expressed as a generic map.
func Compile(name string, schemaMap map[string]any) (*Validator, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{name: name, schema: s}, nil
}

func mustCompile(name string, schemaMap map[string]any) *Validator {
	v, err := Compile(name, schemaMap)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks a JSON document. Malformed JSON is InvalidInput; a schema
// mismatch is a Validation error.
func (v *Validator) Validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return common.InvalidInput(fmt.Sprintf("malformed JSON: %v", err))
	}
	return v.ValidateValue(doc)
}

// ValidateValue checks an already decoded document.
func (v *Validator) ValidateValue(doc any) error {
	if err := v.schema.Validate(doc); err != nil {
		return common.Validationf("%s: %v", v.name, err)
	}
	return nil
}

// ValidateStruct round-trips a Go value through JSON and validates it.
func (v *Validator) ValidateStruct(x any) error {
	b, err := json.Marshal(x)
	if err != nil {
		return common.InvalidInput(fmt.Sprintf("encode %s: %v", v.name, err))
	}
	return v.Validate(b)
}
