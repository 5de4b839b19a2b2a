// Package schema generates and enforces the JSON Schema for the manifest
// wire format. Schema validation is a shape check on untrusted bytes;
// the deep invariants (unique ids, required file sets) live on the
// entities themselves.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	invopop "github.com/invopop/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/modeldist-dev/modeldist-sdk/manifest/entities"
)

const schemaName = "manifest.schema.json"

// Generate reflects the JSON Schema from the manifest Go types.
func Generate() ([]byte, error) {
	reflector := new(invopop.Reflector)
	reflector.ExpandedStruct = true

	s := reflector.Reflect(&entities.Manifest{})
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal generated schema: %w", err)
	}
	return data, nil
}

var (
	compileOnce sync.Once
	compiled    *santhosh.Schema
	compileErr  error
)

func compiledSchema() (*santhosh.Schema, error) {
	compileOnce.Do(func() {
		data, err := Generate()
		if err != nil {
			compileErr = err
			return
		}
		compiled, compileErr = santhosh.CompileString(schemaName, string(data))
	})
	return compiled, compileErr
}

// Validate checks raw manifest bytes against the generated schema.
// Failures are structural errors: they are rejected before any
// cryptographic operation runs.
func Validate(data []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile manifest schema: %w", err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return &entities.StructuralError{Reason: "not valid JSON: " + err.Error()}
	}

	if err := sch.Validate(doc); err != nil {
		return &entities.StructuralError{Reason: err.Error()}
	}
	return nil
}
