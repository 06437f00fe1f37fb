// Package schema provides JSON Schema building and validation utilities
// for configuration documents.
//
// # Quick Start
//
//	s := schema.MustCompile(schema.Closed(schema.Object(
//	    map[string]*schema.Property{
//	        "max_context_tokens": schema.Integer("Window size").Min(1),
//	        "trigger_at_percent": schema.Number("Trigger").ExclusiveMin(0).Max(1),
//	    },
//	    "max_context_tokens", // required
//	)))
//
//	var doc map[string]any
//	_ = yaml.Unmarshal(data, &doc)
//	if err := s.Validate(doc); err != nil {
//	    return err
//	}
//
// Documents decoded from YAML carry Go ints and nested maps; Validate
// normalizes them through JSON before validating, so any value that
// encoding/json can marshal is accepted.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema represents a JSON Schema definition.
// It provides both the raw map representation (for serialization)
// and a compiled validator (for runtime validation).
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the underlying map[string]any representation.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate validates data against the schema.
// Returns nil if valid, or a *ValidationError describing the failure.
func (s *Schema) Validate(data any) error {
	if s == nil || s.compiled == nil {
		return nil
	}

	normalized, err := normalize(data)
	if err != nil {
		return &ValidationError{Err: err}
	}

	if err := s.compiled.Validate(normalized); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// normalize converts data into the value shapes the validator expects
// (json.Number, []any, map[string]any) by round-tripping through JSON.
func normalize(data any) (any, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("document is not JSON-compatible: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
}

// ValidationError wraps a JSON Schema validation error with a cleaner message.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Compile compiles a raw schema map into a Schema with a compiled validator.
// Returns an error if the schema is invalid.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	// Marshal the schema to JSON for the compiler
	schemaJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	// Unmarshal into the format expected by jsonschema
	schemaData, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Schema{
		raw:      raw,
		compiled: compiled,
	}, nil
}

// MustCompile is like Compile but panics on error.
// Use this for schemas defined at init time.
func MustCompile(raw map[string]any) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// -----------------------------------------------------------------------------
// Schema Builders
// -----------------------------------------------------------------------------

// Object creates an object schema with the given properties.
// Pass property names as variadic arguments to mark them as required.
//
// Example:
//
//	schema.Object(map[string]*schema.Property{
//	    "name":    schema.String("Strategy name"),
//	    "keep_count": schema.Integer("Messages to keep"),
//	}, "name")
func Object(properties map[string]*Property, required ...string) map[string]any {
	props := make(map[string]any, len(properties))
	for name, prop := range properties {
		props[name] = prop.build()
	}

	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// Closed forbids keys not listed in an Object schema's properties, so
// that misspelled config keys are reported instead of ignored.
func Closed(object map[string]any) map[string]any {
	object["additionalProperties"] = false
	return object
}

// Property represents a property in an object schema.
type Property struct {
	typ          string
	description  string
	enum         []any
	minimum      *float64
	maximum      *float64
	exclusiveMin *float64
	properties   map[string]any
	required     []string
	closed       bool
	def          any // default value
}

func (p *Property) build() map[string]any {
	m := map[string]any{}

	if p.typ != "" {
		m["type"] = p.typ
	}
	if p.description != "" {
		m["description"] = p.description
	}
	if len(p.enum) > 0 {
		m["enum"] = p.enum
	}
	if p.minimum != nil {
		m["minimum"] = *p.minimum
	}
	if p.maximum != nil {
		m["maximum"] = *p.maximum
	}
	if p.exclusiveMin != nil {
		m["exclusiveMinimum"] = *p.exclusiveMin
	}
	if p.properties != nil {
		m["properties"] = p.properties
	}
	if len(p.required) > 0 {
		m["required"] = p.required
	}
	if p.closed {
		m["additionalProperties"] = false
	}
	if p.def != nil {
		m["default"] = p.def
	}

	return m
}

// String creates a string property.
//
// Example:
//
//	schema.String("Strategy name").Enum("keep_recent", "sliding_window")
func String(description string) *Property {
	return &Property{typ: "string", description: description}
}

// Integer creates an integer property.
//
// Example:
//
//	schema.Integer("Messages to keep").Min(1)
func Integer(description string) *Property {
	return &Property{typ: "integer", description: description}
}

// Number creates a number property (floating point).
//
// Example:
//
//	schema.Number("Trigger fraction").ExclusiveMin(0).Max(1)
func Number(description string) *Property {
	return &Property{typ: "number", description: description}
}

// Boolean creates a boolean property.
func Boolean(description string) *Property {
	return &Property{typ: "boolean", description: description}
}

// ObjectProperty creates a nested object property.
//
// Example:
//
//	schema.ObjectProperty("Strategy", map[string]*schema.Property{
//	    "name": schema.String("Strategy name"),
//	}, "name")
func ObjectProperty(
	description string,
	properties map[string]*Property,
	required ...string,
) *Property {
	props := make(map[string]any, len(properties))
	for name, prop := range properties {
		props[name] = prop.build()
	}
	return &Property{
		typ:         "object",
		description: description,
		properties:  props,
		required:    required,
	}
}

// Enum sets allowed values for the property.
func (p *Property) Enum(values ...any) *Property {
	p.enum = values
	return p
}

// Min sets the inclusive minimum for number/integer properties.
func (p *Property) Min(min float64) *Property {
	p.minimum = &min
	return p
}

// Max sets the inclusive maximum for number/integer properties.
func (p *Property) Max(max float64) *Property {
	p.maximum = &max
	return p
}

// ExclusiveMin sets an exclusive minimum for number/integer properties.
//
// Example:
//
//	schema.Number("Fraction").ExclusiveMin(0) // rejects 0, accepts 0.1
func (p *Property) ExclusiveMin(min float64) *Property {
	p.exclusiveMin = &min
	return p
}

// Closed forbids keys not listed in an object property's properties.
func (p *Property) Closed() *Property {
	p.closed = true
	return p
}

// Default sets the default value for the property.
// Defaults are documentation only; Validate does not apply them.
func (p *Property) Default(value any) *Property {
	p.def = value
	return p
}
