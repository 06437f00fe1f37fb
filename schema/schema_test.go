package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	type input struct {
		raw map[string]any
	}

	type expected struct {
		isNil    bool
		hasErr   bool
		rawIsNil bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:  "nil schema returns nil",
			input: input{raw: nil},
			expected: expected{
				isNil:    true,
				hasErr:   false,
				rawIsNil: true,
			},
		},
		{
			name: "valid schema compiles",
			input: input{
				raw: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
					},
				},
			},
			expected: expected{
				isNil:    false,
				hasErr:   false,
				rawIsNil: false,
			},
		},
		{
			name: "invalid type keyword fails",
			input: input{
				raw: map[string]any{"type": 42},
			},
			expected: expected{
				isNil:  true,
				hasErr: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Compile(tt.input.raw)

			if tt.expected.hasErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			if tt.expected.isNil {
				assert.Nil(t, s)
			} else {
				assert.NotNil(t, s)
				if !tt.expected.rawIsNil {
					assert.NotNil(t, s.Raw())
				}
			}
		})
	}
}

func TestSchema_Validate(t *testing.T) {
	type input struct {
		schema map[string]any
		data   any
	}

	type expected struct {
		hasErr bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "valid data passes",
			input: input{
				schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
						"age":  map[string]any{"type": "integer"},
					},
					"required": []any{"name"},
				},
				data: map[string]any{
					"name": "John",
					"age":  30,
				},
			},
			expected: expected{hasErr: false},
		},
		{
			name: "missing required field fails",
			input: input{
				schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
					},
					"required": []any{"name"},
				},
				data: map[string]any{},
			},
			expected: expected{hasErr: true},
		},
		{
			name: "wrong type fails",
			input: input{
				schema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"count": map[string]any{"type": "integer"},
					},
				},
				data: map[string]any{
					"count": "not an integer",
				},
			},
			expected: expected{hasErr: true},
		},
		{
			name: "non JSON-compatible data fails",
			input: input{
				schema: map[string]any{"type": "object"},
				data:   map[string]any{"fn": func() {}},
			},
			expected: expected{hasErr: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Compile(tt.input.schema)
			require.NoError(t, err)

			err = s.Validate(tt.input.data)

			if tt.expected.hasErr {
				require.Error(t, err)
				var ve *ValidationError
				assert.True(t, errors.As(err, &ve),
					"expected *ValidationError, got %T", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSchema_Validate_NilSchema(t *testing.T) {
	var s *Schema
	err := s.Validate(map[string]any{"foo": "bar"})
	assert.NoError(t, err, "nil schema should always pass validation")
}

func TestMustCompile(t *testing.T) {
	assert.NotNil(t, MustCompile(map[string]any{"type": "object"}))
	assert.Nil(t, MustCompile(nil))
	assert.Panics(t, func() {
		MustCompile(map[string]any{"type": 42})
	})
}

func TestObject_Basic(t *testing.T) {
	schema := Object(map[string]*Property{
		"name": String("The name"),
		"age":  Integer("The age"),
	}, "name")

	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok, "expected properties map")
	assert.Len(t, props, 2)

	required, ok := schema["required"].([]string)
	require.True(t, ok, "expected required array")
	assert.Equal(t, []string{"name"}, required)
}

func TestProperty_Builders(t *testing.T) {
	type expected struct {
		built map[string]any
	}

	tests := []struct {
		name     string
		prop     *Property
		expected expected
	}{
		{
			name: "integer with min and max",
			prop: Integer("A count").Min(0).Max(100),
			expected: expected{built: map[string]any{
				"type":        "integer",
				"description": "A count",
				"minimum":     float64(0),
				"maximum":     float64(100),
			}},
		},
		{
			name: "number with exclusive minimum",
			prop: Number("A fraction").ExclusiveMin(0).Max(1),
			expected: expected{built: map[string]any{
				"type":             "number",
				"description":      "A fraction",
				"exclusiveMinimum": float64(0),
				"maximum":          float64(1),
			}},
		},
		{
			name: "boolean with default",
			prop: Boolean("A flag").Default(false),
			expected: expected{built: map[string]any{
				"type":        "boolean",
				"description": "A flag",
				"default":     false,
			}},
		},
		{
			name: "string enum",
			prop: String("A status").Enum("pending", "active"),
			expected: expected{built: map[string]any{
				"type":        "string",
				"description": "A status",
				"enum":        []any{"pending", "active"},
			}},
		},
		{
			name: "closed nested object",
			prop: ObjectProperty("Nested", map[string]*Property{
				"name": String("Name"),
			}, "name").Closed(),
			expected: expected{built: map[string]any{
				"type":        "object",
				"description": "Nested",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Name",
					},
				},
				"required":             []string{"name"},
				"additionalProperties": false,
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected.built, tt.prop.build())
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	originalErr := &ValidationError{Err: nil}
	msg := originalErr.Error()
	assert.Equal(t, "schema validation failed: <nil>", msg)
}

func TestValidationError_Unwrap(t *testing.T) {
	inner := &ValidationError{}
	outer := &ValidationError{Err: inner}

	unwrapped := outer.Unwrap()
	assert.Equal(t, inner, unwrapped)
}

func TestBuilderSchema_Validation(t *testing.T) {
	type input struct {
		data map[string]any
	}

	type expected struct {
		hasErr bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "valid data passes",
			input: input{
				data: map[string]any{
					"max_tokens": 1000,
					"trigger":    0.8,
					"strategy":   map[string]any{"name": "keep_recent"},
				},
			},
			expected: expected{hasErr: false},
		},
		{
			name: "missing required max_tokens fails",
			input: input{
				data: map[string]any{"trigger": 0.8},
			},
			expected: expected{hasErr: true},
		},
		{
			name: "exclusive minimum rejects zero",
			input: input{
				data: map[string]any{"max_tokens": 1000, "trigger": 0},
			},
			expected: expected{hasErr: true},
		},
		{
			name: "closed object rejects unknown key",
			input: input{
				data: map[string]any{"max_tokens": 1000, "triger": 0.8},
			},
			expected: expected{hasErr: true},
		},
		{
			name: "closed nested object rejects unknown key",
			input: input{
				data: map[string]any{
					"max_tokens": 1000,
					"strategy": map[string]any{
						"name":  "keep_recent",
						"count": 3,
					},
				},
			},
			expected: expected{hasErr: true},
		},
		{
			name: "enum rejects unknown value",
			input: input{
				data: map[string]any{
					"max_tokens": 1000,
					"strategy":   map[string]any{"name": "random"},
				},
			},
			expected: expected{hasErr: true},
		},
	}

	raw := Closed(Object(map[string]*Property{
		"max_tokens": Integer("Window").Min(1),
		"trigger":    Number("Trigger").ExclusiveMin(0).Max(1),
		"strategy": ObjectProperty("Strategy", map[string]*Property{
			"name": String("Name").Enum("keep_recent", "sliding_window"),
		}, "name").Closed(),
	}, "max_tokens"))

	s, err := Compile(raw)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(tt.input.data)

			if tt.expected.hasErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
