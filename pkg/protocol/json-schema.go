package protocol

import (
	"encoding/json"
	"fmt"
	"math"
)

// JSONSchema represents the structure of a JSON Schema for validation
type JSONSchema struct {
	Type                 string                 `json:"type,omitempty"`
	Title                string                 `json:"title,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	AdditionalProperties interface{}            `json:"additionalProperties,omitempty"`
	Items                *JSONSchema            `json:"items,omitempty"`
	Format               string                 `json:"format,omitempty"`
	Enum                 []interface{}          `json:"enum,omitempty"`
	Default              interface{}            `json:"default,omitempty"`

	// Numeric validation
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// String validation
	MinLength *int `json:"minLength,omitempty"`
	MaxLength *int `json:"maxLength,omitempty"`
}

// NewJSONSchemaFromRaw creates a new JSONSchema from raw JSON data
func NewJSONSchemaFromRaw(data json.RawMessage) (*JSONSchema, error) {
	var schema JSONSchema
	err := json.Unmarshal(data, &schema)
	if err != nil {
		return nil, err
	}
	return &schema, nil
}

// ObjectSchema creates a new JSONSchema for an object type with the given properties
func ObjectSchema(properties map[string]*JSONSchema, required []string) *JSONSchema {
	return &JSONSchema{
		Type:       "object",
		Required:   required,
		Properties: properties,
	}
}

// StringSchema creates a new JSONSchema for a string type
func StringSchema(description string) *JSONSchema {
	return &JSONSchema{
		Type:        "string",
		Description: description,
	}
}

// NumberSchema creates a new JSONSchema for a number type
func NumberSchema(description string) *JSONSchema {
	return &JSONSchema{
		Type:        "number",
		Description: description,
	}
}

// IntegerSchema creates a new JSONSchema for an integer type
func IntegerSchema(description string) *JSONSchema {
	return &JSONSchema{
		Type:        "integer",
		Description: description,
	}
}

// BooleanSchema creates a new JSONSchema for a boolean type
func BooleanSchema(description string) *JSONSchema {
	return &JSONSchema{
		Type:        "boolean",
		Description: description,
	}
}

// ArraySchema creates a new JSONSchema for an array type with the given item schema
func ArraySchema(items *JSONSchema) *JSONSchema {
	return &JSONSchema{
		Type:  "array",
		Items: items,
	}
}

// Validate checks an argument mapping against an object schema: required
// fields must be present and every present field must match its declared
// type and constraints. The returned error names the offending field.
func (s *JSONSchema) Validate(args map[string]interface{}) error {
	if s == nil {
		return nil
	}
	if s.Type != "" && s.Type != "object" {
		return fmt.Errorf("schema root must be an object, got %q", s.Type)
	}

	for _, name := range s.Required {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("missing required argument %q", name)
		}
	}

	for name, value := range args {
		prop, ok := s.Properties[name]
		if !ok {
			// Unknown arguments are tolerated unless explicitly forbidden
			if allowed, ok := s.AdditionalProperties.(bool); ok && !allowed {
				return fmt.Errorf("unknown argument %q", name)
			}
			continue
		}
		if err := prop.validateValue(name, value); err != nil {
			return err
		}
	}

	return nil
}

func (s *JSONSchema) validateValue(name string, value interface{}) error {
	if value == nil {
		return fmt.Errorf("argument %q must not be null", name)
	}

	switch s.Type {
	case "string":
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("argument %q: expected string, got %s", name, jsonTypeName(value))
		}
		if s.MinLength != nil && len(str) < *s.MinLength {
			return fmt.Errorf("argument %q: shorter than %d characters", name, *s.MinLength)
		}
		if s.MaxLength != nil && len(str) > *s.MaxLength {
			return fmt.Errorf("argument %q: longer than %d characters", name, *s.MaxLength)
		}
		if len(s.Enum) > 0 && !enumContains(s.Enum, str) {
			return fmt.Errorf("argument %q: value %q not in allowed set", name, str)
		}
	case "number", "integer":
		num, ok := value.(float64)
		if !ok {
			return fmt.Errorf("argument %q: expected %s, got %s", name, s.Type, jsonTypeName(value))
		}
		if s.Type == "integer" && num != math.Trunc(num) {
			return fmt.Errorf("argument %q: expected integer, got %v", name, num)
		}
		if s.Minimum != nil && num < *s.Minimum {
			return fmt.Errorf("argument %q: %v is below minimum %v", name, num, *s.Minimum)
		}
		if s.Maximum != nil && num > *s.Maximum {
			return fmt.Errorf("argument %q: %v is above maximum %v", name, num, *s.Maximum)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("argument %q: expected boolean, got %s", name, jsonTypeName(value))
		}
	case "array":
		items, ok := value.([]interface{})
		if !ok {
			return fmt.Errorf("argument %q: expected array, got %s", name, jsonTypeName(value))
		}
		if s.Items != nil {
			for i, item := range items {
				if err := s.Items.validateValue(fmt.Sprintf("%s[%d]", name, i), item); err != nil {
					return err
				}
			}
		}
	case "object":
		obj, ok := value.(map[string]interface{})
		if !ok {
			return fmt.Errorf("argument %q: expected object, got %s", name, jsonTypeName(value))
		}
		if len(s.Properties) > 0 || len(s.Required) > 0 {
			if err := s.Validate(obj); err != nil {
				return fmt.Errorf("argument %q: %w", name, err)
			}
		}
	case "":
		// Untyped property, accept any value
	default:
		return fmt.Errorf("argument %q: unsupported schema type %q", name, s.Type)
	}

	return nil
}

func enumContains(enum []interface{}, value interface{}) bool {
	for _, e := range enum {
		if e == value {
			return true
		}
	}
	return false
}

// jsonTypeName names the JSON type of a decoded value for error messages
func jsonTypeName(value interface{}) string {
	switch value.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", value)
	}
}
