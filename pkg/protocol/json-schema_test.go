package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestJSONSchemaBuilders tests the schema builder helpers
func TestJSONSchemaBuilders(t *testing.T) {
	schema := ObjectSchema(map[string]*JSONSchema{
		"name":    StringSchema("the name"),
		"amount":  NumberSchema("the amount"),
		"count":   IntegerSchema("the count"),
		"enabled": BooleanSchema("the flag"),
		"tags":    ArraySchema(StringSchema("a tag")),
	}, []string{"name"})

	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"name"}, schema.Required)
	assert.Equal(t, "string", schema.Properties["name"].Type)
	assert.Equal(t, "number", schema.Properties["amount"].Type)
	assert.Equal(t, "integer", schema.Properties["count"].Type)
	assert.Equal(t, "boolean", schema.Properties["enabled"].Type)
	assert.Equal(t, "array", schema.Properties["tags"].Type)
	assert.Equal(t, "string", schema.Properties["tags"].Items.Type)
}

// TestNewJSONSchemaFromRaw tests parsing a schema from raw JSON
func TestNewJSONSchemaFromRaw(t *testing.T) {
	schema, err := NewJSONSchemaFromRaw([]byte(`{
		"type": "object",
		"required": ["customerId"],
		"properties": {
			"customerId": {"type": "string", "description": "The customer ID"}
		}
	}`))

	require.NoError(t, err)
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"customerId"}, schema.Required)
	assert.Equal(t, "The customer ID", schema.Properties["customerId"].Description)

	_, err = NewJSONSchemaFromRaw([]byte(`{invalid`))
	assert.Error(t, err)
}

// TestJSONSchema_Validate tests argument validation against an object schema
func TestJSONSchema_Validate(t *testing.T) {
	schema := ObjectSchema(map[string]*JSONSchema{
		"payerId": StringSchema("sending account"),
		"payeeId": StringSchema("receiving account"),
		"amount":  NumberSchema("amount to transfer"),
	}, []string{"payerId", "payeeId", "amount"})

	t.Run("ValidArguments", func(t *testing.T) {
		err := schema.Validate(map[string]interface{}{
			"payerId": "p1",
			"payeeId": "p2",
			"amount":  50.0,
		})
		assert.NoError(t, err)
	})

	t.Run("MissingRequired", func(t *testing.T) {
		err := schema.Validate(map[string]interface{}{
			"payerId": "p1",
			"amount":  50.0,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payeeId")
	})

	t.Run("WrongTypeNamesField", func(t *testing.T) {
		err := schema.Validate(map[string]interface{}{
			"payerId": "p1",
			"payeeId": "p2",
			"amount":  "fifty",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "amount")
		assert.Contains(t, err.Error(), "number")
	})

	t.Run("NullValueRejected", func(t *testing.T) {
		err := schema.Validate(map[string]interface{}{
			"payerId": nil,
			"payeeId": "p2",
			"amount":  50.0,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payerId")
	})

	t.Run("UnknownArgumentTolerated", func(t *testing.T) {
		err := schema.Validate(map[string]interface{}{
			"payerId": "p1",
			"payeeId": "p2",
			"amount":  50.0,
			"extra":   true,
		})
		assert.NoError(t, err)
	})

	t.Run("NilSchemaAcceptsAnything", func(t *testing.T) {
		var nilSchema *JSONSchema
		assert.NoError(t, nilSchema.Validate(map[string]interface{}{"anything": 1.0}))
	})
}

// TestJSONSchema_Validate_AdditionalProperties tests the strict object mode
func TestJSONSchema_Validate_AdditionalProperties(t *testing.T) {
	schema := ObjectSchema(map[string]*JSONSchema{
		"customerId": StringSchema("The customer ID"),
	}, []string{"customerId"})
	schema.AdditionalProperties = false

	err := schema.Validate(map[string]interface{}{
		"customerId": "c1",
		"surprise":   "value",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "surprise")

	assert.NoError(t, schema.Validate(map[string]interface{}{"customerId": "c1"}))
}

// TestJSONSchema_Validate_Constraints tests numeric and string constraints
func TestJSONSchema_Validate_Constraints(t *testing.T) {
	min := 0.0
	max := 1000.0
	minLen := 1
	maxLen := 5

	schema := ObjectSchema(map[string]*JSONSchema{
		"amount": {Type: "number", Minimum: &min, Maximum: &max},
		"count":  {Type: "integer"},
		"code":   {Type: "string", MinLength: &minLen, MaxLength: &maxLen},
		"mode":   {Type: "string", Enum: []interface{}{"balance", "rewards"}},
	}, nil)

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantErr string
	}{
		{"BelowMinimum", map[string]interface{}{"amount": -1.0}, "below minimum"},
		{"AboveMaximum", map[string]interface{}{"amount": 1001.0}, "above maximum"},
		{"WithinRange", map[string]interface{}{"amount": 500.0}, ""},
		{"NonIntegral", map[string]interface{}{"count": 1.5}, "expected integer"},
		{"Integral", map[string]interface{}{"count": 3.0}, ""},
		{"TooShort", map[string]interface{}{"code": ""}, "shorter than"},
		{"TooLong", map[string]interface{}{"code": "abcdef"}, "longer than"},
		{"EnumMiss", map[string]interface{}{"mode": "credit"}, "not in allowed set"},
		{"EnumHit", map[string]interface{}{"mode": "balance"}, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := schema.Validate(test.args)
			if test.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), test.wantErr)
			}
		})
	}
}

// TestJSONSchema_Validate_Nested tests arrays and nested objects
func TestJSONSchema_Validate_Nested(t *testing.T) {
	schema := ObjectSchema(map[string]*JSONSchema{
		"ids": ArraySchema(StringSchema("an ID")),
		"options": ObjectSchema(map[string]*JSONSchema{
			"dryRun": BooleanSchema("simulate only"),
		}, []string{"dryRun"}),
	}, nil)

	assert.NoError(t, schema.Validate(map[string]interface{}{
		"ids":     []interface{}{"a", "b"},
		"options": map[string]interface{}{"dryRun": true},
	}))

	err := schema.Validate(map[string]interface{}{
		"ids": []interface{}{"a", 2.0},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ids[1]")

	err = schema.Validate(map[string]interface{}{
		"options": map[string]interface{}{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dryRun")
}
