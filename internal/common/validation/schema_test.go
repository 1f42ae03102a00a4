// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["athleteId"],
  "properties": {
    "athleteId": {"type": "string", "minLength": 1},
    "score": {"type": "integer", "minimum": 0, "maximum": 100}
  }
}`

func TestSchema_ValidateJSON(t *testing.T) {
	s := MustSchema("test", testSchema)

	tests := []struct {
		name      string
		doc       string
		valid     bool
		errField  string
		errorCode string
	}{
		{name: "valid", doc: `{"athleteId":"a-1","score":72}`, valid: true},
		{name: "missing required", doc: `{"score":10}`, errField: "athleteId", errorCode: "REQUIRED"},
		{name: "out of range", doc: `{"athleteId":"a","score":120}`, errField: "score"},
		{name: "empty id", doc: `{"athleteId":""}`, errField: "athleteId"},
		{name: "not json", doc: `{`, errField: "(root)", errorCode: "INVALID_JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.ValidateJSON(tt.doc)
			assert.Equal(t, tt.valid, res.Valid)
			if tt.valid {
				assert.NoError(t, res.Err())
				return
			}
			require.NotEmpty(t, res.Errors)
			assert.True(t, res.HasErrors(tt.errField), "errors: %v", res.GetErrorMessages())
			if tt.errorCode != "" {
				assert.Equal(t, tt.errorCode, res.Errors[0].Code)
			}
			assert.Error(t, res.Err())
		})
	}
}

func TestSchema_ValidateValue(t *testing.T) {
	s := MustSchema("test", testSchema)
	assert.True(t, s.ValidateValue(map[string]interface{}{"athleteId": "x"}).Valid)
	assert.False(t, s.ValidateValue(map[string]interface{}{"athleteId": 5}).Valid)
}

func TestNewSchema_Invalid(t *testing.T) {
	_, err := NewSchema("broken", `{"type": 12}`)
	assert.Error(t, err)
}

func TestValidateEmailAndPhone(t *testing.T) {
	assert.True(t, ValidateEmail("coach@school.edu"))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.True(t, ValidatePhone("+1 (502) 555-0100"))
	assert.False(t, ValidatePhone("555"))
}
