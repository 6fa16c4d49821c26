package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/skillshare/internal/services"
)

func newValidator(t *testing.T) *SchemaValidator {
	t.Helper()
	v, err := NewSchemaValidator(DefaultCacheSize)
	require.NoError(t, err)
	return v
}

func TestSchemaValidator_AllSchemasCompile(t *testing.T) {
	v := newValidator(t)
	for name := range requestSchemas {
		_, err := v.schema(name)
		assert.NoError(t, err, name)
	}
	assert.Equal(t, len(requestSchemas), v.GetCacheSize())
}

func TestSchemaValidator_Decode(t *testing.T) {
	v := newValidator(t)

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	body := []byte(`{"username":"ada","email":"ada@example.com","password":"correct horse"}`)
	require.NoError(t, v.Decode(SchemaRegister, body, &req))
	assert.Equal(t, "ada", req.Username)
	assert.Equal(t, "ada@example.com", req.Email)
}

func TestSchemaValidator_Rejects(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name     string
		schema   string
		body     string
		contains string
	}{
		{"empty body", SchemaLogin, "", "request body is required"},
		{"malformed json", SchemaLogin, `{"email":`, "malformed JSON"},
		{"short password", SchemaRegister, `{"username":"ada","email":"ada@example.com","password":"short"}`, "$.password"},
		{"bad email", SchemaRegister, `{"username":"ada","email":"not-an-email","password":"long enough"}`, "$.email"},
		{"unknown field", SchemaComment, `{"content":"hi","owner_id":"x"}`, "validation failed"},
		{"missing field", SchemaFeedCreate, `{"description":"no name"}`, "validation failed at '$'"},
		{"bad status", SchemaProgressCreate, `{"title":"Go","status":"done"}`, "$.status"},
		{"negative duration", SchemaProgressUpdate, `{"duration_minutes":-5}`, "$.duration_minutes"},
		{"too many images", SchemaPostCreate, `{"description":"x","image_urls":["1","2","3","4","5","6","7","8","9","10","11"]}`, "$.image_urls"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst map[string]any
			err := v.Decode(tt.schema, []byte(tt.body), &dst)
			require.Error(t, err)
			assert.ErrorIs(t, err, services.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestSchemaValidator_UnknownSchema(t *testing.T) {
	v := newValidator(t)
	err := v.Validate("nope", []byte(`{}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrInvalidInput)
}
