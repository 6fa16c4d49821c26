package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/terraconstructs/skillshare/internal/services"
)

// DefaultCacheSize holds every request schema with room to spare.
const DefaultCacheSize = 32

var printer = message.NewPrinter(language.English)

// Validator checks request bodies against named JSON schemas.
type Validator interface {
	// Decode validates body against the named schema and unmarshals it into dst.
	// Client mistakes are reported wrapped in services.ErrInvalidInput.
	Decode(name string, body []byte, dst any) error
}

// SchemaValidator implements Validator using santhosh-tekuri/jsonschema/v6
type SchemaValidator struct {
	schemas     map[string]string
	schemaCache *lru.Cache[string, *jsonschema.Schema]
}

// NewSchemaValidator creates a new validator with LRU caching for compiled schemas
func NewSchemaValidator(cacheSize int) (*SchemaValidator, error) {
	cache, err := lru.New[string, *jsonschema.Schema](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}

	return &SchemaValidator{
		schemas:     requestSchemas,
		schemaCache: cache,
	}, nil
}

// Decode implements Validator.
func (v *SchemaValidator) Decode(name string, body []byte, dst any) error {
	if err := v.Validate(name, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", services.ErrInvalidInput, err)
	}
	return nil
}

// Validate checks body against the named schema without decoding it.
func (v *SchemaValidator) Validate(name string, body []byte) error {
	schema, err := v.schema(name)
	if err != nil {
		return err
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: request body is required", services.ErrInvalidInput)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: malformed JSON", services.ErrInvalidInput)
	}

	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("%w: %s", services.ErrInvalidInput, formatValidationError(err))
	}
	return nil
}

func (v *SchemaValidator) schema(name string) (*jsonschema.Schema, error) {
	if cached, found := v.schemaCache.Get(name); found {
		return cached, nil
	}

	source, ok := v.schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown request schema %q", name)
	}
	schema, err := compileSchema(name, source)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", name, err)
	}

	v.schemaCache.Add(name, schema)
	return schema, nil
}

// GetCacheSize returns cache size for monitoring
func (v *SchemaValidator) GetCacheSize() int {
	return v.schemaCache.Len()
}

// compileSchema compiles a JSON schema string into a schema object
func compileSchema(name, schemaJSON string) (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse schema JSON: %w", err)
	}

	// A compiler per schema keeps resource urls from colliding.
	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)

	schemaURL := name + ".json"
	if err := compiler.AddResource(schemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// formatValidationError renders the first failing location as a JSON path.
// Example: "validation failed at '$.password': minLength: got 3, want 8"
func formatValidationError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	// Report the deepest cause; the root error only says "doesn't validate".
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	path := "$"
	var parts []string
	for _, part := range leaf.InstanceLocation {
		if part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) > 0 {
		path = "$." + strings.Join(parts, ".")
	}

	msg := leaf.ErrorKind.LocalizedString(printer)
	if len(msg) > 200 {
		msg = msg[:200] + "... (truncated)"
	}
	return fmt.Sprintf("validation failed at '%s': %s", path, msg)
}
