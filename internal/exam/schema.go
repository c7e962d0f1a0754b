package exam

import (
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const optionsSchemaSrc = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["text", "is_correct"],
		"properties": {
			"text": {"type": "string"},
			"is_correct": {"type": "boolean"},
			"image_url": {"type": ["string", "null"]}
		}
	}
}`

const correctAnswerSchemaSrc = `{
	"type": "array",
	"items": {"type": "integer", "minimum": 0}
}`

var (
	optionsSchema       = sync.OnceValues(func() (*jsonschema.Schema, error) { return compileSchema("options", optionsSchemaSrc) })
	correctAnswerSchema = sync.OnceValues(func() (*jsonschema.Schema, error) { return compileSchema("correct-answer", correctAnswerSchemaSrc) })
)

// compileSchema compiles an embedded JSON Schema document.
func compileSchema(name, src string) (*jsonschema.Schema, error) {
	def, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(url)
}

// validateEncoded checks an encoded JSON document against a compiled schema.
func validateEncoded(schema func() (*jsonschema.Schema, error), encoded string) error {
	compiled, err := schema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := compiled.Validate(inst); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
