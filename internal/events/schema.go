package events

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/emiliopalmerini/taskpulse/internal/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBase = "https://taskpulse.local/schemas/"

// ErrInvalidPayload wraps every request body rejected before it reaches the engine.
var ErrInvalidPayload = errors.New("invalid event payload")

// Validator checks event bodies against the embedded JSON schemas.
type Validator struct {
	schemas map[domain.EventKind]*jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	c.AssertFormat = true

	for _, name := range []string{"task", "created", "updated", "deleted"} {
		data, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read %s schema: %w", name, err)
		}
		if err := c.AddResource(schemaBase+name+".json", bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add %s schema: %w", name, err)
		}
	}

	v := &Validator{schemas: make(map[domain.EventKind]*jsonschema.Schema, 3)}
	for _, kind := range []domain.EventKind{domain.EventCreated, domain.EventUpdated, domain.EventDeleted} {
		s, err := c.Compile(schemaBase + string(kind) + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", kind, err)
		}
		v.schemas[kind] = s
	}
	return v, nil
}

// Validate checks body against the schema for kind.
func (v *Validator) Validate(kind domain.EventKind, body []byte) error {
	s, ok := v.schemas[kind]
	if !ok {
		return fmt.Errorf("%w: unknown event kind %q", ErrInvalidPayload, kind)
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}
