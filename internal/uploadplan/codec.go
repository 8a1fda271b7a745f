package uploadplan

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

var planValidator = validator.New()

// Marshal serializes a plan as indented JSON.
func Marshal(p *Plan) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upload plan: %w", err)
	}

	return append(data, '\n'), nil
}

// Parse decodes and validates a plan document.
func Parse(data []byte) (*Plan, error) {
	var p Plan

	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse upload plan: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// Validate checks the document's declared constraints. It does not consult a
// schema; PlanToTree does that.
func (p *Plan) Validate() error {
	if err := planValidator.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	return nil
}

// LoadFile reads and parses a plan document.
func LoadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload plan %s: %w", path, err)
	}

	return Parse(data)
}

// WriteFile writes a plan document.
func WriteFile(path string, p *Plan) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write upload plan %s: %w", path, err)
	}

	return nil
}
