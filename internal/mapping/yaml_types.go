package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts either the dotted text form or a sequence of tokens.
func (p *Path) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var text string
		if err := node.Decode(&text); err != nil {
			return err
		}

		if text == "" {
			*p = UnmappedPath()

			return nil
		}

		path, err := ParsePath(text)
		if err != nil {
			return err
		}

		*p = path

		return nil

	case yaml.SequenceNode:
		var tokens []string
		if err := node.Decode(&tokens); err != nil {
			return err
		}

		if len(tokens) == 0 {
			*p = UnmappedPath()

			return nil
		}

		for i, token := range tokens {
			if err := validateToken(token, i == len(tokens)-1); err != nil {
				return fmt.Errorf("line %d: invalid path: %w", node.Line, err)
			}
		}

		*p = tokens

		return nil

	default:
		return fmt.Errorf("line %d: expected path string or sequence, got %v", node.Line, node.Kind)
	}
}

// MarshalYAML writes the dotted text form.
func (p Path) MarshalYAML() (any, error) {
	return p.String(), nil
}

// UnmarshalYAML fills unspecified options with their defaults.
func (o *ColumnOptions) UnmarshalYAML(node *yaml.Node) error {
	type plain ColumnOptions

	opts := plain(DefaultColumnOptions())
	if err := node.Decode(&opts); err != nil {
		return err
	}

	*o = ColumnOptions(opts)

	return nil
}
