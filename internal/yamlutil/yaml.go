// Package yamlutil reads and writes kinten's YAML config files with
// goccy/go-yaml. Decoding is strict and size bounded, and decode errors
// name the offending line and column.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize bounds a config document. Real configs are a few hundred
// bytes.
var MaxInputSize = 64 << 10

var (
	ErrEmptyDocument   = errors.New("yamlutil: empty document")
	ErrNilDestination  = errors.New("yamlutil: nil destination pointer")
	ErrDocumentTooLong = errors.New("yamlutil: document exceeds maximum size")
)

// Decode parses a config document into v. Unknown keys are errors so a
// misspelled setting is never silently ignored.
func Decode(data []byte, v any) error {
	switch {
	case len(data) == 0:
		return ErrEmptyDocument
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrDocumentTooLong, len(data), MaxInputSize)
	case v == nil:
		return ErrNilDestination
	}

	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %s", yaml.FormatError(err, false, false))
	}
	return nil
}

// Encode renders v as a config document with two-space indentation and
// indented sequences.
func Encode(v any) ([]byte, error) {
	out, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}
