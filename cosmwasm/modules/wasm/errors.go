package wasm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaMismatch is wrapped by every error produced while decoding or validating a contract message.
var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaError points at the element of a message that does not conform to the contract schema.
// Path is a dotted JSON path, e.g. execute_msg.publish_price.price.price
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrSchemaMismatch, e.Reason)
	}
	return fmt.Sprintf("%s at %s: %s", ErrSchemaMismatch, e.Path, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaMismatch
}

func SchemaErrorf(path string, format string, args ...interface{}) error {
	return &SchemaError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// WithPath prefixes the path of a SchemaError. Any other error is converted into a SchemaError at path.
func WithPath(err error, path string) error {
	if err == nil {
		return nil
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return &SchemaError{Path: JoinPath(path, schemaErr.Path), Reason: schemaErr.Reason}
	}

	return &SchemaError{Path: path, Reason: err.Error()}
}

func JoinPath(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}
