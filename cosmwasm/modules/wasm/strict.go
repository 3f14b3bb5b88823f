package wasm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// Contract messages are decoded the way cw_serde derives them: no unknown fields, no defaults,
// and no nulls where a value is required.

// Field binds a required JSON member to the value it decodes into.
type Field struct {
	Name string
	Dst  interface{}
}

func IsNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// DecodeObject splits a JSON object into its members. Anything other than an object is rejected, as
// are repeated keys and invalid UTF-8.
func DecodeObject(data []byte, path string) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, SchemaErrorf(path, "expected object, got %s", describe(trimmed))
	}
	if !utf8.Valid(trimmed) {
		return nil, SchemaErrorf(path, "invalid UTF-8")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return nil, WithPath(err, path)
	}

	members := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, WithPath(err, path)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, SchemaErrorf(path, "expected object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, WithPath(err, JoinPath(path, key))
		}

		if _, seen := members[key]; seen {
			return nil, SchemaErrorf(JoinPath(path, key), "duplicate field")
		}
		members[key] = value
	}

	if _, err := dec.Token(); err != nil {
		return nil, WithPath(err, path)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, SchemaErrorf(path, "unexpected data after object")
	}

	return members, nil
}

// DecodeFields decodes an object that must contain exactly the given fields.
func DecodeFields(data []byte, path string, fields ...Field) error {
	members, err := DecodeObject(data, path)
	if err != nil {
		return err
	}

	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f.Name] = struct{}{}
	}

	var unknown []string
	for name := range members {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return SchemaErrorf(JoinPath(path, unknown[0]), "unknown field")
	}

	for _, f := range fields {
		fieldPath := JoinPath(path, f.Name)
		raw, ok := members[f.Name]
		if !ok || IsNull(raw) {
			return SchemaErrorf(fieldPath, "missing field")
		}

		if err := decodeValue(raw, fieldPath, f.Dst); err != nil {
			return err
		}
	}

	return nil
}

// DecodeVariant splits a tagged union {"<tag>": body} into its tag and body. The object must carry
// exactly one known tag with a non-null body.
func DecodeVariant(data []byte, path string, tags []string) (string, json.RawMessage, error) {
	members, err := DecodeObject(data, path)
	if err != nil {
		return "", nil, err
	}

	if len(members) != 1 {
		return "", nil, SchemaErrorf(path, "expected exactly one of %s, got %d keys", strings.Join(tags, ", "), len(members))
	}

	for tag, body := range members {
		known := false
		for _, t := range tags {
			if t == tag {
				known = true
				break
			}
		}
		if !known {
			return "", nil, SchemaErrorf(JoinPath(path, tag), "unknown variant, expected one of %s", strings.Join(tags, ", "))
		}
		if IsNull(body) {
			return "", nil, SchemaErrorf(JoinPath(path, tag), "missing variant body")
		}
		return tag, body, nil
	}

	return "", nil, SchemaErrorf(path, "empty object")
}

// DecodeStringList decodes a JSON array whose elements must all be strings. Element order is kept.
func DecodeStringList(data []byte, path string) ([]string, error) {
	var elems []json.RawMessage
	if err := decodeArray(data, path, &elems); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(elems))
	for i, elem := range elems {
		var s string
		if err := decodeString(elem, fmt.Sprintf("%s[%d]", path, i), &s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, nil
}

func decodeValue(raw json.RawMessage, path string, dst interface{}) error {
	switch v := dst.(type) {
	case *string:
		return decodeString(raw, path, v)
	case *[]string:
		list, err := DecodeStringList(raw, path)
		if err != nil {
			return err
		}
		*v = list
		return nil
	default:
		if err := json.Unmarshal(raw, dst); err != nil {
			return WithPath(err, path)
		}
		return nil
	}
}

func decodeString(raw json.RawMessage, path string, dst *string) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return SchemaErrorf(path, "expected string, got %s", describe(trimmed))
	}
	if !utf8.Valid(trimmed) {
		return SchemaErrorf(path, "invalid UTF-8")
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return WithPath(err, path)
	}
	return nil
}

func decodeArray(data []byte, path string, dst *[]json.RawMessage) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return SchemaErrorf(path, "expected array, got %s", describe(trimmed))
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return WithPath(err, path)
	}
	return nil
}

// DecodeArray is the exported form used by packages decoding lists of objects.
func DecodeArray(data []byte, path string) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := decodeArray(data, path, &elems); err != nil {
		return nil, err
	}
	return elems, nil
}

func describe(raw []byte) string {
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
