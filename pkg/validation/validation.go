// Package validation checks request bodies against JSON schemas before they
// reach a usecase, so unknown fields and bad enum values never get through.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Error is a client-side input problem. Field is a dotted path, empty for the
// document root.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Errorf builds an *Error for checks done outside a schema.
func Errorf(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Schema is a compiled request schema.
type Schema struct {
	name   string
	schema *jsonschema.Schema
}

// Compile compiles an inline schema document; name is only used as its URL.
func Compile(name, doc string) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	url := "mem://schemas/" + name + ".json"
	if err := compiler.AddResource(url, strings.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	s, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, schema: s}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(name, doc string) *Schema {
	s, err := Compile(name, doc)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode validates raw JSON against the schema and, when valid, decodes it into dst.
func (s *Schema) Decode(raw []byte, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return &Error{Message: "request body is required"}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &Error{Message: "malformed JSON: " + err.Error()}
	}

	if err := s.schema.Validate(doc); err != nil {
		return fromSchemaError(err)
	}

	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &Error{Message: "malformed JSON: " + err.Error()}
	}
	return nil
}

func fromSchemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &Error{Message: err.Error()}
	}
	leaf := firstLeaf(ve)
	return &Error{
		Field:   pointerToPath(leaf.InstanceLocation),
		Message: leaf.Message,
	}
}

// firstLeaf walks to the first cause without causes; that is the most
// specific message the validator produced.
func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// pointerToPath turns "/subtasks/0/title" into "subtasks[0].title".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for i, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if isIndex(part) {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
