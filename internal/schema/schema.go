// Package schema describes the shape of JSON-valued parameter bags and
// validates incoming bags against those descriptions.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
)

// Kind identifies the JSON type a schema node accepts.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// Schema is a single node in a schema tree. An object schema lists its
// properties in declaration order; leaf schemas carry per-type constraints.
type Schema struct {
	Kind        Kind
	Description string

	// Default is inserted for absent optional fields during validation.
	// Must itself satisfy the node's constraints.
	Default any

	// Format is a semantic hint (email, uri, date-time). Advisory only,
	// never enforced.
	Format string

	// String constraints. Length bounds also apply to array element counts.
	Enum      []string
	Pattern   string
	MinLength *int
	MaxLength *int

	// Integer constraints
	Minimum *int64
	Maximum *int64

	// Object shape
	Properties []Property
	Required   []string

	// Array element shape
	Items *Schema
}

// Property is a named member of an object schema. Order of declaration is
// preserved through marshalling so discovery output is deterministic.
type Property struct {
	Name   string
	Schema *Schema
}

// Prop looks up a property by name. Returns nil if not declared.
func (s *Schema) Prop(name string) *Schema {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

// Check verifies the schema is internally consistent: required names refer
// to declared properties, patterns compile, and defaults satisfy their own
// node's constraints. Catalog construction calls this once at startup.
func (s *Schema) Check() error {
	if s.Pattern != "" {
		if _, err := regexp.Compile(s.Pattern); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", s.Pattern, err)
		}
	}
	for _, name := range s.Required {
		if s.Prop(name) == nil {
			return fmt.Errorf("required field %q is not declared", name)
		}
	}
	if s.Default != nil {
		if _, err := checkValue(s, "", s.Default); err != nil {
			return fmt.Errorf("default does not satisfy schema: %w", err)
		}
	}
	for _, p := range s.Properties {
		if err := p.Schema.Check(); err != nil {
			return fmt.Errorf("property %q: %w", p.Name, err)
		}
	}
	if s.Items != nil {
		if err := s.Items.Check(); err != nil {
			return fmt.Errorf("items: %w", err)
		}
	}
	return nil
}

// MarshalJSON renders the node as a JSON Schema-style object. Properties are
// written in declaration order.
func (s *Schema) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(key string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(&buf, "%q:%s", key, raw)
		return nil
	}

	if err := write("type", string(s.Kind)); err != nil {
		return nil, err
	}
	if s.Description != "" {
		if err := write("description", s.Description); err != nil {
			return nil, err
		}
	}
	if s.Format != "" {
		if err := write("format", s.Format); err != nil {
			return nil, err
		}
	}
	if len(s.Enum) > 0 {
		if err := write("enum", s.Enum); err != nil {
			return nil, err
		}
	}
	if s.Pattern != "" {
		if err := write("pattern", s.Pattern); err != nil {
			return nil, err
		}
	}
	if s.MinLength != nil {
		if err := write("minLength", *s.MinLength); err != nil {
			return nil, err
		}
	}
	if s.MaxLength != nil {
		if err := write("maxLength", *s.MaxLength); err != nil {
			return nil, err
		}
	}
	if s.Minimum != nil {
		if err := write("minimum", *s.Minimum); err != nil {
			return nil, err
		}
	}
	if s.Maximum != nil {
		if err := write("maximum", *s.Maximum); err != nil {
			return nil, err
		}
	}
	if s.Default != nil {
		if err := write("default", s.Default); err != nil {
			return nil, err
		}
	}
	if s.Kind == KindObject {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"properties":{`)
		for i, p := range s.Properties {
			if i > 0 {
				buf.WriteByte(',')
			}
			raw, err := json.Marshal(p.Schema)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&buf, "%q:%s", p.Name, raw)
		}
		buf.WriteByte('}')
		if len(s.Required) > 0 {
			if err := write("required", s.Required); err != nil {
				return nil, err
			}
		}
	}
	if s.Items != nil {
		if err := write("items", s.Items); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// IsRequired reports whether name appears in the object's required list.
func (s *Schema) IsRequired(name string) bool {
	return slices.Contains(s.Required, name)
}
