package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"unicode/utf8"
)

// Reason classifies why a bag failed validation.
type Reason string

const (
	ReasonMissingRequired Reason = "missing_required"
	ReasonTypeMismatch    Reason = "type_mismatch"
	ReasonConstraint      Reason = "constraint_violation"
)

// Error describes a single validation failure. Validation stops at the
// first failing field.
type Error struct {
	Field   string
	Reason  Reason
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validate checks a parameter bag against an object schema. On success it
// returns a normalized bag: declared fields carried over (integers as
// int64), defaults inserted for absent optional fields, and undeclared
// fields dropped. The input bag is never mutated.
func Validate(s *Schema, bag map[string]any) (map[string]any, *Error) {
	if s.Kind != KindObject {
		return nil, &Error{Reason: ReasonTypeMismatch, Message: "schema root must be an object"}
	}
	if bag == nil {
		bag = map[string]any{}
	}

	for _, name := range s.Required {
		if _, ok := bag[name]; !ok {
			return nil, &Error{
				Field:   name,
				Reason:  ReasonMissingRequired,
				Message: fmt.Sprintf("missing required parameter %q", name),
			}
		}
	}

	normalized := make(map[string]any, len(s.Properties))
	for _, p := range s.Properties {
		v, present := bag[p.Name]
		if !present {
			if p.Schema.Default != nil {
				normalized[p.Name] = p.Schema.Default
			}
			continue
		}
		nv, err := checkValue(p.Schema, p.Name, v)
		if err != nil {
			return nil, err
		}
		normalized[p.Name] = nv
	}

	return normalized, nil
}

// checkValue validates a single value against a schema node and returns its
// normalized form: integers as int64, nested objects and array elements
// normalized recursively. The field name is threaded through for error
// messages.
func checkValue(s *Schema, field string, v any) (any, *Error) {
	switch s.Kind {
	case KindString:
		str, ok := v.(string)
		if !ok {
			return nil, typeMismatch(field, "string", v)
		}
		if err := checkStringConstraints(s, field, str); err != nil {
			return nil, err
		}
		return str, nil

	case KindInteger:
		n, isNumber, isIntegral := asInteger(v)
		if !isNumber {
			return nil, typeMismatch(field, "integer", v)
		}
		if !isIntegral {
			return nil, &Error{
				Field:   field,
				Reason:  ReasonTypeMismatch,
				Message: fmt.Sprintf("parameter %q must be an integer, got a fractional number", field),
			}
		}
		if err := checkIntegerConstraints(s, field, n); err != nil {
			return nil, err
		}
		return n, nil

	case KindBoolean:
		if _, ok := v.(bool); !ok {
			return nil, typeMismatch(field, "boolean", v)
		}
		return v, nil

	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, typeMismatch(field, "object", v)
		}
		return Validate(s, m)

	case KindArray:
		arr, ok := v.([]any)
		if !ok {
			return nil, typeMismatch(field, "array", v)
		}
		if s.MinLength != nil && len(arr) < *s.MinLength {
			return nil, &Error{
				Field:   field,
				Reason:  ReasonConstraint,
				Message: fmt.Sprintf("parameter %q must have at least %d elements, got %d", field, *s.MinLength, len(arr)),
			}
		}
		if s.MaxLength != nil && len(arr) > *s.MaxLength {
			return nil, &Error{
				Field:   field,
				Reason:  ReasonConstraint,
				Message: fmt.Sprintf("parameter %q must have at most %d elements, got %d", field, *s.MaxLength, len(arr)),
			}
		}
		if s.Items == nil {
			return arr, nil
		}
		out := make([]any, len(arr))
		for i, el := range arr {
			nv, err := checkValue(s.Items, fmt.Sprintf("%s[%d]", field, i), el)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil

	default:
		return nil, &Error{
			Field:   field,
			Reason:  ReasonTypeMismatch,
			Message: fmt.Sprintf("unknown schema kind %q", s.Kind),
		}
	}
}

// Constraint order: enum, pattern, numeric bounds, length bounds.

func checkStringConstraints(s *Schema, field, str string) *Error {
	if len(s.Enum) > 0 && !slices.Contains(s.Enum, str) {
		return &Error{
			Field:   field,
			Reason:  ReasonConstraint,
			Message: fmt.Sprintf("parameter %q must be one of %v, got %q", field, s.Enum, str),
		}
	}
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return &Error{
				Field:   field,
				Reason:  ReasonConstraint,
				Message: fmt.Sprintf("parameter %q has an invalid pattern constraint", field),
			}
		}
		if !re.MatchString(str) {
			return &Error{
				Field:   field,
				Reason:  ReasonConstraint,
				Message: fmt.Sprintf("parameter %q does not match pattern %s", field, s.Pattern),
			}
		}
	}
	length := utf8.RuneCountInString(str)
	if s.MinLength != nil && length < *s.MinLength {
		return &Error{
			Field:   field,
			Reason:  ReasonConstraint,
			Message: fmt.Sprintf("parameter %q must have at least %d characters, got %d", field, *s.MinLength, length),
		}
	}
	if s.MaxLength != nil && length > *s.MaxLength {
		return &Error{
			Field:   field,
			Reason:  ReasonConstraint,
			Message: fmt.Sprintf("parameter %q must have at most %d characters, got %d", field, *s.MaxLength, length),
		}
	}
	return nil
}

func checkIntegerConstraints(s *Schema, field string, n int64) *Error {
	if s.Minimum != nil && n < *s.Minimum {
		return &Error{
			Field:   field,
			Reason:  ReasonConstraint,
			Message: fmt.Sprintf("parameter %q must be at least %d, got %d", field, *s.Minimum, n),
		}
	}
	if s.Maximum != nil && n > *s.Maximum {
		return &Error{
			Field:   field,
			Reason:  ReasonConstraint,
			Message: fmt.Sprintf("parameter %q must be at most %d, got %d", field, *s.Maximum, n),
		}
	}
	return nil
}

// asInteger normalizes the numeric representations that arrive from JSON
// decoding. Floats are accepted only when integral.
func asInteger(v any) (n int64, isNumber, isIntegral bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true, true
	case int64:
		return t, true, true
	case float64:
		if math.Trunc(t) != t {
			return 0, true, false
		}
		return int64(t), true, true
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true, true
		}
		if f, err := t.Float64(); err == nil {
			if math.Trunc(f) != f {
				return 0, true, false
			}
			return int64(f), true, true
		}
		return 0, false, false
	default:
		return 0, false, false
	}
}

func typeMismatch(field, want string, got any) *Error {
	return &Error{
		Field:   field,
		Reason:  ReasonTypeMismatch,
		Message: fmt.Sprintf("parameter %q must be a %s, got %T", field, want, got),
	}
}
