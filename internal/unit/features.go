// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package unit

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/apperr"
)

// Value is the tagged representation of a single feature value. Exactly one
// of the payload fields is meaningful, selected by Type.
type Value struct {
	Type  FieldType
	Str   string
	Bool  bool
	Int   int
	Float float64
	List  []string
}

// StringValue creates a string-typed feature value.
func StringValue(s string) Value { return Value{Type: TypeString, Str: s} }

// BoolValue creates a bool-typed feature value.
func BoolValue(b bool) Value { return Value{Type: TypeBool, Bool: b} }

// IntValue creates an int-typed feature value.
func IntValue(i int) Value { return Value{Type: TypeInt, Int: i} }

// FloatValue creates a float-typed feature value.
func FloatValue(f float64) Value { return Value{Type: TypeFloat, Float: f} }

// ListValue creates a reference-list feature value.
func ListValue(names ...string) Value { return Value{Type: TypeReferenceList, List: names} }

// MarshalJSON renders the value as its plain JSON form (string, bool,
// number, or array of strings). The type tag is not serialized; it is
// recovered from the owning unit's schema on decode.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case TypeString:
		return json.Marshal(v.Str)
	case TypeBool:
		return json.Marshal(v.Bool)
	case TypeInt:
		return json.Marshal(v.Int)
	case TypeFloat:
		return json.Marshal(v.Float)
	case TypeReferenceList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	default:
		return nil, fmt.Errorf("unit: cannot marshal value of type %q", v.Type)
	}
}

// Display renders the value for human-readable listings (exports, prompts).
func (v Value) Display() string {
	switch v.Type {
	case TypeString:
		return v.Str
	case TypeBool:
		return strconv.FormatBool(v.Bool)
	case TypeInt:
		return strconv.Itoa(v.Int)
	case TypeFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case TypeReferenceList:
		return strings.Join(v.List, ", ")
	default:
		return ""
	}
}

// Features maps attribute names to their tagged values. The shape of the map
// is dictated by the owning unit's kind schema.
type Features map[string]Value

// Name returns the mandatory name feature, or "" if absent.
func (f Features) Name() string {
	return f[FieldName].Str
}

// Clone returns a deep copy, so that rewriting a copy never aliases the
// original's reference lists.
func (f Features) Clone() Features {
	clone := make(Features, len(f))
	for k, v := range f {
		if v.List != nil {
			v.List = append([]string(nil), v.List...)
		}
		clone[k] = v
	}
	return clone
}

// DecodeFeatures coerces a raw attribute map (decoded JSON, client payload or
// stored row) into tagged values following the schema.
//
// Coercion rules, per the schema type:
//   - string: JSON string, trimmed.
//   - bool: JSON bool, or the numbers 0/1 (legacy stored form).
//   - int: JSON number with no fractional part, or a numeric string.
//   - float: JSON number, or a numeric string.
//   - reference_list: JSON array of strings; blank entries dropped.
//
// Attributes missing from raw get the schema type's zero value. Attributes
// not named by the schema are ignored. All coercion failures are collected
// and returned together, never fail-fast.
func DecodeFeatures(schema Schema, raw map[string]interface{}) (Features, []apperr.FieldError) {
	features := make(Features, len(schema))
	var fieldErrors []apperr.FieldError

	fail := func(field, message string) {
		fieldErrors = append(fieldErrors, apperr.FieldError{Field: field, Message: message})
	}

	for _, field := range schema {
		rawValue, present := raw[field.Name]
		if !present || rawValue == nil {
			features[field.Name] = zeroValue(field.Type)
			continue
		}

		switch field.Type {
		case TypeString:
			s, ok := rawValue.(string)
			if !ok {
				fail(field.Name, "must be a string")
				features[field.Name] = zeroValue(field.Type)
				continue
			}
			features[field.Name] = StringValue(strings.TrimSpace(s))

		case TypeBool:
			b, ok := coerceBool(rawValue)
			if !ok {
				fail(field.Name, "must be a boolean")
				features[field.Name] = zeroValue(field.Type)
				continue
			}
			features[field.Name] = BoolValue(b)

		case TypeInt:
			i, ok := coerceInt(rawValue)
			if !ok {
				fail(field.Name, "must be an integer")
				features[field.Name] = zeroValue(field.Type)
				continue
			}
			features[field.Name] = IntValue(i)

		case TypeFloat:
			f, ok := coerceFloat(rawValue)
			if !ok {
				fail(field.Name, "must be a number")
				features[field.Name] = zeroValue(field.Type)
				continue
			}
			features[field.Name] = FloatValue(f)

		case TypeReferenceList:
			list, ok := coerceStringList(rawValue)
			if !ok {
				fail(field.Name, "must be a list of names")
				features[field.Name] = zeroValue(field.Type)
				continue
			}
			features[field.Name] = ListValue(list...)
		}
	}

	return features, fieldErrors
}

func zeroValue(t FieldType) Value {
	switch t {
	case TypeReferenceList:
		return ListValue()
	default:
		return Value{Type: t}
	}
}

func coerceBool(raw interface{}) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case float64:
		// Legacy rows store booleans as 0/1.
		if v == 0 {
			return false, true
		}
		if v == 1 {
			return true, true
		}
	case json.Number:
		if v.String() == "0" {
			return false, true
		}
		if v.String() == "1" {
			return true, true
		}
	}
	return false, false
}

func coerceInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func coerceFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func coerceStringList(raw interface{}) ([]string, bool) {
	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case []string:
		list := make([]string, 0, len(v))
		for _, s := range v {
			if clean := strings.TrimSpace(s); clean != "" {
				list = append(list, clean)
			}
		}
		return list, true
	case string:
		// A single name submitted where a list is expected.
		if clean := strings.TrimSpace(v); clean != "" {
			return []string{clean}, true
		}
		return []string{}, true
	default:
		return nil, false
	}

	list := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		if clean := strings.TrimSpace(s); clean != "" {
			list = append(list, clean)
		}
	}
	return list, true
}
