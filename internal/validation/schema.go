package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

// Kind is the JSON type a body field must carry.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	// KindFloatMap is an object whose values are all numbers.
	KindFloatMap
)

// Field declares one body field. Aliases are alternative keys accepted in
// place of Name.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Aliases  []string
}

// Schema declares the shape of a JSON object body.
type Schema struct {
	Fields []Field
}

// Decode reads a JSON object from r, checks every declared field and, when
// all checks pass, unmarshals the object into dst.
func (s Schema) Decode(r io.Reader, dst any) Errors {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Errors{{Loc: []string{string(InBody)}, Msg: "unable to read body", Type: "body_read"}}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Errors{missing(string(InBody))}
	}
	var obj map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Errors{{Loc: []string{string(InBody)}, Msg: "Input should be a valid dictionary or object to extract fields from", Type: "model_attributes_type"}}
		}
		return Errors{{Loc: []string{string(InBody)}, Msg: "JSON decode error", Type: "json_invalid"}}
	}
	if obj == nil {
		return Errors{{Loc: []string{string(InBody)}, Msg: "Input should be a valid dictionary or object to extract fields from", Type: "model_attributes_type"}}
	}

	var errs Errors
	coerced := false
	for _, f := range s.Fields {
		key, value, ok := f.lookup(obj)
		if !ok || isNull(value) {
			if f.Required {
				errs = append(errs, missing(string(InBody), f.Name))
			}
			continue
		}
		norm, fe, bad := f.check(value)
		if bad {
			errs = append(errs, fe)
			continue
		}
		if norm != nil {
			obj[key] = norm
			coerced = true
		}
	}
	if len(errs) > 0 {
		return errs
	}
	if coerced {
		if raw, err = json.Marshal(obj); err != nil {
			return Errors{{Loc: []string{string(InBody)}, Msg: err.Error(), Type: "value_error"}}
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return Errors{{Loc: []string{string(InBody)}, Msg: err.Error(), Type: "value_error"}}
	}
	return nil
}

func (f Field) lookup(obj map[string]json.RawMessage) (string, json.RawMessage, bool) {
	if v, ok := obj[f.Name]; ok && !isNull(v) {
		return f.Name, v, true
	}
	for _, alias := range f.Aliases {
		if v, ok := obj[alias]; ok {
			return alias, v, true
		}
	}
	v, ok := obj[f.Name]
	return f.Name, v, ok
}

// check validates value against the field kind. Numbers are accepted in lax
// form: integral floats and numeric strings for ints, numeric strings for
// floats. A non-nil normalized value replaces the original before decoding.
func (f Field) check(value json.RawMessage) (json.RawMessage, FieldError, bool) {
	loc := []string{string(InBody), f.Name}
	switch f.Kind {
	case KindString:
		var s string
		if json.Unmarshal(value, &s) != nil {
			return nil, FieldError{Loc: loc, Msg: "Input should be a valid string", Type: "string_type", Input: rawInput(value)}, true
		}
	case KindInt:
		norm, fe, bad := laxInt(value)
		fe.Loc = loc
		return norm, fe, bad
	case KindFloat:
		norm, ok := laxFloat(value)
		if !ok {
			return nil, FieldError{Loc: loc, Msg: "Input should be a valid number", Type: "float_type", Input: rawInput(value)}, true
		}
		return norm, FieldError{}, false
	case KindFloatMap:
		var m map[string]json.RawMessage
		if json.Unmarshal(value, &m) != nil || m == nil {
			return nil, FieldError{Loc: loc, Msg: "Input should be a valid dictionary", Type: "dict_type", Input: rawInput(value)}, true
		}
		changed := false
		for key, v := range m {
			norm, ok := laxFloat(v)
			if !ok {
				return nil, FieldError{Loc: append(loc, key), Msg: "Input should be a valid number", Type: "float_type", Input: rawInput(v)}, true
			}
			if norm != nil {
				m[key] = norm
				changed = true
			}
		}
		if changed {
			out, err := json.Marshal(m)
			if err != nil {
				return nil, FieldError{Loc: loc, Msg: err.Error(), Type: "value_error"}, true
			}
			return out, FieldError{}, false
		}
	}
	return nil, FieldError{}, false
}

func laxInt(value json.RawMessage) (json.RawMessage, FieldError, bool) {
	var i int64
	if json.Unmarshal(value, &i) == nil {
		return nil, FieldError{}, false
	}
	if n, ok := number(value); ok {
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt64/2 {
			return nil, FieldError{Msg: "Input should be a valid integer, got a number with a fractional part", Type: "int_from_float", Input: n}, true
		}
		return json.RawMessage(strconv.FormatInt(int64(n), 10)), FieldError{}, false
	}
	var s string
	if json.Unmarshal(value, &s) == nil {
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return json.RawMessage(strconv.FormatInt(i, 10)), FieldError{}, false
		}
		return nil, FieldError{Msg: "Input should be a valid integer, unable to parse string as an integer", Type: "int_parsing", Input: s}, true
	}
	return nil, FieldError{Msg: "Input should be a valid integer", Type: "int_type", Input: rawInput(value)}, true
}

// laxFloat reports whether value is a number or a numeric string; strings are
// normalized to their number.
func laxFloat(value json.RawMessage) (json.RawMessage, bool) {
	if _, ok := number(value); ok {
		return nil, true
	}
	var s string
	if json.Unmarshal(value, &s) != nil {
		return nil, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
		return nil, false
	}
	return json.RawMessage(strconv.FormatFloat(n, 'g', -1, 64)), true
}

func number(value json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(value, &n); err != nil {
		return 0, false
	}
	return n, true
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func rawInput(value json.RawMessage) any {
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		return string(value)
	}
	return v
}
