package validation

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// IntParam declares an integer path or query parameter. Gt and Lt are
// exclusive bounds and are only enforced when non-nil.
type IntParam struct {
	Name     string
	In       Location
	Required bool
	Gt       *int
	Lt       *int
}

// StringParam declares a string path or query parameter.
type StringParam struct {
	Name     string
	In       Location
	Required bool
}

// Bound returns a pointer to n for use in IntParam bounds.
func Bound(n int) *int { return &n }

// Binder collects parameter values for a single request.
type Binder struct {
	r    *http.Request
	errs Errors
}

// Bind starts binding values from r.
func Bind(r *http.Request) *Binder {
	return &Binder{r: r}
}

func (b *Binder) lookup(name string, in Location) (string, bool) {
	switch in {
	case InPath:
		v := b.r.PathValue(name)
		return v, v != ""
	case InQuery:
		q := b.r.URL.Query()
		if !q.Has(name) {
			return "", false
		}
		return q.Get(name), true
	default:
		return "", false
	}
}

// Int binds an integer parameter. The zero value is returned when the
// parameter is absent or invalid; check Err before using it.
func (b *Binder) Int(p IntParam) int {
	raw, ok := b.lookup(p.Name, p.In)
	if !ok {
		if p.Required || p.In == InPath {
			b.errs = append(b.errs, missing(string(p.In), p.Name))
		}
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		b.errs = append(b.errs, FieldError{
			Loc:   []string{string(p.In), p.Name},
			Msg:   "Input should be a valid integer, unable to parse string as an integer",
			Type:  "int_parsing",
			Input: raw,
		})
		return 0
	}
	if p.Gt != nil && n <= *p.Gt {
		b.errs = append(b.errs, FieldError{
			Loc:   []string{string(p.In), p.Name},
			Msg:   fmt.Sprintf("Input should be greater than %d", *p.Gt),
			Type:  "greater_than",
			Input: raw,
		})
		return 0
	}
	if p.Lt != nil && n >= *p.Lt {
		b.errs = append(b.errs, FieldError{
			Loc:   []string{string(p.In), p.Name},
			Msg:   fmt.Sprintf("Input should be less than %d", *p.Lt),
			Type:  "less_than",
			Input: raw,
		})
		return 0
	}
	return n
}

// String binds a string parameter and reports whether it was supplied.
func (b *Binder) String(p StringParam) (string, bool) {
	raw, ok := b.lookup(p.Name, p.In)
	if !ok && (p.Required || p.In == InPath) {
		b.errs = append(b.errs, missing(string(p.In), p.Name))
	}
	return raw, ok
}

// Body decodes the request body into dst after checking it against schema.
func (b *Binder) Body(schema Schema, dst any) {
	b.errs = append(b.errs, schema.Decode(b.r.Body, dst)...)
}

// Err returns the collected errors, or nil when binding succeeded.
func (b *Binder) Err() error {
	if len(b.errs) == 0 {
		return nil
	}
	return b.errs
}
