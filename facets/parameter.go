package facets

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nicoarellano/components-na/errors"
)

// ParameterKind discriminates the closed set of constraint variants.
type ParameterKind int

const (
	ParamSimple ParameterKind = iota
	ParamPattern
	ParamEnumeration
	ParamBounds
)

// Parameter is a declarative constraint on a scalar value: an exact simple
// value, a regular-expression pattern, an enumeration of candidates, or
// numeric bounds. A nil *Parameter means "no constraint" and matches
// everything.
type Parameter struct {
	kind ParameterKind

	value      any
	pattern    *regexp.Regexp
	patternSrc string
	options    []any

	min, max                   *float64
	minInclusive, maxInclusive bool
}

// NewSimple builds an exact-value constraint.
func NewSimple(value any) *Parameter {
	return &Parameter{kind: ParamSimple, value: value}
}

// NewPattern builds a regular-expression constraint. The pattern is applied
// as written: case sensitivity and anchoring come from the author's pattern
// syntax, never inferred.
func NewPattern(expr string) (*Parameter, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid pattern %q", expr)
	}
	return &Parameter{kind: ParamPattern, pattern: re, patternSrc: expr}, nil
}

// NewEnumeration builds an any-of constraint; at least one option must match.
func NewEnumeration(options ...any) *Parameter {
	return &Parameter{kind: ParamEnumeration, options: options}
}

// NewBounds builds a numeric range constraint. A nil side is unbounded.
func NewBounds(min, max *float64, minInclusive, maxInclusive bool) *Parameter {
	return &Parameter{
		kind:         ParamBounds,
		min:          min,
		max:          max,
		minInclusive: minInclusive,
		maxInclusive: maxInclusive,
	}
}

// Kind returns the constraint variant.
func (p *Parameter) Kind() ParameterKind { return p.kind }

// Describe renders the constraint as the required-value side of a check
// record. A nil parameter describes as nil.
func (p *Parameter) Describe() any {
	if p == nil {
		return nil
	}
	switch p.kind {
	case ParamSimple:
		return p.value
	case ParamPattern:
		return p.patternSrc
	case ParamEnumeration:
		return p.options
	case ParamBounds:
		var parts []string
		if p.min != nil {
			op := ">"
			if p.minInclusive {
				op = ">="
			}
			parts = append(parts, op+strconv.FormatFloat(*p.min, 'g', -1, 64))
		}
		if p.max != nil {
			op := "<"
			if p.maxInclusive {
				op = "<="
			}
			parts = append(parts, op+strconv.FormatFloat(*p.max, 'g', -1, 64))
		}
		return strings.Join(parts, ",")
	}
	return nil
}

// Matches evaluates a candidate scalar against a constraint. A nil parameter
// always matches; a nil candidate never matches a concrete parameter.
func Matches(candidate any, p *Parameter) bool {
	if p == nil {
		return true
	}
	if candidate == nil {
		return false
	}
	switch p.kind {
	case ParamSimple:
		return valuesEqual(candidate, p.value)
	case ParamPattern:
		return p.pattern.MatchString(stringify(candidate))
	case ParamEnumeration:
		for _, option := range p.options {
			if valuesEqual(candidate, option) {
				return true
			}
		}
		return false
	case ParamBounds:
		n, ok := toFloat(candidate)
		if !ok {
			return false
		}
		if p.min != nil {
			if p.minInclusive {
				if n < *p.min {
					return false
				}
			} else if n <= *p.min {
				return false
			}
		}
		if p.max != nil {
			if p.maxInclusive {
				if n > *p.max {
					return false
				}
			} else if n >= *p.max {
				return false
			}
		}
		return true
	}
	return false
}

// Check is the evidence-producing variant of Matches: it appends one check
// record for the evaluated constraint and returns its outcome.
func Check(label string, candidate any, p *Parameter, checks *[]CheckRecord) bool {
	pass := Matches(candidate, p)
	*checks = append(*checks, CheckRecord{
		Parameter:     label,
		CurrentValue:  candidate,
		RequiredValue: p.Describe(),
		Pass:          pass,
	})
	return pass
}

// valuesEqual compares candidate and constraint values, normalizing the
// numeric-vs-string mismatch that arises when a textual label value is
// constrained by a parameter authored as a bare number: the constraint is
// coerced to its string form.
func valuesEqual(candidate, target any) bool {
	if candidate == target {
		return true
	}
	cn, cok := toFloat(candidate)
	tn, tok := toFloat(target)
	if cok && tok {
		return cn == tn
	}
	if cs, ok := candidate.(string); ok && tok {
		return cs == stringify(target)
	}
	if ts, ok := target.(string); ok && cok {
		return ts == stringify(candidate)
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'g', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}
