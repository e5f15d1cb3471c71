// Package validator holds stateless predicates over arbitrary values.
//
// Every check accepts an untyped value and never panics; values of the
// wrong kind simply fail the check.
package validator

import (
	"math"
	"reflect"
	"regexp"
)

// Value binds an input so several checks can be chained against it
type Value struct {
	Input any
}

// New creates a Value for input
func New(input any) *Value {
	return &Value{Input: input}
}

func (v *Value) IsNaN() bool                        { return IsNaN(v.Input) }
func (v *Value) IsInfinity() bool                   { return IsInfinity(v.Input) }
func (v *Value) IsNumber() bool                     { return IsNumber(v.Input) }
func (v *Value) IsString() bool                     { return IsString(v.Input) }
func (v *Value) IsFunction() bool                   { return IsFunction(v.Input) }
func (v *Value) IsInRange(min, max float64) bool    { return IsInRange(v.Input, min, max) }
func (v *Value) IsNonEmptyString() bool             { return IsNonEmptyString(v.Input) }
func (v *Value) IsValidTable() bool                 { return IsValidTable(v.Input) }
func (v *Value) IsBoolean() bool                    { return IsBoolean(v.Input) }
func (v *Value) MatchesPattern(pattern string) bool { return MatchesPattern(v.Input, pattern) }
func (v *Value) IsTruthy() bool                     { return IsTruthy(v.Input) }
func (v *Value) IsFalsy() bool                      { return IsFalsy(v.Input) }
func (v *Value) IsPositiveNumber() bool             { return IsPositiveNumber(v.Input) }
func (v *Value) IsNegativeNumber() bool             { return IsNegativeNumber(v.Input) }
func (v *Value) IsInteger() bool                    { return IsInteger(v.Input) }

// IsNonEmptyString reports whether value is a string with at least one byte
func IsNonEmptyString(value any) bool {
	s, ok := value.(string)
	return ok && s != ""
}

// IsString reports whether value is a string
func IsString(value any) bool {
	_, ok := value.(string)
	return ok
}

// IsBoolean reports whether value is a bool
func IsBoolean(value any) bool {
	_, ok := value.(bool)
	return ok
}

// IsFunction reports whether value is a non-nil func of any signature
func IsFunction(value any) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

// IsNumber reports whether value is any integer or floating point kind
func IsNumber(value any) bool {
	_, ok := toFloat(value)
	return ok
}

// IsNaN reports whether value is a floating point NaN
func IsNaN(value any) bool {
	f, ok := toFloat(value)
	return ok && math.IsNaN(f)
}

// IsInfinity reports whether value is positive or negative infinity
func IsInfinity(value any) bool {
	f, ok := toFloat(value)
	return ok && math.IsInf(f, 0)
}

// IsInteger reports whether value is an integer kind or a float with no fractional part
func IsInteger(value any) bool {
	f, ok := toFloat(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	return f == math.Trunc(f)
}

// IsPositiveNumber reports whether value is a number greater than zero
func IsPositiveNumber(value any) bool {
	f, ok := toFloat(value)
	return ok && f > 0
}

// IsNegativeNumber reports whether value is a number less than zero
func IsNegativeNumber(value any) bool {
	f, ok := toFloat(value)
	return ok && f < 0
}

// IsInRange reports whether value is a number within [min, max]
func IsInRange(value any, min, max float64) bool {
	f, ok := toFloat(value)
	return ok && f >= min && f <= max
}

// IsValidTable reports whether value is a non-empty map, slice or array
func IsValidTable(value any) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() > 0
	default:
		return false
	}
}

// MatchesPattern reports whether value is a string matching the regular expression pattern.
// An invalid pattern never matches.
func MatchesPattern(value any, pattern string) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// IsFalsy reports whether value is nil, false, or a nil pointer, map, slice, chan, func or interface
func IsFalsy(value any) bool {
	if value == nil {
		return true
	}
	if b, ok := value.(bool); ok {
		return !b
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// IsTruthy is the negation of IsFalsy
func IsTruthy(value any) bool {
	return !IsFalsy(value)
}

func toFloat(value any) (float64, bool) {
	if value == nil {
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
