// Package coerce converts loosely typed expected/actual values for comparison and display.
package coerce

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/segmentio/encoding/json"
)

// Number reads v as a number. Strings are trimmed and parsed as integers
// unless they contain a '.', in which case they are parsed as floats.
// Booleans and everything non-numeric report false.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case string:
		return parseNumber(n)
	}
	return 0, false
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if !strings.Contains(s, ".") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return float64(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var rangeSeparators = []rune{'~', '-', '\u2013', '\u2014'}

func isRangeSeparator(r rune) bool {
	for _, sep := range rangeSeparators {
		if r == sep {
			return true
		}
	}
	return false
}

// Range reads v as an inclusive interval. A string needs exactly one
// separator ("200~299"); a two-element list is accepted as-is. Reversed
// bounds are swapped.
func Range(v any) (lo, hi float64, err error) {
	var okLo, okHi bool
	switch r := v.(type) {
	case []any:
		if len(r) != 2 {
			return 0, 0, fmt.Errorf("invalid range: %s", String(v))
		}
		lo, okLo = Number(r[0])
		hi, okHi = Number(r[1])
	case string:
		s := strings.TrimSpace(r)
		at, width, count := -1, 0, 0
		for i, ch := range s {
			if isRangeSeparator(ch) {
				count++
				at, width = i, utf8.RuneLen(ch)
			}
		}
		if count != 1 {
			return 0, 0, fmt.Errorf("invalid range: %s", r)
		}
		lo, okLo = Number(s[:at])
		hi, okHi = Number(s[at+width:])
	default:
		return 0, 0, fmt.Errorf("invalid range: %s", String(v))
	}
	if !okLo || !okHi {
		return 0, 0, fmt.Errorf("invalid range: %s", String(v))
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, nil
}

// String renders v for messages and substring checks. nil renders as
// "null"; maps and lists render as compact JSON.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return FormatFloat(t)
	case float32:
		return FormatFloat(float64(t))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Text is String except nil renders empty
func Text(v any) string {
	if v == nil {
		return ""
	}
	return String(v)
}

// FormatFloat prints f without a trailing ".0" for whole numbers
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseJSONish returns the decoded value when v is a string holding
// valid JSON, otherwise v unchanged.
func ParseJSONish(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || !json.Valid([]byte(trimmed)) {
		return v
	}
	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		return v
	}
	return parsed
}

// Equal compares two decoded values, treating all numeric kinds alike.
func Equal(a, b any) bool {
	return reflect.DeepEqual(canonical(a), canonical(b))
}

func canonical(v any) any {
	if _, isBool := v.(bool); !isBool {
		if _, isString := v.(string); !isString {
			if f, ok := Number(v); ok {
				return f
			}
		}
	}
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonical(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = canonical(e)
		}
		return out
	}
	return v
}
