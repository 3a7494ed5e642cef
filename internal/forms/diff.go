package forms

import (
	"strconv"
	"time"
)

// Changed returns the subset of current whose values are not loosely
// equal to the corresponding values in initial. A key absent from
// initial always counts as changed. Neither input is mutated and the
// result is derived purely from the two arguments, so the same inputs
// always yield the same delta.
func Changed(current, initial Values) Values {
	out := Values{}
	for k, v := range current {
		iv, ok := initial[k]
		if !ok || !looseEqual(v, iv) {
			out[k] = v
		}
	}
	return out
}

// looseEqual compares two field values the way a form round-trip sees
// them: numbers compare numerically across int/float/string
// representations, bools coerce to 0/1, times compare by instant.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Equal(bt)
		}
		return false
	}
	if _, ok := b.(time.Time); ok {
		return false
	}
	as, aIsString := a.(string)
	bs, bIsString := b.(string)
	if aIsString && bIsString {
		return as == bs
	}
	af, aNum := toNumber(a)
	bf, bNum := toNumber(b)
	if aNum && bNum {
		return af == bf
	}
	return false
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// Truthy reports whether a field value reads as "checked" for a
// checkbox kind.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case time.Time:
		return !t.IsZero()
	}
	f, ok := toNumber(v)
	return ok && f != 0
}
