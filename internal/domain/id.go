package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ID is the canonical text form of an entity identifier
type ID string

// String implements fmt.Stringer
func (id ID) String() string {
	return string(id)
}

// IDOf normalizes an identifier value.
// Strings and integral numbers are accepted; a number maps to its exact
// decimal text, so a value read back from JSON normalizes to the same ID it
// was written under. The second result is false when the value is absent
// (nil, empty string) or not usable as an identifier.
func IDOf(v any) (ID, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case ID:
		return x, x != ""
	case string:
		return ID(x), x != ""
	case json.Number:
		return numberID(x)
	case int:
		return ID(strconv.FormatInt(int64(x), 10)), true
	case int8:
		return ID(strconv.FormatInt(int64(x), 10)), true
	case int16:
		return ID(strconv.FormatInt(int64(x), 10)), true
	case int32:
		return ID(strconv.FormatInt(int64(x), 10)), true
	case int64:
		return ID(strconv.FormatInt(x, 10)), true
	case uint:
		return ID(strconv.FormatUint(uint64(x), 10)), true
	case uint8:
		return ID(strconv.FormatUint(uint64(x), 10)), true
	case uint16:
		return ID(strconv.FormatUint(uint64(x), 10)), true
	case uint32:
		return ID(strconv.FormatUint(uint64(x), 10)), true
	case uint64:
		return ID(strconv.FormatUint(x, 10)), true
	case float32:
		return floatID(float64(x))
	case float64:
		return floatID(x)
	}
	return "", false
}

// numberID accepts any JSON number with an integral value, including
// unsigned values above MaxInt64 and exponent forms such as 1e+19
func numberID(n json.Number) (ID, bool) {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return ID(strconv.FormatInt(i, 10)), true
	}
	if u, err := strconv.ParseUint(string(n), 10, 64); err == nil {
		return ID(strconv.FormatUint(u, 10)), true
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return "", false
	}
	return floatID(f)
}

// floatID formats integral floats. Values outside the int64 range are
// written as their exact decimal expansion rather than converted.
func floatID(f float64) (ID, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return "", false
	}
	if f >= math.MinInt64 && f < -math.MinInt64 {
		return ID(strconv.FormatInt(int64(f), 10)), true
	}
	return ID(strconv.FormatFloat(f, 'f', -1, 64)), true
}

// MustID is like IDOf but returns ErrInvalidIdentifier when the value is unusable.
func MustID(v any) (ID, error) {
	id, ok := IDOf(v)
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrInvalidIdentifier, v)
	}
	return id, nil
}
