package wire

import (
	"fmt"
)

// toUint64 coerces the integer types a record slot may hold into the
// unsigned bit pattern the wire carries.
func toUint64(v interface{}) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint32:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint8:
		return uint64(n), nil
	case uint:
		return uint64(n), nil
	case int64:
		return uint64(n), nil
	case int32:
		return uint64(n), nil
	case int16:
		return uint64(n), nil
	case int8:
		return uint64(n), nil
	case int:
		return uint64(n), nil
	default:
		return 0, fmt.Errorf("value must be an integer, got %T", v)
	}
}

// toInt coerces a length-carrying slot (a sibling size field) into an int.
func toInt(v interface{}) (int, error) {
	n, err := toUint64(v)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// toBytes coerces a binary-carrying slot into a byte slice. Strings are
// accepted for convenience.
func toBytes(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return nil, fmt.Errorf("value must be bytes or string, got %T", v)
	}
}

// isAbsent implements the three-valued absence test for conditional gates:
// nil, numeric zero and the empty string (or empty bytes) all read as
// "absent". Zero is therefore never a transmitted flag value.
func isAbsent(v interface{}) bool {
	if v == nil {
		return true
	}
	switch n := v.(type) {
	case string:
		return n == ""
	case []byte:
		return len(n) == 0
	case float32:
		return n == 0
	case float64:
		return n == 0
	case bool:
		return !n
	}
	if u, err := toUint64(v); err == nil {
		return u == 0
	}
	return false
}
