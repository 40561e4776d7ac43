package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Evaluate reports whether every condition holds against the trigger data.
// An empty condition list always matches. A condition naming a field absent
// from the data only matches for is_empty.
func Evaluate(conditions []Condition, data map[string]interface{}) bool {
	for _, condition := range conditions {
		if !evaluateOne(condition, data) {
			return false
		}
	}
	return true
}

func evaluateOne(c Condition, data map[string]interface{}) bool {
	value, present := data[c.Field]

	switch c.Operator {
	case OpIsEmpty:
		return !present || isEmpty(value)
	case OpIsNotEmpty:
		return present && !isEmpty(value)
	}
	if !present {
		return false
	}

	switch c.Operator {
	case OpEquals:
		return asString(value) == asString(c.Value)
	case OpNotEquals:
		return asString(value) != asString(c.Value)
	case OpContains:
		return strings.Contains(asString(value), asString(c.Value))
	case OpGreaterThan:
		left, right, ok := asFloats(value, c.Value)
		return ok && left > right
	case OpLessThan:
		left, right, ok := asFloats(value, c.Value)
		return ok && left < right
	default:
		return false
	}
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []interface{}:
		return len(v) == 0
	default:
		return false
	}
}

func asString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// asFloats coerces both sides to float64 for numeric comparison. Strings that
// parse as numbers are accepted so JSON-decoded values compare naturally.
func asFloats(left, right interface{}) (float64, float64, bool) {
	l, ok := asFloat(left)
	if !ok {
		return 0, 0, false
	}
	r, ok := asFloat(right)
	if !ok {
		return 0, 0, false
	}
	return l, r, true
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
