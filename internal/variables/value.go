package variables

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// valueKind identifies which branch of a Value is populated.
type valueKind int

const (
	kindNull valueKind = iota
	kindScalar
	kindList
	kindMap
)

// Value is a node of a free-form lookup tree such as the project-meta
// document: a scalar, an ordered list or a keyed map of further values.
type Value struct {
	kind   valueKind
	scalar interface{}
	items  []Value
	fields map[string]Value
}

// Null is the empty value.
var Null = Value{}

// Scalar wraps a string, bool or number.
func Scalar(v interface{}) Value {
	if v == nil {
		return Null
	}
	return Value{kind: kindScalar, scalar: v}
}

// List builds a list value.
func List(items ...Value) Value {
	return Value{kind: kindList, items: items}
}

// Map builds a map value.
func Map(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: kindMap, fields: fields}
}

// FromAny converts a decoded JSON or YAML tree into a Value.
func FromAny(v interface{}) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case Value:
		return t
	case map[string]interface{}:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[k] = FromAny(item)
		}
		return Map(fields)
	case map[interface{}]interface{}:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[fmt.Sprint(k)] = FromAny(item)
		}
		return Map(fields)
	case []interface{}:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return List(items...)
	case []string:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = Scalar(item)
		}
		return List(items...)
	default:
		return Scalar(t)
	}
}

// IsNull reports whether v holds nothing.
func (v Value) IsNull() bool { return v.kind == kindNull }

// Get returns the child named key. Lists accept decimal indices.
func (v Value) Get(key string) (Value, bool) {
	switch v.kind {
	case kindMap:
		child, ok := v.fields[key]
		if !ok || child.IsNull() {
			return Null, false
		}
		return child, true
	case kindList:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(v.items) {
			return Null, false
		}
		child := v.items[idx]
		return child, !child.IsNull()
	default:
		return Null, false
	}
}

// Lookup walks a dotted path such as "test_data.users.valid_user.username".
// Any missing step, empty segment or non-container intermediate yields false.
func (v Value) Lookup(path string) (Value, bool) {
	current := v
	for _, key := range strings.Split(path, ".") {
		if key == "" {
			return Null, false
		}
		next, ok := current.Get(key)
		if !ok {
			return Null, false
		}
		current = next
	}
	return current, true
}

// String renders the natural textual form of the value. Lists are
// comma-joined and maps are rendered as compact JSON.
func (v Value) String() string {
	switch v.kind {
	case kindScalar:
		return scalarString(v.scalar)
	case kindList:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	case kindMap:
		data, err := json.Marshal(v.Any())
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// Any converts the value back into plain Go maps, slices and scalars.
func (v Value) Any() interface{} {
	switch v.kind {
	case kindScalar:
		return v.scalar
	case kindList:
		out := make([]interface{}, len(v.items))
		for i, item := range v.items {
			out[i] = item.Any()
		}
		return out
	case kindMap:
		out := make(map[string]interface{}, len(v.fields))
		for k, item := range v.fields {
			out[k] = item.Any()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = FromAny(raw)
	return nil
}

func scalarString(s interface{}) string {
	switch t := s.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}
