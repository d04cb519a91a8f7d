package ifc

// Handle value kinds, matching the tags the parsing layer emits inside
// attribute bags. A bag attribute is either a raw scalar, a handle
// (map with "type"/"value"/"name" keys), or a list of either.
const (
	HandleUnknown = 0
	HandleString  = 1
	HandleLabel   = 2
	HandleEnum    = 3
	HandleReal    = 4
	HandleRef     = 5
	HandleEmpty   = 6
	HandleSet     = 7
	HandleInteger = 8
)

// Value is one decoded handle from an attribute bag.
//
// TypeTag carries the declared scalar type of the value (e.g. "IFCLABEL",
// "IFCREAL") when the source recorded one; it is what facet data-type
// constraints are checked against.
type Value struct {
	Kind    int    `json:"type"`
	TypeTag string `json:"name,omitempty"`
	Value   any    `json:"value"`
}

// IsNull reports whether the handle carries no value. An explicit null
// inside a handle is how logical-unknown and absent optionals arrive.
func (v Value) IsNull() bool {
	return v.Value == nil
}

// Str returns the value as a string when it is one.
func (v Value) Str() (string, bool) {
	s, ok := v.Value.(string)
	return s, ok
}

// Float returns the value as a float64, coercing decoded JSON numbers.
func (v Value) Float() (float64, bool) {
	switch n := v.Value.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Ref returns the value as an entity reference ID when Kind is HandleRef.
func (v Value) Ref() (int, bool) {
	if v.Kind != HandleRef {
		return 0, false
	}
	switch n := v.Value.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

// valueFromAny coerces a decoded JSON attribute into a Value. Raw scalars
// (no handle wrapper) are passed through with HandleUnknown.
func valueFromAny(raw any) (Value, bool) {
	switch h := raw.(type) {
	case Value:
		return h, true
	case *Value:
		if h == nil {
			return Value{}, false
		}
		return *h, true
	case map[string]any:
		v := Value{Value: h["value"]}
		if k, ok := h["type"].(float64); ok {
			v.Kind = int(k)
		}
		if name, ok := h["name"].(string); ok {
			v.TypeTag = name
		}
		return v, true
	case nil:
		return Value{}, false
	default:
		return Value{Value: raw}, true
	}
}
