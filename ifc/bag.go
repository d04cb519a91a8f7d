package ifc

// Bag is one entity's attribute bag as produced by the parsing layer:
// a schemaless map of attribute name to raw scalar, handle, or list.
type Bag map[string]any

// ExpressID returns the entity's integer identifier, or 0 when absent.
func (b Bag) ExpressID() int {
	switch id := b["expressID"].(type) {
	case float64:
		return int(id)
	case int:
		return id
	}
	return 0
}

// TypeCode returns the entity's schema type code, or 0 when absent.
func (b Bag) TypeCode() uint32 {
	switch t := b["type"].(type) {
	case float64:
		return uint32(t)
	case int:
		return uint32(t)
	case uint32:
		return t
	}
	return 0
}

// Handle returns the named attribute decoded as a single handle.
func (b Bag) Handle(key string) (Value, bool) {
	raw, ok := b[key]
	if !ok {
		return Value{}, false
	}
	return valueFromAny(raw)
}

// HandleList returns the named attribute decoded as a list of handles.
// A scalar attribute is returned as a one-element list.
func (b Bag) HandleList(key string) []Value {
	raw, ok := b[key]
	if !ok || raw == nil {
		return nil
	}
	switch list := raw.(type) {
	case []any:
		out := make([]Value, 0, len(list))
		for _, item := range list {
			if v, ok := valueFromAny(item); ok {
				out = append(out, v)
			}
		}
		return out
	case []Value:
		return list
	default:
		if v, ok := valueFromAny(raw); ok {
			return []Value{v}
		}
		return nil
	}
}

// RefIDs returns the entity references held by the named attribute,
// in attribute order. Non-reference handles are skipped.
func (b Bag) RefIDs(key string) []int {
	handles := b.HandleList(key)
	if handles == nil {
		return nil
	}
	ids := make([]int, 0, len(handles))
	for _, h := range handles {
		if id, ok := h.Ref(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// RefID returns a single entity reference held by the named attribute.
func (b Bag) RefID(key string) (int, bool) {
	h, ok := b.Handle(key)
	if !ok {
		return 0, false
	}
	return h.Ref()
}

// Name returns the entity's Name attribute as a string, which most
// property-bearing entities carry as a wrapped label.
func (b Bag) Name() (string, bool) {
	h, ok := b.Handle("Name")
	if !ok {
		return "", false
	}
	return h.Str()
}

// GlobalID returns the entity's GlobalId attribute, or "" when absent.
func (b Bag) GlobalID() string {
	h, ok := b.Handle("GlobalId")
	if !ok {
		return ""
	}
	s, _ := h.Str()
	return s
}
