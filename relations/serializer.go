package relations

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/nicoarellano/components-na/errors"
)

// Serialize renders a relation map as its transport representation: a JSON
// object of objects, {entityID: {roleIndex: [relatedID, ...]}}, with keys in
// ascending numeric order. Identifiers are written as exact integers.
func Serialize(relations ModelRelations) string {
	var buf bytes.Buffer
	writeModel(&buf, relations)
	return buf.String()
}

// SerializeAll nests per-model objects under a single envelope keyed by
// model identifier.
func SerializeAll(all map[string]ModelRelations) string {
	modelIDs := make([]string, 0, len(all))
	for modelID := range all {
		modelIDs = append(modelIDs, modelID)
	}
	sort.Strings(modelIDs)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, modelID := range modelIDs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(modelID)
		buf.Write(key)
		buf.WriteByte(':')
		writeModel(&buf, all[modelID])
	}
	buf.WriteByte('}')
	return buf.String()
}

func writeModel(buf *bytes.Buffer, relations ModelRelations) {
	entityIDs := make([]int, 0, len(relations))
	for entityID := range relations {
		entityIDs = append(entityIDs, entityID)
	}
	sort.Ints(entityIDs)

	buf.WriteByte('{')
	for i, entityID := range entityIDs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.Itoa(entityID))
		buf.WriteString(`":`)
		writeSlots(buf, relations[entityID])
	}
	buf.WriteByte('}')
}

func writeSlots(buf *bytes.Buffer, er EntityRelations) {
	roles := make([]int, 0, len(er))
	for role := range er {
		roles = append(roles, int(role))
	}
	sort.Ints(roles)

	buf.WriteByte('{')
	for i, role := range roles {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(strconv.Itoa(role))
		buf.WriteString(`":[`)
		for j, id := range er[Role(role)] {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Itoa(id))
		}
		buf.WriteString("]")
	}
	buf.WriteByte('}')
}

// Deserialize parses the single-model transport representation back into a
// relation map. Integer identifiers round-trip exactly; the decoder never
// routes them through float64.
func Deserialize(text string) (ModelRelations, error) {
	var raw map[string]map[string][]json.Number
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decoding relation map")
	}
	return modelFromRaw(raw)
}

// DeserializeAll parses the multi-model envelope.
func DeserializeAll(text string) (map[string]ModelRelations, error) {
	var raw map[string]map[string]map[string][]json.Number
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decoding relation map envelope")
	}
	all := make(map[string]ModelRelations, len(raw))
	for modelID, rawModel := range raw {
		relations, err := modelFromRaw(rawModel)
		if err != nil {
			return nil, errors.Wrapf(err, "model %q", modelID)
		}
		all[modelID] = relations
	}
	return all, nil
}

func modelFromRaw(raw map[string]map[string][]json.Number) (ModelRelations, error) {
	relations := make(ModelRelations, len(raw))
	for entityKey, rawSlots := range raw {
		entityID, err := strconv.Atoi(entityKey)
		if err != nil {
			return nil, errors.Wrapf(err, "entity key %q", entityKey)
		}
		er := make(EntityRelations, len(rawSlots))
		for roleKey, rawIDs := range rawSlots {
			roleIndex, err := strconv.Atoi(roleKey)
			if err != nil {
				return nil, errors.Wrapf(err, "role key %q", roleKey)
			}
			if !Role(roleIndex).Valid() {
				return nil, errors.Newf("role index %d out of range", roleIndex)
			}
			ids := make([]int, len(rawIDs))
			for i, n := range rawIDs {
				id, err := strconv.Atoi(n.String())
				if err != nil {
					return nil, errors.Wrapf(err, "related ID %q", n.String())
				}
				ids[i] = id
			}
			er[Role(roleIndex)] = ids
		}
		relations[entityID] = er
	}
	return relations, nil
}
