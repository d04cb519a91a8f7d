package relations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTrip(t *testing.T) {
	original := ModelRelations{
		1: {
			ContainsElements: []int{10, 11},
			IsDecomposedBy:   []int{},
		},
		10: {
			ContainedInStructure: []int{1},
			IsDefinedBy:          []int{100, 100},
		},
	}

	text := Serialize(original)
	restored, err := Deserialize(text)
	require.NoError(t, err)

	assert.Equal(t, original, restored)
}

func TestSerializeKeyOrder(t *testing.T) {
	rel := ModelRelations{
		20: {ContainsElements: []int{3}},
		3:  {ContainedInStructure: []int{20}, IsDefinedBy: []int{5}},
	}

	text := Serialize(rel)
	// Entity keys ascend numerically, role keys ascend within an entity.
	assert.Equal(t, `{"3":{"7":[5],"12":[20]},"20":{"13":[3]}}`, text)
}

func TestSerializePreservesLargeIdentifiers(t *testing.T) {
	// Past float64's exact-integer range; must not lose precision.
	big := int(1) << 55
	rel := ModelRelations{
		big: {ContainsElements: []int{big + 1}},
	}

	restored, err := Deserialize(Serialize(rel))
	require.NoError(t, err)
	assert.Equal(t, []int{big + 1}, restored[big][ContainsElements])
}

func TestDeserializeRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"not json":          "not json",
		"bad entity key":    `{"abc":{"0":[1]}}`,
		"bad role key":      `{"1":{"x":[1]}}`,
		"role out of range": `{"1":{"99":[1]}}`,
		"float id":          `{"1":{"0":[1.5]}}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Deserialize(text)
			assert.Error(t, err)
		})
	}
}

func TestSerializeAllRoundTrip(t *testing.T) {
	all := map[string]ModelRelations{
		"clinic": {
			1: {ContainsElements: []int{10}},
		},
		"school": {
			2: {IsDefinedBy: []int{200}},
		},
	}

	text := SerializeAll(all)
	// Model keys in lexical order for deterministic output.
	require.True(t, strings.Index(text, "clinic") < strings.Index(text, "school"))

	restored, err := DeserializeAll(text)
	require.NoError(t, err)
	assert.Equal(t, all, restored)
}
