package facets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicoarellano/components-na/ifc"
	"github.com/nicoarellano/components-na/logger"
	"github.com/nicoarellano/components-na/relations"
)

func ref(id int) ifc.Value {
	return ifc.Value{Kind: ifc.HandleRef, Value: id}
}

func refs(ids ...int) []ifc.Value {
	out := make([]ifc.Value, len(ids))
	for i, id := range ids {
		out[i] = ref(id)
	}
	return out
}

func label(s string) ifc.Value {
	return ifc.Value{Kind: ifc.HandleLabel, Value: s}
}

func wall(guid string) ifc.Bag {
	return ifc.Bag{
		"type":     uint32(2391406946),
		"GlobalId": ifc.Value{Kind: ifc.HandleString, Value: guid},
	}
}

// fixtureEngine builds an indexed model with one property scenario per wall:
//
//	10  Pset_Demo { Width = 5 (IFCREAL) }
//	11  no sets at all
//	12  Pset_Complex { one complex property }
//	13  Pset_Demo { Status = "" (IFCLABEL) }
//	14  Pset_Demo { Rating = enumerated ["A", "B"] }
//	15  Qto_WallBase { GrossArea = 12.5 (IFCAREAMEASURE) }
//	16  Pset_Demo { Width = 5 } plus Pset_Other { Height = 3 }
func fixtureEngine(t *testing.T) *Engine {
	t.Helper()
	model := ifc.NewMemModel("clinic", map[int]ifc.Bag{
		10: wall("WALL-GUID-10"),
		11: wall("WALL-GUID-11"),
		12: wall("WALL-GUID-12"),
		13: wall("WALL-GUID-13"),
		14: wall("WALL-GUID-14"),
		15: wall("WALL-GUID-15"),
		16: wall("WALL-GUID-16"),
		100: {
			"type":          ifc.IfcPropertySet,
			"Name":          label("Pset_Demo"),
			"HasProperties": refs(1000),
		},
		101: {
			"type":       ifc.IfcElementQuantity,
			"Name":       label("Qto_WallBase"),
			"Quantities": refs(1100),
		},
		102: {
			"type":          ifc.IfcPropertySet,
			"Name":          label("Pset_Complex"),
			"HasProperties": refs(1200),
		},
		103: {
			"type":          ifc.IfcPropertySet,
			"Name":          label("Pset_Demo"),
			"HasProperties": refs(1001),
		},
		104: {
			"type":          ifc.IfcPropertySet,
			"Name":          label("Pset_Demo"),
			"HasProperties": refs(1002),
		},
		105: {
			"type":          ifc.IfcPropertySet,
			"Name":          label("Pset_Other"),
			"HasProperties": refs(1003),
		},
		1000: {
			"type":         ifc.IfcPropertySingleValue,
			"Name":         label("Width"),
			"NominalValue": ifc.Value{Kind: ifc.HandleReal, TypeTag: "IFCREAL", Value: 5.0},
		},
		1001: {
			"type":         ifc.IfcPropertySingleValue,
			"Name":         label("Status"),
			"NominalValue": ifc.Value{Kind: ifc.HandleLabel, TypeTag: "IFCLABEL", Value: ""},
		},
		1002: {
			"type": ifc.IfcPropertyEnumeratedValue,
			"Name": label("Rating"),
			"EnumerationValues": []ifc.Value{
				{Kind: ifc.HandleLabel, TypeTag: "IFCLABEL", Value: "A"},
				{Kind: ifc.HandleLabel, TypeTag: "IFCLABEL", Value: "B"},
			},
		},
		1003: {
			"type":         ifc.IfcPropertySingleValue,
			"Name":         label("Height"),
			"NominalValue": ifc.Value{Kind: ifc.HandleReal, TypeTag: "IFCREAL", Value: 3.0},
		},
		1100: {
			"type":      ifc.IfcQuantityArea,
			"Name":      label("GrossArea"),
			"AreaValue": ifc.Value{Kind: ifc.HandleReal, TypeTag: "IFCAREAMEASURE", Value: 12.5},
		},
		1200: {
			"type": ifc.IfcComplexProperty,
			"Name": label("Width"),
		},
		500: {
			"type":                       ifc.IfcRelDefinesByProperties,
			"RelatingPropertyDefinition": ref(100),
			"RelatedObjects":             refs(10, 16),
		},
		501: {
			"type":                       ifc.IfcRelDefinesByProperties,
			"RelatingPropertyDefinition": ref(101),
			"RelatedObjects":             refs(15),
		},
		502: {
			"type":                       ifc.IfcRelDefinesByProperties,
			"RelatingPropertyDefinition": ref(102),
			"RelatedObjects":             refs(12),
		},
		503: {
			"type":                       ifc.IfcRelDefinesByProperties,
			"RelatingPropertyDefinition": ref(103),
			"RelatedObjects":             refs(13),
		},
		504: {
			"type":                       ifc.IfcRelDefinesByProperties,
			"RelatingPropertyDefinition": ref(104),
			"RelatedObjects":             refs(14),
		},
		505: {
			"type":                       ifc.IfcRelDefinesByProperties,
			"RelatingPropertyDefinition": ref(105),
			"RelatedObjects":             refs(16),
		},
	})

	registry := ifc.NewRegistry()
	registry.Add(model)
	indexer := relations.NewIndexer(registry, registry, logger.Logger)
	t.Cleanup(indexer.Close)

	_, err := indexer.Index(context.Background(), model)
	require.NoError(t, err)
	return NewEngine(indexer, registry, logger.Logger)
}

func findCheck(checks []CheckRecord, parameter string) *CheckRecord {
	for i := range checks {
		if checks[i].Parameter == parameter {
			return &checks[i]
		}
	}
	return nil
}

func TestPropertyFacetExactMatch(t *testing.T) {
	engine := fixtureEngine(t)

	facet := engine.NewPropertyFacet()
	facet.PropertySet = NewSimple("Pset_Demo")
	facet.BaseName = NewSimple("Width")
	facet.Value = NewSimple(5)

	results, err := facet.Test(context.Background(), []int{10}, "clinic")
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.True(t, result.Pass)
	assert.Equal(t, 10, result.EntityID)
	assert.Equal(t, "WALL-GUID-10", result.GlobalID)

	require.Len(t, result.Checks, 3)
	labels := make([]string, len(result.Checks))
	for i, check := range result.Checks {
		assert.True(t, check.Pass)
		labels[i] = check.Parameter
	}
	assert.Equal(t, []string{"PropertySet", "BaseName", "Value"}, labels)
}

func TestPropertyFacetMissingSet(t *testing.T) {
	engine := fixtureEngine(t)

	facet := engine.NewPropertyFacet()
	facet.PropertySet = NewSimple("Pset_Missing")
	facet.BaseName = NewSimple("Width")

	results, err := facet.Test(context.Background(), []int{11}, "clinic")
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.False(t, result.Pass)
	require.Len(t, result.Checks, 1)
	assert.Equal(t, "PropertySet", result.Checks[0].Parameter)
	assert.Nil(t, result.Checks[0].CurrentValue)
	assert.False(t, result.Checks[0].Pass)
}

// The set-not-found path does not consult cardinality: even a prohibited
// facet fails when no set matches. Deliberate source behavior, pinned here.
func TestPropertyFacetMissingSetIgnoresProhibited(t *testing.T) {
	engine := fixtureEngine(t)

	facet := engine.NewPropertyFacet()
	facet.PropertySet = NewSimple("Pset_Missing")
	facet.BaseName = NewSimple("Width")
	facet.Cardinality = CardinalityProhibited

	results, err := facet.Test(context.Background(), []int{11}, "clinic")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Pass)
	assert.Equal(t, CardinalityProhibited, results[0].Cardinality)
}

func TestPropertyFacetEmptyStringFails(t *testing.T) {
	engine := fixtureEngine(t)

	facet := engine.NewPropertyFacet()
	facet.PropertySet = NewSimple("Pset_Demo")
	facet.BaseName = NewSimple("Status")
	// No value constraint: an empty string still fails unconditionally.

	results, err := facet.Test(context.Background(), []int{13}, "clinic")
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.False(t, result.Pass)

	valueCheck := findCheck(result.Checks, "Value")
	require.NotNil(t, valueCheck)
	assert.Equal(t, "", valueCheck.CurrentValue)
	assert.False(t, valueCheck.Pass)
}

func TestPropertyFacetEnumeratedValueList(t *testing.T) {
	engine := fixtureEngine(t)

	facet := engine.NewPropertyFacet()
	facet.PropertySet = NewSimple("Pset_Demo")
	facet.BaseName = NewSimple("Rating")
	facet.Value = NewSimple("B")

	results, err := facet.Test(context.Background(), []int{14}, "clinic")
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.True(t, result.Pass)

	// The evidence carries the full list, not the matching element.
	valueCheck := findCheck(result.Checks, "Value")
	require.NotNil(t, valueCheck)
	assert.Equal(t, []any{"A", "B"}, valueCheck.CurrentValue)
}

func TestPropertyFacetQuantitySet(t *testing.T) {
	engine := fixtureEngine(t)

	facet := engine.NewPropertyFacet()
	facet.PropertySet = NewSimple("Qto_WallBase")
	facet.BaseName = NewSimple("GrossArea")
	facet.Value = NewBounds(floatPtr(10), floatPtr(20), true, true)

	results, err := facet.Test(context.Background(), []int{15}, "clinic")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Pass)
}

func TestPropertyFacetDataType(t *testing.T) {
	engine := fixtureEngine(t)

	matching := engine.NewPropertyFacet()
	matching.PropertySet = NewSimple("Pset_Demo")
	matching.BaseName = NewSimple("Width")
	matching.DataType = NewSimple("IFCREAL")

	results, err := matching.Test(context.Background(), []int{10}, "clinic")
	require.NoError(t, err)
	assert.True(t, results[0].Pass)

	mismatched := engine.NewPropertyFacet()
	mismatched.PropertySet = NewSimple("Pset_Demo")
	mismatched.BaseName = NewSimple("Width")
	mismatched.DataType = NewSimple("IFCLABEL")

	results, err = mismatched.Test(context.Background(), []int{10}, "clinic")
	require.NoError(t, err)
	assert.False(t, results[0].Pass)
	dataCheck := findCheck(results[0].Checks, "DataType")
	require.NotNil(t, dataCheck)
	assert.Equal(t, "IFCREAL", dataCheck.CurrentValue)
	assert.False(t, dataCheck.Pass)
}

// Complex properties are excluded from candidacy before name matching: a
// set holding only a complex property behaves as if nothing matched.
func TestPropertyFacetComplexPropertyExcluded(t *testing.T) {
	engine := fixtureEngine(t)

	facet := engine.NewPropertyFacet()
	facet.PropertySet = NewSimple("Pset_Complex")
	facet.BaseName = NewSimple("Width")

	results, err := facet.Test(context.Background(), []int{12}, "clinic")
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.False(t, result.Pass)
	require.Len(t, result.Checks, 2)
	assert.Equal(t, "PropertySet", result.Checks[0].Parameter)
	assert.True(t, result.Checks[0].Pass)
	assert.Equal(t, "BaseName", result.Checks[1].Parameter)
	assert.Nil(t, result.Checks[1].CurrentValue)
	assert.False(t, result.Checks[1].Pass)
}

// Every check record produced during set and item filtering counts toward
// the entity verdict, so a non-matching sibling set fails the entity even
// when the target property matches fully. Source behavior, pinned here.
func TestPropertyFacetFilterChecksCountTowardVerdict(t *testing.T) {
	engine := fixtureEngine(t)

	facet := engine.NewPropertyFacet()
	facet.PropertySet = NewSimple("Pset_Demo")
	facet.BaseName = NewSimple("Width")
	facet.Value = NewSimple(5)

	results, err := facet.Test(context.Background(), []int{16}, "clinic")
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.False(t, result.Pass)

	require.Len(t, result.Checks, 4)
	assert.Equal(t, "PropertySet", result.Checks[0].Parameter)
	assert.True(t, result.Checks[0].Pass)
	assert.Equal(t, "PropertySet", result.Checks[1].Parameter)
	assert.Equal(t, "Pset_Other", result.Checks[1].CurrentValue)
	assert.False(t, result.Checks[1].Pass)
	assert.True(t, result.Checks[2].Pass)
	assert.True(t, result.Checks[3].Pass)
}

func TestPropertyFacetResultsInInputOrder(t *testing.T) {
	engine := fixtureEngine(t)

	facet := engine.NewPropertyFacet()
	facet.PropertySet = NewSimple("Pset_Demo")
	facet.BaseName = NewSimple("Width")

	results, err := facet.Test(context.Background(), []int{12, 10, 11}, "clinic")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 12, results[0].EntityID)
	assert.False(t, results[0].Pass)
	assert.Equal(t, 10, results[1].EntityID)
	assert.True(t, results[1].Pass)
	assert.Equal(t, 11, results[2].EntityID)
	assert.False(t, results[2].Pass)
}

func TestPropertyFacetRequiresIndex(t *testing.T) {
	registry := ifc.NewRegistry()
	indexer := relations.NewIndexer(registry, registry, logger.Logger)
	defer indexer.Close()
	engine := NewEngine(indexer, registry, logger.Logger)

	facet := engine.NewPropertyFacet()
	facet.PropertySet = NewSimple("Pset_Demo")
	facet.BaseName = NewSimple("Width")

	_, err := facet.Test(context.Background(), []int{10}, "never-indexed")
	assert.ErrorIs(t, err, ErrNotIndexed)
}

func TestPropertyFacetSerialize(t *testing.T) {
	engine := NewEngine(nil, nil, logger.Logger)

	facet := engine.NewPropertyFacet()
	facet.PropertySet = NewSimple("Pset_Demo")
	facet.BaseName = NewSimple("Width")
	facet.Value = NewSimple(5)
	facet.Cardinality = CardinalityRequired
	facet.URI = "https://example.com/req/width"

	requirement := facet.Serialize(SerializeRequirement)
	assert.Contains(t, requirement, `cardinality="required"`)
	assert.Contains(t, requirement, `uri="https://example.com/req/width"`)
	assert.Contains(t, requirement, "<propertySet><simpleValue>Pset_Demo</simpleValue></propertySet>")
	assert.Contains(t, requirement, "<baseName><simpleValue>Width</simpleValue></baseName>")

	applicability := facet.Serialize(SerializeApplicability)
	assert.NotContains(t, applicability, "cardinality")
	assert.NotContains(t, applicability, "uri")
	assert.Contains(t, applicability, "<simpleValue>Pset_Demo</simpleValue>")
}
