package specdoc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicoarellano/components-na/facets"
	"github.com/nicoarellano/components-na/logger"
)

const tomlDoc = `
name = "Wall requirements"
description = "Width and fire rating checks"

[[facet]]
cardinality = "required"
uri = "https://example.com/req/width"

[facet.property_set]
value = "Pset_Demo"

[facet.base_name]
value = "Width"

[facet.value]
min = 1.0
max = 10.0

[[facet]]

[facet.property_set]
pattern = "^Pset_"

[facet.base_name]
value = "FireRating"

[facet.value]
options = ["30", "60", "90"]
`

const yamlDoc = `
name: Wall requirements
description: Width and fire rating checks
facets:
  - cardinality: required
    uri: https://example.com/req/width
    property_set:
      value: Pset_Demo
    base_name:
      value: Width
    value:
      min: 1.0
      max: 10.0
  - property_set:
      pattern: "^Pset_"
    base_name:
      value: FireRating
    value:
      options: ["30", "60", "90"]
`

func TestDecodeTOML(t *testing.T) {
	doc, err := DecodeTOML([]byte(tomlDoc))
	require.NoError(t, err)

	assert.Equal(t, "Wall requirements", doc.Name)
	require.Len(t, doc.Facets, 2)
	assert.Equal(t, "required", doc.Facets[0].Cardinality)
	assert.Equal(t, "https://example.com/req/width", doc.Facets[0].URI)
	assert.Equal(t, "Pset_Demo", doc.Facets[0].PropertySet.Value)
	assert.Equal(t, "^Pset_", doc.Facets[1].PropertySet.Pattern)
}

// The same specification expressed in TOML and YAML builds identical facets.
func TestDecodeYAMLMatchesTOML(t *testing.T) {
	fromTOML, err := DecodeTOML([]byte(tomlDoc))
	require.NoError(t, err)
	fromYAML, err := DecodeYAML([]byte(yamlDoc))
	require.NoError(t, err)

	assert.Equal(t, fromTOML.Name, fromYAML.Name)
	assert.Equal(t, fromTOML.Description, fromYAML.Description)
	require.Equal(t, len(fromTOML.Facets), len(fromYAML.Facets))

	engine := facets.NewEngine(nil, nil, logger.Logger)
	builtTOML, err := fromTOML.Build(engine)
	require.NoError(t, err)
	builtYAML, err := fromYAML.Build(engine)
	require.NoError(t, err)
	require.Equal(t, len(builtTOML), len(builtYAML))
	for i := range builtTOML {
		assert.Equal(t,
			builtTOML[i].Serialize(facets.SerializeRequirement),
			builtYAML[i].Serialize(facets.SerializeRequirement))
	}
}

func TestBuild(t *testing.T) {
	doc, err := DecodeTOML([]byte(tomlDoc))
	require.NoError(t, err)

	engine := facets.NewEngine(nil, nil, logger.Logger)
	built, err := doc.Build(engine)
	require.NoError(t, err)
	require.Len(t, built, 2)

	assert.Equal(t, facets.ParamSimple, built[0].PropertySet.Kind())
	assert.Equal(t, facets.ParamBounds, built[0].Value.Kind())
	assert.Equal(t, facets.CardinalityRequired, built[0].Cardinality)
	assert.Equal(t, "https://example.com/req/width", built[0].URI)

	assert.Equal(t, facets.ParamPattern, built[1].PropertySet.Kind())
	assert.Equal(t, facets.ParamEnumeration, built[1].Value.Kind())
	// Cardinality left out defaults to required.
	assert.Equal(t, facets.CardinalityRequired, built[1].Cardinality)
	assert.Nil(t, built[1].DataType)
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "walls.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlDoc), 0o644))
	doc, err := Load(tomlPath)
	require.NoError(t, err)
	assert.Len(t, doc.Facets, 2)

	yamlPath := filepath.Join(dir, "walls.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlDoc), 0o644))
	doc, err = Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, doc.Facets, 2)

	badPath := filepath.Join(dir, "walls.txt")
	require.NoError(t, os.WriteFile(badPath, []byte(tomlDoc), 0o644))
	_, err = Load(badPath)
	assert.ErrorContains(t, err, "unsupported specification format")

	_, err = Load(filepath.Join(dir, "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "no facets",
			doc:  `name = "empty"`,
			want: "declares no facets",
		},
		{
			name: "missing property_set",
			doc: `
[[facet]]
[facet.base_name]
value = "Width"
`,
			want: "property_set is required",
		},
		{
			name: "missing base_name",
			doc: `
[[facet]]
[facet.property_set]
value = "Pset_Demo"
`,
			want: "base_name is required",
		},
		{
			name: "two constraint shapes",
			doc: `
[[facet]]
[facet.property_set]
value = "Pset_Demo"
pattern = "^Pset_"
[facet.base_name]
value = "Width"
`,
			want: "exactly one constraint shape",
		},
		{
			name: "empty parameter",
			doc: `
[[facet]]
[facet.property_set]
value = "Pset_Demo"
[facet.base_name]
value = "Width"
[facet.value]
`,
			want: "exactly one constraint shape",
		},
		{
			name: "bad cardinality",
			doc: `
[[facet]]
cardinality = "sometimes"
[facet.property_set]
value = "Pset_Demo"
[facet.base_name]
value = "Width"
`,
			want: "cardinality",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeTOML([]byte(tc.doc))
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestBuildBadPattern(t *testing.T) {
	doc := &Document{
		Facets: []FacetDef{{
			PropertySet: &ParamDef{Pattern: "("},
			BaseName:    &ParamDef{Value: "Width"},
		}},
	}
	engine := facets.NewEngine(nil, nil, logger.Logger)
	_, err := doc.Build(engine)
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid pattern")
}
