// Package specdoc loads declarative specification documents (a named list
// of property facets with their parameters and cardinality) from TOML or
// YAML files and builds runnable facets from them.
package specdoc

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/nicoarellano/components-na/errors"
	"github.com/nicoarellano/components-na/facets"
)

// Document is one specification file.
type Document struct {
	Name        string     `toml:"name" yaml:"name"`
	Description string     `toml:"description" yaml:"description"`
	Facets      []FacetDef `toml:"facet" yaml:"facets"`
}

// FacetDef declares one property facet.
type FacetDef struct {
	PropertySet  *ParamDef `toml:"property_set" yaml:"property_set"`
	BaseName     *ParamDef `toml:"base_name" yaml:"base_name"`
	Value        *ParamDef `toml:"value" yaml:"value"`
	DataType     *ParamDef `toml:"data_type" yaml:"data_type"`
	Cardinality  string    `toml:"cardinality" yaml:"cardinality"`
	URI          string    `toml:"uri" yaml:"uri"`
	Instructions string    `toml:"instructions" yaml:"instructions"`
}

// ParamDef declares one facet parameter. Exactly one of the constraint
// shapes must be populated.
type ParamDef struct {
	Value   any    `toml:"value" yaml:"value"`
	Pattern string `toml:"pattern" yaml:"pattern"`
	Options []any  `toml:"options" yaml:"options"`

	Min          *float64 `toml:"min" yaml:"min"`
	Max          *float64 `toml:"max" yaml:"max"`
	MinExclusive bool     `toml:"min_exclusive" yaml:"min_exclusive"`
	MaxExclusive bool     `toml:"max_exclusive" yaml:"max_exclusive"`
}

// Load reads a specification document, choosing the decoder by extension
// (.toml, .yaml, .yml).
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading specification %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return DecodeTOML(data)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return nil, errors.Newf("unsupported specification format %q", filepath.Ext(path))
	}
}

// DecodeTOML decodes a TOML specification document.
func DecodeTOML(data []byte) (*Document, error) {
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding TOML specification")
	}
	return &doc, doc.validate()
}

// DecodeYAML decodes a YAML specification document.
func DecodeYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding YAML specification")
	}
	return &doc, doc.validate()
}

func (d *Document) validate() error {
	if len(d.Facets) == 0 {
		return errors.New("specification declares no facets")
	}
	for i, def := range d.Facets {
		if def.PropertySet == nil {
			return errors.Newf("facet %d: property_set is required", i)
		}
		if def.BaseName == nil {
			return errors.Newf("facet %d: base_name is required", i)
		}
		for _, p := range []*ParamDef{def.PropertySet, def.BaseName, def.Value, def.DataType} {
			if p == nil {
				continue
			}
			if err := p.validate(); err != nil {
				return errors.Wrapf(err, "facet %d", i)
			}
		}
		if _, err := facets.ParseCardinality(def.Cardinality); err != nil {
			return errors.Wrapf(err, "facet %d", i)
		}
	}
	return nil
}

func (p *ParamDef) validate() error {
	shapes := 0
	if p.Value != nil {
		shapes++
	}
	if p.Pattern != "" {
		shapes++
	}
	if len(p.Options) > 0 {
		shapes++
	}
	if p.Min != nil || p.Max != nil {
		shapes++
	}
	if shapes != 1 {
		return errors.Newf("parameter must declare exactly one constraint shape, got %d", shapes)
	}
	return nil
}

// Build constructs runnable property facets bound to the engine.
func (d *Document) Build(engine *facets.Engine) ([]*facets.PropertyFacet, error) {
	out := make([]*facets.PropertyFacet, 0, len(d.Facets))
	for i, def := range d.Facets {
		facet, err := def.build(engine)
		if err != nil {
			return nil, errors.Wrapf(err, "facet %d", i)
		}
		out = append(out, facet)
	}
	return out, nil
}

func (def *FacetDef) build(engine *facets.Engine) (*facets.PropertyFacet, error) {
	facet := engine.NewPropertyFacet()

	var err error
	if facet.PropertySet, err = def.PropertySet.build(); err != nil {
		return nil, err
	}
	if facet.BaseName, err = def.BaseName.build(); err != nil {
		return nil, err
	}
	if def.Value != nil {
		if facet.Value, err = def.Value.build(); err != nil {
			return nil, err
		}
	}
	if def.DataType != nil {
		if facet.DataType, err = def.DataType.build(); err != nil {
			return nil, err
		}
	}
	if facet.Cardinality, err = facets.ParseCardinality(def.Cardinality); err != nil {
		return nil, err
	}
	facet.URI = def.URI
	facet.Instructions = def.Instructions
	return facet, nil
}

func (p *ParamDef) build() (*facets.Parameter, error) {
	switch {
	case p.Pattern != "":
		return facets.NewPattern(p.Pattern)
	case len(p.Options) > 0:
		return facets.NewEnumeration(p.Options...), nil
	case p.Min != nil || p.Max != nil:
		return facets.NewBounds(p.Min, p.Max, !p.MinExclusive, !p.MaxExclusive), nil
	default:
		return facets.NewSimple(p.Value), nil
	}
}
