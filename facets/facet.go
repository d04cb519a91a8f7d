// Package facets evaluates declarative compliance constraints against model
// entities and produces structured pass/fail evidence per entity.
//
// A facet is a named constraint bundle authored by a specification writer.
// Testing a facet against a set of entities never errors on non-matching
// data: "no match" is a normal validation outcome represented as failing
// check records. Only structural preconditions (a model without a relation
// index, a failing property source) surface as errors.
package facets

import (
	"bytes"
	"context"
	"encoding/xml"

	"go.uber.org/zap"

	"github.com/nicoarellano/components-na/ifc"
	"github.com/nicoarellano/components-na/logger"
	"github.com/nicoarellano/components-na/relations"
)

// SerializationKind selects which XML flavor Serialize emits. Requirement
// serialization carries the cardinality/uri/instructions attributes;
// applicability serialization omits them.
type SerializationKind int

const (
	SerializeApplicability SerializationKind = iota
	SerializeRequirement
)

// Facet is a declarative constraint bundle testable against entities.
type Facet interface {
	// Test evaluates the facet against the given entities and returns one
	// result per entity, in input order.
	Test(ctx context.Context, entityIDs []int, modelID string) ([]TestResult, error)

	// Serialize renders the facet as an XML fragment.
	Serialize(kind SerializationKind) string
}

// Engine carries the collaborators every facet needs: the relation index for
// discovery and the property source for attribute retrieval.
type Engine struct {
	indexer *relations.Indexer
	source  ifc.PropertySource
	log     *zap.SugaredLogger
}

// NewEngine creates a facet engine over an indexer and property source.
func NewEngine(indexer *relations.Indexer, source ifc.PropertySource, log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = logger.Logger
	}
	return &Engine{
		indexer: indexer,
		source:  source,
		log:     log.Named("facets"),
	}
}

// paramXML renders one facet parameter as a nested XML element. Simple
// values become <simpleValue>; the other variants become xs:restriction
// fragments as specification tooling expects.
func paramXML(name string, p *Parameter) string {
	if p == nil {
		return ""
	}
	var buf bytes.Buffer
	buf.WriteString("<" + name + ">")
	switch p.kind {
	case ParamSimple:
		buf.WriteString("<simpleValue>")
		xmlEscape(&buf, stringify(p.value))
		buf.WriteString("</simpleValue>")
	case ParamPattern:
		buf.WriteString(`<xs:restriction base="xs:string"><xs:pattern value="`)
		xmlEscape(&buf, p.patternSrc)
		buf.WriteString(`"/></xs:restriction>`)
	case ParamEnumeration:
		buf.WriteString(`<xs:restriction base="xs:string">`)
		for _, option := range p.options {
			buf.WriteString(`<xs:enumeration value="`)
			xmlEscape(&buf, stringify(option))
			buf.WriteString(`"/>`)
		}
		buf.WriteString(`</xs:restriction>`)
	case ParamBounds:
		buf.WriteString(`<xs:restriction base="xs:double">`)
		if p.min != nil {
			tag := "xs:minExclusive"
			if p.minInclusive {
				tag = "xs:minInclusive"
			}
			buf.WriteString("<" + tag + ` value="`)
			xmlEscape(&buf, stringify(*p.min))
			buf.WriteString(`"/>`)
		}
		if p.max != nil {
			tag := "xs:maxExclusive"
			if p.maxInclusive {
				tag = "xs:maxInclusive"
			}
			buf.WriteString("<" + tag + ` value="`)
			xmlEscape(&buf, stringify(*p.max))
			buf.WriteString(`"/>`)
		}
		buf.WriteString(`</xs:restriction>`)
	}
	buf.WriteString("</" + name + ">")
	return buf.String()
}

func xmlEscape(buf *bytes.Buffer, s string) {
	// EscapeText only fails on a failing writer; bytes.Buffer never does.
	_ = xml.EscapeText(buf, []byte(s))
}
