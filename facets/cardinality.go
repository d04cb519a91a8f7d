package facets

import "github.com/nicoarellano/components-na/errors"

// Cardinality states whether a facet match is required, optional, or
// prohibited for compliance.
type Cardinality string

const (
	CardinalityRequired   Cardinality = "required"
	CardinalityOptional   Cardinality = "optional"
	CardinalityProhibited Cardinality = "prohibited"
)

// ParseCardinality resolves a cardinality string. The empty string defaults
// to required.
func ParseCardinality(s string) (Cardinality, error) {
	switch Cardinality(s) {
	case "":
		return CardinalityRequired, nil
	case CardinalityRequired, CardinalityOptional, CardinalityProhibited:
		return Cardinality(s), nil
	default:
		return "", errors.Newf("unknown cardinality %q", s)
	}
}
