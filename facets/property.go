package facets

import (
	"bytes"
	"context"
	"strings"

	"github.com/nicoarellano/components-na/errors"
	"github.com/nicoarellano/components-na/ifc"
	"github.com/nicoarellano/components-na/logger"
	"github.com/nicoarellano/components-na/relations"
)

// ErrNotIndexed is returned when a facet is tested against a model whose
// relations have not been indexed.
var ErrNotIndexed = errors.New("model has no relation index")

// PropertyFacet tests that an entity carries a property (or quantity) with a
// matching set name, property name, and optionally value and data type.
type PropertyFacet struct {
	PropertySet *Parameter
	BaseName    *Parameter
	Value       *Parameter
	DataType    *Parameter

	Cardinality  Cardinality
	Instructions string
	URI          string

	engine *Engine
}

// NewPropertyFacet creates an empty property facet bound to the engine.
// Constraint fields are set by the specification author before Test.
func (e *Engine) NewPropertyFacet() *PropertyFacet {
	return &PropertyFacet{
		Cardinality: CardinalityRequired,
		engine:      e,
	}
}

// candidateSet is one property or quantity set discovered on an entity,
// with the attribute its items live under resolved by container kind.
type candidateSet struct {
	bag      ifc.Bag
	itemsKey string
}

// candidateItem is one set item that survived kind filtering.
type candidateItem struct {
	bag ifc.Bag
}

// Test evaluates the facet against each entity, returning results in input
// order. Check records within one result are deterministic: set-filter
// checks, then item-filter checks, then value and data-type checks.
func (f *PropertyFacet) Test(ctx context.Context, entityIDs []int, modelID string) ([]TestResult, error) {
	if f.engine.indexer.Get(modelID) == nil {
		return nil, errors.Wrapf(ErrNotIndexed, "model %q", modelID)
	}

	results := make([]TestResult, 0, len(entityIDs))
	for _, entityID := range entityIDs {
		result, err := f.testEntity(ctx, entityID, modelID)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (f *PropertyFacet) testEntity(ctx context.Context, entityID int, modelID string) (TestResult, error) {
	checks := []CheckRecord{}
	result := TestResult{
		EntityID:    entityID,
		Cardinality: f.Cardinality,
	}

	entityBag, err := f.engine.source.GetProperties(ctx, modelID, entityID)
	if err != nil {
		return TestResult{}, errors.Wrapf(err, "retrieving entity %d", entityID)
	}
	if entityBag != nil {
		result.GlobalID = entityBag.GlobalID()
	}

	// Discover candidate property/quantity sets through IsDefinedBy,
	// resolving the type-specific items attribute. Other container kinds
	// attached through the same role are skipped.
	setIDs := f.engine.indexer.GetEntityRelationsByRole(modelID, entityID, relations.IsDefinedBy)
	var sets []candidateSet
	for _, setID := range setIDs {
		bag, err := f.engine.source.GetProperties(ctx, modelID, setID)
		if err != nil {
			return TestResult{}, errors.Wrapf(err, "retrieving property set %d", setID)
		}
		if bag == nil {
			continue
		}
		switch bag.TypeCode() {
		case ifc.IfcPropertySet:
			sets = append(sets, candidateSet{bag: bag, itemsKey: "HasProperties"})
		case ifc.IfcElementQuantity:
			sets = append(sets, candidateSet{bag: bag, itemsKey: "Quantities"})
		}
	}

	// Set-name filter: one check per tested set. When nothing matches the
	// entity fails here with a single null check; cardinality is not
	// consulted on this path (see DESIGN.md).
	var matchedSets []candidateSet
	for _, set := range sets {
		name, ok := set.bag.Name()
		if !ok {
			continue
		}
		if Check("PropertySet", name, f.PropertySet, &checks) {
			matchedSets = append(matchedSets, set)
		}
	}
	if len(matchedSets) == 0 {
		checks = append(checks, CheckRecord{
			Parameter:     "PropertySet",
			CurrentValue:  nil,
			RequiredValue: f.PropertySet.Describe(),
			Pass:          false,
		})
		result.Pass = false
		result.Checks = checks
		return result, nil
	}

	// Item-name filter per matched set. Complex container kinds are
	// excluded from candidacy before name matching; items missing a Name
	// are malformed and skipped.
	var matchedItems []candidateItem
	for _, set := range matchedSets {
		itemIDs := set.bag.RefIDs(set.itemsKey)
		matchedInSet := 0
		for _, itemID := range itemIDs {
			itemBag, err := f.engine.source.GetProperties(ctx, modelID, itemID)
			if err != nil {
				return TestResult{}, errors.Wrapf(err, "retrieving property %d", itemID)
			}
			if itemBag == nil {
				continue
			}
			switch itemBag.TypeCode() {
			case ifc.IfcComplexProperty, ifc.IfcPhysicalComplexQuantity:
				continue
			}
			name, ok := itemBag.Name()
			if !ok {
				f.engine.log.Debugw("skipping property without a name",
					logger.FieldModelID, modelID,
					logger.FieldEntityID, itemID,
				)
				continue
			}
			if Check("BaseName", name, f.BaseName, &checks) {
				matchedItems = append(matchedItems, candidateItem{bag: itemBag})
				matchedInSet++
			}
		}
		if matchedInSet == 0 {
			checks = append(checks, CheckRecord{
				Parameter:     "BaseName",
				CurrentValue:  nil,
				RequiredValue: f.BaseName.Describe(),
				Pass:          false,
			})
		}
	}

	// Value, then data-type, then URI checks per matched item.
	for _, item := range matchedItems {
		f.checkValue(item.bag, &checks)
		f.checkDataType(item.bag, &checks)
		f.validateURI()
	}

	result.Pass = true
	for _, check := range checks {
		if !check.Pass {
			result.Pass = false
			break
		}
	}
	result.Checks = checks
	return result, nil
}

// itemValues resolves an item's value shape as a closed variant match over
// its type code: single values carry one handle, enumerated and list values
// carry a handle list, quantities carry their measure attribute.
func itemValues(bag ifc.Bag) ([]ifc.Value, bool) {
	switch bag.TypeCode() {
	case ifc.IfcPropertySingleValue:
		h, ok := bag.Handle("NominalValue")
		if !ok {
			return nil, false
		}
		return []ifc.Value{h}, false
	case ifc.IfcPropertyEnumeratedValue:
		return bag.HandleList("EnumerationValues"), true
	case ifc.IfcPropertyListValue:
		return bag.HandleList("ListValues"), true
	case ifc.IfcQuantityLength:
		return singleHandle(bag, "LengthValue")
	case ifc.IfcQuantityArea:
		return singleHandle(bag, "AreaValue")
	case ifc.IfcQuantityVolume:
		return singleHandle(bag, "VolumeValue")
	case ifc.IfcQuantityCount:
		return singleHandle(bag, "CountValue")
	case ifc.IfcQuantityWeight:
		return singleHandle(bag, "WeightValue")
	case ifc.IfcQuantityTime:
		return singleHandle(bag, "TimeValue")
	}
	return nil, false
}

func singleHandle(bag ifc.Bag, key string) ([]ifc.Value, bool) {
	h, ok := bag.Handle(key)
	if !ok {
		return nil, false
	}
	return []ifc.Value{h}, false
}

// checkValue emits the Value check for one matched item. List values are
// compared element-wise (any element matching passes) and surface as the
// full list in the check record. Two rules hold whether or not a value
// constraint is set: a logical-unknown value fails, and an all-whitespace
// string value fails.
func (f *PropertyFacet) checkValue(bag ifc.Bag, checks *[]CheckRecord) {
	values, isList := itemValues(bag)

	if len(values) == 0 {
		*checks = append(*checks, CheckRecord{
			Parameter:     "Value",
			CurrentValue:  nil,
			RequiredValue: f.Value.Describe(),
			Pass:          false,
		})
		return
	}

	var current any
	if isList {
		raw := make([]any, len(values))
		for i, v := range values {
			raw[i] = v.Value
		}
		current = raw
	} else {
		current = values[0].Value
	}

	pass := true
	for _, v := range values {
		if v.IsNull() {
			pass = false
			break
		}
		if s, ok := v.Str(); ok && strings.TrimSpace(s) == "" {
			pass = false
			break
		}
	}
	if pass && f.Value != nil {
		pass = false
		for _, v := range values {
			if Matches(v.Value, f.Value) {
				pass = true
				break
			}
		}
	}

	*checks = append(*checks, CheckRecord{
		Parameter:     "Value",
		CurrentValue:  current,
		RequiredValue: f.Value.Describe(),
		Pass:          pass,
	})
}

// checkDataType compares the declared scalar type tag of the matched value
// (first element for list values) against the DataType parameter. No check
// is emitted when the facet has no data-type constraint.
func (f *PropertyFacet) checkDataType(bag ifc.Bag, checks *[]CheckRecord) {
	if f.DataType == nil {
		return
	}
	values, _ := itemValues(bag)
	var tag any
	if len(values) > 0 && values[0].TypeTag != "" {
		tag = values[0].TypeTag
	}
	Check("DataType", tag, f.DataType, checks)
}

// validateURI is the URI validation extension point. It currently accepts
// everything.
func (f *PropertyFacet) validateURI() {}

// Serialize renders the facet as an XML fragment. Requirement serialization
// carries cardinality, uri, and instructions attributes.
func (f *PropertyFacet) Serialize(kind SerializationKind) string {
	var buf bytes.Buffer
	buf.WriteString("<property")
	if kind == SerializeRequirement {
		buf.WriteString(` cardinality="`)
		xmlEscape(&buf, string(f.Cardinality))
		buf.WriteString(`"`)
		if f.URI != "" {
			buf.WriteString(` uri="`)
			xmlEscape(&buf, f.URI)
			buf.WriteString(`"`)
		}
		if f.Instructions != "" {
			buf.WriteString(` instructions="`)
			xmlEscape(&buf, f.Instructions)
			buf.WriteString(`"`)
		}
	}
	buf.WriteString(">")
	buf.WriteString(paramXML("propertySet", f.PropertySet))
	buf.WriteString(paramXML("baseName", f.BaseName))
	buf.WriteString(paramXML("value", f.Value))
	buf.WriteString(paramXML("dataType", f.DataType))
	buf.WriteString("</property>")
	return buf.String()
}

var _ Facet = (*PropertyFacet)(nil)
