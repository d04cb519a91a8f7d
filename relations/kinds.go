package relations

import "github.com/nicoarellano/components-na/ifc"

// Kind describes one indexed relation type: which attribute names carry the
// relating and related entities on its records, and which role slot each
// side of the relation lands in.
type Kind struct {
	TypeCode uint32
	Name     string

	// RelatingKey/RelatedKey are the record attributes holding the relating
	// entity reference and the related entity reference list.
	RelatingKey string
	RelatedKey  string

	// ForRelating is the slot recorded on the relating entity; ForRelated is
	// the slot recorded on each related entity.
	ForRelating Role
	ForRelated  Role
}

// kinds is the static relation-kind table. It is the single source of truth
// for both ingestion paths; resolved at compile time, never at runtime.
var kinds = []Kind{
	{
		TypeCode:    ifc.IfcRelAggregates,
		Name:        "IfcRelAggregates",
		RelatingKey: "RelatingObject",
		RelatedKey:  "RelatedObjects",
		ForRelating: IsDecomposedBy,
		ForRelated:  Decomposes,
	},
	{
		TypeCode:    ifc.IfcRelAssociatesMaterial,
		Name:        "IfcRelAssociatesMaterial",
		RelatingKey: "RelatingMaterial",
		RelatedKey:  "RelatedObjects",
		ForRelating: AssociatedTo,
		ForRelated:  HasAssociations,
	},
	{
		TypeCode:    ifc.IfcRelAssociatesClassification,
		Name:        "IfcRelAssociatesClassification",
		RelatingKey: "RelatingClassification",
		RelatedKey:  "RelatedObjects",
		ForRelating: ClassificationForObjects,
		ForRelated:  HasAssociations,
	},
	{
		TypeCode:    ifc.IfcRelAssignsToGroup,
		Name:        "IfcRelAssignsToGroup",
		RelatingKey: "RelatingGroup",
		RelatedKey:  "RelatedObjects",
		ForRelating: IsGroupedBy,
		ForRelated:  HasAssignments,
	},
	{
		TypeCode:    ifc.IfcRelDefinesByProperties,
		Name:        "IfcRelDefinesByProperties",
		RelatingKey: "RelatingPropertyDefinition",
		RelatedKey:  "RelatedObjects",
		ForRelating: DefinesOccurrence,
		ForRelated:  IsDefinedBy,
	},
	{
		TypeCode:    ifc.IfcRelDefinesByType,
		Name:        "IfcRelDefinesByType",
		RelatingKey: "RelatingType",
		RelatedKey:  "RelatedObjects",
		ForRelating: Types,
		ForRelated:  IsTypedBy,
	},
	{
		TypeCode:    ifc.IfcRelContainedInSpatialStructure,
		Name:        "IfcRelContainedInSpatialStructure",
		RelatingKey: "RelatingStructure",
		RelatedKey:  "RelatedElements",
		ForRelating: ContainsElements,
		ForRelated:  ContainedInStructure,
	},
}

// KindForType resolves a relation entity type code against the static table.
func KindForType(typeCode uint32) (Kind, bool) {
	for _, k := range kinds {
		if k.TypeCode == typeCode {
			return k, true
		}
	}
	return Kind{}, false
}

// Kinds returns the indexed relation kinds in table order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}
