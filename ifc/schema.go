// Package ifc models the parsed building-model surface the rest of
// components-na consumes: entities addressed by integer express ID, each
// carrying a type code and a schemaless attribute bag.
//
// Parsing of the STEP interchange format itself is out of scope; models
// arrive already flattened into an attribute-bag-per-entity representation
// (see MemModel for the JSON form used by the CLI and tests).
package ifc

// IFC entity type codes. These are the schema-wide numeric identifiers used
// by the parsing layer; the indexer and facet engine key their static tables
// on them. Values must stay consistent between indexing and querying.
const (
	IfcRelAggregates                  uint32 = 160246688
	IfcRelContainedInSpatialStructure uint32 = 3242617779
	IfcRelAssociatesMaterial          uint32 = 2655215786
	IfcRelAssociatesClassification    uint32 = 919958153
	IfcRelAssignsToGroup              uint32 = 1307041759
	IfcRelDefinesByProperties         uint32 = 4186316022
	IfcRelDefinesByType               uint32 = 781010003

	IfcPropertySet             uint32 = 1451395588
	IfcElementQuantity         uint32 = 1883228015
	IfcComplexProperty         uint32 = 2542286263
	IfcPhysicalComplexQuantity uint32 = 3021840470

	IfcPropertySingleValue     uint32 = 3650150729
	IfcPropertyEnumeratedValue uint32 = 4166981789
	IfcPropertyListValue       uint32 = 2752243245

	IfcQuantityLength uint32 = 931644368
	IfcQuantityArea   uint32 = 2044713172
	IfcQuantityVolume uint32 = 2405470396
	IfcQuantityCount  uint32 = 2093928680
	IfcQuantityWeight uint32 = 825690147
	IfcQuantityTime   uint32 = 3252649465
)

// typeNames maps known type codes to their schema names, for logs and errors.
var typeNames = map[uint32]string{
	IfcRelAggregates:                  "IFCRELAGGREGATES",
	IfcRelContainedInSpatialStructure: "IFCRELCONTAINEDINSPATIALSTRUCTURE",
	IfcRelAssociatesMaterial:          "IFCRELASSOCIATESMATERIAL",
	IfcRelAssociatesClassification:    "IFCRELASSOCIATESCLASSIFICATION",
	IfcRelAssignsToGroup:              "IFCRELASSIGNSTOGROUP",
	IfcRelDefinesByProperties:         "IFCRELDEFINESBYPROPERTIES",
	IfcRelDefinesByType:               "IFCRELDEFINESBYTYPE",
	IfcPropertySet:                    "IFCPROPERTYSET",
	IfcElementQuantity:                "IFCELEMENTQUANTITY",
	IfcComplexProperty:                "IFCCOMPLEXPROPERTY",
	IfcPhysicalComplexQuantity:        "IFCPHYSICALCOMPLEXQUANTITY",
	IfcPropertySingleValue:            "IFCPROPERTYSINGLEVALUE",
	IfcPropertyEnumeratedValue:        "IFCPROPERTYENUMERATEDVALUE",
	IfcPropertyListValue:              "IFCPROPERTYLISTVALUE",
	IfcQuantityLength:                 "IFCQUANTITYLENGTH",
	IfcQuantityArea:                   "IFCQUANTITYAREA",
	IfcQuantityVolume:                 "IFCQUANTITYVOLUME",
	IfcQuantityCount:                  "IFCQUANTITYCOUNT",
	IfcQuantityWeight:                 "IFCQUANTITYWEIGHT",
	IfcQuantityTime:                   "IFCQUANTITYTIME",
}

// TypeName returns the schema name for a type code, or "UNKNOWN" if the code
// is not one this package knows about.
func TypeName(code uint32) string {
	if name, ok := typeNames[code]; ok {
		return name
	}
	return "UNKNOWN"
}
