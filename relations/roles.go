// Package relations builds and queries the bidirectional relation index of a
// model: a per-model map from entity ID to a fixed slot table of related
// entity IDs, one slot per inverse-attribute role.
package relations

// Role is one of the fixed inverse-attribute roles. The integer value is the
// stable slot index used as a map key in serialized form, so the order of
// the constants below must never change.
type Role int

const (
	IsDecomposedBy Role = iota
	Decomposes
	AssociatedTo
	HasAssociations
	ClassificationForObjects
	IsGroupedBy
	HasAssignments
	IsDefinedBy
	DefinesOccurrence
	IsTypedBy
	Types
	Defines
	ContainedInStructure
	ContainsElements

	roleCount
)

var roleNames = [roleCount]string{
	IsDecomposedBy:           "IsDecomposedBy",
	Decomposes:               "Decomposes",
	AssociatedTo:             "AssociatedTo",
	HasAssociations:          "HasAssociations",
	ClassificationForObjects: "ClassificationForObjects",
	IsGroupedBy:              "IsGroupedBy",
	HasAssignments:           "HasAssignments",
	IsDefinedBy:              "IsDefinedBy",
	DefinesOccurrence:        "DefinesOccurrence",
	IsTypedBy:                "IsTypedBy",
	Types:                    "Types",
	Defines:                  "Defines",
	ContainedInStructure:     "ContainedInStructure",
	ContainsElements:         "ContainsElements",
}

// String returns the role's inverse-attribute name.
func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return "Unknown"
	}
	return roleNames[r]
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	return r >= 0 && r < roleCount
}

// RoleFromName resolves an inverse-attribute name to its role. The second
// return is false for unrecognized names.
func RoleFromName(name string) (Role, bool) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), true
		}
	}
	return 0, false
}

// RoleNames returns all role names in slot order.
func RoleNames() []string {
	out := make([]string, roleCount)
	copy(out, roleNames[:])
	return out
}
