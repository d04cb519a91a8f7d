package logger

// Standard field names for consistent structured logging across components-na.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Components
	FieldComponent = "component"

	// Models and entities
	FieldModelID  = "model_id"
	FieldEntityID = "entity_id"
	FieldTypeCode = "type_code"
	FieldRole     = "role"

	// Specifications
	FieldFacet       = "facet"
	FieldSpec        = "spec"
	FieldRunID       = "run_id"
	FieldCardinality = "cardinality"

	// Counts and timing
	FieldCount      = "count"
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Files and paths
	FieldFile = "file"
	FieldPath = "path"
)
