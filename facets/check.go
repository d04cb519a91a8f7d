package facets

// CheckRecord is one evaluated constraint outcome for one candidate.
// Immutable once created.
type CheckRecord struct {
	Parameter     string `json:"parameter"`
	CurrentValue  any    `json:"currentValue"`
	RequiredValue any    `json:"requiredValue"`
	Pass          bool   `json:"pass"`
}

// TestResult is one entity's verdict under one facet: the logical AND of
// every check record produced for it during the run.
type TestResult struct {
	EntityID    int           `json:"expressID"`
	GlobalID    string        `json:"globalID,omitempty"`
	Pass        bool          `json:"pass"`
	Cardinality Cardinality   `json:"cardinality"`
	Checks      []CheckRecord `json:"checks"`
}
