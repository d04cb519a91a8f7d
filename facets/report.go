package facets

import (
	"time"

	"github.com/google/uuid"
)

// FacetResult aggregates one facet's results across all tested entities.
type FacetResult struct {
	Facet   string       `json:"facet"`
	Results []TestResult `json:"results"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
}

// Report is the outcome of one specification run against one model.
type Report struct {
	RunID     string        `json:"runID"`
	ModelID   string        `json:"modelID"`
	Spec      string        `json:"spec,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	Facets    []FacetResult `json:"facets"`

	TotalPassed int `json:"totalPassed"`
	TotalFailed int `json:"totalFailed"`
}

// NewReport starts an empty report for one run.
func NewReport(modelID, spec string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		ModelID:   modelID,
		Spec:      spec,
		CreatedAt: time.Now().UTC(),
	}
}

// AddFacet folds one facet's results into the report.
func (r *Report) AddFacet(name string, results []TestResult) {
	fr := FacetResult{Facet: name, Results: results}
	for _, result := range results {
		if result.Pass {
			fr.Passed++
		} else {
			fr.Failed++
		}
	}
	r.Facets = append(r.Facets, fr)
	r.TotalPassed += fr.Passed
	r.TotalFailed += fr.Failed
}

// Pass reports whether every entity passed every facet.
func (r *Report) Pass() bool {
	return r.TotalFailed == 0
}
