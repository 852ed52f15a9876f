package analysis

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status enum for the overall verdict and for individual checks
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
)

// CheckItem is one row of the checklist produced by the model.
// Identity is display-only; items are never deduplicated or merged.
type CheckItem struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Status Status `json:"status"`
	Notes  string `json:"notes,omitempty"`
	Page   int    `json:"page,omitempty"`
}

// Metadata extracted from the drawing title block, all optional.
type Metadata struct {
	ProjectName string `json:"projectName,omitempty"`
	Location    string `json:"location,omitempty"`
	Version     string `json:"version,omitempty"`
	DrawnBy     string `json:"drawnBy,omitempty"`
	PageCount   int    `json:"pageCount,omitempty"`
}

// Result is the checklist payload returned by the model. The four list
// fields are always non-nil after decoding; absent lists become empty.
type Result struct {
	OverallStatus Status      `json:"overallStatus"`
	Summary       string      `json:"summary"`
	CriticalIssues []CheckItem `json:"criticalIssues"`
	Warnings       []CheckItem `json:"warnings"`
	Passed         []CheckItem `json:"passed"`
	ManualReview   []CheckItem `json:"manualReview"`
	ProjectType    string      `json:"projectType,omitempty"`
	Metadata       *Metadata   `json:"metadata,omitempty"`
}

// Report wraps a Result with request bookkeeping for the response envelope.
type Report struct {
	Filename   string    `json:"filename"`
	Result     *Result   `json:"results"`
	StartedAt  time.Time `json:"-"`
	DurationMS int64     `json:"duration_ms"`
}

// ProjectContext holds the four boolean hints supplied by the user.
// Immutable once a run starts; only ever appended as hint text to the prompt.
type ProjectContext struct {
	Backlit bool `json:"backlit"`
	Cutouts bool `json:"cutouts"`
	Corners bool `json:"corners"`
	Logos   bool `json:"logos"`
}

// ParseProjectContext decodes the projectType form field. An empty string
// means no hints were given.
func ParseProjectContext(s string) (ProjectContext, error) {
	var pc ProjectContext
	if s == "" {
		return pc, nil
	}
	if err := json.Unmarshal([]byte(s), &pc); err != nil {
		return ProjectContext{}, fmt.Errorf("%w: projectType must be a JSON object with boolean fields", ErrValidation)
	}
	return pc, nil
}

// Any reports whether at least one hint is set.
func (pc ProjectContext) Any() bool {
	return pc.Backlit || pc.Cutouts || pc.Corners || pc.Logos
}
