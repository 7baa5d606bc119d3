package analysis

import "context"

// Extraction is the structured entity output for one raw record. Absent
// fields are empty strings; an empty CompanyName means the record carried no
// resolvable company.
type Extraction struct {
	CompanyName string   `json:"company_name"`
	JobTitle    string   `json:"job_title"`
	RoleType    string   `json:"role_type"`
	Industry    string   `json:"industry"`
	Location    string   `json:"location"`
	Keywords    []string `json:"keywords"`
}

// SignalDetection is the hiring-signal judgement for one raw record.
type SignalDetection struct {
	HasSignal   bool    `json:"has_signal"`
	SignalType  string  `json:"signal_type"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// Analyzer is the opaque text-analysis capability. Implementations never
// return an error: on any internal failure they degrade to the neutral
// zero value so the pipeline always makes progress.
type Analyzer interface {
	ExtractEntities(ctx context.Context, text string) Extraction
	DetectHiringSignal(ctx context.Context, text, companyName string) SignalDetection
	Summarize(ctx context.Context, lines []string) string
}
