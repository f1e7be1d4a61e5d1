package analysis

import "encoding/json"

const (
	// DefaultStatus is used when the backend omits a status
	DefaultStatus = "unknown"

	// DefaultMessage is used when the backend omits a message
	DefaultMessage = "Analysis completed successfully"

	// StatusError marks a synthetic result produced after a failed fetch
	StatusError = "error"

	// FailureMessage accompanies StatusError
	FailureMessage = "Failed to fetch results. Please try again."
)

// Payload is the loosely typed backend response.
// Nil fields were absent or carried a value of the wrong JSON type.
type Payload struct {
	Status    *string  `json:"status,omitempty"`
	Message   *string  `json:"message,omitempty"`
	Technical []Record `json:"technical,omitempty"`
	Pricing   []Record `json:"pricing,omitempty"`
}

// Result is the normalized view-model rendered by the results view
type Result struct {
	Status           string   `json:"status"`
	Message          string   `json:"message"`
	TechnicalRecords []Record `json:"technical_analysis"`
	PricingRecords   []Record `json:"pricing_analysis"`
	TechnicalCount   int      `json:"technical_count"`
	PricingCount     int      `json:"pricing_count"`
}

// Failed reports whether the result is the synthetic error result
func (r *Result) Failed() bool {
	return r.Status == StatusError
}

// UnmarshalJSON re-derives the counts so a stored result can never
// disagree with its own record sequences.
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*r = Result(decoded)
	if r.TechnicalRecords == nil {
		r.TechnicalRecords = []Record{}
	}
	if r.PricingRecords == nil {
		r.PricingRecords = []Record{}
	}
	r.TechnicalCount = len(r.TechnicalRecords)
	r.PricingCount = len(r.PricingRecords)
	return nil
}

// LoadState governs what a view renders
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Success
	Failed
)

// String returns the lowercase state name
func (s LoadState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
