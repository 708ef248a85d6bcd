// Package extractor normalizes heterogeneous test-case sources (spreadsheets,
// TestRail cases) into one canonical model consumed by the prompt assembler.
package extractor

// APIDetails describes the request under test. All four fields are populated
// after extraction regardless of source; Body is never left empty.
type APIDetails struct {
	RequestType string            `json:"Request Type"`
	RequestURL  string            `json:"Request Url"`
	Headers     map[string]string `json:"Headers"`
	Body        string            `json:"Body"`
}

// Scenario is one named test case with steps and an expected result.
type Scenario struct {
	TestName       string `json:"Test Name"`
	Steps          string `json:"Steps"`
	ExpectedResult string `json:"Expected Result"`
}

// Result is the canonical model both extractors produce. It is built once per
// request and never mutated after extraction completes.
type Result struct {
	APIDetails APIDetails `json:"apiDetails"`
	Scenarios  []Scenario `json:"scenarios"`
}

const (
	DefaultRequestType = "GET"
	DefaultRequestURL  = "https://api.example.com"

	// PlaceholderBody keeps downstream prompting non-empty when no request
	// body could be extracted.
	PlaceholderBody = `{"message": "Sample request body", "timestamp": "2025-01-01T00:00:00Z"}`

	defaultSteps    = "No steps provided"
	defaultExpected = "No expected result"
)

// NewAPIDetails returns details pre-filled with source-independent defaults.
func NewAPIDetails() APIDetails {
	return APIDetails{
		RequestType: DefaultRequestType,
		RequestURL:  DefaultRequestURL,
		Headers:     map[string]string{},
	}
}

// DefaultScenario substitutes for an empty scenario list: extraction output
// always carries at least one scenario.
func DefaultScenario() Scenario {
	return Scenario{
		TestName:       "Default Test",
		Steps:          "Send GET request",
		ExpectedResult: "200 OK",
	}
}
