package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"

	"github.com/scriptgen-ra/scriptgen/common/client"
	"github.com/scriptgen-ra/scriptgen/common/logger"
)

// TestRailConfig carries the credentials and addressing for one case fetch.
type TestRailConfig struct {
	Username   string
	APIKey     string
	TestCaseID string
	BaseURL    string
}

// CaseData is the raw TestRail case payload before decoding. The custom
// fields arrive in whatever shape the TestRail instance stores them:
// JSON-encoded strings, native structures, or absent entirely.
type CaseData struct {
	Title          string `json:"title"`
	CustomPreconds any    `json:"custom_preconds"`
	CustomSteps    any    `json:"custom_steps_separated"`
	RequestType    string `json:"custom_case_api_request_type"`
	RequestURL     string `json:"custom_case_request_url"`
	RawHeaders     any    `json:"custom_case_api_headers"`
	RequestBody    string `json:"custom_case_api_request_body"`
}

// ConnectionResult is the outcome of a connectivity probe. Probes never
// return a Go error; failures are reported in Message.
type ConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FetchCase retrieves one case via the TestRail get_case API using basic
// auth. The base URL must be absolute; trailing slashes are tolerated.
func FetchCase(ctx context.Context, cfg *TestRailConfig) (*CaseData, error) {
	endpoint, err := caseEndpoint(cfg.BaseURL, cfg.TestCaseID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build TestRail request")
	}
	req.SetBasicAuth(cfg.Username, cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.ImpatientHTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call TestRail")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.Errorf("TestRail returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var data CaseData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decode TestRail case")
	}
	return &data, nil
}

// TestConnection probes the TestRail instance with the supplied credentials
// and case id. It classifies the outcome into a human-readable message and
// never fails with a transport error.
func TestConnection(ctx context.Context, cfg *TestRailConfig) ConnectionResult {
	endpoint, err := caseEndpoint(cfg.BaseURL, cfg.TestCaseID)
	if err != nil {
		return ConnectionResult{Message: "Invalid TestRail base URL: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ConnectionResult{Message: "TestRail connection failed: " + err.Error()}
	}
	req.SetBasicAuth(cfg.Username, cfg.APIKey)

	resp, err := client.ImpatientHTTPClient.Do(req)
	if err != nil {
		return ConnectionResult{Message: "TestRail connection failed: " + err.Error()}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return ConnectionResult{
			Success: true,
			Message: "TestRail connection successful",
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return ConnectionResult{Message: "TestRail authentication failed: invalid username or API key"}
	case http.StatusNotFound:
		return ConnectionResult{Message: fmt.Sprintf("TestRail case ID %s not found", cfg.TestCaseID)}
	default:
		return ConnectionResult{Message: fmt.Sprintf("TestRail returned HTTP %d", resp.StatusCode)}
	}
}

// DecodeCase converts a raw case payload into the canonical model. Decoding
// never fails: malformed substructures fall back to empty values, and an
// empty step list yields the default scenario.
func DecodeCase(data *CaseData) *Result {
	details := NewAPIDetails()
	if t := strings.TrimSpace(data.RequestType); t != "" {
		details.RequestType = strings.ToUpper(t)
	}
	if u := strings.TrimSpace(data.RequestURL); u != "" {
		details.RequestURL = u
	}
	details.Headers = decodeHeaders(data.RawHeaders)
	if b := strings.TrimSpace(data.RequestBody); b != "" {
		details.Body = b
	} else {
		details.Body = PlaceholderBody
	}

	return &Result{
		APIDetails: details,
		Scenarios:  decodeSteps(data.CustomSteps),
	}
}

// decodeHeaders accepts a native map, a JSON-encoded string, or anything
// else (which decodes to an empty map). Non-string values are stringified.
func decodeHeaders(raw any) map[string]string {
	headers := map[string]string{}
	var m map[string]any
	switch v := raw.(type) {
	case nil:
		return headers
	case string:
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			logger.Logger.Warn("unparseable TestRail headers field, ignoring",
				zap.Error(err))
			return headers
		}
	case map[string]any:
		m = v
	default:
		return headers
	}
	for k, val := range m {
		headers[k] = stringify(val)
	}
	return headers
}

// decodeSteps accepts the separated-steps structure in either native or
// JSON-string form. Each entry becomes one scenario; entries without a
// title get a positional name.
func decodeSteps(raw any) []Scenario {
	var list []any
	switch v := raw.(type) {
	case nil:
	case string:
		if err := json.Unmarshal([]byte(v), &list); err != nil {
			logger.Logger.Warn("unparseable TestRail steps field, ignoring",
				zap.Error(err))
		}
	case []any:
		list = v
	case map[string]any:
		list = []any{v}
	}

	var scenarios []Scenario
	for i, entry := range list {
		step, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		sc := Scenario{
			TestName:       strings.TrimSpace(stringify(step["title"])),
			Steps:          strings.TrimSpace(stringify(step["content"])),
			ExpectedResult: strings.TrimSpace(stringify(step["expected"])),
		}
		if sc.TestName == "" {
			sc.TestName = fmt.Sprintf("Test_%d", i+1)
		}
		if sc.Steps == "" {
			sc.Steps = defaultSteps
		}
		if sc.ExpectedResult == "" {
			sc.ExpectedResult = defaultExpected
		}
		scenarios = append(scenarios, sc)
	}
	if len(scenarios) == 0 {
		scenarios = []Scenario{DefaultScenario()}
	}
	return scenarios
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

func caseEndpoint(baseURL, caseID string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return "", errors.New("TestRail base URL is empty")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrap(err, "parse TestRail base URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.Errorf("TestRail base URL %q is not absolute", baseURL)
	}
	id := strings.TrimPrefix(strings.TrimSpace(caseID), "C")
	return fmt.Sprintf("%s/index.php?/api/v2/get_case/%s", base, id), nil
}
