package extractor

import (
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/xuri/excelize/v2"

	"github.com/scriptgen-ra/scriptgen/common/logger"
)

const (
	apiDetailSheet = "API_detail"
	scenarioSheet  = "Test_scenarios"
)

// FormatError reports a workbook that does not follow the expected layout,
// e.g. a missing sheet. It maps to a user-correctable failure.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid spreadsheet format: " + e.Reason
}

// labelRule binds a label predicate to the field it populates. Rules are
// evaluated in order per row and the first match wins, so more specific
// labels must come before catch-alls (the loose "json"/"data" body rule is
// last and only fires when no body has been captured yet).
type labelRule struct {
	name    string
	matches func(label string) bool
	apply   func(st *sheetState, row []string)
}

// sheetState accumulates field assignments while scanning the detail sheet.
// typeSet/urlSet/bodySet give earlier rows precedence over later ones.
type sheetState struct {
	details APIDetails
	typeSet bool
	urlSet  bool
	bodySet bool
}

var detailRules = []labelRule{
	{
		name: "request-type",
		matches: func(label string) bool {
			return strings.Contains(label, "request type") ||
				strings.Contains(label, "method") ||
				strings.Contains(label, "http method")
		},
		apply: func(st *sheetState, row []string) {
			value := strings.TrimSpace(cell(row, 1))
			if st.typeSet || value == "" {
				return
			}
			st.details.RequestType = strings.ToUpper(value)
			st.typeSet = true
		},
	},
	{
		name: "request-url",
		matches: func(label string) bool {
			return strings.Contains(label, "request url") ||
				strings.Contains(label, "url") ||
				strings.Contains(label, "endpoint")
		},
		apply: func(st *sheetState, row []string) {
			value := strings.TrimSpace(cell(row, 1))
			if st.urlSet || value == "" {
				return
			}
			st.details.RequestURL = value
			st.urlSet = true
		},
	},
	{
		name: "header",
		matches: func(label string) bool {
			return strings.Contains(label, "header")
		},
		apply: func(st *sheetState, row []string) {
			// Header rows accumulate instead of competing: column 1 names
			// the header and column 2 carries its value.
			name := strings.TrimSpace(cell(row, 1))
			value := strings.TrimSpace(cell(row, 2))
			if name == "" || value == "" {
				return
			}
			st.details.Headers[name] = value
		},
	},
	{
		name: "body",
		matches: func(label string) bool {
			return strings.Contains(label, "body") ||
				strings.Contains(label, "request body") ||
				strings.Contains(label, "payload")
		},
		apply: func(st *sheetState, row []string) {
			value := strings.TrimSpace(cell(row, 1))
			if st.bodySet || value == "" {
				return
			}
			st.details.Body = value
			st.bodySet = true
		},
	},
	{
		name: "body-loose",
		matches: func(label string) bool {
			return strings.Contains(label, "json") || strings.Contains(label, "data")
		},
		apply: func(st *sheetState, row []string) {
			value := strings.TrimSpace(cell(row, 1))
			if st.bodySet || value == "" {
				return
			}
			st.details.Body = value
			st.bodySet = true
		},
	},
}

// ExtractSpreadsheet reads the workbook at path and produces the canonical
// extraction result. The API_detail sheet is scanned as a label/value table;
// when the label scan yields no body, the legacy fixed-offset layout is tried.
func ExtractSpreadsheet(path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %q", path)
	}
	defer f.Close()

	return extractWorkbook(f)
}

func extractWorkbook(f *excelize.File) (*Result, error) {
	sheets := f.GetSheetList()
	if !containsSheet(sheets, apiDetailSheet) {
		return nil, &FormatError{Reason: "missing sheet " + apiDetailSheet}
	}
	if !containsSheet(sheets, scenarioSheet) {
		return nil, &FormatError{Reason: "missing sheet " + scenarioSheet}
	}

	detailRows, err := f.GetRows(apiDetailSheet)
	if err != nil {
		return nil, errors.Wrap(err, "read "+apiDetailSheet)
	}
	details := extractDetails(detailRows)

	scenarioRows, err := f.GetRows(scenarioSheet)
	if err != nil {
		return nil, errors.Wrap(err, "read "+scenarioSheet)
	}
	scenarios := extractScenarios(scenarioRows)

	return &Result{APIDetails: details, Scenarios: scenarios}, nil
}

func extractDetails(rows [][]string) APIDetails {
	st := &sheetState{details: NewAPIDetails()}

	for _, row := range rows {
		label := strings.ToLower(strings.TrimSpace(cell(row, 0)))
		if label == "" {
			continue
		}
		for _, rule := range detailRules {
			if rule.matches(label) {
				rule.apply(st, row)
				break
			}
		}
	}

	if !st.bodySet && len(rows) >= 3 {
		legacyDetails(rows, st)
	}

	if st.details.Body == "" {
		st.details.Body = PlaceholderBody
	}
	return st.details
}

// legacyDetails reads the historical fixed-offset layout: header name/value
// pairs in columns B/C starting at row 3, then a body cell once the header
// block ends. Headers already captured by label rules keep their values.
func legacyDetails(rows [][]string, st *sheetState) {
	logger.Logger.Warn("no body captured by label scan, trying legacy fixed-offset layout")

	row := 2
	for ; row < len(rows); row++ {
		name := strings.TrimSpace(cell(rows[row], 1))
		if name == "" {
			break
		}
		value := strings.TrimSpace(cell(rows[row], 2))
		if value == "" {
			continue
		}
		if _, ok := st.details.Headers[name]; !ok {
			st.details.Headers[name] = value
		}
	}
	if row < len(rows) {
		if v := strings.TrimSpace(cell(rows[row], 1)); v != "" {
			st.details.Body = v
			st.bodySet = true
		}
	}
}

// extractScenarios reads one scenario per data row (header row skipped).
// Rows with no test name are dropped; an empty sheet yields the default
// scenario.
func extractScenarios(rows [][]string) []Scenario {
	var scenarios []Scenario
	for i, row := range rows {
		if i == 0 {
			continue
		}
		name := strings.TrimSpace(cell(row, 0))
		if name == "" {
			continue
		}
		sc := Scenario{
			TestName:       name,
			Steps:          strings.TrimSpace(cell(row, 1)),
			ExpectedResult: strings.TrimSpace(cell(row, 2)),
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
		logger.Logger.Warn("scenario sheet empty, using default scenario",
			zap.String("sheet", scenarioSheet))
		scenarios = []Scenario{DefaultScenario()}
	}
	return scenarios
}

func containsSheet(sheets []string, name string) bool {
	for _, s := range sheets {
		if s == name {
			return true
		}
	}
	return false
}

// cell returns the i-th cell of a row, tolerating the trailing-cell trimming
// excelize applies to sparse rows.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
