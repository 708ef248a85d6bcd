package extractor

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook builds an xlsx file with the given sheet contents and
// returns its path.
func writeWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cellName, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cellName, &row))
		}
	}
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func scenarioSheetRows() [][]string {
	return [][]string{
		{"Test Name", "Steps", "Expected Result"},
		{"Login Test", "POST credentials", "200 OK"},
	}
}

func TestExtractSpreadsheetLabeledRows(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		apiDetailSheet: {
			{"Request Type", "post"},
			{"Request URL", "https://svc.example.com/login"},
			{"Header", "Authorization", "Bearer abc"},
			{"Header", "Content-Type", "application/json"},
			{"Body", `{"user": "alice"}`},
		},
		scenarioSheet: scenarioSheetRows(),
	})

	res, err := ExtractSpreadsheet(path)
	require.NoError(t, err)
	require.Equal(t, "POST", res.APIDetails.RequestType)
	require.Equal(t, "https://svc.example.com/login", res.APIDetails.RequestURL)
	require.Equal(t, `{"user": "alice"}`, res.APIDetails.Body)
	require.Equal(t, "Bearer abc", res.APIDetails.Headers["Authorization"])
	require.Equal(t, "application/json", res.APIDetails.Headers["Content-Type"])

	require.Len(t, res.Scenarios, 1)
	require.Equal(t, "Login Test", res.Scenarios[0].TestName)
	require.Equal(t, "POST credentials", res.Scenarios[0].Steps)
	require.Equal(t, "200 OK", res.Scenarios[0].ExpectedResult)
}

func TestExtractSpreadsheetLabelVariants(t *testing.T) {
	cases := []struct {
		name     string
		rows     [][]string
		wantType string
		wantURL  string
	}{
		{
			name: "method and endpoint",
			rows: [][]string{
				{"HTTP Method", "put"},
				{"Endpoint", "https://svc.example.com/items/1"},
			},
			wantType: "PUT",
			wantURL:  "https://svc.example.com/items/1",
		},
		{
			name: "bare method and url",
			rows: [][]string{
				{"Method", "delete"},
				{"URL", "https://svc.example.com/items/2"},
			},
			wantType: "DELETE",
			wantURL:  "https://svc.example.com/items/2",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeWorkbook(t, map[string][][]string{
				apiDetailSheet: tc.rows,
				scenarioSheet:  scenarioSheetRows(),
			})
			res, err := ExtractSpreadsheet(path)
			require.NoError(t, err)
			require.Equal(t, tc.wantType, res.APIDetails.RequestType)
			require.Equal(t, tc.wantURL, res.APIDetails.RequestURL)
		})
	}
}

func TestExtractSpreadsheetFirstMatchWins(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		apiDetailSheet: {
			{"Request Type", "POST"},
			{"Method", "DELETE"}, // must not override the earlier row
			{"Request URL", "https://first.example.com"},
			{"Endpoint", "https://second.example.com"},
		},
		scenarioSheet: scenarioSheetRows(),
	})

	res, err := ExtractSpreadsheet(path)
	require.NoError(t, err)
	require.Equal(t, "POST", res.APIDetails.RequestType)
	require.Equal(t, "https://first.example.com", res.APIDetails.RequestURL)
}

func TestExtractSpreadsheetLooseBodyLabels(t *testing.T) {
	for _, label := range []string{"json", "data", "JSON Data", "Request Data"} {
		t.Run(label, func(t *testing.T) {
			path := writeWorkbook(t, map[string][][]string{
				apiDetailSheet: {
					{"Request Type", "POST"},
					{"URL", "https://svc.example.com"},
					{label, `{"k": 1}`},
				},
				scenarioSheet: scenarioSheetRows(),
			})

			res, err := ExtractSpreadsheet(path)
			require.NoError(t, err)
			require.Equal(t, `{"k": 1}`, res.APIDetails.Body)
		})
	}
}

func TestExtractSpreadsheetDefaults(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		apiDetailSheet: {
			{"Request Type", "GET"},
		},
		scenarioSheet: {
			{"Test Name", "Steps", "Expected Result"},
		},
	})

	res, err := ExtractSpreadsheet(path)
	require.NoError(t, err)
	require.Equal(t, DefaultRequestURL, res.APIDetails.RequestURL)
	require.Equal(t, PlaceholderBody, res.APIDetails.Body)
	require.Empty(t, res.APIDetails.Headers)

	// empty scenario sheet degrades to the default scenario
	require.Len(t, res.Scenarios, 1)
	require.Equal(t, DefaultScenario(), res.Scenarios[0])
}

func TestExtractSpreadsheetScenarioFallbacks(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		apiDetailSheet: {{"Request Type", "GET"}},
		scenarioSheet: {
			{"Test Name", "Steps", "Expected Result"},
			{"Only Name"},
			{"", "orphan steps without a name", "ignored"},
		},
	})

	res, err := ExtractSpreadsheet(path)
	require.NoError(t, err)
	require.Len(t, res.Scenarios, 1)
	require.Equal(t, "Only Name", res.Scenarios[0].TestName)
	require.Equal(t, "No steps provided", res.Scenarios[0].Steps)
	require.Equal(t, "No expected result", res.Scenarios[0].ExpectedResult)
}

func TestExtractSpreadsheetHeaderColumns(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		apiDetailSheet: {
			{"Header", "Authorization", "Bearer abc"},
		},
		scenarioSheet: scenarioSheetRows(),
	})

	res, err := ExtractSpreadsheet(path)
	require.NoError(t, err)
	// column 1 is the header name, column 2 the value
	require.Equal(t, map[string]string{"Authorization": "Bearer abc"}, res.APIDetails.Headers)
}

func TestExtractSpreadsheetLegacyLayout(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		apiDetailSheet: {
			{"API Details", ""},
			{"", ""},
			{"", "Authorization", "Bearer xyz"},
			{"", "Content-Type", "application/json"},
		},
		scenarioSheet: scenarioSheetRows(),
	})

	res, err := ExtractSpreadsheet(path)
	require.NoError(t, err)
	require.Equal(t, DefaultRequestType, res.APIDetails.RequestType)
	require.Equal(t, "Bearer xyz", res.APIDetails.Headers["Authorization"])
	require.Equal(t, "application/json", res.APIDetails.Headers["Content-Type"])
	require.Equal(t, PlaceholderBody, res.APIDetails.Body)
}

func TestExtractSpreadsheetLegacyRunsWhenBodyUnset(t *testing.T) {
	// a matching label elsewhere must not disable the fixed-offset pass
	path := writeWorkbook(t, map[string][][]string{
		apiDetailSheet: {
			{"Request Type", "POST"},
			{"", ""},
			{"", "Authorization", "Bearer xyz"},
		},
		scenarioSheet: scenarioSheetRows(),
	})

	res, err := ExtractSpreadsheet(path)
	require.NoError(t, err)
	require.Equal(t, "POST", res.APIDetails.RequestType)
	require.Equal(t, map[string]string{"Authorization": "Bearer xyz"}, res.APIDetails.Headers)
}

func TestExtractSpreadsheetLegacySkippedOnceBodySet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		apiDetailSheet: {
			{"Body", `{"k": 1}`},
			{"", ""},
			{"", "Authorization", "Bearer xyz"},
		},
		scenarioSheet: scenarioSheetRows(),
	})

	res, err := ExtractSpreadsheet(path)
	require.NoError(t, err)
	require.Equal(t, `{"k": 1}`, res.APIDetails.Body)
	require.Empty(t, res.APIDetails.Headers)
}

func TestExtractSpreadsheetMissingSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]string{
		apiDetailSheet: {{"Request Type", "GET"}},
	})

	_, err := ExtractSpreadsheet(path)
	require.Error(t, err)
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
}

func TestExtractSpreadsheetUnreadableFile(t *testing.T) {
	_, err := ExtractSpreadsheet(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
}
