package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func testrailServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		require.NotEmpty(t, user)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func testrailCfg(baseURL string) *TestRailConfig {
	return &TestRailConfig{
		Username:   "user@example.com",
		APIKey:     "key",
		TestCaseID: "C1234",
		BaseURL:    baseURL,
	}
}

func TestFetchCase(t *testing.T) {
	server := testrailServer(t, http.StatusOK, map[string]any{
		"title":                        "Create order",
		"custom_case_api_request_type": "post",
		"custom_case_request_url":      "https://api.example.com/orders",
		"custom_case_api_headers":      `{"Content-Type": "application/json"}`,
		"custom_case_api_request_body": `{"qty": 2}`,
		"custom_steps_separated": []map[string]any{
			{"title": "Create", "content": "POST order", "expected": "201"},
		},
	})

	data, err := FetchCase(context.Background(), testrailCfg(server.URL))
	require.NoError(t, err)
	require.Equal(t, "Create order", data.Title)
	require.Equal(t, "post", data.RequestType)

	res := DecodeCase(data)
	require.Equal(t, "POST", res.APIDetails.RequestType)
	require.Equal(t, "https://api.example.com/orders", res.APIDetails.RequestURL)
	require.Equal(t, "application/json", res.APIDetails.Headers["Content-Type"])
	require.Equal(t, `{"qty": 2}`, res.APIDetails.Body)
	require.Len(t, res.Scenarios, 1)
	require.Equal(t, "Create", res.Scenarios[0].TestName)
}

func TestFetchCaseErrors(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		server := testrailServer(t, http.StatusUnauthorized, map[string]any{"error": "no"})
		_, err := FetchCase(context.Background(), testrailCfg(server.URL))
		require.Error(t, err)
		require.Contains(t, err.Error(), "401")
	})

	t.Run("relative base url", func(t *testing.T) {
		_, err := FetchCase(context.Background(), testrailCfg("testrail.local"))
		require.Error(t, err)
	})

	t.Run("empty base url", func(t *testing.T) {
		_, err := FetchCase(context.Background(), testrailCfg(""))
		require.Error(t, err)
	})
}

func TestTestConnection(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := testrailServer(t, http.StatusOK, map[string]any{"id": 1234})
		res := TestConnection(context.Background(), testrailCfg(server.URL))
		require.True(t, res.Success)
	})

	t.Run("auth failure", func(t *testing.T) {
		server := testrailServer(t, http.StatusUnauthorized, map[string]any{})
		res := TestConnection(context.Background(), testrailCfg(server.URL))
		require.False(t, res.Success)
		require.Contains(t, res.Message, "authentication failed")
	})

	t.Run("case not found", func(t *testing.T) {
		server := testrailServer(t, http.StatusNotFound, map[string]any{})
		res := TestConnection(context.Background(), testrailCfg(server.URL))
		require.False(t, res.Success)
		require.Contains(t, res.Message, "not found")
	})

	t.Run("unreachable host", func(t *testing.T) {
		res := TestConnection(context.Background(), testrailCfg("http://127.0.0.1:1"))
		require.False(t, res.Success)
		require.Contains(t, res.Message, "connection failed")
	})
}

// DecodeCase must tolerate every shape the custom fields can arrive in.
func TestDecodeCaseNeverFails(t *testing.T) {
	cases := []struct {
		name string
		data CaseData
	}{
		{"all absent", CaseData{}},
		{"malformed header string", CaseData{RawHeaders: "{not json"}},
		{"malformed steps string", CaseData{CustomSteps: "[broken"}},
		{"headers wrong type", CaseData{RawHeaders: 42.0}},
		{"steps wrong element types", CaseData{CustomSteps: []any{"plain string", 7.0}}},
		{"native header map", CaseData{RawHeaders: map[string]any{"X-Key": "v", "X-Num": 3.0}}},
		{"single step object", CaseData{CustomSteps: map[string]any{"title": "only"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := DecodeCase(&tc.data)
			require.NotNil(t, res)
			require.NotEmpty(t, res.Scenarios)
			require.NotNil(t, res.APIDetails.Headers)
			require.NotEmpty(t, res.APIDetails.Body)
		})
	}
}

func TestDecodeCaseStepDefaults(t *testing.T) {
	data := CaseData{
		CustomSteps: `[{"content": "do something"}, {"title": "named", "expected": "ok"}]`,
	}
	res := DecodeCase(&data)
	require.Len(t, res.Scenarios, 2)
	require.Equal(t, "Test_1", res.Scenarios[0].TestName)
	require.Equal(t, "do something", res.Scenarios[0].Steps)
	require.Equal(t, "No expected result", res.Scenarios[0].ExpectedResult)
	require.Equal(t, "named", res.Scenarios[1].TestName)
	require.Equal(t, "No steps provided", res.Scenarios[1].Steps)
}

func TestDecodeCaseDefaultScenario(t *testing.T) {
	res := DecodeCase(&CaseData{})
	require.Equal(t, []Scenario{DefaultScenario()}, res.Scenarios)
	require.Equal(t, DefaultRequestType, res.APIDetails.RequestType)
	require.Equal(t, DefaultRequestURL, res.APIDetails.RequestURL)
}

func TestCaseEndpointNormalization(t *testing.T) {
	u, err := caseEndpoint("https://testrail.example.com///", "C42")
	require.NoError(t, err)
	require.Equal(t, "https://testrail.example.com/index.php?/api/v2/get_case/42", u)
}
