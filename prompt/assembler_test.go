package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scriptgen-ra/scriptgen/extractor"
)

func sampleInput() (extractor.APIDetails, []extractor.Scenario) {
	details := extractor.APIDetails{
		RequestType: "POST",
		RequestURL:  "https://svc.example.com/login",
		Headers:     map[string]string{"Content-Type": "application/json"},
		Body:        `{"user": "alice"}`,
	}
	scenarios := []extractor.Scenario{
		{TestName: "Valid Login", Steps: "POST credentials", ExpectedResult: "200 OK"},
		{TestName: "Bad Password", Steps: "POST wrong password", ExpectedResult: "401"},
	}
	return details, scenarios
}

func TestAssembleMessageCount(t *testing.T) {
	details, scenarios := sampleInput()
	messages := Assemble(details, scenarios, "method template", "test template")

	// one system message, one per scenario, one closing instruction
	require.Len(t, messages, len(scenarios)+2)
	require.Equal(t, "system", messages[0].Role)
	for _, m := range messages[1:] {
		require.Equal(t, "user", m.Role)
	}
}

func TestAssembleSystemMessage(t *testing.T) {
	details, scenarios := sampleInput()
	messages := Assemble(details, scenarios, "METHOD_TEMPLATE_BODY", "TEST_TEMPLATE_BODY")

	system := messages[0].Content
	require.Contains(t, system, "METHOD_TEMPLATE_BODY")
	require.Contains(t, system, "TEST_TEMPLATE_BODY")
	require.Contains(t, system, MethodMarker)
	require.Contains(t, system, TestMarker)
	require.Contains(t, system, `"Request Type":"POST"`)
	require.Contains(t, system, `"Test Name":"Valid Login"`)
}

func TestAssembleScenarioMessages(t *testing.T) {
	details, scenarios := sampleInput()
	messages := Assemble(details, scenarios, "m", "t")

	require.Equal(t,
		"Scenario: Valid Login\nSteps: POST credentials\nExpected: 200 OK",
		messages[1].Content)
	require.Equal(t,
		"Scenario: Bad Password\nSteps: POST wrong password\nExpected: 401",
		messages[2].Content)

	closing := messages[len(messages)-1].Content
	require.True(t, strings.HasPrefix(closing, "Generate complete Rest Assured test script"))
}

func TestAssembleNoScenarios(t *testing.T) {
	details, _ := sampleInput()
	messages := Assemble(details, nil, "m", "t")
	require.Len(t, messages, 2)
}

func TestEstimateTokens(t *testing.T) {
	details, scenarios := sampleInput()
	messages := Assemble(details, scenarios, "m", "t")

	n := EstimateTokens(messages)
	require.Greater(t, n, 0)

	// more content means more tokens
	bigger := Assemble(details, scenarios, strings.Repeat("x ", 2000), "t")
	require.Greater(t, EstimateTokens(bigger), n)
}
