// Package prompt builds the chat-completion message sequence sent to the
// model and defines the marker contract the response splitter relies on.
package prompt

import (
	"encoding/json"
	"fmt"

	"github.com/scriptgen-ra/scriptgen/extractor"
)

// Markers are part of the contract between the system prompt and the
// response splitter. Changing one side without the other breaks splitting.
const (
	MethodMarker = "=== METHOD FILE ==="
	TestMarker   = "=== TEST FILE ==="
)

// Message is one chat-completion message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const systemTemplate = `You are a Java and Rest Assured expert. Generate valid and concise Rest Assured test scripts strictly following the conventions and patterns outlined in these files:
1. Methods: %s
2. Tests: %s

Use the following API details and scenarios to create the script:
- API Details: %s
- Scenarios: %s

Ensure the generated code should have separate test and method files that align with the structure, naming conventions, and style of the provided framework. Do not add explanations, comments, or additional context. The output should be production-ready and directly integrable into the project.

Structure the response as:
` + MethodMarker + `
[Complete method file content here]

` + TestMarker + `
[Complete test file content here]

Generate REST Assured methods and tests separately. Include all scenarios in one test class with separate methods. Optimize with loops where appropriate. Group tests by test name and functionality.`

const closingInstruction = `Generate complete Rest Assured test script with methods and tests based on the provided API details and scenarios. Follow the exact patterns from the template files.
      - Method name should have some meaning related to the test scenario.`

// Assemble produces the full message sequence: one system message embedding
// the templates and extracted data, one user message per scenario, and a
// closing user instruction. For N scenarios the result has N+2 messages.
// Assemble is pure; it performs no I/O and reads no ambient state.
func Assemble(details extractor.APIDetails, scenarios []extractor.Scenario,
	methodTemplate, testTemplate string) []Message {
	messages := make([]Message, 0, len(scenarios)+2)
	messages = append(messages, Message{
		Role: "system",
		Content: fmt.Sprintf(systemTemplate,
			methodTemplate, testTemplate, mustJSON(details), mustJSON(scenarios)),
	})

	for _, sc := range scenarios {
		messages = append(messages, Message{
			Role: "user",
			Content: fmt.Sprintf("Scenario: %s\nSteps: %s\nExpected: %s",
				sc.TestName, sc.Steps, sc.ExpectedResult),
		})
	}

	messages = append(messages, Message{
		Role:    "user",
		Content: closingInstruction,
	})
	return messages
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
