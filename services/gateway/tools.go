package gateway

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/peakform/ai-gateway/models"
	"github.com/peakform/ai-gateway/services"
)

// Providers without native tool support get the schemas embedded in the
// system prompt and are asked to answer tool invocations with a single
// fenced JSON block, which is parsed and stripped here.

const toolPromptHeader = `You have access to the tools listed below. To invoke one or more tools, respond with a single fenced JSON code block of exactly this shape and nothing else:

` + "```json" + `
{"tool_calls": [{"name": "<tool name>", "input": {<arguments matching the input schema>}}]}
` + "```" + `

If no tool is needed, answer normally without the block.

Available tools:
`

var fencedBlockPattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// buildToolPrompt serializes the tool schemas into the instruction text
// embedded in the system prompt.
func buildToolPrompt(tools []models.ToolSchema) string {
	var sb strings.Builder
	sb.WriteString(toolPromptHeader)
	for _, tool := range tools {
		schema, err := json.Marshal(tool.InputSchema)
		if err != nil {
			schema = []byte("{}")
		}
		fmt.Fprintf(&sb, "- %s: %s\n  input schema: %s\n", tool.Name, tool.Description, schema)
	}
	return sb.String()
}

// embedToolPrompt returns a copy of the transcript with the tool
// instructions appended to the system turn, creating one when the
// transcript has none.
func embedToolPrompt(messages []models.Message, tools []models.ToolSchema) []models.Message {
	prompt := buildToolPrompt(tools)

	out := make([]models.Message, 0, len(messages)+1)
	if len(messages) > 0 && messages[0].Role == models.RoleSystem {
		out = append(out, models.Message{
			Role:    models.RoleSystem,
			Content: messages[0].Content + "\n\n" + prompt,
		})
		out = append(out, messages[1:]...)
		return out
	}

	out = append(out, models.NewSystemMessage(prompt))
	out = append(out, messages...)
	return out
}

type embeddedToolCall struct {
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

type embeddedEnvelope struct {
	ToolCalls []embeddedToolCall `json:"tool_calls"`
}

// parseEmbeddedToolCalls scans a completion for the fenced tool-call
// block. The first fenced block mentioning "tool_calls" is consumed:
// it is stripped from the content whether or not it parses, and an
// unparseable block yields zero calls plus a tool_parse error the
// caller logs and swallows. Content without a block passes through
// untouched.
func parseEmbeddedToolCalls(content string) (string, []models.ToolCall, error) {
	for _, match := range fencedBlockPattern.FindAllStringSubmatchIndex(content, -1) {
		body := content[match[2]:match[3]]
		if !strings.Contains(body, `"tool_calls"`) {
			continue
		}

		stripped := strings.TrimSpace(content[:match[0]] + content[match[1]:])

		envelope, err := unmarshalEnvelope(body)
		if err != nil {
			return stripped, nil, services.NewToolParseError(err)
		}
		return stripped, buildToolCalls(envelope), nil
	}

	return content, nil, nil
}

// unmarshalEnvelope tolerates prose around the JSON object inside the
// fence by retrying on the outermost brace span.
func unmarshalEnvelope(body string) (embeddedEnvelope, error) {
	var envelope embeddedEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err == nil {
		return envelope, nil
	}

	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end <= start {
		return envelope, fmt.Errorf("no JSON object in tool block")
	}

	err := json.Unmarshal([]byte(body[start:end+1]), &envelope)
	return envelope, err
}

func buildToolCalls(envelope embeddedEnvelope) []models.ToolCall {
	calls := make([]models.ToolCall, 0, len(envelope.ToolCalls))
	for _, call := range envelope.ToolCalls {
		input := call.Input
		if len(input) == 0 {
			input = json.RawMessage("{}")
		}
		calls = append(calls, models.ToolCall{
			ID:    "call_" + uuid.NewString(),
			Name:  call.Name,
			Input: input,
		})
	}
	return calls
}
