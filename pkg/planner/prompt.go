package planner

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jllopis/topomind/pkg/core"
)

// PromptBuilder renders the routing prompt. The planner is only responsible
// for tool selection, so the prompt is deliberately minimal: one tool block
// per contract, sorted by name so identical state renders identically.
type PromptBuilder struct{}

// Build renders the complete prompt for one planning request.
func (b PromptBuilder) Build(input string, signals map[string]any, tools []core.Contract) string {
	sorted := append([]core.Contract(nil), tools...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var blocks []string
	for _, tool := range sorted {
		var block strings.Builder
		fmt.Fprintf(&block, "- %s\n", tool.Name)
		fmt.Fprintf(&block, "  Description: %s\n", tool.Description)
		fmt.Fprintf(&block, "  Inputs: %s", renderSchema(tool.InputSchema))
		blocks = append(blocks, block.String())
	}

	return strings.TrimSpace(fmt.Sprintf(promptTemplate,
		input,
		renderSignals(signals),
		strings.Join(blocks, "\n\n"),
	))
}

const promptTemplate = `
You are a routing engine.

Your job is to select the SINGLE most appropriate tool.

You DO NOT generate code.
You DO NOT explain execution contracts.

Return STRICT JSON:
{
  "tool": "...",
  "args": {...},
  "reasoning": "...",
  "confidence": 0.0-1.0
}

IMPORTANT:
- Output MUST be valid JSON.
- Use only double quotes.
- args must contain raw user input only.
- If stable context contains "previous_tool",
  you MUST choose a different tool.

User request:
%q

Stable context:
%s

Available tools:
%s
`

func renderSchema(schema core.Schema) string {
	if len(schema) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(schema))
	for k := range schema {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, schema[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func renderSignals(signals map[string]any) string {
	if len(signals) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(signals)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
