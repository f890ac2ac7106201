package hints

import "github.com/abhisek/codedrills/internal/llm"

// HintSchema is the structured output requested for a generated hint.
var HintSchema = llm.MustSchema("drill-hint", "A single nudge toward solving a programming drill", map[string]any{
	"type": "object",
	"properties": map[string]any{
		"hint": map[string]any{
			"type":        "string",
			"description": "One or two sentences that move the learner forward without giving the answer",
			"minLength":   1,
			"maxLength":   400,
		},
	},
	"required":             []any{"hint"},
	"additionalProperties": false,
})

type hintOutput struct {
	Hint string `json:"hint"`
}
