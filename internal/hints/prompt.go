package hints

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a terse programming coach running timed drills. The learner is stuck on a short exercise and asked for a hint.`

func buildUserMessage(req Request, shown []string) string {
	p := req.Problem
	var b strings.Builder

	fmt.Fprintf(&b, "Category: %s\n", p.Category)
	fmt.Fprintf(&b, "Difficulty: %s\n", p.Difficulty)
	if p.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
	}
	fmt.Fprintf(&b, "\nExercise:\n%s\n", p.Prompt)
	if p.Setup != "" {
		fmt.Fprintf(&b, "\nGiven:\n%s\n", p.Setup)
	}
	if len(p.Choices) > 0 {
		b.WriteString("\nOptions:\n")
		for _, c := range p.Choices {
			fmt.Fprintf(&b, "%s) %s\n", c.ID, c.Text)
		}
	}

	if req.LastAnswer != "" {
		fmt.Fprintf(&b, "\nThe learner's last attempt was:\n%s\n", req.LastAnswer)
	}
	if len(shown) > 0 {
		b.WriteString("\nHints already shown:\n")
		for _, h := range shown {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}

	b.WriteString(`
Instructions:
Write one new hint that:
1. Points at the next concept or step the learner is missing. If a last attempt is shown, address what is wrong with it.
2. Goes one step further than the hints already shown, without repeating them.
3. Never states the answer, the full query, the full expression or the correct option.
4. Is at most two sentences of plain text.`)

	return b.String()
}
