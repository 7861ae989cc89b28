package usecase

import (
	"strings"
)

// Prompts is the instruction/content pair sent to a backend.
type Prompts struct {
	System string
	User   string
}

const changelogRules = `Rules:
- Each entry should be a concise, user-facing description (not the PR title verbatim)
- Use markdown format with ## for each category
- Only include categories that have entries
- Skip internal/maintenance PRs that don't affect users
- Be concise but informative`

const userPromptPrefix = "Generate a changelog from these merged pull requests:\n\n"

// BuildPrompts embeds the categories, in order, into the system prompt and passes
// the pull request summary through to the user prompt verbatim.
func BuildPrompts(summary string, categories []string) Prompts {
	var b strings.Builder
	b.WriteString("You are a changelog generator. Given a list of merged pull requests, ")
	b.WriteString("generate a well-structured changelog grouped by these categories: ")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString(".\n\n")
	b.WriteString(changelogRules)

	return Prompts{
		System: b.String(),
		User:   userPromptPrefix + summary,
	}
}
