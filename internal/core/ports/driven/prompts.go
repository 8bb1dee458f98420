package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return the
	// embedded default or an error when there is none.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptEntityAnalysis documents a single entity.
	// The template expects two %s placeholders: entity name, then expression.
	PromptEntityAnalysis = "entity_analysis"

	// PromptChangeAnalysis summarises a change set.
	// The template expects one %s placeholder: the diff text.
	PromptChangeAnalysis = "change_analysis"
)

// defaultPrompts holds the built-in templates. Replies must be a single JSON
// object with exactly the listed keys.
var defaultPrompts = map[string]string{
	PromptEntityAnalysis: `Analyze this Power BI DAX measure and provide:
1. A concise business description (1-2 sentences)
2. Technical explanation of the logic
3. Any potential issues or improvements
4. Suggested display folder categorization

Measure Name: %s
DAX Expression:
%s

Return only a JSON object with exactly these keys:
"description" (string), "technical_notes" (string), "issues" (array of strings, empty if none), "display_folder" (string)`,

	PromptChangeAnalysis: `Analyze these Power BI TMDL file changes and create:
1. A human-readable changelog summary
2. Impact assessment (what reports/measures are affected)
3. Suggested git commit message

Changes:
%s

Return only a JSON object with exactly these keys:
"changelog" (string), "impact" (string), "commit_message" (string)`,
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// PromptNames lists the well-known prompt names.
func PromptNames() []string {
	return []string{PromptEntityAnalysis, PromptChangeAnalysis}
}
