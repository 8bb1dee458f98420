package domain

// EntityAnalysis is the structured documentation generated for one entity.
// Every field is required; a reply missing any of them is rejected.
type EntityAnalysis struct {
	// Description is a concise business description.
	Description string `json:"description" validate:"required"`

	// TechnicalNotes explains the logic of the expression.
	TechnicalNotes string `json:"technical_notes" validate:"required"`

	// Issues lists potential problems or improvements. It may be empty but not absent.
	Issues []string `json:"issues" validate:"required"`

	// DisplayFolder is the suggested categorisation.
	DisplayFolder string `json:"display_folder" validate:"required"`
}

// ChangeAnalysis is the structured summary generated for a change set.
type ChangeAnalysis struct {
	// Changelog is the human-readable summary of the change.
	Changelog string `json:"changelog" validate:"required"`

	// Impact describes which reports and measures are affected.
	Impact string `json:"impact" validate:"required"`

	// CommitMessage is used verbatim as the version-control commit message.
	CommitMessage string `json:"commit_message" validate:"required"`
}
