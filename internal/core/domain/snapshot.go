package domain

import (
	"strings"
	"time"
)

// SnapshotIDLayout formats capture timestamps into snapshot identifiers.
const SnapshotIDLayout = "20060102_150405"

// ChangeSet is a textual diff between two captures of the model definition tree.
type ChangeSet struct {
	// Prior is the older revision.
	Prior string

	// Current is the newer revision. Empty means the working tree.
	Current string

	// Text is the raw diff.
	Text string

	// Files lists the paths touched by the diff, when it could be parsed.
	Files []string
}

// IsEmpty reports whether the change set carries no changes.
func (c *ChangeSet) IsEmpty() bool {
	return c == nil || strings.TrimSpace(c.Text) == ""
}

// BackupSnapshot is an immutable, timestamped copy of the definition tree
// together with its changelog.
type BackupSnapshot struct {
	// ID is derived from CreatedAt using SnapshotIDLayout.
	ID string

	// CreatedAt is the capture time.
	CreatedAt time.Time

	// Dir is the snapshot directory.
	Dir string

	// ChangelogPath is the changelog document inside Dir.
	ChangelogPath string

	// CommitMessage is taken verbatim from the change analysis.
	CommitMessage string

	// Analysis is the change analysis embedded in the changelog.
	Analysis ChangeAnalysis

	// ChangeSet is the diff the snapshot documents.
	ChangeSet ChangeSet
}

// SnapshotID returns the identifier for a snapshot captured at t.
func SnapshotID(t time.Time) string {
	return t.Format(SnapshotIDLayout)
}

// ChangelogTimeLayout formats the changelog header timestamp.
const ChangelogTimeLayout = "2006-01-02 15:04:05"

// Changelog renders the changelog document. Sections appear in a fixed
// order: header, changes summary, impact assessment, then the raw diff as a
// literal block. The affected files follow when the diff could be parsed.
func (s *BackupSnapshot) Changelog() string {
	var b strings.Builder

	b.WriteString("# Model Backup - " + s.CreatedAt.Format(ChangelogTimeLayout) + "\n\n")
	b.WriteString("## Changes Summary\n\n")
	b.WriteString(s.Analysis.Changelog + "\n\n")
	b.WriteString("## Impact Assessment\n\n")
	b.WriteString(s.Analysis.Impact + "\n\n")
	b.WriteString("## Technical Details\n\n")
	b.WriteString(fence(s.ChangeSet.Text) + "\n" + s.ChangeSet.Text + "\n" + fence(s.ChangeSet.Text) + "\n")

	if len(s.ChangeSet.Files) > 0 {
		b.WriteString("\n## Affected Files\n\n")
		for _, f := range s.ChangeSet.Files {
			b.WriteString("- " + f + "\n")
		}
	}
	return b.String()
}

// fence returns a backtick fence longer than any backtick run in text, so
// the diff is always rendered literally.
func fence(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
