// Package git implements the version-control port with the git command line.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/logger"
)

// Ensure Repository implements the interface.
var _ driven.VersionControl = (*Repository)(nil)

// DefaultTimeout bounds each git invocation.
const DefaultTimeout = 30 * time.Second

// Repository runs git commands in one working tree.
//
// All methods are safe for concurrent use; git serialises index writes itself.
type Repository struct {
	dir     string
	timeout time.Duration
}

// New creates a repository client for the working tree at dir.
func New(dir string, timeout time.Duration) *Repository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Repository{dir: dir, timeout: timeout}
}

// Diff returns the unified diff of path between prior and current. An empty
// current compares against the working tree, including untracked files.
func (r *Repository) Diff(ctx context.Context, prior, current, path string) (*domain.ChangeSet, error) {
	args := []string{"diff", "--no-color", "--no-ext-diff", prior}
	if current != "" {
		args = append(args, current)
	}
	args = append(args, "--", path)

	text, err := r.output(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDiff, err)
	}

	if current == "" {
		untracked, err := r.untrackedDiff(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrDiff, err)
		}
		text += untracked
	}

	return &domain.ChangeSet{
		Prior:   prior,
		Current: current,
		Text:    text,
		Files:   changedFiles(text),
	}, nil
}

// untrackedDiff renders new, unignored files under path as additions.
func (r *Repository) untrackedDiff(ctx context.Context, path string) (string, error) {
	list, err := r.output(ctx, "ls-files", "--others", "--exclude-standard", "--", path)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, file := range strings.Split(strings.TrimSpace(list), "\n") {
		if file == "" {
			continue
		}
		// --no-index exits 1 when the inputs differ, which they always do here.
		out, err := r.output(ctx, "diff", "--no-color", "--no-ext-diff", "--no-index", "--", "/dev/null", file)
		var exitErr *exec.ExitError
		if err != nil && !(errors.As(err, &exitErr) && exitErr.ExitCode() == 1) {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

// StageAll stages every change in the working tree.
func (r *Repository) StageAll(ctx context.Context) error {
	if _, err := r.output(ctx, "add", "-A"); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrCommit, err)
	}
	return nil
}

// Commit records the index with message and returns the new commit id.
func (r *Repository) Commit(ctx context.Context, message string) (string, error) {
	if _, err := r.output(ctx, "commit", "--quiet", "-m", message); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCommit, err)
	}
	id, err := r.output(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrCommit, err)
	}
	return strings.TrimSpace(id), nil
}

// output runs git with args and returns stdout. On failure the output
// gathered so far is returned with the error.
func (r *Repository) output(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("git %s", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return stdout.String(), fmt.Errorf("git %s: timeout after %v", args[0], r.timeout)
		}
		return stdout.String(), fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// changedFiles lists the paths touched by a unified diff. A diff that cannot
// be parsed yields no paths; the text itself is still usable.
func changedFiles(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	fileDiffs, err := diff.ParseMultiFileDiff([]byte(text))
	if err != nil {
		logger.Debug("Parsing diff for file list: %v", err)
		return nil
	}

	seen := make(map[string]bool, len(fileDiffs))
	var files []string
	for _, fd := range fileDiffs {
		name := fd.NewName
		if name == "" || name == "/dev/null" {
			name = fd.OrigName
		}
		name = strings.TrimPrefix(strings.TrimPrefix(name, "b/"), "a/")
		if name == "" || name == "/dev/null" || seen[name] {
			continue
		}
		seen[name] = true
		files = append(files, name)
	}
	return files
}
