package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/logger"
)

// Ensure Analyser implements the interface.
var _ driven.Analyser = (*Analyser)(nil)

// Token budgets follow the reply sizes of the two analyses.
const (
	entityMaxTokens = 1024
	changeMaxTokens = 2048
)

// AnalyserConfig tunes the analyser.
type AnalyserConfig struct {
	// RequestsPerMinute throttles calls to the reasoning service. Zero disables throttling.
	RequestsPerMinute int

	// Retry bounds retries of transport failures. Parse failures are never retried.
	Retry RetryPolicy
}

// Analyser adapts the reasoning service into schema-checked analyses.
// Every call is an independent request; nothing is cached.
type Analyser struct {
	llm      driven.LLMService
	prompts  driven.PromptStore
	limiter  *rate.Limiter
	retry    RetryPolicy
	validate *validator.Validate
}

// NewAnalyser creates an analyser over llm. prompts may be nil, in which
// case the built-in templates are used.
func NewAnalyser(llm driven.LLMService, prompts driven.PromptStore, cfg AnalyserConfig) (*Analyser, error) {
	if llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return &Analyser{
		llm:      llm,
		prompts:  prompts,
		limiter:  rate.NewLimiter(limit, 1),
		retry:    cfg.Retry,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// AnalyzeEntity documents one entity from its name and expression.
func (a *Analyser) AnalyzeEntity(ctx context.Context, name, expression string) (*domain.EntityAnalysis, error) {
	prompt := fmt.Sprintf(a.template(driven.PromptEntityAnalysis), name, expression)

	reply, err := a.generate(ctx, "analyse "+name, prompt, entityMaxTokens)
	if err != nil {
		return nil, err
	}

	var result domain.EntityAnalysis
	if err := a.decode(reply, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeChange summarises a change set and derives a commit message.
func (a *Analyser) AnalyzeChange(ctx context.Context, changes *domain.ChangeSet) (*domain.ChangeAnalysis, error) {
	if changes.IsEmpty() {
		return nil, fmt.Errorf("%w: empty change set", domain.ErrInvalidInput)
	}
	prompt := fmt.Sprintf(a.template(driven.PromptChangeAnalysis), changes.Text)

	reply, err := a.generate(ctx, "analyse changes", prompt, changeMaxTokens)
	if err != nil {
		return nil, err
	}

	var result domain.ChangeAnalysis
	if err := a.decode(reply, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// generate issues one throttled request, retrying transport failures only.
func (a *Analyser) generate(ctx context.Context, what, prompt string, maxTokens int) (string, error) {
	return retryTransient(ctx, a.retry, what, func() (string, error) {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", err
		}
		logger.Debug("%s: sending %d-byte prompt to %s", what, len(prompt), a.llm.ModelName())

		reply, err := a.llm.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens: maxTokens,
			JSON:      true,
		})
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if errors.Is(err, driven.ErrRequestRejected) {
				return "", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
			}
			return "", fmt.Errorf("%w: %w", domain.ErrAnalysisTransport, err)
		}
		return reply, nil
	})
}

// decode parses reply strictly into out and checks every field is present.
func (a *Analyser) decode(reply string, out any) error {
	body, err := extractJSONObject(reply)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAnalysisParse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after JSON object", domain.ErrAnalysisParse)
	}

	if err := a.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAnalysisParse, err)
	}
	return nil
}

// template loads a prompt, falling back to the built-in default.
func (a *Analyser) template(name string) string {
	if a.prompts != nil {
		if p, err := a.prompts.Load(name); err == nil && p != "" {
			return p
		}
	}
	p, _ := driven.DefaultPrompt(name)
	return p
}

// extractJSONObject strips code fences and surrounding prose from a reply.
func extractJSONObject(reply string) (string, error) {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object in reply", domain.ErrAnalysisParse)
	}
	return s[start : end+1], nil
}
