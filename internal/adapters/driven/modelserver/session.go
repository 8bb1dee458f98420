package modelserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/logger"
)

// Ensure Session implements the interface.
var _ driven.ModelSession = (*Session)(nil)

// request is the body wrapped under "request" in every tool call.
type request map[string]any

// envelope is the reply shape shared by every tool.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// toolError is a failure reported by the model server rather than the transport.
type toolError struct {
	Tool    string
	Message string
}

func (e *toolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tool, e.Message)
}

// annotation is the wire form of a domain.Annotation.
type annotation struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// measure is the wire form of a measure.
type measure struct {
	Name          string       `json:"name"`
	TableName     string       `json:"tableName"`
	Expression    string       `json:"expression,omitempty"`
	Description   string       `json:"description,omitempty"`
	DisplayFolder string       `json:"displayFolder,omitempty"`
	Annotations   []annotation `json:"annotations,omitempty"`
}

func (m measure) entity() domain.Entity {
	e := domain.Entity{
		Ref:           domain.EntityRef{Table: m.TableName, Name: m.Name},
		Expression:    m.Expression,
		Description:   m.Description,
		DisplayFolder: m.DisplayFolder,
	}
	for _, a := range m.Annotations {
		e.Annotations = append(e.Annotations, domain.Annotation{Key: a.Key, Value: a.Value})
	}
	return e
}

// Session is one live MCP session with the model server.
type Session struct {
	mu     sync.Mutex
	cs     *mcp.ClientSession
	closed bool
}

// ListEntities returns the measures of container.
func (s *Session) ListEntities(ctx context.Context, container string) ([]domain.Entity, error) {
	env, err := s.call(ctx, toolMeasure, request{
		"operation":      "List",
		"connectionName": container,
	})
	if err != nil {
		return nil, callError(domain.ErrConnection, "list measures", err)
	}

	var data struct {
		Measures []measure `json:"measures"`
	}
	if err := decodeData(env, &data); err != nil {
		return nil, fmt.Errorf("%w: list measures: %w", domain.ErrConnection, err)
	}

	entities := make([]domain.Entity, len(data.Measures))
	for i, m := range data.Measures {
		entities[i] = m.entity()
	}
	return entities, nil
}

// GetEntity returns one measure with its expression.
func (s *Session) GetEntity(ctx context.Context, container string, ref domain.EntityRef) (*domain.Entity, error) {
	env, err := s.call(ctx, toolMeasure, request{
		"operation":      "Get",
		"connectionName": container,
		"tableName":      ref.Table,
		"measureName":    ref.Name,
	})
	if err != nil {
		if msg, ok := notFoundMessage(err); ok {
			return nil, fmt.Errorf("%w: %s: %s", domain.ErrNotFound, ref, msg)
		}
		return nil, callError(domain.ErrConnection, "get "+ref.String(), err)
	}

	var data struct {
		Measure *measure `json:"measure"`
	}
	if err := decodeData(env, &data); err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", domain.ErrConnection, ref, err)
	}
	if data.Measure == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
	}

	entity := data.Measure.entity()
	if entity.Ref.Table == "" {
		entity.Ref.Table = ref.Table
	}
	if entity.Ref.Name == "" {
		entity.Ref.Name = ref.Name
	}
	return &entity, nil
}

// UpdateEntity writes the supplied fields of update to ref.
func (s *Session) UpdateEntity(ctx context.Context, container string, ref domain.EntityRef, update domain.EntityUpdate) error {
	definition := map[string]any{"name": ref.Name}
	if update.Description != nil {
		definition["description"] = *update.Description
	}
	if update.DisplayFolder != nil {
		definition["displayFolder"] = *update.DisplayFolder
	}
	if len(update.Annotations) > 0 {
		annotations := make([]annotation, len(update.Annotations))
		for i, a := range update.Annotations {
			annotations[i] = annotation{Key: a.Key, Value: a.Value}
		}
		definition["annotations"] = annotations
	}

	_, err := s.call(ctx, toolMeasure, request{
		"operation":        "Update",
		"connectionName":   container,
		"tableName":        ref.Table,
		"measureName":      ref.Name,
		"updateDefinition": definition,
	})
	if err != nil {
		return callError(domain.ErrUpdate, "update "+ref.String(), err)
	}
	return nil
}

// ExportModel writes the live model as a definition folder at targetPath.
func (s *Session) ExportModel(ctx context.Context, targetPath string) error {
	_, err := s.call(ctx, toolDatabase, request{
		"operation":      "ExportToTmdlFolder",
		"tmdlFolderPath": targetPath,
	})
	if err != nil {
		return callError(domain.ErrExport, "export to "+targetPath, err)
	}
	return nil
}

// Close ends the session. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.cs.Close()
}

// call invokes tool with req and returns the decoded envelope.
func (s *Session) call(ctx context.Context, tool string, req request) (*envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrSessionClosed
	}

	logger.Debug("MCP %s %v", tool, req["operation"])
	res, err := s.cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      tool,
		Arguments: map[string]any{"request": req},
	})
	if err != nil {
		return nil, err
	}

	text := textContent(res)
	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		if res.IsError {
			return nil, &toolError{Tool: tool, Message: text}
		}
		return nil, fmt.Errorf("%s: malformed reply: %w", tool, err)
	}
	if res.IsError || (env.Success != nil && !*env.Success) {
		msg := env.Message
		if msg == "" {
			msg = text
		}
		return nil, &toolError{Tool: tool, Message: msg}
	}
	return &env, nil
}

// textContent joins the text parts of a tool result.
func textContent(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "")
}

// notFoundMessage reports whether err is the model server's reply for a
// missing object. The server has no error codes; a failed lookup answers
// {"success": false, "message": "Measure '<name>' not found ..."}, so the
// message text is the only signal. Transport failures never match.
func notFoundMessage(err error) (string, bool) {
	var te *toolError
	if !errors.As(err, &te) {
		return "", false
	}
	return te.Message, strings.Contains(strings.ToLower(te.Message), "not found")
}

func decodeData(env *envelope, out any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}
	return nil
}

// callError wraps err in sentinel unless it already carries a session error.
func callError(sentinel error, op string, err error) error {
	if errors.Is(err, domain.ErrSessionClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", sentinel, op, err)
}
