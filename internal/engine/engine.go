// Package engine exposes the operations consumed by an orchestration layer:
// repository maps, single-file reads, batch diagnostics, and the two
// collaborator boundaries (code modification and document rendering). The
// engine prepares outbound payloads and applies inbound ones; it never
// drives instruction text itself.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"repoforge/internal/harness"
	"repoforge/internal/interchange"
	"repoforge/internal/repo"
)

// Editor is the code-modification collaborator. It receives a natural
// language instruction plus a full or summarized payload and returns a
// payload of modified files to merge and persist.
type Editor interface {
	Edit(ctx context.Context, instruction string, payload interchange.Payload) (interchange.Payload, error)
}

// Renderer is the document-rendering collaborator. It receives one file's
// absolute path and returns its text rendered in another human-readable
// format.
type Renderer interface {
	Render(ctx context.Context, absPath string) (string, error)
}

// Engine binds the repository root to the exposed operations.
type Engine struct {
	root     string
	pattern  string
	editor   Editor
	renderer Renderer
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithEditor installs the code-modification collaborator.
func WithEditor(e Editor) Option {
	return func(eng *Engine) { eng.editor = e }
}

// WithRenderer installs the document-rendering collaborator.
func WithRenderer(r Renderer) Option {
	return func(eng *Engine) { eng.renderer = r }
}

// WithLogger installs a logger; a nop logger is the default.
func WithLogger(l *zap.Logger) Option {
	return func(eng *Engine) { eng.logger = l }
}

// New creates an engine for the repository at root. pattern selects the
// tracked files (repo.DefaultPattern when empty).
func New(root, pattern string, opts ...Option) *Engine {
	eng := &Engine{
		root:    root,
		pattern: pattern,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// Map returns the repository as flat text, one block per file, with
// structural summaries standing in for content when summarized is set.
func (e *Engine) Map(ctx context.Context, summarized bool) (string, error) {
	r, err := repo.Load(e.root, e.pattern, summarized)
	if err != nil {
		return "", err
	}
	return r.ToPayload(summarized).FlatText(), nil
}

// FileContent returns one tracked file's raw content by relative path.
func (e *Engine) FileContent(ctx context.Context, rel string) (string, error) {
	r, err := repo.Load(e.root, e.pattern, false)
	if err != nil {
		return "", err
	}
	f, ok := r.Get(rel)
	if !ok {
		return "", fmt.Errorf("%w: %s", repo.ErrNotFound, rel)
	}
	text, _ := f.Content.Text()
	return text, nil
}

// Diagnose executes every tracked file and returns the collected
// diagnostics, or nil when nothing qualified for reporting.
func (e *Engine) Diagnose(ctx context.Context, withOutputs, withErrors bool) (interchange.Payload, error) {
	r, err := repo.Load(e.root, e.pattern, false)
	if err != nil {
		return nil, err
	}
	h, err := harness.New(e.logger)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	e.logger.Info("diagnostics run",
		zap.String("run_id", runID),
		zap.String("root", e.root),
		zap.Int("files", len(r.Files())),
		zap.Bool("outputs", withOutputs),
		zap.Bool("errors", withErrors))

	results := h.Run(r, harness.Options{WithOutputs: withOutputs, WithErrors: withErrors})
	e.logger.Info("diagnostics done",
		zap.String("run_id", runID),
		zap.Int("reports", len(results)))
	return results, nil
}

// RequestFix diagnoses the repository and, when problems were found, hands
// the instruction plus the diagnostic text and the full payload to the
// editor, applying whatever comes back. Returns the diagnostic text that
// was sent, or "" when the repository was clean.
func (e *Engine) RequestFix(ctx context.Context, instruction string) (string, error) {
	if e.editor == nil {
		return "", fmt.Errorf("no editor configured")
	}
	problems, err := e.Diagnose(ctx, false, true)
	if err != nil {
		return "", err
	}
	if problems == nil {
		e.logger.Info("no problems found")
		return "", nil
	}

	report := problems.FlatText()
	r, err := repo.Load(e.root, e.pattern, false)
	if err != nil {
		return "", err
	}
	edited, err := e.editor.Edit(ctx, instruction+report, r.ToPayload(false))
	if err != nil {
		return "", fmt.Errorf("editor: %w", err)
	}
	if err := e.Apply(edited); err != nil {
		return "", err
	}
	return report, nil
}

// RequestEdit sends a free-form instruction together with the full or
// summarized payload to the editor and applies the result.
func (e *Engine) RequestEdit(ctx context.Context, instruction string, summarized bool) error {
	if e.editor == nil {
		return fmt.Errorf("no editor configured")
	}
	r, err := repo.Load(e.root, e.pattern, summarized)
	if err != nil {
		return err
	}
	edited, err := e.editor.Edit(ctx, instruction, r.ToPayload(summarized))
	if err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return e.Apply(edited)
}

// Apply deserializes an externally supplied payload and persists it under
// the engine's root. Entries carrying the nil sentinel remove their file.
func (e *Engine) Apply(p interchange.Payload) error {
	if len(p) == 0 {
		return nil
	}
	r, err := repo.FromPayload(p, e.root)
	if err != nil {
		return err
	}
	e.logger.Info("applying payload", zap.Int("entries", len(p)))
	return r.Persist()
}

// RenderDoc validates that rel is tracked, then delegates to the rendering
// collaborator with the reconstructed absolute path.
func (e *Engine) RenderDoc(ctx context.Context, rel string) (string, error) {
	if e.renderer == nil {
		return "", fmt.Errorf("no renderer configured")
	}
	r, err := repo.Load(e.root, e.pattern, false)
	if err != nil {
		return "", err
	}
	if _, ok := r.Get(rel); !ok {
		return "", fmt.Errorf("%w: %s is not in the repository (tracked: %v)",
			repo.ErrNotFound, rel, r.Paths())
	}
	return e.renderer.Render(ctx, repo.Reconstruct(rel, e.root))
}
