// Package render provides the default document-rendering collaborator: a
// glamour-backed renderer that turns a markdown file into styled terminal
// text.
package render

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
)

// Markdown renders markdown documents for terminal display.
type Markdown struct {
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a renderer with auto-detected styling.
func NewMarkdown() (*Markdown, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	return &Markdown{renderer: r}, nil
}

// Render reads the document at absPath and returns it as styled text.
func (m *Markdown) Render(ctx context.Context, absPath string) (string, error) {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	out, err := m.renderer.Render(string(data))
	if err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}
	return out, nil
}
