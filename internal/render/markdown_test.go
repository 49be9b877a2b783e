package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownRender(t *testing.T) {
	m, err := NewMarkdown()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "guide.md")
	require.NoError(t, os.WriteFile(path, []byte("# Guide\n\nsome body text\n"), 0o644))

	out, err := m.Render(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, out, "Guide")
	assert.Contains(t, out, "some body text")
}

func TestMarkdownRenderMissingFile(t *testing.T) {
	m, err := NewMarkdown()
	require.NoError(t, err)

	_, err = m.Render(context.Background(), filepath.Join(t.TempDir(), "nope.md"))
	assert.Error(t, err)
}
