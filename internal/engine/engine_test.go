package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repoforge/internal/interchange"
	"repoforge/internal/repo"
)

// fakeEditor records what it was asked and answers with a canned payload.
type fakeEditor struct {
	instruction string
	received    interchange.Payload
	reply       interchange.Payload
	err         error
}

func (f *fakeEditor) Edit(ctx context.Context, instruction string, payload interchange.Payload) (interchange.Payload, error) {
	f.instruction = instruction
	f.received = payload
	return f.reply, f.err
}

// fakeRenderer echoes the path it was given.
type fakeRenderer struct {
	got string
}

func (f *fakeRenderer) Render(ctx context.Context, absPath string) (string, error) {
	f.got = absPath
	return "rendered:" + filepath.Base(absPath), nil
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
}

func TestMap(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"calc.go": "package calc\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n",
	})
	eng := New(root, "")

	t.Run("full content", func(t *testing.T) {
		out, err := eng.Map(context.Background(), false)
		require.NoError(t, err)
		assert.Contains(t, out, "**calc.go**")
		assert.Contains(t, out, "return a + b")
	})

	t.Run("summarized", func(t *testing.T) {
		out, err := eng.Map(context.Background(), true)
		require.NoError(t, err)
		assert.Contains(t, out, "func Add(a, b int) int {")
		assert.NotContains(t, out, "return a + b")
	})
}

func TestFileContent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.go": "package a\n"})
	eng := New(root, "")

	out, err := eng.FileContent(context.Background(), "a.go")
	require.NoError(t, err)
	assert.Equal(t, "package a\n", out)

	_, err = eng.FileContent(context.Background(), "missing.go")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestDiagnose(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"bad.go": "panic(\"broken\")\n",
		"ok.go":  "z := 1\n_ = z\n",
	})
	eng := New(root, "")

	results, err := eng.Diagnose(context.Background(), false, true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "bad.go", results[0].Name)
	assert.Contains(t, *results[0].Content, "broken")

	t.Run("clean repository yields nil", func(t *testing.T) {
		clean := t.TempDir()
		writeTree(t, clean, map[string]string{"ok.go": "z := 1\n_ = z\n"})
		results, err := New(clean, "").Diagnose(context.Background(), true, true)
		require.NoError(t, err)
		assert.Nil(t, results)
	})
}

func TestRequestFix(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"bad.go": "panic(\"needs fixing\")\n"})

	ed := &fakeEditor{reply: interchange.Payload{
		interchange.Keep("bad.go", "z := 1\n_ = z\n"),
	}}
	eng := New(root, "", WithEditor(ed))

	report, err := eng.RequestFix(context.Background(), "Fix the repository.\n")
	require.NoError(t, err)

	t.Run("diagnostics travel with the instruction", func(t *testing.T) {
		assert.Contains(t, report, "needs fixing")
		assert.Contains(t, ed.instruction, "Fix the repository.")
		assert.Contains(t, ed.instruction, "needs fixing")
	})

	t.Run("editor sees the full payload", func(t *testing.T) {
		require.Len(t, ed.received, 1)
		assert.Equal(t, "bad.go", ed.received[0].Name)
	})

	t.Run("reply is persisted", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(root, "bad.go"))
		require.NoError(t, err)
		assert.Equal(t, "z := 1\n_ = z\n", string(data))
	})

	t.Run("clean repository skips the editor", func(t *testing.T) {
		ed.instruction = ""
		report, err := eng.RequestFix(context.Background(), "Fix again.\n")
		require.NoError(t, err)
		assert.Empty(t, report)
		assert.Empty(t, ed.instruction)
	})
}

func TestRequestEdit(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"keep.go":   "package keep\n",
		"remove.go": "package remove\n",
	})

	ed := &fakeEditor{reply: interchange.Payload{
		interchange.Keep("keep.go", "package keep // revised\n"),
		interchange.Remove("remove.go"),
	}}
	eng := New(root, "", WithEditor(ed))

	require.NoError(t, eng.RequestEdit(context.Background(), "revise and prune", false))

	assert.Equal(t, "revise and prune", ed.instruction)

	data, err := os.ReadFile(filepath.Join(root, "keep.go"))
	require.NoError(t, err)
	assert.Equal(t, "package keep // revised\n", string(data))

	_, err = os.Stat(filepath.Join(root, "remove.go"))
	assert.True(t, os.IsNotExist(err))
}

func TestRenderDoc(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"docs/guide.md": "# Guide\n"})

	fr := &fakeRenderer{}
	eng := New(root, "*.md", WithRenderer(fr))

	t.Run("validates the path before delegating", func(t *testing.T) {
		_, err := eng.RenderDoc(context.Background(), "docs/missing.md")
		assert.ErrorIs(t, err, repo.ErrNotFound)
		assert.Empty(t, fr.got)
	})

	t.Run("delegates with the absolute path", func(t *testing.T) {
		out, err := eng.RenderDoc(context.Background(), "docs/guide.md")
		require.NoError(t, err)
		assert.Equal(t, "rendered:guide.md", out)
		assert.Equal(t, filepath.Join(root, "docs", "guide.md"), fr.got)
	})
}

func TestApplyEmptyPayloadIsNoop(t *testing.T) {
	eng := New(t.TempDir(), "")
	assert.NoError(t, eng.Apply(nil))
}
