// Package repo models a directory of tracked source files: repo-relative
// path identity, an insertion-ordered aggregate of file records, and the
// load/persist and wire conversions around it.
package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"repoforge/internal/interchange"
	"repoforge/internal/summary"
)

// DefaultPattern matches the source files tracked by default.
const DefaultPattern = "*.go"

// File is one tracked file. Records are replaced whole, never edited in
// place; Summary is derived from Content and owned by the aggregate.
type File struct {
	Path    string // repo-relative, slash-separated
	Content Content
	Summary string
}

// Repository is the in-memory model of all tracked files under Root.
// Records keep their discovery order and are keyed by relative path; no two
// records may share a path.
type Repository struct {
	Root string

	files  []*File
	byPath map[string]*File
}

// New creates an empty aggregate rooted at root.
func New(root string) *Repository {
	return &Repository{
		Root:   root,
		byPath: make(map[string]*File),
	}
}

// Add appends a record, rejecting path collisions.
func (r *Repository) Add(f *File) error {
	if _, exists := r.byPath[f.Path]; exists {
		return fmt.Errorf("%w: %s", interchange.ErrDuplicatePath, f.Path)
	}
	r.files = append(r.files, f)
	r.byPath[f.Path] = f
	return nil
}

// Files returns the records in discovery order.
func (r *Repository) Files() []*File {
	return r.files
}

// Get looks up a record by relative path.
func (r *Repository) Get(rel string) (*File, bool) {
	f, ok := r.byPath[rel]
	return f, ok
}

// Paths returns all tracked relative paths in discovery order.
func (r *Repository) Paths() []string {
	out := make([]string, 0, len(r.files))
	for _, f := range r.files {
		out = append(out, f.Path)
	}
	return out
}

// Load walks root recursively, reading every file whose base name matches
// pattern (DefaultPattern when empty). Fails with ErrNotFound if a
// discovered path disappears before it can be read; there is no retry.
// When withSummaries is set, structural summaries are computed up front and
// a file that cannot be parsed aborts the load.
func Load(root, pattern string, withSummaries bool) (*Repository, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	r := New(root)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories are not part of the tracked tree.
			if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		match, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return err
		}
		if !match {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			return err
		}
		rel, err := Normalize(path, root)
		if err != nil {
			return err
		}
		return r.Add(&File{Path: rel, Content: Keep(string(data))})
	})
	if err != nil {
		return nil, err
	}

	if withSummaries {
		if err := r.Summarize(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Summarize refreshes the derived summary of every kept record. Fail-fast:
// the first unparseable file aborts with summary.ErrParse and leaves no
// partial result behind for that file.
func (r *Repository) Summarize() error {
	s := summary.New()
	defer s.Close()

	for _, f := range r.files {
		text, ok := f.Content.Text()
		if !ok {
			continue
		}
		outline, err := s.Outline(text)
		if err != nil {
			return fmt.Errorf("summarize %s: %w", f.Path, err)
		}
		f.Summary = outline
	}
	return nil
}

// Persist writes the aggregate back under Root: kept records overwrite
// their target file (parent directories created as needed, non-atomic, no
// backup), deletion records remove it.
func (r *Repository) Persist() error {
	for _, f := range r.files {
		abs := Reconstruct(f.Path, r.Root)

		text, ok := f.Content.Text()
		if !ok {
			if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("remove %s: %w", f.Path, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return fmt.Errorf("persist %s: %w", f.Path, err)
		}
		if err := os.WriteFile(abs, []byte(text), 0o644); err != nil {
			return fmt.Errorf("persist %s: %w", f.Path, err)
		}
	}
	return nil
}

// ToPayload emits one wire entry per record in stored order. With
// summarized set the derived summary stands in for the content; deletion
// records carry the nil sentinel either way.
func (r *Repository) ToPayload(summarized bool) interchange.Payload {
	p := make(interchange.Payload, 0, len(r.files))
	for _, f := range r.files {
		text, ok := f.Content.Text()
		if !ok {
			p = append(p, interchange.Remove(f.Path))
			continue
		}
		if summarized {
			p = append(p, interchange.Keep(f.Path, f.Summary))
			continue
		}
		p = append(p, interchange.Keep(f.Path, text))
	}
	return p
}

// FromPayload builds a new in-memory aggregate from a wire payload. Disk is
// not touched; call Persist to apply it.
func FromPayload(p interchange.Payload, root string) (*Repository, error) {
	r := New(root)
	for _, e := range p {
		f := &File{Path: e.Name, Content: Delete()}
		if e.Content != nil {
			f.Content = Keep(*e.Content)
		}
		if err := r.Add(f); err != nil {
			return nil, err
		}
	}
	return r, nil
}
