// Package harness executes every tracked file in an interpreter and
// collects printed output and failure traces as diagnostics. It is the one
// component that deliberately swallows per-item failures: a broken file is
// recorded, not raised, so the rest of the repository still gets processed.
package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"

	"repoforge/internal/interchange"
	"repoforge/internal/repo"
)

// Options selects what a run reports.
type Options struct {
	WithOutputs bool // record captured stdout of files that succeed
	WithErrors  bool // record failure traces (with any stdout captured so far)
}

// Harness owns one interpreter for a batch run. Files execute sequentially
// in the same interpreter, so state set by one file is visible to the next;
// there is no isolation beyond output capture and no timeout - a file that
// never returns blocks the run.
type Harness struct {
	interp *interp.Interpreter
	out    *swapWriter
	logger *zap.Logger
}

// New creates a harness with stdlib symbols loaded and both output streams
// bound to the harness-owned handle.
func New(logger *zap.Logger) (*Harness, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := newSwapWriter(io.Discard)
	i := interp.New(interp.Options{Stdout: out, Stderr: out})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load stdlib symbols: %w", err)
	}
	return &Harness{interp: i, out: out, logger: logger}, nil
}

// UnitName derives the logical execution identity of a relative path: path
// separators become ".", the extension is stripped.
func UnitName(rel string) string {
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	return strings.ReplaceAll(rel, "/", ".")
}

// Run executes every kept record of r in stored order and returns one
// diagnostic entry per file that produced something to report. Returns nil,
// not an empty payload, when nothing qualified.
func (h *Harness) Run(r *repo.Repository, opts Options) interchange.Payload {
	var results interchange.Payload

	for _, f := range r.Files() {
		text, ok := f.Content.Text()
		if !ok {
			continue
		}
		unit := UnitName(f.Path)
		captured, err := h.capture(text)
		var content string
		switch {
		case err != nil:
			h.logger.Debug("unit failed",
				zap.String("unit", unit),
				zap.String("path", f.Path),
				zap.Error(err))
			if opts.WithErrors {
				if captured != "" {
					content = "STDOUT:\n" + captured
					if !strings.HasSuffix(captured, "\n") {
						content += "\n"
					}
				}
				content += "Error: " + trace(err)
			}
		case captured != "" && opts.WithOutputs:
			h.logger.Debug("unit produced output",
				zap.String("unit", unit),
				zap.Int("bytes", len(captured)))
			content = captured
		}

		if content != "" {
			results = append(results, interchange.Keep(f.Path, content))
		}
	}
	return results
}

// capture swaps a fresh buffer in for exactly one execution. The deferred
// restore puts the previous sink back on every exit path.
func (h *Harness) capture(src string) (string, error) {
	buf := new(bytes.Buffer)
	restore := h.out.Swap(buf)
	defer restore()

	err := h.eval(src)
	return buf.String(), err
}

// eval runs one file's content in the shared interpreter, converting
// runtime panics into errors so the batch continues. Script files list
// imports above bare statements, a shape the interpreter only accepts as
// separate units, so import declarations are evaluated first on their own.
func (h *Harness) eval(src string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("runtime panic: %v", r)
		}
	}()
	imports, rest := splitImports(src)
	for _, imp := range imports {
		if _, err = h.interp.Eval(imp); err != nil {
			return err
		}
	}
	if strings.TrimSpace(rest) == "" {
		return nil
	}
	_, err = h.interp.Eval(rest)
	return err
}

// splitImports peels leading import declarations off a script. Sources
// carrying a package clause are complete files the interpreter accepts
// whole and come back untouched.
func splitImports(src string) ([]string, string) {
	lines := strings.Split(src, "\n")
	var imports []string
	var rest []string
	for i := 0; i < len(lines); i++ {
		trim := strings.TrimSpace(lines[i])
		if trim == "" || strings.HasPrefix(trim, "//") {
			rest = append(rest, lines[i])
			continue
		}
		if strings.HasPrefix(trim, "package ") {
			return nil, src
		}
		if !isImportLine(trim) {
			// First statement; everything from here stays one unit.
			rest = append(rest, lines[i:]...)
			break
		}
		if strings.Contains(trim, "(") && !strings.Contains(trim, ")") {
			block := []string{lines[i]}
			for i+1 < len(lines) {
				i++
				block = append(block, lines[i])
				if strings.HasPrefix(strings.TrimSpace(lines[i]), ")") {
					break
				}
			}
			imports = append(imports, strings.Join(block, "\n"))
			continue
		}
		imports = append(imports, lines[i])
	}
	return imports, strings.Join(rest, "\n")
}

// isImportLine reports whether a trimmed line begins an import declaration
// rather than an identifier that merely starts with the word.
func isImportLine(trim string) bool {
	rest := strings.TrimPrefix(trim, "import")
	if rest == trim {
		return false
	}
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '(' || rest[0] == '"'
}

// trace renders an execution error, including the interpreter stack when a
// panic surfaced inside interpreted code.
func trace(err error) string {
	var p interp.Panic
	if errors.As(err, &p) {
		return fmt.Sprintf("%v\n%s", p.Value, p.Stack)
	}
	return err.Error()
}
