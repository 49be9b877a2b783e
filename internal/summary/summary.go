// Package summary produces condensed structural outlines of single source
// files. It is purely static: content is parsed, never executed, and the
// same input always yields the same outline.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// ErrParse is returned when content cannot be parsed. No partial outline is
// produced for a broken file.
var ErrParse = errors.New("source is not parseable")

// Summarizer turns one file's source text into an outline of its top-level
// declarations. Not safe for concurrent use; the underlying parser is
// stateful.
type Summarizer struct {
	parser *sitter.Parser
}

// New creates a Summarizer for Go source.
func New() *Summarizer {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &Summarizer{parser: p}
}

// Close releases the parser.
func (s *Summarizer) Close() {
	s.parser.Close()
}

// Outline condenses src into, in order: the module description comment if
// present, each top-level type declaration, each top-level function or
// method declaration, and the first line of each top-level var or const
// binding. Declarations nested inside other declarations never appear.
//
// Type and function headers are captured up to and including the line whose
// code portion (comments stripped) ends the signature with "{", so
// multi-line signatures survive intact. A declaration's attached comment
// follows its header.
func (s *Summarizer) Outline(src string) (string, error) {
	tree, err := s.parser.ParseCtx(context.Background(), nil, []byte(src))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return "", ErrParse
	}

	lines := strings.Split(src, "\n")

	var moduleDoc string
	var types, functions, variables []string

	// Comment nodes directly above a declaration are its description; a
	// blank line breaks the attachment.
	var pending []*sitter.Node

	attached := func(n *sitter.Node) string {
		if len(pending) == 0 {
			return ""
		}
		last := pending[len(pending)-1]
		if last.EndPoint().Row+1 != n.StartPoint().Row {
			return ""
		}
		return docText(src, pending)
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)

		if child.Type() == "comment" {
			if len(pending) > 0 && pending[len(pending)-1].EndPoint().Row+1 != child.StartPoint().Row {
				pending = pending[:0]
			}
			pending = append(pending, child)
			continue
		}

		doc := attached(child)
		start := int(child.StartPoint().Row)
		end := int(child.EndPoint().Row)

		switch child.Type() {
		case "package_clause":
			moduleDoc = doc
		case "type_declaration":
			types = append(types, withDoc(signature(lines, start, end), doc))
		case "function_declaration", "method_declaration":
			functions = append(functions, withDoc(signature(lines, start, end), doc))
		case "var_declaration", "const_declaration":
			// First source line only, no expression evaluation.
			variables = append(variables, strings.TrimSpace(lines[start]))
		}
		pending = pending[:0]
	}

	var sections []string
	if moduleDoc != "" {
		sections = append(sections, "Module Description:\n"+moduleDoc+"\n")
	}
	if len(types) > 0 {
		sections = append(sections, "Types:\n"+strings.Join(types, "\n")+"\n")
	}
	if len(functions) > 0 {
		sections = append(sections, "Functions:\n"+strings.Join(functions, "\n")+"\n")
	}
	if len(variables) > 0 {
		sections = append(sections, "Variables:\n"+strings.Join(variables, "\n")+"\n")
	}
	return strings.TrimSpace(strings.Join(sections, "\n")), nil
}

// signature collects header lines from start until the line whose code
// portion ends with "{", capped at the declaration's last line so one-line
// declarations (type aliases, grouped specs) stay intact.
func signature(lines []string, start, end int) string {
	var sig []string
	for i := start; i <= end && i < len(lines); i++ {
		line := lines[i]
		code := line
		if idx := strings.Index(code, "//"); idx >= 0 {
			code = code[:idx]
		}
		code = strings.TrimRight(code, " \t")
		sig = append(sig, line)
		if strings.HasSuffix(code, "{") {
			break
		}
	}
	return strings.TrimSpace(strings.Join(sig, "\n"))
}

func withDoc(sig, doc string) string {
	if doc == "" {
		return sig
	}
	return sig + "\n" + doc
}

// docText strips comment markers and joins the block into plain text.
func docText(src string, comments []*sitter.Node) string {
	var out []string
	for _, c := range comments {
		text := c.Content([]byte(src))
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")
		for _, l := range strings.Split(text, "\n") {
			l = strings.TrimSpace(l)
			l = strings.TrimPrefix(l, "//")
			l = strings.TrimPrefix(l, " ")
			out = append(out, l)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
