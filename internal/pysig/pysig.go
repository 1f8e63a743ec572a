// Package pysig parses Python source into a structural tree and extracts
// ordered function and class signatures: name, parameters with annotations
// and defaults, return annotation, docstring and enclosing scope.
//
// The parse representation carries no parent links, so extraction runs a
// dedicated annotation pass that builds a node-to-parent map keyed by node
// identity. The map lives only for the duration of one ExtractSignatures
// call; the parsed nodes themselves stay acyclic.
package pysig

import "fmt"

// Kind discriminates signature records.
type Kind string

const (
	KindFunction Kind = "function"
	KindClass    Kind = "class"
)

// Param is one declared parameter. Annotation and Default are rendered the
// way the declaration spelled them; either may be empty. Star markers keep
// their prefix in Name ("*args", "**kwargs", bare "*" and "/").
type Param struct {
	Name       string
	Annotation string
	Default    string
}

// Signature describes one function or class declaration.
type Signature struct {
	Name      string
	Kind      Kind
	Params    []Param
	Returns   string // return annotation, "" when absent
	Docstring string
	Bases     []string // class bases, nil for functions
	Async     bool
	Parent    *Signature // enclosing declaration, nil at module level
	Depth     int        // nesting depth, module level = 0
	Line      int        // 1-based line of the declaration header
}

// ParseError reports syntactically invalid source. Callers skip the file
// and log, keeping the overall run alive.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Msg)
}

// ExtractSignatures parses src and returns its signatures in declaration
// order. Nested declarations follow their enclosing declaration, matching
// source order within each scope.
func ExtractSignatures(src string) ([]*Signature, error) {
	stmts, err := scan(src)
	if err != nil {
		return nil, err
	}
	parents := annotateParents(stmts)
	return extract(stmts, parents)
}
