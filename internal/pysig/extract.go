package pysig

import (
	"strings"
)

// extract walks the scanned statements in source order and builds one
// Signature per def/class. Decorators are absorbed into the declaration
// they precede; a string literal that is the first statement of a body
// becomes the docstring of the enclosing declaration.
func extract(stmts []*stmt, parents map[*stmt]*stmt) ([]*Signature, error) {
	var sigs []*Signature
	sigOf := make(map[*stmt]*Signature, len(stmts))
	bodySeen := make(map[*stmt]bool)

	for _, s := range stmts {
		parent := parents[s]
		firstInBody := false
		if parent != nil && !bodySeen[parent] {
			bodySeen[parent] = true
			firstInBody = true
		}

		switch s.kind {
		case stmtDef, stmtClass:
			sig, err := parseHeader(s)
			if err != nil {
				return nil, err
			}
			if ps, ok := sigOf[parent]; ok {
				sig.Parent = ps
				sig.Depth = ps.Depth + 1
			}
			sigOf[s] = sig
			sigs = append(sigs, sig)
		case stmtString:
			if firstInBody {
				if ps, ok := sigOf[parent]; ok && ps.Docstring == "" {
					ps.Docstring = cleanDocstring(s.text)
				}
			}
		}
	}
	return sigs, nil
}

// parseHeader parses a "def name(params) -> ret:" or "class Name(bases):"
// statement into a Signature.
func parseHeader(s *stmt) (*Signature, error) {
	text := s.text
	async := false
	if rest, ok := cutKeyword(text, "async"); ok {
		async = true
		text = rest
	}

	if rest, ok := cutKeyword(text, "def"); ok {
		return parseDef(rest, s.line, async)
	}
	if rest, ok := cutKeyword(text, "class"); ok {
		return parseClass(rest, s.line)
	}
	return nil, &ParseError{Line: s.line, Msg: "malformed declaration"}
}

func parseDef(rest string, line int, async bool) (*Signature, error) {
	name, rest := cutIdent(rest)
	if name == "" {
		return nil, &ParseError{Line: line, Msg: "missing function name"}
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "(") {
		return nil, &ParseError{Line: line, Msg: "expected '(' after function name"}
	}
	inner, after, ok := matchParen(rest)
	if !ok {
		return nil, &ParseError{Line: line, Msg: "unclosed parameter list"}
	}
	params, err := parseParams(inner, line)
	if err != nil {
		return nil, err
	}

	after = strings.TrimSpace(after)
	returns := ""
	if strings.HasPrefix(after, "->") {
		colon := topIndex(after, ':')
		if colon < 0 {
			return nil, &ParseError{Line: line, Msg: "missing ':' after return annotation"}
		}
		returns = strings.TrimSpace(after[2:colon])
		after = after[colon:]
	}
	if !strings.HasPrefix(after, ":") {
		return nil, &ParseError{Line: line, Msg: "missing ':' in function header"}
	}
	return &Signature{
		Name:    name,
		Kind:    KindFunction,
		Params:  params,
		Returns: returns,
		Async:   async,
		Line:    line,
	}, nil
}

func parseClass(rest string, line int) (*Signature, error) {
	name, rest := cutIdent(rest)
	if name == "" {
		return nil, &ParseError{Line: line, Msg: "missing class name"}
	}
	rest = strings.TrimSpace(rest)

	var bases []string
	if strings.HasPrefix(rest, "(") {
		inner, after, ok := matchParen(rest)
		if !ok {
			return nil, &ParseError{Line: line, Msg: "unclosed base-class list"}
		}
		for _, b := range splitTop(inner, ',') {
			if b = strings.TrimSpace(b); b != "" {
				bases = append(bases, b)
			}
		}
		rest = strings.TrimSpace(after)
	}
	if !strings.HasPrefix(rest, ":") {
		return nil, &ParseError{Line: line, Msg: "missing ':' in class header"}
	}
	return &Signature{
		Name:  name,
		Kind:  KindClass,
		Bases: bases,
		Line:  line,
	}, nil
}

// parseParams splits a parameter list on top-level commas and resolves
// each entry's annotation and default, mirroring the declaration's own
// surface syntax. Bare "*" and "/" markers are kept as parameters.
func parseParams(inner string, line int) ([]Param, error) {
	var params []Param
	for _, part := range splitTop(inner, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "*" || part == "/" {
			params = append(params, Param{Name: part})
			continue
		}
		star := ""
		for strings.HasPrefix(part, "*") {
			star += "*"
			part = part[1:]
		}

		var name, ann, def string
		colon := topIndex(part, ':')
		eq := topIndex(part, '=')
		switch {
		case eq >= 0 && (colon < 0 || eq < colon):
			name, def = part[:eq], part[eq+1:]
		case colon >= 0:
			name = part[:colon]
			rest := part[colon+1:]
			if e := topIndex(rest, '='); e >= 0 {
				ann, def = rest[:e], rest[e+1:]
			} else {
				ann = rest
			}
		default:
			name = part
		}
		name = strings.TrimSpace(name)
		if !isIdent(name) {
			return nil, &ParseError{Line: line, Msg: "malformed parameter " + strings.TrimSpace(star+part)}
		}
		params = append(params, Param{
			Name:       star + name,
			Annotation: strings.TrimSpace(ann),
			Default:    strings.TrimSpace(def),
		})
	}
	return params, nil
}

// cleanDocstring strips the quotes from a string-literal statement and
// normalizes its indentation, roughly what inspect.cleandoc does.
func cleanDocstring(text string) string {
	t := strings.TrimSpace(text)
	j := 0
	for j < len(t) && j < 2 && isPrefixLetter(t[j]) {
		j++
	}
	t = t[j:]
	if len(t) < 2 || (t[0] != '\'' && t[0] != '"') {
		return ""
	}
	q := string(t[0])
	triple := q + q + q
	switch {
	case len(t) >= 6 && strings.HasPrefix(t, triple) && strings.HasSuffix(t, triple):
		t = t[3 : len(t)-3]
	case strings.HasPrefix(t, q) && strings.HasSuffix(t, q):
		t = t[1 : len(t)-1]
	default:
		return ""
	}

	lines := strings.Split(t, "\n")
	if len(lines) == 1 {
		return strings.TrimSpace(lines[0])
	}
	first := strings.TrimSpace(lines[0])
	rest := lines[1:]

	minIndent := -1
	for _, ln := range rest {
		trimmed := strings.TrimLeft(ln, " \t")
		if trimmed == "" {
			continue
		}
		ind := len(ln) - len(trimmed)
		if minIndent < 0 || ind < minIndent {
			minIndent = ind
		}
	}
	out := make([]string, 0, len(rest)+1)
	if first != "" {
		out = append(out, first)
	}
	for _, ln := range rest {
		if minIndent > 0 && len(ln) >= minIndent {
			ln = ln[minIndent:]
		}
		out = append(out, strings.TrimRight(ln, " \t"))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// ---------------- small header-scanning helpers ----------------

// cutKeyword strips a leading keyword followed by whitespace.
func cutKeyword(s, kw string) (string, bool) {
	if strings.HasPrefix(s, kw) && len(s) > len(kw) && (s[len(kw)] == ' ' || s[len(kw)] == '\t') {
		return strings.TrimSpace(s[len(kw):]), true
	}
	return s, false
}

// cutIdent returns the leading identifier of s and the remainder.
func cutIdent(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && (isIdentByte(s[i]) || s[i] >= 0x80) {
		i++
	}
	if i == 0 || s[0] >= '0' && s[0] <= '9' {
		return "", s
	}
	return s[:i], s[i:]
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	name, rest := cutIdent(s)
	return name == s && rest == ""
}

// matchParen consumes a balanced "(...)" from the start of s, returning the
// inner text and the remainder after the closing paren.
func matchParen(s string) (inner, rest string, ok bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], true
			}
		case '\'', '"':
			i = skipString(s, i)
		}
	}
	return "", "", false
}

// topIndex returns the index of the first occurrence of target at bracket
// depth zero, outside string literals, or -1.
func topIndex(s string, target byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == '\'' || c == '"':
			i = skipString(s, i)
		case c == target && depth == 0:
			return i
		}
	}
	return -1
}

// splitTop splits s on sep at bracket depth zero, outside string literals.
func splitTop(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == '\'' || c == '"':
			i = skipString(s, i)
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// skipString advances past a quoted literal starting at s[i], returning the
// index of its closing quote (or the last index when unterminated).
func skipString(s string, i int) int {
	q := s[i]
	for i++; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == q {
			return i
		}
	}
	return len(s) - 1
}
