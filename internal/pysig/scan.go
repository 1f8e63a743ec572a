package pysig

import "strings"

type stmtKind int

const (
	stmtOther stmtKind = iota
	stmtDef
	stmtClass
	stmtDecorator
	stmtString
)

// stmt is one logical statement line: physical lines joined across bracket
// continuations, backslash continuations and multi-line strings. Indent is
// measured in columns with tabs expanded to multiples of 8.
type stmt struct {
	text   string
	indent int
	line   int // 1-based line of the first physical line
	kind   stmtKind
}

// scan splits src into logical statement lines. Blank and comment-only
// lines are dropped; comments at the end of a line are stripped. A
// *ParseError is returned for unbalanced brackets and unterminated strings.
func scan(src string) ([]*stmt, error) {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	var stmts []*stmt
	i, line := 0, 1

	for i < len(src) {
		// Measure indentation of the next physical line.
		indent := 0
		for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
			if src[i] == '\t' {
				indent = (indent/8 + 1) * 8
			} else {
				indent++
			}
			i++
		}
		if i >= len(src) {
			break
		}
		if src[i] == '\n' {
			i++
			line++
			continue
		}
		if src[i] == '#' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			continue
		}

		startLine := line
		var b strings.Builder
		depth := 0
	logical:
		for i < len(src) {
			c := src[i]
			switch {
			case c == '#':
				for i < len(src) && src[i] != '\n' {
					i++
				}
			case c == '\'' || c == '"':
				var err error
				i, line, err = scanString(src, i, line, &b)
				if err != nil {
					return nil, err
				}
			case c == '(' || c == '[' || c == '{':
				depth++
				b.WriteByte(c)
				i++
			case c == ')' || c == ']' || c == '}':
				depth--
				if depth < 0 {
					return nil, &ParseError{Line: line, Msg: "unbalanced bracket"}
				}
				b.WriteByte(c)
				i++
			case c == '\\' && i+1 < len(src) && src[i+1] == '\n':
				b.WriteByte(' ')
				i += 2
				line++
			case c == '\\' && i+1 >= len(src):
				return nil, &ParseError{Line: line, Msg: "line continuation at end of file"}
			case c == '\n':
				i++
				line++
				if depth == 0 {
					break logical
				}
				// Inside brackets the newline is soft whitespace.
				b.WriteByte(' ')
			default:
				b.WriteByte(c)
				i++
			}
		}
		if depth > 0 {
			return nil, &ParseError{Line: startLine, Msg: "unclosed bracket at end of file"}
		}
		text := strings.TrimSpace(b.String())
		if text == "" {
			continue
		}
		stmts = append(stmts, &stmt{
			text:   text,
			indent: indent,
			line:   startLine,
			kind:   classify(text),
		})
	}
	return stmts, nil
}

// scanString consumes a string literal starting at src[i] (a quote) and
// appends it verbatim to b. The preceding characters already in b decide
// whether the literal is raw (r-prefix disables backslash escapes).
func scanString(src string, i, line int, b *strings.Builder) (int, int, error) {
	raw := hasRawPrefix(b.String())
	q := src[i]
	triple := i+2 < len(src) && src[i+1] == q && src[i+2] == q
	startLine := line

	if triple {
		b.WriteString(src[i : i+3])
		i += 3
		closer := string([]byte{q, q, q})
		for i < len(src) {
			if src[i] == q && strings.HasPrefix(src[i:], closer) {
				b.WriteString(src[i : i+3])
				return i + 3, line, nil
			}
			if !raw && src[i] == '\\' && i+1 < len(src) {
				b.WriteString(src[i : i+2])
				if src[i+1] == '\n' {
					line++
				}
				i += 2
				continue
			}
			if src[i] == '\n' {
				line++
			}
			b.WriteByte(src[i])
			i++
		}
		return i, line, &ParseError{Line: startLine, Msg: "unterminated string"}
	}

	b.WriteByte(q)
	i++
	for i < len(src) {
		switch {
		case src[i] == q:
			b.WriteByte(q)
			return i + 1, line, nil
		case !raw && src[i] == '\\' && i+1 < len(src):
			b.WriteString(src[i : i+2])
			if src[i+1] == '\n' {
				line++
			}
			i += 2
		case src[i] == '\n':
			return i, line, &ParseError{Line: startLine, Msg: "unterminated string"}
		default:
			b.WriteByte(src[i])
			i++
		}
	}
	return i, line, &ParseError{Line: startLine, Msg: "unterminated string"}
}

// hasRawPrefix inspects the tail of the text before a quote for a string
// prefix containing r/R (rb, fr, ...).
func hasRawPrefix(before string) bool {
	j := len(before)
	for j > 0 && isPrefixLetter(before[j-1]) {
		j--
	}
	// A prefix only counts when it is a standalone token, not the tail of
	// an identifier like "attr".
	if j > 0 && (isIdentByte(before[j-1]) || before[j-1] == '.') {
		return false
	}
	prefix := before[j:]
	if len(prefix) == 0 || len(prefix) > 2 {
		return false
	}
	return strings.ContainsAny(prefix, "rR")
}

func isPrefixLetter(c byte) bool {
	switch c {
	case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F':
		return true
	}
	return false
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func classify(text string) stmtKind {
	if strings.HasPrefix(text, "@") {
		return stmtDecorator
	}
	fields := strings.Fields(text)
	head := fields[0]
	if head == "async" && len(fields) > 1 {
		head = fields[1]
	}
	switch head {
	case "def":
		return stmtDef
	case "class":
		return stmtClass
	}
	// String-literal expression statement (docstring candidate).
	j := 0
	for j < len(text) && j < 2 && isPrefixLetter(text[j]) {
		j++
	}
	if j < len(text) && (text[j] == '\'' || text[j] == '"') {
		return stmtString
	}
	return stmtOther
}
