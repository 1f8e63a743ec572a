package pysig

import "strings"

const indentUnit = "    "

// Render formats signatures the way they were declared: one header line
// per declaration at an indentation matching its nesting depth, with the
// docstring as an indented block beneath it. Output order is input order.
func Render(sigs []*Signature) string {
	var b strings.Builder
	for i, sig := range sigs {
		if i > 0 && sig.Depth == 0 {
			b.WriteByte('\n')
		}
		ind := strings.Repeat(indentUnit, sig.Depth)
		b.WriteString(ind)
		b.WriteString(HeaderLine(sig))
		b.WriteByte('\n')
		if sig.Docstring != "" {
			writeDocstring(&b, ind+indentUnit, sig.Docstring)
		}
	}
	return b.String()
}

// HeaderLine renders one declaration header without indentation.
func HeaderLine(sig *Signature) string {
	var b strings.Builder
	if sig.Kind == KindClass {
		b.WriteString("class ")
		b.WriteString(sig.Name)
		if len(sig.Bases) > 0 {
			b.WriteByte('(')
			b.WriteString(strings.Join(sig.Bases, ", "))
			b.WriteByte(')')
		}
		b.WriteByte(':')
		return b.String()
	}
	if sig.Async {
		b.WriteString("async ")
	}
	b.WriteString("def ")
	b.WriteString(sig.Name)
	b.WriteByte('(')
	for i, p := range sig.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(FormatParam(p))
	}
	b.WriteByte(')')
	if sig.Returns != "" {
		b.WriteString(" -> ")
		b.WriteString(sig.Returns)
	}
	b.WriteByte(':')
	return b.String()
}

// FormatParam renders a parameter with its type separator and assignment
// token the way the declaration spelled them: spaces around '=' only when
// an annotation is present.
func FormatParam(p Param) string {
	s := p.Name
	if p.Annotation != "" {
		s += ": " + p.Annotation
		if p.Default != "" {
			s += " = " + p.Default
		}
		return s
	}
	if p.Default != "" {
		s += "=" + p.Default
	}
	return s
}

func writeDocstring(b *strings.Builder, ind, doc string) {
	if !strings.Contains(doc, "\n") {
		b.WriteString(ind)
		b.WriteString(`"""`)
		b.WriteString(doc)
		b.WriteString(`"""`)
		b.WriteByte('\n')
		return
	}
	lines := strings.Split(doc, "\n")
	b.WriteString(ind)
	b.WriteString(`"""`)
	b.WriteString(lines[0])
	b.WriteByte('\n')
	for _, ln := range lines[1:] {
		if ln == "" {
			b.WriteByte('\n')
			continue
		}
		b.WriteString(ind)
		b.WriteString(ln)
		b.WriteByte('\n')
	}
	b.WriteString(ind)
	b.WriteString(`"""`)
	b.WriteByte('\n')
}
