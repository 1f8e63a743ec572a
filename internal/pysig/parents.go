package pysig

// annotateParents maps every statement to its nearest enclosing def/class
// statement in a single pass over the scanned nodes. The scanner's output
// has no back-pointers; this map is what makes nesting resolution possible
// and is discarded once extraction finishes.
func annotateParents(stmts []*stmt) map[*stmt]*stmt {
	parents := make(map[*stmt]*stmt, len(stmts))
	var stack []*stmt
	for _, s := range stmts {
		for len(stack) > 0 && s.indent <= stack[len(stack)-1].indent {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			parents[s] = stack[len(stack)-1]
		}
		if s.kind == stmtDef || s.kind == stmtClass {
			stack = append(stack, s)
		}
	}
	return parents
}
