// Package textutil normalizes file content before it is concatenated into
// summary artifacts. Artifacts are UTF-8 with \n newlines only.
package textutil

import "bytes"

// NormalizeUTF8LF converts CRLF and bare CR to LF and replaces invalid
// byte sequences with the Unicode replacement character, so a single
// undecodable file cannot poison an aggregated artifact.
func NormalizeUTF8LF(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	b = bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
	return bytes.ToValidUTF8(b, []byte("�"))
}

// EnsureTrailingLF appends a single \n if the content does not already end
// with one. Empty input is returned unchanged.
func EnsureTrailingLF(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(b, '\n')
}
