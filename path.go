package secstore

import "strings"

// Delimiter separates field names inside a path string.
const Delimiter = ":"

// splitPath breaks a path into field names. Splitting is verbatim: empty
// segments are kept, so "a::b" resolves to three segments whose middle one
// addresses nothing during traversal. Writes reject paths whose leaf segment
// is empty; splitting itself rejects nothing.
func splitPath(path string) []string {
	return strings.Split(path, Delimiter)
}

// JoinPath assembles a path string from field names.
func JoinPath(segments ...string) string {
	return strings.Join(segments, Delimiter)
}
