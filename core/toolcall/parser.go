// Package toolcall extracts structured tool calls from free-form generated
// text. A call is written as <function>NAME</function>; parameters appear as
// sibling <param>KEY:VALUE</param> tags anywhere in the text.
package toolcall

import "strings"

const (
	functionOpen  = "<function>"
	functionClose = "</function>"
	paramOpen     = "<param>"
	paramClose    = "</param>"
)

// Call is a structured, named operation request extracted from text.
type Call struct {
	Name   string
	Params *Params
}

// Parse extracts all well-formed calls from text in order of appearance.
// Malformed tags are skipped; Parse never fails, it returns whatever it can
// find (possibly nothing).
//
// Parameter tags are not scoped to a call span: every parameter found
// anywhere in the text is attached to every call. With more than one call in
// the same text this cross-attachment is almost certainly not what the author
// of the text meant, but it is the documented contract and is kept until the
// intended scoping is decided. Each call gets its own copy.
func Parse(text string) []Call {
	names := scanFunctions(text)
	if len(names) == 0 {
		return nil
	}
	params := scanParams(text)

	calls := make([]Call, 0, len(names))
	for _, name := range names {
		calls = append(calls, Call{Name: name, Params: params.Clone()})
	}
	return calls
}

// scanFunctions collects call names in appearance order.
func scanFunctions(text string) []string {
	var names []string

	for i := 0; i < len(text); {
		open := strings.Index(text[i:], functionOpen)
		if open < 0 {
			break
		}
		start := i + open + len(functionOpen)

		end := strings.Index(text[start:], functionClose)
		if end < 0 {
			// Unterminated tag, nothing more to find.
			break
		}

		name := text[start : start+end]
		if !isWord(name) {
			// Stray opener paired with a later closer; a well-formed
			// tag may begin inside the rejected span.
			i = start
			continue
		}
		names = append(names, name)
		i = start + end + len(functionClose)
	}

	return names
}

// scanParams collects every KEY:VALUE parameter in the text. Values may not
// contain '<'; the surrounding whitespace of a value is trimmed.
func scanParams(text string) *Params {
	params := NewParams()

	for i := 0; i < len(text); {
		open := strings.Index(text[i:], paramOpen)
		if open < 0 {
			break
		}
		start := i + open + len(paramOpen)

		end := strings.Index(text[start:], paramClose)
		if end < 0 {
			break
		}
		body := text[start : start+end]
		key, value, ok := strings.Cut(body, ":")
		if !ok || !isWord(key) || value == "" || strings.Contains(value, "<") {
			i = start
			continue
		}
		params.Set(key, strings.TrimSpace(value))
		i = start + end + len(paramClose)
	}

	return params
}

// isWord reports whether s is non-empty and consists of word characters only.
func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
