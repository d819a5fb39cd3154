package domain

import "strings"

// placeholderRange is a half-open [start, end) byte range within the
// original template string that spans one `{name}` placeholder, including
// the braces.
type placeholderRange struct {
	start, end int
	name       string
}

// Template is a compile-once, format-many string with `{name}`-style
// placeholders (SPEC_FULL.md §4.1). Placeholders do not nest.
type Template struct {
	source       string
	placeholders []placeholderRange
}

// CompileTemplate scans s for non-nested `{<word-chars>}` placeholders and
// returns the compiled form. Compilation never fails: an unterminated `{`
// with no matching `}` is simply not treated as a placeholder and is left as
// literal text.
func CompileTemplate(s string) *Template {
	t := &Template{source: s}
	i := 0
	for i < len(s) {
		if s[i] != '{' {
			i++
			continue
		}
		j := i + 1
		for j < len(s) && isWordChar(s[j]) {
			j++
		}
		if j < len(s) && j > i+1 && s[j] == '}' {
			t.placeholders = append(t.placeholders, placeholderRange{
				start: i,
				end:   j + 1,
				name:  s[i+1 : j],
			})
			i = j + 1
			continue
		}
		i++
	}
	return t
}

func isWordChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_':
		return true
	default:
		return false
	}
}

// String returns the original, uncompiled template text.
func (t *Template) String() string { return t.source }

// Format substitutes each placeholder from record: a placeholder whose
// field exists and is a string Value is replaced with that string; every
// other case (field missing, or field present but not a string) leaves the
// placeholder's literal text `{name}` untouched. Integer and timestamp
// values are deliberately not auto-stringified here; callers who want the
// string form must coerce the field upstream (SPEC_FULL.md §4.1 rationale).
func (t *Template) Format(record *Record) string {
	if len(t.placeholders) == 0 {
		return t.source
	}
	var b strings.Builder
	b.Grow(len(t.source))
	pos := 0
	for _, ph := range t.placeholders {
		b.WriteString(t.source[pos:ph.start])
		if record != nil {
			if s, ok := record.GetString(ph.name); ok {
				b.WriteString(s)
				pos = ph.end
				continue
			}
		}
		b.WriteString(t.source[ph.start:ph.end])
		pos = ph.end
	}
	b.WriteString(t.source[pos:])
	return b.String()
}
