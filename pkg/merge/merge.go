// Package merge resolves {{field_name}} merge tags against a flat render context.
//
// A tag is the literal text "{{" followed by one or more of [A-Za-z0-9_] and "}}".
// Anything else, including unbalanced braces, whitespace inside the braces or
// nested tags, is plain text. There is no escaping: a literal "{{name}}" in the
// source is always a tag.
package merge

import "strings"

// Span locates one merge tag inside a template.
type Span struct {
	Start int    // offset of the opening "{{"
	End   int    // offset just past the closing "}}"
	Name  string // identifier between the braces
}

// Raw returns the tag text exactly as it appears in the template.
func (s Span) Raw() string {
	return "{{" + s.Name + "}}"
}

// Scan returns every merge tag in template, left to right, without overlaps.
func Scan(template string) []Span {
	var spans []Span
	i := 0
	for i < len(template) {
		idx := strings.Index(template[i:], "{{")
		if idx < 0 {
			break
		}
		start := i + idx
		j := start + 2
		for j < len(template) && isIdentByte(template[j]) {
			j++
		}
		if j > start+2 && j+1 < len(template) && template[j] == '}' && template[j+1] == '}' {
			spans = append(spans, Span{Start: start, End: j + 2, Name: template[start+2 : j]})
			i = j + 2
			continue
		}
		// "{{{name}}" still holds a tag one byte further on
		i = start + 1
	}
	return spans
}

func isIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// Render substitutes every tag whose name is present in ctx. Tags without a
// value are left byte-identical, so rendering never fails.
func Render(template string, ctx map[string]string) string {
	return rewrite(template, func(s Span) string {
		if v, ok := ctx[s.Name]; ok {
			return v
		}
		return s.Raw()
	})
}

// Highlighter decorates a tag for editor previews.
type Highlighter func(name string, resolved bool) string

// DefaultHighlighter wraps the tag in a span the editor styles by state.
func DefaultHighlighter(name string, resolved bool) string {
	state := "unresolved"
	if resolved {
		state = "resolved"
	}
	return `<span class="merge-tag merge-tag--` + state + `" data-field="` + name + `">{{` + name + `}}</span>`
}

// Preview wraps every tag, resolved or not, using h instead of substituting.
func Preview(template string, ctx map[string]string, h Highlighter) string {
	if h == nil {
		h = DefaultHighlighter
	}
	return rewrite(template, func(s Span) string {
		_, ok := ctx[s.Name]
		return h(s.Name, ok)
	})
}

// Fields lists the distinct tag names in order of first appearance.
func Fields(template string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range Scan(template) {
		if !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	return names
}

// Unresolved lists the distinct tag names that ctx has no value for.
func Unresolved(template string, ctx map[string]string) []string {
	var missing []string
	for _, name := range Fields(template) {
		if _, ok := ctx[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// ValidName reports whether name can be referenced as a tag.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isIdentByte(name[i]) {
			return false
		}
	}
	return true
}

func rewrite(template string, replace func(Span) string) string {
	spans := Scan(template)
	if len(spans) == 0 {
		return template
	}
	var b strings.Builder
	b.Grow(len(template))
	prev := 0
	for _, s := range spans {
		b.WriteString(template[prev:s.Start])
		b.WriteString(replace(s))
		prev = s.End
	}
	b.WriteString(template[prev:])
	return b.String()
}
