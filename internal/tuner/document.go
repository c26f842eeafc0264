package tuner

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Document is a section-keyed config file held as raw line groups, so
// writing it back reproduces every untouched byte.
type Document struct {
	sections []*Section
}

// Section is one bracketed table. The first section of a document is the
// unnamed preamble before any header.
type Section struct {
	Name string
	// opaque sections ([[array]] tables) are kept but never edited.
	opaque  bool
	header  string
	entries []*entry
}

type entry struct {
	key string // empty for blank lines and comments
	raw string
}

var keyLine = regexp.MustCompile(`^(\s*)([A-Za-z0-9_\-]+)\s*=(.*)$`)

// Parse splits text into sections and entries.
func Parse(text string) *Document {
	doc := &Document{sections: []*Section{{}}}
	cur := doc.sections[0]
	lines := strings.SplitAfter(text, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") {
			cur = &Section{header: line}
			if name, ok := headerName(line); ok {
				cur.Name = name
			} else {
				cur.opaque = true
			}
			doc.sections = append(doc.sections, cur)
			continue
		}
		e := &entry{raw: line}
		var st valueState
		if m := keyLine.FindStringSubmatch(strings.TrimRight(line, "\r\n")); m != nil {
			e.key = m[2]
			st.scan(m[3])
		} else if strings.Contains(line, "=") {
			// dotted or quoted keys are kept verbatim but still fold their value
			st.scan(line)
		}
		for st.open() && i+1 < len(lines) && lines[i+1] != "" {
			i++
			e.raw += lines[i]
			st.scan(lines[i])
		}
		cur.entries = append(cur.entries, e)
	}
	return doc
}

func headerName(line string) (string, bool) {
	s := strings.TrimRight(line, "\r\n")
	if strings.HasPrefix(s, "[[") {
		return "", false
	}
	end := strings.Index(s, "]")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(s[1:end]), true
}

// valueState follows a value across lines: open array brackets and an
// unterminated multi-line string.
type valueState struct {
	depth int
	delim string // `"""` or `'''` while inside a multi-line string
}

func (st *valueState) open() bool {
	return st.depth > 0 || st.delim != ""
}

func (st *valueState) scan(s string) {
	for i := 0; i < len(s); {
		if st.delim != "" {
			switch {
			case st.delim[0] == '"' && s[i] == '\\':
				i += 2
			case strings.HasPrefix(s[i:], st.delim):
				i += len(st.delim)
				// up to two extra quotes still belong to the string
				for n := 0; n < 2 && i < len(s) && s[i] == st.delim[0]; n++ {
					i++
				}
				st.delim = ""
			default:
				i++
			}
			continue
		}
		switch c := s[i]; {
		case strings.HasPrefix(s[i:], `"""`) || strings.HasPrefix(s[i:], "'''"):
			st.delim = s[i : i+3]
			i += 3
		case c == '"' || c == '\'':
			i++
			for i < len(s) && s[i] != c && s[i] != '\n' {
				if c == '"' && s[i] == '\\' {
					i++
				}
				i++
			}
			i++
		case c == '#':
			return
		case c == '[':
			st.depth++
			i++
		case c == ']':
			st.depth--
			i++
		default:
			i++
		}
	}
}

// String reassembles the document.
func (d *Document) String() string {
	var b strings.Builder
	for _, s := range d.sections {
		b.WriteString(s.header)
		for _, e := range s.entries {
			b.WriteString(e.raw)
		}
	}
	return b.String()
}

// Section returns the first table called name, or nil.
func (d *Document) Section(name string) *Section {
	for _, s := range d.sections[1:] {
		if !s.opaque && s.Name == name {
			return s
		}
	}
	return nil
}

// EnsureSection returns the table called name, appending an empty one at the
// end of the document when it does not exist.
func (d *Document) EnsureSection(name string) *Section {
	if s := d.Section(name); s != nil {
		return s
	}
	prefix := ""
	if text := d.String(); text != "" {
		if !strings.HasSuffix(text, "\n") {
			prefix = "\n"
		}
		prefix += "\n"
	}
	s := &Section{Name: name, header: prefix + "[" + name + "]\n"}
	d.sections = append(d.sections, s)
	return s
}

func (s *Section) find(key string) *entry {
	for _, e := range s.entries {
		if e.key == key {
			return e
		}
	}
	return nil
}

// Value returns the raw value text of key with surrounding space removed.
func (s *Section) Value(key string) (string, bool) {
	e := s.find(key)
	if e == nil {
		return "", false
	}
	_, value, _ := strings.Cut(e.raw, "=")
	return strings.TrimSpace(value), true
}

// insert places a new key line after the section's last key, ahead of any
// trailing blank lines or comments.
func (s *Section) insert(e *entry) {
	at := 0
	for i, existing := range s.entries {
		if existing.key != "" {
			at = i + 1
		}
	}
	if at > 0 && !strings.HasSuffix(s.entries[at-1].raw, "\n") {
		s.entries[at-1].raw += "\n"
	} else if at == 0 && !strings.HasSuffix(s.header, "\n") {
		s.header += "\n"
	}
	s.entries = slices.Insert(s.entries, at, e)
}

// SetBool makes key hold v. It reports whether the document changed; a key
// that already holds v is left untouched, comments included.
func (s *Section) SetBool(key string, v bool) bool {
	want := strconv.FormatBool(v)
	line := key + " = " + want + "\n"
	e := s.find(key)
	if e == nil {
		s.insert(&entry{key: key, raw: line})
		return true
	}
	if current, _ := s.Value(key); stripComment(current) == want {
		return false
	}
	e.raw = indentOf(e.raw) + line
	return true
}

// EnsureListItem makes the string list under key contain item, appending it
// after the existing elements. It reports whether the document changed.
func (s *Section) EnsureListItem(key, item string) bool {
	e := s.find(key)
	if e == nil {
		s.insert(&entry{key: key, raw: key + " = " + formatList([]string{item}) + "\n"})
		return true
	}
	raw, _ := s.Value(key)
	items := ParseList(raw)
	if slices.Contains(items, item) {
		return false
	}
	items = append(dedupe(items), item)
	e.raw = indentOf(e.raw) + key + " = " + formatList(items) + "\n"
	return true
}

// ParseList decodes a bracketed list of strings. Values that are not valid
// TOML string arrays are split on commas with quotes trimmed.
func ParseList(raw string) []string {
	var v struct {
		V []string `toml:"v"`
	}
	if err := toml.Unmarshal([]byte("v = "+raw), &v); err == nil {
		return v.V
	}
	inner := stripComment(raw)
	inner = strings.TrimSpace(inner)
	inner = strings.TrimPrefix(inner, "[")
	inner = strings.TrimSuffix(inner, "]")
	var items []string
	for _, part := range strings.Split(inner, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			items = append(items, part)
		}
	}
	return items
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}

func formatList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = strconv.Quote(it)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func stripComment(v string) string {
	if i := strings.Index(v, "#"); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

func indentOf(raw string) string {
	return raw[:len(raw)-len(strings.TrimLeft(raw, " \t"))]
}

// Validate reports whether text parses as TOML.
func Validate(text string) error {
	var v map[string]any
	if err := toml.Unmarshal([]byte(text), &v); err != nil {
		return fmt.Errorf("invalid config document: %w", err)
	}
	return nil
}
