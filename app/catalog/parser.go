package catalog

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxLineSize = 1024 * 1024

type target int

const (
	targetNone target = iota
	targetContext
	targetID
	targetPlural
	targetString
)

type parser struct {
	line    int
	entries []Entry

	cur      Entry
	hasID    bool
	hasStr   bool
	hasCtx   bool
	target   target
	strIndex int
}

// ParseFile reads the catalog at path. The locale is compared against the
// catalog's Language header and a mismatch is logged.
func ParseFile(path, locale string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		if syntaxErr, ok := err.(*SyntaxError); ok {
			syntaxErr.Path = path
		}
		return nil, err
	}

	if lang := Header(entries)["Language"]; lang != "" && locale != "" && !sameLocale(lang, locale) {
		slog.Warn("Catalog language does not match locale directory", "path", path, "language", lang, "locale", locale)
	}

	return entries, nil
}

// Parse reads PO syntax from r. Obsolete (#~) entries are validated but not
// returned. Repeated messages are folded into their first occurrence, see
// merge.
func Parse(r io.Reader) ([]Entry, error) {
	p := &parser{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		p.line++
		line := scanner.Text()
		if p.line == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if err := p.parseLine(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	if err := p.finish(); err != nil {
		return nil, err
	}

	return merge(p.entries), nil
}

// merge folds messages sharing a msgctxt and msgid into the first one. Flags
// are unioned; the first translation wins unless a later message adds plural
// forms, in which case its plural ID and forms replace the first.
func merge(entries []Entry) []Entry {
	type key struct{ context, id string }

	seen := make(map[key]int, len(entries))
	merged := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			merged = append(merged, e)
			continue
		}

		k := key{e.Context, e.ID}
		i, ok := seen[k]
		if !ok {
			seen[k] = len(merged)
			merged = append(merged, e)
			continue
		}

		first := &merged[i]
		if e.PluralID != "" && first.PluralID == "" {
			first.PluralID = e.PluralID
			first.Strings = e.Strings
		}
		for _, flag := range e.Flags {
			if !first.HasFlag(flag) {
				first.Flags = append(first.Flags, flag)
			}
		}
		first.Fuzzy = first.Fuzzy || e.Fuzzy
	}
	return merged
}

// Header splits the header entry's translation into key/value pairs.
func Header(entries []Entry) map[string]string {
	header := make(map[string]string)
	for _, e := range entries {
		if e.ID != "" || e.Context != "" {
			continue
		}
		for _, line := range strings.Split(e.String(), "\n") {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			header[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
		break
	}
	return header
}

func (p *parser) parseLine(raw string) error {
	if !utf8.ValidString(raw) {
		return p.errorf("invalid UTF-8")
	}

	line := strings.TrimSpace(raw)
	if line == "" {
		return nil
	}

	obsolete := false
	if strings.HasPrefix(line, "#~") {
		obsolete = true
		line = strings.TrimSpace(line[2:])
		if line == "" || strings.HasPrefix(line, "|") {
			return nil
		}
	}

	if strings.HasPrefix(line, "#") {
		p.flushComplete()
		if strings.HasPrefix(line, "#,") {
			for _, flag := range strings.Split(line[2:], ",") {
				if flag = strings.TrimSpace(flag); flag != "" {
					p.cur.Flags = append(p.cur.Flags, flag)
					if flag == "fuzzy" {
						p.cur.Fuzzy = true
					}
				}
			}
		}
		return nil
	}

	if strings.HasPrefix(line, `"`) {
		if obsolete {
			p.cur.Obsolete = true
		}
		return p.appendString(line)
	}

	keyword, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch {
	case keyword == "msgctxt":
		p.flushComplete()
		if p.hasID || p.hasCtx {
			return p.errorf("unexpected msgctxt")
		}
		p.hasCtx = true
		p.target = targetContext
	case keyword == "msgid":
		p.flushComplete()
		if p.hasID {
			return p.errorf("msgid without msgstr")
		}
		p.hasID = true
		p.target = targetID
	case keyword == "msgid_plural":
		if !p.hasID || p.hasStr || p.cur.PluralID != "" {
			return p.errorf("unexpected msgid_plural")
		}
		p.target = targetPlural
	case keyword == "msgstr":
		if !p.hasID {
			return p.errorf("msgstr without msgid")
		}
		if p.hasStr {
			return p.errorf("duplicate msgstr")
		}
		p.hasStr = true
		p.target = targetString
		p.strIndex = 0
		p.cur.Strings = []string{""}
	case strings.HasPrefix(keyword, "msgstr["):
		if !p.hasID {
			return p.errorf("msgstr without msgid")
		}
		index, err := pluralIndex(keyword)
		if err != nil {
			return p.errorf("%v", err)
		}
		if index != len(p.cur.Strings) {
			return p.errorf("unexpected plural index %d", index)
		}
		p.hasStr = true
		p.target = targetString
		p.strIndex = index
		p.cur.Strings = append(p.cur.Strings, "")
	default:
		return p.errorf("unknown keyword %q", keyword)
	}

	if obsolete {
		p.cur.Obsolete = true
	}
	return p.appendString(rest)
}

func (p *parser) appendString(quoted string) error {
	if p.target == targetNone {
		return p.errorf("string without keyword")
	}

	value, err := unquote(quoted)
	if err != nil {
		return p.errorf("%v", err)
	}

	switch p.target {
	case targetContext:
		p.cur.Context += value
	case targetID:
		p.cur.ID += value
	case targetPlural:
		p.cur.PluralID += value
	case targetString:
		p.cur.Strings[p.strIndex] += value
	}
	return nil
}

// flushComplete emits the current entry once it has its msgstr.
func (p *parser) flushComplete() {
	if !p.hasStr {
		return
	}
	if !p.cur.Obsolete {
		p.entries = append(p.entries, p.cur)
	}
	p.cur = Entry{}
	p.hasID = false
	p.hasStr = false
	p.hasCtx = false
	p.target = targetNone
}

func (p *parser) finish() error {
	switch {
	case p.hasStr:
		p.flushComplete()
	case p.hasID:
		return p.errorf("msgid without msgstr")
	case p.hasCtx:
		return p.errorf("msgctxt without msgid")
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func pluralIndex(keyword string) (int, error) {
	if !strings.HasSuffix(keyword, "]") {
		return 0, fmt.Errorf("malformed plural keyword %q", keyword)
	}
	index, err := strconv.Atoi(keyword[len("msgstr[") : len(keyword)-1])
	if err != nil || index < 0 {
		return 0, fmt.Errorf("malformed plural keyword %q", keyword)
	}
	return index, nil
}

func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("unterminated string")
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			return "", fmt.Errorf("unescaped quote in string")
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			return "", fmt.Errorf("unterminated string")
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		default:
			return "", fmt.Errorf("invalid escape sequence \\%c", s[i])
		}
	}
	return b.String(), nil
}

func sameLocale(a, b string) bool {
	normalize := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "-", "_"))
	}
	return normalize(a) == normalize(b)
}
