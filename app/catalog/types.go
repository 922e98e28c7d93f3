package catalog

import (
	"fmt"
)

// Entry is one message of a PO catalog. An empty ID marks the header entry.
type Entry struct {
	Context  string
	ID       string
	PluralID string
	Strings  []string // msgstr, or msgstr[N] indexed by N
	Flags    []string
	Fuzzy    bool
	Obsolete bool
}

func (e Entry) String() string {
	if len(e.Strings) == 0 {
		return ""
	}
	return e.Strings[0]
}

// Translated reports whether any translation form is non-empty.
func (e Entry) Translated() bool {
	for _, s := range e.Strings {
		if s != "" {
			return true
		}
	}
	return false
}

func (e Entry) HasFlag(flag string) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Stats is the coverage record of a single catalog.
type Stats struct {
	Total        int     `json:"total"`
	Translated   int     `json:"translated"`
	Fuzzy        int     `json:"fuzzy"`
	Untranslated int     `json:"untranslated"`
	Percentage   float64 `json:"percentage"`
}

type SyntaxError struct {
	Path string
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}
