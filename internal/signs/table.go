// Package signs maps recognized text to sign-language animation assets.
package signs

import (
	"fmt"
	"strings"
)

// Entry pairs a phrase with the asset file that signs it
type Entry struct {
	Phrase string `json:"phrase" mapstructure:"phrase"`
	File   string `json:"file" mapstructure:"file"`
}

// DefaultEntries is the built-in phrase table, in display order
var DefaultEntries = []Entry{
	{Phrase: "hello", File: "hello.gif"},
	{Phrase: "thank you", File: "Thank you.gif"},
	{Phrase: "i like you", File: "I like you.gif"},
	{Phrase: "happy", File: "happy.gif"},
	{Phrase: "nice to meet you", File: "nice_to_meet_you.gif"},
	{Phrase: "no", File: "no.gif"},
}

// Table is an ordered, immutable phrase-to-asset mapping. Keys are
// lowercase.
type Table struct {
	entries []Entry
	index   map[string]string
}

// DefaultTable returns the built-in table
func DefaultTable() *Table {
	t, _ := NewTable(DefaultEntries)
	return t
}

// NewTable builds a table from entries. Phrases are normalized to lowercase
// and must be unique.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("phrase table is empty")
	}

	t := &Table{index: make(map[string]string, len(entries))}
	for _, e := range entries {
		key := normalize(e.Phrase)
		if key == "" || e.File == "" {
			return nil, fmt.Errorf("phrase table entry %q -> %q is incomplete", e.Phrase, e.File)
		}
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("duplicate phrase %q", key)
		}
		t.index[key] = e.File
		t.entries = append(t.entries, Entry{Phrase: key, File: e.File})
	}
	return t, nil
}

// Entries returns a copy of the table in order
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Phrases returns the phrase keys in order
func (t *Table) Phrases() []string {
	out := make([]string, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.Phrase
	}
	return out
}

// File returns the asset for an exact phrase key
func (t *Table) File(phrase string) (string, bool) {
	f, ok := t.index[normalize(phrase)]
	return f, ok
}

// Match is one resolved piece of the input. File is empty when no asset
// exists for Phrase.
type Match struct {
	Phrase string `json:"phrase"`
	File   string `json:"file,omitempty"`
	Exact  bool   `json:"exact,omitempty"`
}

// Found reports whether an asset exists for the match
func (m Match) Found() bool { return m.File != "" }

// Result is the outcome of resolving one piece of text. Items keep input
// order, hits and misses interleaved.
type Result struct {
	Text  string  `json:"text"`
	Items []Match `json:"items"`
}

// Matches returns the items that have an asset, in order
func (r Result) Matches() []Match {
	out := []Match{}
	for _, m := range r.Items {
		if m.Found() {
			out = append(out, m)
		}
	}
	return out
}

// Unmatched returns the words that have no asset, in order
func (r Result) Unmatched() []string {
	out := []string{}
	for _, m := range r.Items {
		if !m.Found() {
			out = append(out, m.Phrase)
		}
	}
	return out
}

// Empty reports whether nothing matched
func (r Result) Empty() bool { return len(r.Matches()) == 0 }

// Lookup resolves text. A whole-text match wins and stops; otherwise each
// whitespace-separated word is tried on its own, in order, duplicates
// included.
func (t *Table) Lookup(text string) Result {
	key := normalize(text)
	res := Result{Text: text, Items: []Match{}}

	if file, ok := t.index[key]; ok {
		res.Items = append(res.Items, Match{Phrase: key, File: file, Exact: true})
		return res
	}

	for _, word := range strings.Fields(key) {
		res.Items = append(res.Items, Match{Phrase: word, File: t.index[word]})
	}
	return res
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
