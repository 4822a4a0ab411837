// Package mentions finds contacts named in other contacts' notes.
// A single Aho-Corasick automaton over every contact name scans every
// other_notes field across the selected tables.
package mentions

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"

	"github.com/kittclouds/rolodex/internal/store"
)

// ============================================================================
// Canonicalizer - shared by pattern compilation and note scanning
// ============================================================================

// isJoiner reports punctuation kept inside names ("O'Brien", "Jean-Luc").
func isJoiner(r rune) bool {
	switch r {
	case '\'', '-', '.', '&':
		return true
	}
	return false
}

func fold(ch rune) rune {
	c := unicode.ToLower(ch)
	switch c {
	case '’', '‘':
		c = '\''
	case '–', '—':
		c = '-'
	}
	return c
}

// Canonicalize lowercases s, keeps letters, digits and joiners, and
// collapses everything else to single spaces.
func Canonicalize(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	lastWasSpace := true
	for _, ch := range s {
		c := fold(ch)
		if unicode.IsLetter(c) || unicode.IsDigit(c) || isJoiner(c) {
			out.WriteRune(c)
			lastWasSpace = false
		} else if !lastWasSpace {
			out.WriteByte(' ')
			lastWasSpace = true
		}
	}
	return strings.TrimSuffix(out.String(), " ")
}

// offsetMap maps each byte of Canonicalize(original) back to its byte
// position in original, plus one trailing entry for end-of-string.
func offsetMap(original string) []int {
	mapping := make([]int, 0, len(original)+1)
	lastWasSpace := true

	for pos, ch := range original {
		c := fold(ch)
		if unicode.IsLetter(c) || unicode.IsDigit(c) || isJoiner(c) {
			for i := 0; i < utf8.RuneLen(c); i++ {
				mapping = append(mapping, pos)
			}
			lastWasSpace = false
		} else if !lastWasSpace {
			mapping = append(mapping, pos)
			lastWasSpace = true
		}
	}
	return append(mapping, len(original))
}

// ============================================================================
// Index
// ============================================================================

// Ref identifies a contact row.
type Ref struct {
	Table string `json:"table"`
	ID    int64  `json:"id"`
	Name  string `json:"name"`
}

// Index is a compiled automaton over contact names.
type Index struct {
	ac        *ahocorasick.Automaton
	patterns  []string
	refs      [][]Ref // pattern index -> contacts sharing that name
	stopwords *stopwords.Stopwords
}

// MinNameLen is the shortest canonical name that gets indexed.
const MinNameLen = 3

// Build compiles an index from records. Names shorter than MinNameLen or
// consisting of a single English stopword are skipped.
func Build(records []*store.TaggedRecord) (*Index, error) {
	ix := &Index{stopwords: stopwords.MustGet("en")}
	byPattern := make(map[string]int)

	for _, r := range records {
		key := Canonicalize(r.Name)
		if utf8.RuneCountInString(key) < MinNameLen {
			continue
		}
		if !strings.Contains(key, " ") && ix.stopwords.Contains(key) {
			continue
		}

		ref := Ref{Table: r.SourceTable, ID: r.ID, Name: r.Name}
		if idx, ok := byPattern[key]; ok {
			ix.refs[idx] = append(ix.refs[idx], ref)
			continue
		}
		byPattern[key] = len(ix.patterns)
		ix.patterns = append(ix.patterns, key)
		ix.refs = append(ix.refs, []Ref{ref})
	}

	if len(ix.patterns) == 0 {
		return ix, nil
	}

	// LeftmostLongest prefers "Ann Lee" over "Ann".
	automaton, err := ahocorasick.NewBuilder().
		AddStrings(ix.patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}
	ix.ac = automaton
	return ix, nil
}

// Len returns the number of distinct indexed names.
func (ix *Index) Len() int { return len(ix.patterns) }

// Hit is one name found in a piece of text.
type Hit struct {
	Start   int    // byte offset in the original text
	End     int    // exclusive
	Matched string // original text slice
	Refs    []Ref
}

// Scan returns whole-word name hits in text.
func (ix *Index) Scan(text string) []Hit {
	if ix.ac == nil || text == "" {
		return nil
	}

	canon := Canonicalize(text)
	haystack := []byte(canon)
	mapping := offsetMap(text)

	var hits []Hit
	for _, m := range ix.ac.FindAllOverlapping(haystack) {
		if !wordBoundaryBefore(haystack, m.Start) || !wordBoundaryAfter(haystack, m.End) {
			continue
		}

		// Map back through the last matched rune; the byte after the
		// match may be a collapsed separator run.
		start, last := mapping[m.Start], mapping[m.End-1]
		_, w := utf8.DecodeRuneInString(text[last:])
		end := last + w
		if start >= end || end > len(text) {
			continue
		}

		hits = append(hits, Hit{
			Start:   start,
			End:     end,
			Matched: text[start:end],
			Refs:    ix.refs[m.PatternID],
		})
	}
	return hits
}

// wordBoundaryAfter reports whether a match ending at end is followed by a
// space, the end of the text, or a run of joiners that reaches either
// ("Shah." or "Shah.'").
func wordBoundaryAfter(haystack []byte, end int) bool {
	for i := end; i < len(haystack); i++ {
		switch {
		case haystack[i] == ' ':
			return true
		case isJoiner(rune(haystack[i])):
		default:
			return false
		}
	}
	return true
}

// wordBoundaryBefore mirrors wordBoundaryAfter for the match start
// ("'Ravi").
func wordBoundaryBefore(haystack []byte, start int) bool {
	for i := start - 1; i >= 0; i-- {
		switch {
		case haystack[i] == ' ':
			return true
		case isJoiner(rune(haystack[i])):
		default:
			return false
		}
	}
	return true
}

// Link says that From's notes mention To.
type Link struct {
	From    Ref    `json:"from"`
	To      Ref    `json:"to"`
	Matched string `json:"matched"`
}

// Find scans the notes of every record for the names of the others.
// Self-mentions are dropped; each (from, to) pair is reported once.
func Find(records []*store.TaggedRecord) ([]Link, error) {
	ix, err := Build(records)
	if err != nil {
		return nil, err
	}

	type pair struct{ from, to Ref }
	seen := make(map[pair]bool)
	links := []Link{}

	for _, r := range records {
		from := Ref{Table: r.SourceTable, ID: r.ID, Name: r.Name}
		for _, hit := range ix.Scan(r.OtherNotes) {
			for _, to := range hit.Refs {
				if to.Table == from.Table && to.ID == from.ID {
					continue
				}
				p := pair{from, to}
				if seen[p] {
					continue
				}
				seen[p] = true
				links = append(links, Link{From: from, To: to, Matched: hit.Matched})
			}
		}
	}
	return links, nil
}
