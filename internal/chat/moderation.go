package chat

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/pkg/errors"
)

// Moderator masks censored words in message text. Matching ignores case,
// punctuation, spacing and common leet substitutions, and replaces the
// matched characters one rune for one rune so the text keeps its shape.
// A match must start and end on a word boundary: "ass" is masked in
// "a s s" but not inside "class". A nil *Moderator leaves text unchanged.
type Moderator struct {
	machine *goahocorasick.Machine
	mask    rune
}

// NewModerator builds a Moderator for words. It returns nil when words is
// empty.
func NewModerator(words []string, mask rune) (*Moderator, error) {
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		if p, _ := fold([]rune(w)); len(p) > 0 {
			patterns = append(patterns, p)
		}
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, errors.Wrap(err, "build censor dictionary")
	}
	return &Moderator{machine: machine, mask: mask}, nil
}

// Censor returns text with every censored word masked.
func (m *Moderator) Censor(text string) string {
	if m == nil || text == "" {
		return text
	}
	original := []rune(text)
	folded, positions := fold(original)
	if len(folded) == 0 {
		return text
	}

	terms := m.machine.MultiPatternSearch(folded, false)
	if len(terms) == 0 {
		return text
	}
	for _, t := range terms {
		end := t.Pos + len(t.Word)
		if t.Pos < 0 || end > len(positions) {
			continue
		}
		first, last := positions[t.Pos], positions[end-1]
		if !isBoundary(original, first-1) || !isBoundary(original, last+1) {
			continue
		}
		for i := first; i <= last; i++ {
			original[i] = m.mask
		}
	}
	return string(original)
}

// isBoundary reports whether index i of text is outside it or not part of
// a word.
func isBoundary(text []rune, i int) bool {
	if i < 0 || i >= len(text) {
		return true
	}
	r := text[i]
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// fold lowercases runes, undoes leet substitutions and drops separators.
// positions maps every folded rune back to its index in in.
func fold(in []rune) (folded []rune, positions []int) {
	folded = make([]rune, 0, len(in))
	positions = make([]int, 0, len(in))
	for i, r := range in {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		folded = append(folded, unicode.ToLower(r))
		positions = append(positions, i)
	}
	return folded, positions
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	case '7':
		return 't'
	}
	return r
}
