package gcode

import (
	"regexp"
	"strings"
)

// Block is the words of a single line, in order.
type Block []Word

var rxWord = regexp.MustCompile(`[A-Z][^A-Z\s]*`)

// splitLine separates a line into its words and the text of its first
// parenthesized comment.
func splitLine(line string) (b Block, comment string, hasComment bool) {
	words := line
	if i := strings.IndexByte(line, '('); i >= 0 {
		words = line[:i]
		hasComment = true
		comment = line[i+1:]
		if j := strings.LastIndexByte(comment, ')'); j >= 0 {
			comment = comment[:j]
		} else {
			hasComment = false
		}
		comment = strings.TrimSpace(comment)
	}

	for _, s := range rxWord.FindAllString(words, -1) {
		b = append(b, Word{W: s[0], Arg: s[1:]})
	}
	return b, comment, hasComment
}

// Word returns the first word with letter w.
func (b Block) Word(w byte) (Word, bool) {
	for _, g := range b {
		if g.W == w {
			return g, true
		}
	}
	return Word{}, false
}

func (b Block) String() string {
	s := make([]string, len(b))
	for i, w := range b {
		s[i] = w.String()
	}
	return strings.Join(s, " ")
}
