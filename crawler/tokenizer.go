package crawler

import (
	"regexp"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// identifierPattern matches a run of word characters, optionally
// continued across an apostrophe (so "don't" tokenizes as one word
// rather than "don" and "t"). Word characters are Unicode letters,
// marks, digits and connector punctuation; Go's `\w` would be ASCII-only
// and split a word such as "héllo".
var identifierPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}\p{Pc}]+(?:'[\p{L}\p{M}\p{N}\p{Pc}]+)*`)

// Token is one candidate identifier found in a file, with its range in
// UTF-16 code units.
type Token struct {
	Word  string
	Range protocol.Range
}

// Tokenize scans text line by line and returns every identifier match,
// in document order. Character offsets are UTF-16 code-unit offsets
// within the line, matching the "utf-16" position encoding the indexer
// declares in its MetaData vertex (the original implementation this is
// based on emitted raw byte offsets here while claiming UTF-16 — fixed
// in this port, see SPEC_FULL.md).
func Tokenize(text string) []Token {
	var tokens []Token
	for lineIdx, line := range strings.Split(text, "\n") {
		matches := identifierPattern.FindAllStringIndex(line, -1)
		if len(matches) == 0 {
			continue
		}
		byteToUnit := byteOffsetToUTF16Unit(line)
		for _, m := range matches {
			start := byteToUnit[m[0]]
			end := byteToUnit[m[1]]
			tokens = append(tokens, Token{
				Word: line[m[0]:m[1]],
				Range: protocol.Range{
					Start: protocol.Position{Line: protocol.UInteger(lineIdx), Character: protocol.UInteger(start)},
					End:   protocol.Position{Line: protocol.UInteger(lineIdx), Character: protocol.UInteger(end)},
				},
			})
		}
	}
	return tokens
}

// byteOffsetToUTF16Unit builds a lookup table mapping each byte offset
// in line (0..len(line), inclusive) to the UTF-16 code-unit offset of
// the rune starting there.
func byteOffsetToUTF16Unit(line string) []int {
	table := make([]int, len(line)+1)
	unit := 0
	for byteIdx, r := range line {
		table[byteIdx] = unit
		if r > 0xFFFF {
			unit += 2 // surrogate pair
		} else {
			unit++
		}
	}
	table[len(line)] = unit
	return table
}
