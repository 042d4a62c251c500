package markdown

import (
	"strings"
	"unicode/utf8"
)

// Stats holds document statistics reported alongside previews.
type Stats struct {
	Words      int `json:"words"`
	Lines      int `json:"lines"`
	Characters int `json:"characters"`
	CodeBlocks int `json:"code_blocks"`
}

// CodeBlockCount reports the number of fenced code blocks as
// count("```") / 2. Two fence markers make one block; an unterminated
// trailing fence is not counted. The undercount on odd fence counts is
// the documented counting rule.
func CodeBlockCount(md string) int {
	return strings.Count(md, "```") / 2
}

// Measure computes the statistics for a document.
func Measure(md string) Stats {
	s := Stats{
		Characters: utf8.RuneCountInString(md),
		CodeBlocks: CodeBlockCount(md),
	}
	if md != "" {
		s.Words = len(strings.Fields(md))
		s.Lines = strings.Count(md, "\n") + 1
	}
	return s
}
