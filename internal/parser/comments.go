package parser

import (
	"regexp"
	"strings"
)

// blockCommentPattern matches /* ... */ non-greedily across lines.
var blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)

// lineCommentPattern matches a // comment to the end of its line.
var lineCommentPattern = regexp.MustCompile(`//.*`)

// StripComments removes block comments, then each line's trailing line comment.
// Line endings are normalized to \n. Comment markers inside string literals
// are not recognized.
func StripComments(code string) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = blockCommentPattern.ReplaceAllString(code, "")

	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = lineCommentPattern.ReplaceAllString(line, "")
	}

	return strings.Join(lines, "\n")
}
