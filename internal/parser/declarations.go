// Package parser extracts declarations, members and enum entries from
// C-family source text.
//
// All extraction runs through a safematch.Matcher, so every call is bounded
// by the matcher's budget and returns its timeout error unchanged.
package parser

import (
	"context"
	"strings"

	"cs2ts/internal/safematch"
	"cs2ts/internal/typemap"

	"github.com/rs/zerolog/log"
)

// Parser extracts source constructs with one matcher.
type Parser struct {
	matcher *safematch.Matcher
}

// New creates a parser backed by matcher.
func New(matcher *safematch.Matcher) *Parser {
	return &Parser{matcher: matcher}
}

// Declarations returns the top-level declarations of comment-free text in
// source order.
func (p *Parser) Declarations(ctx context.Context, text string) ([]TypeDeclaration, error) {
	matches, err := p.matcher.FindAll(ctx, declarationPattern, text)
	if err != nil {
		return nil, err
	}

	runes := []rune(text)
	decls := make([]TypeDeclaration, 0, len(matches))
	for _, m := range matches {
		clause := strings.Join(strings.Fields(m.Name("inherits")), " ")

		body := m.Name("body")
		if body == "" {
			body = m.Name("inline")
		}

		decl := TypeDeclaration{
			Kind:              Kind(m.Name("kind")),
			Name:              strings.ReplaceAll(strings.Join(strings.Fields(m.Name("name")), " "), " <", "<"),
			InheritanceClause: clause,
			BodyText:          body,
			Indent:            m.Name("indent"),
			Line:              lineOf(runes, m.Index),
		}
		if bases := splitBases(clause); len(bases) > 0 {
			decl.InheritsFrom = bases[0]
		}

		decls = append(decls, decl)
	}

	log.Debug().Int("count", len(decls)).Msg("Extracted declarations")
	return decls, nil
}

// splitBases splits an inheritance clause at top-level commas.
func splitBases(clause string) []string {
	if clause == "" {
		return nil
	}
	if args, ok := typemap.SplitArguments(clause); ok {
		return args
	}
	return []string{clause}
}

func lineOf(runes []rune, index int) int {
	line := 1
	for i := 0; i < index && i < len(runes); i++ {
		if runes[i] == '\n' {
			line++
		}
	}
	return line
}
