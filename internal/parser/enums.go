package parser

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// EnumEntries extracts entries from an enum body. Attributes are removed
// first. Omitted values continue from the previous entry, starting at 0.
func (p *Parser) EnumEntries(ctx context.Context, body string) ([]EnumEntry, error) {
	cleaned, err := p.matcher.ReplaceAll(ctx, enumAnnotationPattern, body, "")
	if err != nil {
		return nil, err
	}

	matches, err := p.matcher.FindAll(ctx, enumEntryPattern, cleaned+"\n")
	if err != nil {
		return nil, err
	}

	known := make(map[string]int64, len(matches))
	entries := make([]EnumEntry, 0, len(matches))
	var next int64

	for _, m := range matches {
		entry := EnumEntry{Name: m.Name("name"), ResolvedValue: next}

		if raw := strings.TrimSpace(m.Name("value")); raw != "" {
			if v, ok := evalEnumValue(raw, known); ok {
				entry.ExplicitValue = &v
				entry.ResolvedValue = v
			} else {
				log.Debug().
					Str("entry", entry.Name).
					Str("value", raw).
					Msg("Enum value not numeric, auto-incrementing")
			}
		}

		known[entry.Name] = entry.ResolvedValue
		next = entry.ResolvedValue + 1
		entries = append(entries, entry)
	}

	return entries, nil
}

// evalEnumValue evaluates integer literals, references to earlier entries,
// shifts and bitwise-or combinations.
func evalEnumValue(expr string, known map[string]int64) (int64, bool) {
	expr = strings.TrimSpace(expr)
	for strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}

	if parts := strings.Split(expr, "|"); len(parts) > 1 {
		var out int64
		for _, part := range parts {
			v, ok := evalEnumValue(part, known)
			if !ok {
				return 0, false
			}
			out |= v
		}
		return out, true
	}

	if left, right, ok := strings.Cut(expr, "<<"); ok {
		l, okL := evalEnumValue(left, known)
		r, okR := evalEnumValue(right, known)
		if !okL || !okR || r < 0 || r > 62 {
			return 0, false
		}
		return l << r, true
	}

	if v, ok := known[expr]; ok {
		return v, true
	}
	return parseIntLiteral(expr)
}

// parseIntLiteral parses decimal and hex literals with optional sign,
// digit separators and integer suffixes.
func parseIntLiteral(s string) (int64, bool) {
	s = strings.ReplaceAll(s, "_", "")
	s = strings.TrimRight(s, "uUlL")
	if s == "" {
		return 0, false
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	base := 10
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		s, base = rest, 16
	}

	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}
