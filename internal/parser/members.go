package parser

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// Properties extracts fields and properties from a declaration body.
// Static, const and event members are not part of an instance shape and are
// dropped here; visibility filtering is left to the caller.
func (p *Parser) Properties(ctx context.Context, body string) ([]PropertyMember, error) {
	matches, err := p.matcher.FindAll(ctx, propertyPattern, body)
	if err != nil {
		return nil, err
	}

	var props []PropertyMember
	for _, m := range matches {
		if m.Name("skip") != "" {
			continue
		}

		accessor := m.Name("accessor")
		getOnly := strings.HasPrefix(accessor, "{") && m.Name("setter") == ""
		expression := strings.HasPrefix(accessor, "=>")

		props = append(props, PropertyMember{
			Visibility: visibility(m.Captures["visibility"]),
			IsReadOnly: m.Name("modifier") == "readonly" || getOnly || expression,
			IsOptional: m.Name("nullable") == "?",
			IsVirtual:  m.Name("modifier") == "virtual",
			Name:       m.Name("name"),
			SourceType: compactType(m.Name("type")),
		})
	}

	return props, nil
}

// Methods extracts method signatures from a declaration body. owner is the
// declaring type's name; methods named like it are constructors and skipped.
func (p *Parser) Methods(ctx context.Context, owner, body string) ([]MethodMember, error) {
	matches, err := p.matcher.FindAll(ctx, methodPattern, body)
	if err != nil {
		return nil, err
	}

	ownerName, _, _ := strings.Cut(owner, "<")

	var methods []MethodMember
	for _, m := range matches {
		name := m.Name("name")
		returnType := compactType(m.Name("type"))

		switch {
		case m.Name("skip") != "":
			continue
		case strings.EqualFold(name, ownerName):
			continue
		case controlKeywords[name] || returnType == "" || controlKeywords[returnType]:
			continue
		}

		params, err := p.Parameters(ctx, m.Name("params"))
		if err != nil {
			return nil, err
		}

		methods = append(methods, MethodMember{
			Visibility:       visibility(m.Captures["visibility"]),
			IsVirtual:        m.Name("modifier") == "virtual",
			IsAsync:          m.Name("async") != "",
			Name:             name,
			SourceReturnType: returnType,
			Parameters:       params,
		})
	}

	return methods, nil
}

// Parameters tokenizes a raw parameter list.
func (p *Parser) Parameters(ctx context.Context, raw string) ([]Parameter, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	matches, err := p.matcher.FindAll(ctx, parameterPattern, raw)
	if err != nil {
		return nil, err
	}

	params := make([]Parameter, 0, len(matches))
	for _, m := range matches {
		params = append(params, Parameter{
			Name:       m.Name("name"),
			SourceType: compactType(m.Name("type")),
			IsOptional: strings.TrimSpace(m.Name("default")) != "",
		})
	}

	if len(params) == 0 {
		log.Debug().Str("params", raw).Msg("Parameter list not recognized")
	}
	return params, nil
}

// visibility joins every visibility keyword a member carries. A member
// declared public in any position counts as public.
func visibility(words []string) string {
	for _, w := range words {
		if w == "public" {
			return "public"
		}
	}
	return strings.Join(words, " ")
}

// compactType collapses whitespace runs inside a type expression.
func compactType(t string) string {
	return strings.Join(strings.Fields(t), " ")
}
