// Package emitter renders extracted declarations as TypeScript.
package emitter

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"cs2ts/internal/parser"
	"cs2ts/internal/textutil"
	"cs2ts/internal/typemap"

	"github.com/rs/zerolog/log"
)

// Indent is the member indentation inside emitted bodies.
const Indent = "    "

var (
	asyncResultPattern = regexp.MustCompile(`^(?:[\w.]*\.)?(?:Task|ValueTask)\s*<(.+)>$`)
	bareAsyncPattern   = regexp.MustCompile(`^(?:[\w.]*\.)?(?:Task|ValueTask)$`)
	declKeywordPattern = regexp.MustCompile(`^(?:interface|enum|type)\b`)
)

// Emitter renders one conversion's declarations.
type Emitter struct {
	opts       Options
	parser     *parser.Parser
	translator *typemap.Translator
}

// New creates an emitter.
func New(opts Options, p *parser.Parser, translator *typemap.Translator) *Emitter {
	return &Emitter{opts: opts, parser: p, translator: translator}
}

// Interface renders a class, struct or interface as an interface declaration.
func (e *Emitter) Interface(ctx context.Context, decl parser.TypeDeclaration) (string, error) {
	isInterface := decl.Kind == parser.KindInterface

	var b strings.Builder
	b.WriteString("interface " + e.header(decl) + " {\n")

	props, err := e.properties(ctx, decl, isInterface)
	if err != nil {
		return "", err
	}
	for _, p := range props {
		b.WriteString(Indent)
		if p.IsReadOnly && !e.opts.StripReadOnly {
			b.WriteString("readonly ")
		}
		b.WriteString(p.Name)
		if p.IsOptional {
			b.WriteString("?")
		}
		b.WriteString(": " + p.TargetType + ";\n")
	}

	var methods []parser.MethodMember
	if !e.opts.IgnoreMethods {
		methods, err = e.methods(ctx, decl, isInterface)
		if err != nil {
			return "", err
		}
	}
	for _, m := range methods {
		args := make([]string, len(m.Parameters))
		for i, p := range m.Parameters {
			name := p.Name
			if p.IsOptional {
				name += "?"
			}
			args[i] = name + ": " + p.TargetType
		}
		b.WriteString(Indent + m.Name + "(" + strings.Join(args, ", ") + "): " + m.TargetReturnType + ";\n")
	}

	if resolve := e.opts.AdditionalInterfaceCodeResolver; resolve != nil {
		b.WriteString("\n" + Indent + resolve(Indent, decl.Name, props, methods) + "\n")
	}

	b.WriteString("}\n")

	log.Debug().
		Str("declaration", decl.Name).
		Int("properties", len(props)).
		Int("methods", len(methods)).
		Msg("Emitted interface")

	return b.String(), nil
}

func (e *Emitter) header(decl parser.TypeDeclaration) string {
	name := decl.Name
	base := decl.InheritsFrom

	if resolve := e.opts.InterfaceNameResolver; resolve != nil {
		name = resolve(name)
		if base != "" {
			base = resolve(base)
		}
	}
	if e.opts.PrefixWithI {
		name = "I" + name
		if base != "" {
			base = "I" + base
		}
	}

	if base == "" || e.opts.ignoresBase(decl.InheritsFrom, base) {
		return name
	}
	return name + " extends " + base
}

func (e *Emitter) properties(ctx context.Context, decl parser.TypeDeclaration, isInterface bool) ([]parser.PropertyMember, error) {
	found, err := e.parser.Properties(ctx, decl.BodyText)
	if err != nil {
		return nil, err
	}

	props := make([]parser.PropertyMember, 0, len(found))
	for _, p := range found {
		if !isInterface && !p.IsPublic() {
			continue
		}
		if e.opts.IgnoreVirtual && p.IsVirtual {
			continue
		}

		p.TargetType = e.translator.Resolve(p.SourceType, typemap.ScopeProperty)
		if resolve := e.opts.PropertyNameResolver; resolve != nil {
			p.Name = resolve(p.Name)
		}
		props = append(props, p)
	}
	return props, nil
}

func (e *Emitter) methods(ctx context.Context, decl parser.TypeDeclaration, isInterface bool) ([]parser.MethodMember, error) {
	found, err := e.parser.Methods(ctx, decl.Name, decl.BodyText)
	if err != nil {
		return nil, err
	}

	methods := make([]parser.MethodMember, 0, len(found))
	for _, m := range found {
		if !isInterface && !m.IsPublic() {
			continue
		}
		if e.opts.IgnoreVirtual && m.IsVirtual {
			continue
		}

		m.TargetReturnType = e.translator.Resolve(m.SourceReturnType, typemap.ScopeMethodReturn)
		if m.IsAsync {
			m.TargetReturnType = promise(m.TargetReturnType)
		}
		for i := range m.Parameters {
			m.Parameters[i].TargetType = e.translator.Resolve(m.Parameters[i].SourceType, typemap.ScopeMethodArgument)
		}
		if resolve := e.opts.MethodNameResolver; resolve != nil {
			m.Name = resolve(m.Name)
		}
		methods = append(methods, m)
	}
	return methods, nil
}

// promise rewrites an asynchronous result type as a Promise.
func promise(returnType string) string {
	if m := asyncResultPattern.FindStringSubmatch(returnType); m != nil {
		return "Promise<" + strings.TrimSpace(m[1]) + ">"
	}
	if bareAsyncPattern.MatchString(returnType) {
		return "Promise<void>"
	}
	return returnType
}

// Enum renders an enum as a numeric enum or, with UseStringUnionTypes, as a
// union of its entry names. declare adds the ambient qualifier.
func (e *Emitter) Enum(ctx context.Context, decl parser.TypeDeclaration, declare bool) (string, error) {
	entries, err := e.parser.EnumEntries(ctx, decl.BodyText)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if declare {
		b.WriteString("declare ")
	}

	if e.opts.UseStringUnionTypes {
		if len(entries) == 0 {
			b.WriteString("type " + decl.Name + " = never\n")
			return b.String(), nil
		}
		literals := make([]string, len(entries))
		for i, entry := range entries {
			literals[i] = Indent + "'" + entry.Name + "'"
		}
		b.WriteString("type " + decl.Name + " =\n" + strings.Join(literals, " |\n") + "\n")
		return b.String(), nil
	}

	b.WriteString("enum " + decl.Name + " {\n")
	if len(entries) > 0 {
		pairs := make([]string, len(entries))
		for i, entry := range entries {
			pairs[i] = Indent + entry.Name + " = " + strconv.FormatInt(entry.ResolvedValue, 10)
		}
		b.WriteString(strings.Join(pairs, ",\n") + "\n")
	}
	b.WriteString("}\n")

	return b.String(), nil
}

// WrapNamespace wraps converted output in a module block. Lines that start
// a declaration are exported; all lines are indented one level.
func WrapNamespace(result, namespace string, definitionFile bool) string {
	first := "declare module " + namespace + " {"
	if !definitionFile {
		first = "module " + namespace + " {"
	}

	body := strings.TrimSuffix(result, "\n")
	if body == "" {
		return first + "\n}"
	}

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if declKeywordPattern.MatchString(line) {
			lines[i] = "export " + line
		}
	}

	return first + "\n" + textutil.IndentLines(strings.Join(lines, "\n"), Indent) + "\n}"
}
