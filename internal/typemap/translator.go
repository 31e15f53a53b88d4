// Package typemap translates source type expressions into target type
// expressions.
//
// Shapes are recognized with anchored RE2 patterns, which run in linear time,
// and generic argument lists are split by bracket depth, so nesting of any
// depth resolves by recursion.
package typemap

import (
	"regexp"
	"strings"

	"cs2ts/internal/textutil"
)

// Scope identifies where a type appears. Resolver hooks receive it.
type Scope string

const (
	ScopeNone           Scope = ""
	ScopeProperty       Scope = "property-type"
	ScopeMethodReturn   Scope = "method-return-type"
	ScopeMethodArgument Scope = "method-argument-type"
)

// Resolver is the caller's final-pass override for top-level types.
type Resolver func(resolved string, scope Scope) string

var (
	// genericPattern splits Name<Args> where Name may be namespace-qualified.
	genericPattern = regexp.MustCompile(`^([A-Za-z_][\w.]*)\s*<(.+)>$`)
	// arrayPattern matches a trailing [] (jagged arrays recurse).
	arrayPattern = regexp.MustCompile(`^(.+?)\s*\[\s*\]$`)
	// multiArrayPattern matches rectangular arrays such as int[,].
	multiArrayPattern = regexp.MustCompile(`^(.+?)\s*\[\s*,[\s,]*\]$`)
)

var dictionaryNames = map[string]bool{
	"Dictionary":           true,
	"IDictionary":          true,
	"IReadOnlyDictionary":  true,
	"SortedDictionary":     true,
	"ConcurrentDictionary": true,
}

var collectionNames = map[string]bool{
	"List":                 true,
	"IList":                true,
	"IEnumerable":          true,
	"ICollection":          true,
	"IReadOnlyList":        true,
	"IReadOnlyCollection":  true,
	"HashSet":              true,
	"ISet":                 true,
	"Queue":                true,
	"Stack":                true,
	"Collection":           true,
	"ObservableCollection": true,
}

// Translator resolves type expressions against one table.
type Translator struct {
	table    Table
	resolver Resolver
}

// NewTranslator creates a translator. resolver may be nil.
func NewTranslator(table Table, resolver Resolver) *Translator {
	if table == nil {
		table = NewTable(false)
	}
	return &Translator{table: table, resolver: resolver}
}

// Resolve translates expr. The resolver hook only runs when scope is set,
// so inner generic arguments are never passed to it.
func (t *Translator) Resolve(expr string, scope Scope) string {
	expr = strings.TrimSpace(expr)

	if target, ok := t.table.Lookup(expr); ok {
		return t.hook(target, scope)
	}

	return t.hook(t.structural(expr), scope)
}

func (t *Translator) hook(resolved string, scope Scope) string {
	if scope == ScopeNone || t.resolver == nil {
		return resolved
	}
	return t.resolver(resolved, scope)
}

func (t *Translator) structural(expr string) string {
	if m := genericPattern.FindStringSubmatch(expr); m != nil {
		if args, ok := SplitArguments(m[2]); ok {
			name := textutil.LastSegment(m[1])
			switch {
			case dictionaryNames[name] && len(args) == 2:
				return "{ [index: " + t.Resolve(args[0], ScopeNone) + "]: " + t.Resolve(args[1], ScopeNone) + " }"
			case collectionNames[name] && len(args) == 1:
				return t.Resolve(args[0], ScopeNone) + "[]"
			case name == "Nullable" && len(args) == 1:
				return t.Resolve(args[0], ScopeNone)
			}
		}
	}

	if m := arrayPattern.FindStringSubmatch(expr); m != nil {
		return t.Resolve(m[1], ScopeNone) + "[]"
	}
	if m := multiArrayPattern.FindStringSubmatch(expr); m != nil {
		return t.Resolve(m[1], ScopeNone) + "[]"
	}

	if m := genericPattern.FindStringSubmatch(expr); m != nil {
		if args, ok := SplitArguments(m[2]); ok {
			resolved := make([]string, len(args))
			for i, arg := range args {
				resolved[i] = t.Resolve(arg, ScopeNone)
			}
			return m[1] + "<" + strings.Join(resolved, ", ") + ">"
		}
	}

	if inner, ok := strings.CutSuffix(expr, "?"); ok && inner != "" {
		return t.Resolve(inner, ScopeNone)
	}

	return expr
}

// SplitArguments splits a generic argument list at top-level commas.
// It reports false when the brackets are unbalanced.
func SplitArguments(list string) ([]string, bool) {
	var args []string
	depth := 0
	start := 0

	for i, r := range list {
		switch r {
		case '<', '[', '(':
			depth++
		case '>', ']', ')':
			depth--
			if depth < 0 {
				return nil, false
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, false
	}

	args = append(args, strings.TrimSpace(list[start:]))
	for _, a := range args {
		if a == "" {
			return nil, false
		}
	}
	return args, true
}
