package emitter

import (
	"cs2ts/internal/parser"
)

// NameResolver renames an emitted identifier.
type NameResolver func(name string) string

// CodeResolver returns extra body text for an interface. It receives the
// member indentation, the declaration's source name and the members as
// they were emitted.
type CodeResolver func(indent, originalName string, props []parser.PropertyMember, methods []parser.MethodMember) string

// Options controls how declarations are rendered.
type Options struct {
	// IgnoreInheritance drops every base clause.
	IgnoreInheritance bool
	// IgnoreInheritanceOf drops only the listed bases.
	IgnoreInheritanceOf []string

	IgnoreVirtual       bool
	IgnoreMethods       bool
	StripReadOnly       bool
	PrefixWithI         bool
	UseStringUnionTypes bool

	PropertyNameResolver  NameResolver
	MethodNameResolver    NameResolver
	InterfaceNameResolver NameResolver

	AdditionalInterfaceCodeResolver CodeResolver
}

// ignoresBase reports whether a base must be left out of the header. Both
// the source spelling and the resolved one are checked.
func (o Options) ignoresBase(original, resolved string) bool {
	if o.IgnoreInheritance {
		return true
	}
	for _, name := range o.IgnoreInheritanceOf {
		if name == original || name == resolved {
			return true
		}
	}
	return false
}
