package parser

// Kind is the declaration keyword.
type Kind string

const (
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
)

// TypeDeclaration is one top-level declaration found in the source text.
type TypeDeclaration struct {
	// Kind is class, struct, interface or enum.
	Kind Kind
	// Name is the declared name including any generic parameter list.
	Name string
	// InheritsFrom is the first base type of the inheritance clause, or "".
	InheritsFrom string
	// InheritanceClause is the clause after ':' as written, trimmed.
	InheritanceClause string
	// BodyText is everything between the braces.
	BodyText string
	// Indent is the leading whitespace of the header line.
	Indent string
	// Line is the 1-based line of the header in the comment-stripped text.
	Line int
}

// Bases returns every base listed in the inheritance clause.
func (d TypeDeclaration) Bases() []string {
	return splitBases(d.InheritanceClause)
}

// PropertyMember is a field or property of a class, struct or interface.
type PropertyMember struct {
	// Visibility is the modifier as written ("public", "protected internal"), or "".
	Visibility string
	IsReadOnly bool
	IsOptional bool
	IsVirtual  bool
	Name       string
	SourceType string
	// TargetType is filled in by the emitter.
	TargetType string
}

// IsPublic reports whether the member is declared public.
func (p PropertyMember) IsPublic() bool {
	return p.Visibility == "public"
}

// Parameter is one method parameter.
type Parameter struct {
	Name       string
	SourceType string
	TargetType string
	// IsOptional is set for parameters with a default value.
	IsOptional bool
}

// MethodMember is a method signature.
type MethodMember struct {
	Visibility       string
	IsVirtual        bool
	IsAsync          bool
	Name             string
	SourceReturnType string
	TargetReturnType string
	Parameters       []Parameter
}

// IsPublic reports whether the method is declared public.
func (m MethodMember) IsPublic() bool {
	return m.Visibility == "public"
}

// EnumEntry is one enum member.
type EnumEntry struct {
	Name string
	// ExplicitValue is nil when the source omits the value.
	ExplicitValue *int64
	// ResolvedValue is the explicit value, or one past the previous entry.
	ResolvedValue int64
}
