package converter

import (
	"encoding/json"
	"time"

	"cs2ts/internal/emitter"
	"cs2ts/internal/textutil"
	"cs2ts/internal/typemap"
)

// Options configures one conversion.
type Options struct {
	emitter.Options

	// IncludeInterfaces also emits source interface declarations.
	IncludeInterfaces bool
	// DateTimeToDate maps timestamp types to Date instead of string.
	DateTimeToDate bool
	// CustomTypeTranslations are merged into the scalar table for this call.
	CustomTypeTranslations map[string]string
	// TypeResolver is applied to every top-level property, return and
	// argument type.
	TypeResolver typemap.Resolver

	// BaseNamespace wraps the output in a module block when set.
	BaseNamespace string
	// DefinitionFile selects the ambient "declare module" form. Only an
	// explicit false selects a plain module.
	DefinitionFile *bool

	// Timeout bounds each pattern match loop. Zero means 30s.
	Timeout time.Duration

	// HookID names the hook functions in use, e.g. "property=camel". Hooks
	// cannot be compared, so callers that cache output must set it to tell
	// different hooks apart.
	HookID string
}

// IsDefinitionFile reports whether the output is an ambient declaration file.
func (o Options) IsDefinitionFile() bool {
	return o.DefinitionFile == nil || *o.DefinitionFile
}

// Fingerprint identifies the options for caching. Hook functions contribute
// their presence and HookID.
func (o Options) Fingerprint() string {
	view := struct {
		IncludeInterfaces   bool
		IgnoreInheritance   bool
		IgnoreInheritanceOf []string
		IgnoreVirtual       bool
		IgnoreMethods       bool
		StripReadOnly       bool
		PrefixWithI         bool
		UseStringUnionTypes bool
		DateTimeToDate      bool
		Custom              map[string]string
		BaseNamespace       string
		DefinitionFile      bool
		Hooks               [5]bool
		HookID              string
	}{
		IncludeInterfaces:   o.IncludeInterfaces,
		IgnoreInheritance:   o.IgnoreInheritance,
		IgnoreInheritanceOf: o.IgnoreInheritanceOf,
		IgnoreVirtual:       o.IgnoreVirtual,
		IgnoreMethods:       o.IgnoreMethods,
		StripReadOnly:       o.StripReadOnly,
		PrefixWithI:         o.PrefixWithI,
		UseStringUnionTypes: o.UseStringUnionTypes,
		DateTimeToDate:      o.DateTimeToDate,
		Custom:              o.CustomTypeTranslations,
		BaseNamespace:       o.BaseNamespace,
		DefinitionFile:      o.IsDefinitionFile(),
		Hooks: [5]bool{
			o.TypeResolver != nil,
			o.PropertyNameResolver != nil,
			o.MethodNameResolver != nil,
			o.InterfaceNameResolver != nil,
			o.AdditionalInterfaceCodeResolver != nil,
		},
		HookID: o.HookID,
	}

	// Maps marshal with sorted keys, so equal options hash equally.
	data, _ := json.Marshal(view)
	return textutil.Hash(string(data))
}
