package config

import (
	"fmt"
	"strings"
	"time"

	"cs2ts/internal/converter"
	"cs2ts/internal/emitter"
	"cs2ts/internal/textutil"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides of option keys, e.g.
// CS2TS_USESTRINGUNIONTYPES=true.
const EnvPrefix = "CS2TS"

// TypeTranslation is one custom scalar mapping. The file lists pairs rather
// than a map because option keys are case-insensitive and type names are not.
type TypeTranslation struct {
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
}

// Options is the conversion options file.
type Options struct {
	IncludeInterfaces      bool              `mapstructure:"includeInterfaces"`
	IgnoreInheritance      bool              `mapstructure:"ignoreInheritance"`
	IgnoreInheritanceOf    []string          `mapstructure:"ignoreInheritanceOf"`
	IgnoreVirtual          bool              `mapstructure:"ignoreVirtual"`
	IgnoreMethods          bool              `mapstructure:"ignoreMethods"`
	StripReadOnly          bool              `mapstructure:"stripReadOnly"`
	DateTimeToDate         bool              `mapstructure:"dateTimeToDate"`
	CustomTypeTranslations []TypeTranslation `mapstructure:"customTypeTranslations"`
	PrefixWithI            bool              `mapstructure:"prefixWithI"`
	BaseNamespace          string            `mapstructure:"baseNamespace"`
	DefinitionFile         bool              `mapstructure:"definitionFile"`
	UseStringUnionTypes    bool              `mapstructure:"useStringUnionTypes"`
	// TimeoutMS is the per-match budget; 0 defers to MATCH_TIMEOUT_MS.
	TimeoutMS int `mapstructure:"timeout"`

	// PropertyNameCase and MethodNameCase select a renaming hook:
	// "camel", "pascal" or "" for none.
	PropertyNameCase string `mapstructure:"propertyNameCase"`
	MethodNameCase   string `mapstructure:"methodNameCase"`
	// StripNamespaces drops dotted prefixes from interface and base names.
	StripNamespaces bool `mapstructure:"stripNamespaces"`
}

// SetDefaults registers every option key so environment overrides apply
// even when the file omits the key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("includeInterfaces", false)
	v.SetDefault("ignoreInheritance", false)
	v.SetDefault("ignoreInheritanceOf", []string{})
	v.SetDefault("ignoreVirtual", false)
	v.SetDefault("ignoreMethods", false)
	v.SetDefault("stripReadOnly", false)
	v.SetDefault("dateTimeToDate", false)
	v.SetDefault("customTypeTranslations", []map[string]string{})
	v.SetDefault("prefixWithI", false)
	v.SetDefault("baseNamespace", "")
	v.SetDefault("definitionFile", true)
	v.SetDefault("useStringUnionTypes", false)
	v.SetDefault("timeout", 0)
	v.SetDefault("propertyNameCase", "")
	v.SetDefault("methodNameCase", "")
	v.SetDefault("stripNamespaces", false)
}

// LoadOptions reads the options file at path (YAML, TOML or JSON by
// extension) with CS2TS_ environment overrides. An empty path reads
// defaults and environment only.
func LoadOptions(path string) (*Options, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read options file %s", path)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return nil, errors.Wrap(err, "decode options")
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// Validate checks the hook selectors.
func (o *Options) Validate() error {
	for key, value := range map[string]string{
		"propertyNameCase": o.PropertyNameCase,
		"methodNameCase":   o.MethodNameCase,
	} {
		if _, err := nameCase(value); err != nil {
			return errors.Wrapf(err, "option %s", key)
		}
	}
	for i, tt := range o.CustomTypeTranslations {
		if tt.Source == "" || tt.Target == "" {
			return errors.Newf("option customTypeTranslations[%d]: source and target are required", i)
		}
	}
	return nil
}

// Converter builds converter options. fallbackTimeout applies when the file
// sets no timeout.
func (o *Options) Converter(fallbackTimeout time.Duration) converter.Options {
	definitionFile := o.DefinitionFile

	out := converter.Options{
		Options: emitter.Options{
			IgnoreInheritance:   o.IgnoreInheritance,
			IgnoreInheritanceOf: o.IgnoreInheritanceOf,
			IgnoreVirtual:       o.IgnoreVirtual,
			IgnoreMethods:       o.IgnoreMethods,
			StripReadOnly:       o.StripReadOnly,
			PrefixWithI:         o.PrefixWithI,
			UseStringUnionTypes: o.UseStringUnionTypes,
		},
		IncludeInterfaces: o.IncludeInterfaces,
		DateTimeToDate:    o.DateTimeToDate,
		BaseNamespace:     o.BaseNamespace,
		DefinitionFile:    &definitionFile,
		Timeout:           fallbackTimeout,
	}

	if o.TimeoutMS > 0 {
		out.Timeout = time.Duration(o.TimeoutMS) * time.Millisecond
	}

	if len(o.CustomTypeTranslations) > 0 {
		out.CustomTypeTranslations = make(map[string]string, len(o.CustomTypeTranslations))
		for _, tt := range o.CustomTypeTranslations {
			out.CustomTypeTranslations[tt.Source] = tt.Target
		}
	}

	// Validate has already rejected unknown selectors.
	out.PropertyNameResolver, _ = nameCase(o.PropertyNameCase)
	out.MethodNameResolver, _ = nameCase(o.MethodNameCase)
	if o.StripNamespaces {
		out.InterfaceNameResolver = StripNamespace
	}
	out.HookID = o.hookID()

	return out
}

// hookID names the selected hooks so cached output is keyed by them.
func (o *Options) hookID() string {
	return fmt.Sprintf("property=%s;method=%s;stripNamespaces=%t",
		strings.ToLower(o.PropertyNameCase), strings.ToLower(o.MethodNameCase), o.StripNamespaces)
}

func nameCase(name string) (emitter.NameResolver, error) {
	switch strings.ToLower(name) {
	case "":
		return nil, nil
	case "camel":
		return textutil.ToCamelCase, nil
	case "pascal":
		return textutil.ToPascalCase, nil
	default:
		return nil, errors.Newf("unknown name case %q", name)
	}
}

// StripNamespace removes the dotted prefix of a name, leaving generic
// arguments untouched: "Models.Page<Models.Item>" -> "Page<Models.Item>".
func StripNamespace(name string) string {
	head, args, generic := strings.Cut(name, "<")
	head = textutil.LastSegment(head)
	if generic {
		return head + "<" + args
	}
	return head
}
