// Package converter drives a whole source-to-declarations conversion.
package converter

import (
	"context"
	"strings"
	"time"

	"cs2ts/internal/emitter"
	"cs2ts/internal/parser"
	"cs2ts/internal/safematch"
	"cs2ts/internal/typemap"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

// Convert translates source text into TypeScript declarations. Each call
// builds its own translation table, so concurrent calls with different
// options do not affect each other. The only failure is a pattern match that
// exceeds opts.Timeout, or cancellation of ctx.
func Convert(ctx context.Context, source string, opts Options) (string, error) {
	p := parser.New(safematch.New(opts.Timeout))

	table := typemap.NewTable(opts.DateTimeToDate).With(opts.CustomTypeTranslations)
	em := emitter.New(opts.Options, p, typemap.NewTranslator(table, opts.TypeResolver))

	decls, err := p.Declarations(ctx, parser.StripComments(source))
	if err != nil {
		return "", wrapMatchError(err, "extract declarations", opts.Timeout)
	}

	var parts []string
	for _, decl := range decls {
		var (
			text string
			err  error
		)

		switch decl.Kind {
		case parser.KindClass, parser.KindStruct:
			text, err = em.Interface(ctx, decl)
		case parser.KindInterface:
			if !opts.IncludeInterfaces {
				continue
			}
			text, err = em.Interface(ctx, decl)
		case parser.KindEnum:
			text, err = em.Enum(ctx, decl, opts.BaseNamespace == "")
		}
		if err != nil {
			return "", wrapMatchError(err, "convert "+string(decl.Kind)+" "+decl.Name, opts.Timeout)
		}

		parts = append(parts, text)
	}

	result := strings.Join(parts, "\n")
	if opts.BaseNamespace != "" {
		result = emitter.WrapNamespace(result, opts.BaseNamespace, opts.IsDefinitionFile())
	}

	log.Debug().
		Int("declarations", len(decls)).
		Int("emitted", len(parts)).
		Msg("Converted source")

	return result, nil
}

// Extract returns the top-level declarations of source without emitting them.
func Extract(ctx context.Context, source string, timeout time.Duration) ([]parser.TypeDeclaration, error) {
	p := parser.New(safematch.New(timeout))

	decls, err := p.Declarations(ctx, parser.StripComments(source))
	if err != nil {
		return nil, wrapMatchError(err, "extract declarations", timeout)
	}
	return decls, nil
}

func wrapMatchError(err error, action string, timeout time.Duration) error {
	err = errors.Wrap(err, action)
	if errors.Is(err, safematch.ErrPatternTimeout) {
		if timeout <= 0 {
			timeout = safematch.DefaultTimeout
		}
		return errors.WithHintf(err, "the input may trigger excessive backtracking; retry with a timeout above %s or reject the input", timeout)
	}
	return err
}
