package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"cs2ts/internal/config"
	"cs2ts/internal/converter"
	"cs2ts/internal/filewalker"
	"cs2ts/internal/graph"
	"cs2ts/internal/parser"
	"cs2ts/internal/worker"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func graphCmd() *cobra.Command {
	var (
		subtypesOf string
		workers    int
	)

	cmd := &cobra.Command{
		Use:   "graph [input-dir]",
		Short: "Record the inheritance graph of a source tree in Neo4j",
		Long: `Extracts every declaration under [input-dir] and merges it into Neo4j with
an EXTENDS edge per base type. With --subtypes, lists the declarations that
extend the named type, nearest first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if input == "" && subtypesOf == "" {
				return errors.New("nothing to do: pass an input directory, --subtypes, or both")
			}
			return runGraph(cmd, input, subtypesOf, workers)
		},
	}

	cmd.Flags().StringVar(&subtypesOf, "subtypes", "", "List declarations extending this type")
	cmd.Flags().IntVar(&workers, "workers", 0, "Files extracted in parallel (default from WORKER_COUNT)")

	return cmd
}

// runGraph handles the `graph` command.
func runGraph(cmd *cobra.Command, inputDir, subtypesOf string, workers int) error {
	ctx, cancel := setupContext(cmd.Context())
	defer cancel()

	cfg := config.Load()
	if workers <= 0 {
		workers = cfg.WorkerCount
	}

	driver, err := connectNeo4j(ctx, cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	if inputDir != "" {
		builder := graph.NewGraphBuilder(driver)
		if err := builder.EnsureSchema(ctx); err != nil {
			return errors.Wrap(err, "ensure graph schema")
		}
		if err := recordTree(ctx, builder, inputDir, workers, cfg); err != nil {
			return err
		}
	}

	if subtypesOf != "" {
		subtypes, err := graph.NewGraphQuerier(driver).Subtypes(ctx, subtypesOf)
		if err != nil {
			return err
		}
		return printSubtypes(cmd.OutOrStdout(), subtypesOf, subtypes)
	}
	return nil
}

func recordTree(ctx context.Context, builder *graph.GraphBuilder, inputDir string, workers int, cfg *config.Config) error {
	entries, err := filewalker.NewWalker().Walk(inputDir)
	if err != nil {
		return errors.Wrap(err, "walk input directory")
	}

	extractPool := worker.NewPool[filewalker.FileEntry, []parser.TypeDeclaration](workers,
		func(ctx context.Context, entry filewalker.FileEntry) ([]parser.TypeDeclaration, error) {
			data, err := os.ReadFile(entry.Path)
			if err != nil {
				return nil, errors.Wrapf(err, "read %s", entry.Path)
			}
			return converter.Extract(ctx, string(data), cfg.MatchTimeout)
		},
	)
	results := extractPool.Execute(ctx, entries)

	declarations := 0
	for _, r := range results {
		if r.Err != nil {
			log.Error().Err(r.Err).Str("file", r.Input.Path).Msg("Extraction failed")
			continue
		}
		if len(r.Output) == 0 {
			continue
		}
		if err := builder.UpsertDeclarations(ctx, r.Input.Rel, r.Output); err != nil {
			return err
		}
		declarations += len(r.Output)
	}

	failed := worker.Failed(results)
	log.Info().
		Int("files", len(entries)).
		Int("failed", failed).
		Int("declarations", declarations).
		Msg("Graph build complete")

	if failed > 0 {
		return errors.Newf("%d of %d files failed", failed, len(entries))
	}
	return nil
}

func printSubtypes(w io.Writer, name string, subtypes []graph.Subtype) error {
	if len(subtypes) == 0 {
		_, err := fmt.Fprintf(w, "no declarations extend %s\n", name)
		return err
	}
	for _, s := range subtypes {
		kind := s.Kind
		if kind == "" {
			kind = "external"
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Depth, kind, s.Name, s.File); err != nil {
			return err
		}
	}
	return nil
}
