package graph

import (
	"context"
	"strings"

	"cs2ts/internal/parser"
	"cs2ts/internal/textutil"

	"github.com/cockroachdb/errors"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// GraphBuilder records declarations and their inheritance in Neo4j.
type GraphBuilder struct {
	driver neo4j.DriverWithContext
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(driver neo4j.DriverWithContext) *GraphBuilder {
	return &GraphBuilder{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (d:Declaration) REQUIRE d.name IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return errors.Wrap(err, "create constraint")
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// UpsertDeclarations merges a file's declarations and an EXTENDS edge for
// every base in their inheritance clauses.
func (gb *GraphBuilder) UpsertDeclarations(ctx context.Context, file string, decls []parser.TypeDeclaration) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	edges := 0
	for _, d := range decls {
		_, err := session.Run(ctx, `
			MERGE (d:Declaration {name: $name})
			SET d.kind = $kind,
			    d.declared = $declared,
			    d.file = $file,
			    d.line = $line
		`, declarationParams(file, d))
		if err != nil {
			return errors.Wrapf(err, "upsert declaration %s", d.Name)
		}

		for _, params := range extendsParams(d) {
			_, err := session.Run(ctx, `
				MATCH (d:Declaration {name: $from})
				MERGE (b:Declaration {name: $to})
				MERGE (d)-[r:EXTENDS]->(b)
				SET r.position = $position
			`, params)
			if err != nil {
				log.Warn().Err(err).
					Str("from", d.Name).
					Str("to", params["to"].(string)).
					Msg("Failed to create inheritance edge")
				continue
			}
			edges++
		}
	}

	log.Info().
		Str("file", file).
		Int("declarations", len(decls)).
		Int("edges", edges).
		Msg("Recorded declarations")
	return nil
}

// NodeName is the graph identity of a type: its last dotted segment
// without generic arguments.
func NodeName(name string) string {
	head, _, _ := strings.Cut(name, "<")
	return textutil.LastSegment(strings.TrimSpace(head))
}

func declarationParams(file string, d parser.TypeDeclaration) map[string]any {
	return map[string]any{
		"name":     NodeName(d.Name),
		"kind":     string(d.Kind),
		"declared": d.Name,
		"file":     file,
		"line":     int64(d.Line),
	}
}

func extendsParams(d parser.TypeDeclaration) []map[string]any {
	bases := d.Bases()
	params := make([]map[string]any, 0, len(bases))
	for i, base := range bases {
		params = append(params, map[string]any{
			"from":     NodeName(d.Name),
			"to":       NodeName(base),
			"position": int64(i),
		})
	}
	return params
}
