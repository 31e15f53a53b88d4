package graph

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Subtype is a declaration that extends a queried type directly or
// transitively.
type Subtype struct {
	Name  string
	Kind  string
	File  string
	Depth int64
}

// GraphQuerier reads the declaration graph.
type GraphQuerier struct {
	driver neo4j.DriverWithContext
}

// NewGraphQuerier creates a new graph querier.
func NewGraphQuerier(driver neo4j.DriverWithContext) *GraphQuerier {
	return &GraphQuerier{driver: driver}
}

// Subtypes returns every declaration that extends name, nearest first.
func (gq *GraphQuerier) Subtypes(ctx context.Context, name string) ([]Subtype, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH path = (d:Declaration)-[:EXTENDS*1..]->(:Declaration {name: $name})
		RETURN d.name AS name, d.kind AS kind, d.file AS file, min(length(path)) AS depth
		ORDER BY depth, name
	`, map[string]any{"name": NodeName(name)})
	if err != nil {
		return nil, errors.Wrap(err, "query subtypes")
	}

	var subtypes []Subtype
	for result.Next(ctx) {
		record := result.Record()
		subtypes = append(subtypes, subtypeFromValues(
			valueOf(record, "name"),
			valueOf(record, "kind"),
			valueOf(record, "file"),
			valueOf(record, "depth"),
		))
	}
	if err := result.Err(); err != nil {
		return nil, errors.Wrap(err, "read subtypes")
	}

	log.Debug().Str("type", name).Int("subtypes", len(subtypes)).Msg("Graph query complete")
	return subtypes, nil
}

func valueOf(record *neo4j.Record, key string) any {
	v, _ := record.Get(key)
	return v
}

// subtypeFromValues converts raw record values. Kind and file are absent on
// bases that were never declared in a scanned file.
func subtypeFromValues(name, kind, file, depth any) Subtype {
	s := Subtype{Name: fmt.Sprintf("%v", name)}
	if kind != nil {
		s.Kind = fmt.Sprintf("%v", kind)
	}
	if file != nil {
		s.File = fmt.Sprintf("%v", file)
	}
	if d, ok := depth.(int64); ok {
		s.Depth = d
	}
	return s
}
