package prefs

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// result is the minimal interface needed from a neo4j result.
type result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// runner is the minimal interface needed from a neo4j session.
type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (result, error)
	Close(ctx context.Context) error
}

const (
	getCypher = `MATCH (p:Preference {key: $key}) RETURN p.value AS value`
	setCypher = `MERGE (p:Preference {key: $key}) SET p.value = $value, p.updatedAt = datetime()`
)

// Graph is a Store keeping each preference as a (:Preference {key, value})
// node in Neo4j.
type Graph struct {
	driver     neo4j.DriverWithContext
	newSession func(ctx context.Context) runner // for testing
}

// NewGraph creates a Neo4j-backed store.
func NewGraph(driver neo4j.DriverWithContext) *Graph {
	return &Graph{driver: driver}
}

// neo4jSessionAdapter adapts neo4j.SessionWithContext to the runner interface.
type neo4jSessionAdapter struct {
	sess neo4j.SessionWithContext
}

func (a *neo4jSessionAdapter) Run(ctx context.Context, cypher string, params map[string]any) (result, error) {
	return a.sess.Run(ctx, cypher, params)
}

func (a *neo4jSessionAdapter) Close(ctx context.Context) error {
	return a.sess.Close(ctx)
}

func (g *Graph) session(ctx context.Context) runner {
	if g.newSession != nil {
		return g.newSession(ctx)
	}
	return &neo4jSessionAdapter{sess: g.driver.NewSession(ctx, neo4j.SessionConfig{})}
}

func (g *Graph) Get(ctx context.Context, key string) (string, bool, error) {
	sess := g.session(ctx)
	defer sess.Close(ctx)

	res, err := sess.Run(ctx, getCypher, map[string]any{"key": key})
	if err != nil {
		return "", false, fmt.Errorf("prefs: graph get %s: %w", key, err)
	}
	if !res.Next(ctx) {
		if err := res.Err(); err != nil {
			return "", false, fmt.Errorf("prefs: graph get %s: %w", key, err)
		}
		return "", false, nil
	}
	raw, ok := res.Record().Get("value")
	if !ok || raw == nil {
		return "", false, nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", false, fmt.Errorf("prefs: graph get %s: unexpected value type %T", key, raw)
	}
	return v, true, nil
}

func (g *Graph) Set(ctx context.Context, key, value string) error {
	sess := g.session(ctx)
	defer sess.Close(ctx)

	res, err := sess.Run(ctx, setCypher, map[string]any{"key": key, "value": value})
	if err != nil {
		return fmt.Errorf("prefs: graph set %s: %w", key, err)
	}
	for res.Next(ctx) {
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("prefs: graph set %s: %w", key, err)
	}
	return nil
}
