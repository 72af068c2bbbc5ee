package prefs

import (
	"context"
	"fmt"

	"github.com/WessleyAI/wessley-catalog/pkg/config"
	"github.com/WessleyAI/wessley-catalog/pkg/natsutil"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Open connects the backend selected in cfg. On success the returned close
// function releases any connection and is never nil.
func Open(ctx context.Context, cfg *config.Config) (Store, func(context.Context), error) {
	switch cfg.Prefs.Backend {
	case config.BackendNATS:
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("catalog"))
		if err != nil {
			return nil, nil, fmt.Errorf("prefs: nats connect: %w", err)
		}
		kv, err := natsutil.OpenKV(ctx, nc, cfg.NATS.Bucket)
		if err != nil {
			nc.Close()
			return nil, nil, fmt.Errorf("prefs: %w", err)
		}
		return NewKV(kv, nc), func(context.Context) { nc.Drain() }, nil

	case config.BackendNeo4j:
		driver, err := neo4j.NewDriverWithContext(cfg.Neo4j.URL, neo4j.BasicAuth(cfg.Neo4j.User, cfg.Neo4j.Pass, ""))
		if err != nil {
			return nil, nil, fmt.Errorf("prefs: neo4j driver: %w", err)
		}
		if err := driver.VerifyConnectivity(ctx); err != nil {
			driver.Close(ctx)
			return nil, nil, fmt.Errorf("prefs: neo4j connectivity: %w", err)
		}
		return NewGraph(driver), func(ctx context.Context) { driver.Close(ctx) }, nil

	case config.BackendMemory, "":
		return NewMemory(), func(context.Context) {}, nil
	}
	return nil, nil, fmt.Errorf("prefs: unknown backend %q", cfg.Prefs.Backend)
}
