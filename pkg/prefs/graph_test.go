package prefs

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

type fakeResult struct {
	records []*neo4j.Record
	pos     int
	err     error
}

func (r *fakeResult) Next(context.Context) bool {
	if r.pos >= len(r.records) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeResult) Record() *neo4j.Record { return r.records[r.pos-1] }
func (r *fakeResult) Err() error            { return r.err }

type fakeRunner struct {
	res    *fakeResult
	runErr error
	cypher string
	params map[string]any
	closed bool
}

func (f *fakeRunner) Run(_ context.Context, cypher string, params map[string]any) (result, error) {
	f.cypher, f.params = cypher, params
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.res, nil
}

func (f *fakeRunner) Close(context.Context) error { f.closed = true; return nil }

func graphWith(r *fakeRunner) *Graph {
	return &Graph{newSession: func(context.Context) runner { return r }}
}

func valueRecord(v any) *neo4j.Record {
	return &neo4j.Record{Keys: []string{"value"}, Values: []any{v}}
}

func TestGraphGet(t *testing.T) {
	r := &fakeRunner{res: &fakeResult{records: []*neo4j.Record{valueRecord("3")}}}
	v, ok, err := graphWith(r).Get(context.Background(), PreferredManufacturer)
	if err != nil || !ok || v != "3" {
		t.Fatalf("got %q ok=%v err=%v", v, ok, err)
	}
	if r.cypher != getCypher || r.params["key"] != PreferredManufacturer {
		t.Fatalf("unexpected query %q %v", r.cypher, r.params)
	}
	if !r.closed {
		t.Fatal("session not closed")
	}
}

func TestGraphGetMissing(t *testing.T) {
	r := &fakeRunner{res: &fakeResult{}}
	if _, ok, err := graphWith(r).Get(context.Background(), "k"); ok || err != nil {
		t.Fatalf("expected absent, got ok=%v err=%v", ok, err)
	}

	r = &fakeRunner{res: &fakeResult{records: []*neo4j.Record{valueRecord(nil)}}}
	if _, ok, err := graphWith(r).Get(context.Background(), "k"); ok || err != nil {
		t.Fatalf("null value should be absent, got ok=%v err=%v", ok, err)
	}
}

func TestGraphGetErrors(t *testing.T) {
	boom := errors.New("boom")
	ctx := context.Background()

	if _, _, err := graphWith(&fakeRunner{runErr: boom}).Get(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("expected run error, got %v", err)
	}
	if _, _, err := graphWith(&fakeRunner{res: &fakeResult{err: boom}}).Get(ctx, "k"); !errors.Is(err, boom) {
		t.Fatalf("expected result error, got %v", err)
	}
	r := &fakeRunner{res: &fakeResult{records: []*neo4j.Record{valueRecord(int64(3))}}}
	if _, _, err := graphWith(r).Get(ctx, "k"); err == nil {
		t.Fatal("expected type error for non-string value")
	}
}

func TestGraphSet(t *testing.T) {
	r := &fakeRunner{res: &fakeResult{}}
	if err := graphWith(r).Set(context.Background(), PreferredManufacturer, "7"); err != nil {
		t.Fatal(err)
	}
	if r.cypher != setCypher || r.params["value"] != "7" || r.params["key"] != PreferredManufacturer {
		t.Fatalf("unexpected query %q %v", r.cypher, r.params)
	}

	boom := errors.New("boom")
	if err := graphWith(&fakeRunner{runErr: boom}).Set(context.Background(), "k", "v"); !errors.Is(err, boom) {
		t.Fatalf("expected run error, got %v", err)
	}
	if err := graphWith(&fakeRunner{res: &fakeResult{err: boom}}).Set(context.Background(), "k", "v"); !errors.Is(err, boom) {
		t.Fatalf("expected result error, got %v", err)
	}
}
