package prefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WessleyAI/wessley-catalog/pkg/natsutil"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// ChangedSubject receives a Change after every successful KV write.
const ChangedSubject = "catalog.preferences.changed"

// Change is the event published when a preference is written.
type Change struct {
	Key   string    `json:"key"`
	Value string    `json:"value"`
	At    time.Time `json:"at"`
}

// bucket is the subset of jetstream.KeyValue the store needs.
type bucket interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
}

// KV is a Store backed by a NATS JetStream key-value bucket.
type KV struct {
	b       bucket
	publish func(context.Context, Change) error
	now     func() time.Time
}

// NewKV wraps a JetStream bucket. When nc is non-nil every write is also
// announced on ChangedSubject.
func NewKV(kv jetstream.KeyValue, nc *nats.Conn) *KV {
	s := &KV{b: kv, now: time.Now}
	if nc != nil {
		s.publish = func(ctx context.Context, c Change) error {
			return natsutil.Publish(ctx, nc, ChangedSubject, c)
		}
	}
	return s
}

func (s *KV) Get(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.b.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("prefs: kv get %s: %w", key, err)
	}
	return string(entry.Value()), true, nil
}

// Set writes the value. A failed change announcement is returned after the
// value has already been stored.
func (s *KV) Set(ctx context.Context, key, value string) error {
	if _, err := s.b.Put(ctx, key, []byte(value)); err != nil {
		return fmt.Errorf("prefs: kv put %s: %w", key, err)
	}
	if s.publish == nil {
		return nil
	}
	if err := s.publish(ctx, Change{Key: key, Value: value, At: s.now()}); err != nil {
		return fmt.Errorf("prefs: announce %s: %w", key, err)
	}
	return nil
}
