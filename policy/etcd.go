package policy

import (
	"context"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// EtcdConfig configures an etcd-backed policy source.
type EtcdConfig struct {
	// Endpoints are the etcd cluster endpoints (e.g., "localhost:2379").
	Endpoints []string

	// Key is the etcd key holding the policy YAML document.
	// Defaults to "riskgraph/policy".
	Key string

	// DialTimeout bounds connection establishment. Defaults to 5s.
	DialTimeout time.Duration
}

// EtcdSource loads and watches a Policy stored as YAML under a single
// etcd key, so every threshold in the engine is adjustable at runtime
// without a redeploy. Runs still capture the policy once at start;
// updates apply to subsequent runs only.
//
// Example usage:
//
//	src, err := policy.NewEtcdSource(policy.EtcdConfig{
//	    Endpoints: []string{"localhost:2379"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer src.Close()
//
//	pol, err := src.Load(ctx)
type EtcdSource struct {
	client *clientv3.Client
	key    string
}

// NewEtcdSource connects to the etcd cluster and returns a policy source.
// The source must be closed with Close() when no longer needed.
func NewEtcdSource(cfg EtcdConfig) (*EtcdSource, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints cannot be empty")
	}
	key := cfg.Key
	if key == "" {
		key = "riskgraph/policy"
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}
	return &EtcdSource{client: cli, key: key}, nil
}

// Load fetches and parses the current policy. Returns the default policy
// and an error when the key is absent or the document is invalid.
func (s *EtcdSource) Load(ctx context.Context) (Policy, error) {
	resp, err := s.client.Get(ctx, s.key)
	if err != nil {
		return Default(), fmt.Errorf("failed to fetch policy from etcd: %w", err)
	}
	if len(resp.Kvs) == 0 {
		return Default(), fmt.Errorf("policy key %q not found", s.key)
	}
	pol, err := Parse(resp.Kvs[0].Value)
	if err != nil {
		return Default(), fmt.Errorf("policy key %q: %w", s.key, err)
	}
	return pol, nil
}

// Watch streams policy updates until the context is cancelled. Invalid
// documents are skipped rather than delivered, so a bad write cannot push
// a broken policy into subsequent runs.
func (s *EtcdSource) Watch(ctx context.Context) <-chan Policy {
	out := make(chan Policy)
	watchCh := s.client.Watch(ctx, s.key)

	go func() {
		defer close(out)
		for resp := range watchCh {
			if resp.Err() != nil {
				return
			}
			for _, ev := range resp.Events {
				if ev.Type != clientv3.EventTypePut {
					continue
				}
				pol, err := Parse(ev.Kv.Value)
				if err != nil {
					continue
				}
				select {
				case out <- pol:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Close releases the etcd connection.
func (s *EtcdSource) Close() error {
	return s.client.Close()
}
