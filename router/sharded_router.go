package router

import (
	"hash/fnv"

	"github.com/dgryski/go-jump"
)

// ShardedRouter spreads keys over its targets with jump consistent hashing.
// A key always maps to the same target.
type ShardedRouter[T Target] struct {
	targets []T
}

func NewShardedRouter[T Target](targets ...T) (*ShardedRouter[T], error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	return &ShardedRouter[T]{targets: targets}, nil
}

func stringToUint64(s string) uint64 {
	hasher := fnv.New64a()
	hasher.Write([]byte(s))
	return hasher.Sum64()
}

func (r *ShardedRouter[T]) Route(key string) T {
	i := jump.Hash(stringToUint64(key), len(r.targets))
	return r.targets[i]
}

func (r *ShardedRouter[T]) All() []T {
	return r.targets
}

func (r *ShardedRouter[T]) Shutdown() {
	for _, t := range r.targets {
		t.Shutdown()
	}
}
