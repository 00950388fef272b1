// Package router picks the target that serves a graph key.
package router

import "errors"

var ErrNoTargets = errors.New("router needs at least one target")

// Target is anything a router hands out and shuts down.
type Target interface {
	Shutdown()
}

type Router[T Target] interface {
	Route(key string) T
	All() []T
	Shutdown()
}
