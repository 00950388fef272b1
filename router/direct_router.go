package router

// DirectRouter sends every key to the same target.
type DirectRouter[T Target] struct {
	target T
}

func NewDirectRouter[T Target](target T) *DirectRouter[T] {
	return &DirectRouter[T]{target: target}
}

func (r *DirectRouter[T]) Route(key string) T {
	return r.target
}

func (r *DirectRouter[T]) All() []T {
	return []T{r.target}
}

func (r *DirectRouter[T]) Shutdown() {
	r.target.Shutdown()
}
