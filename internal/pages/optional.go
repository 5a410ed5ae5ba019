package pages

// Optional distinguishes "not provided" from a provided zero value.
// Form inputs use it so that an explicit empty string is typed as-is
// while an omitted field gets a generated default.
type Optional[T any] struct {
	value T
	set   bool
}

// Some wraps a provided value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// IsSet reports whether a value was provided.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was provided.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// OrElse returns the provided value, or the result of def.
func (o Optional[T]) OrElse(def func() T) T {
	if o.set {
		return o.value
	}
	return def()
}
