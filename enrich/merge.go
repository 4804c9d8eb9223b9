package enrich

import "reflect"

// FirstPresent returns a when it holds a value, otherwise b. Empty strings,
// empty slices and maps, nil pointers and zero values count as absent; a
// pointer to false is present.
func FirstPresent[T any](a, b T) T {
	if present(a) {
		return a
	}
	return b
}

// FirstPresentFunc is FirstPresent with a lazily computed fallback.
func FirstPresentFunc[T any](a T, b func() T) T {
	if present(a) {
		return a
	}
	return b()
}

func present[T any](v T) bool {
	rv := reflect.ValueOf(&v).Elem()
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	default:
		return !rv.IsZero()
	}
}
