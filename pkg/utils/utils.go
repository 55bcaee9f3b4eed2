package utils

// Map applies f to each element of s and collects the results.
func Map[T any, R any](s []T, f func(T) R) []R {
	ret := make([]R, len(s))
	for i, v := range s {
		ret[i] = f(v)
	}
	return ret
}

// ApplyAll applies each function in fs to v, in order.
//
// F is constrained by underlying type so named option types spread into it
// directly.
func ApplyAll[T any, F ~func(T) T](v T, fs ...F) T {
	for _, f := range fs {
		v = f(v)
	}
	return v
}

// First returns the first element of s satisfying pred.
func First[T any](s []T, pred func(T) bool) (T, bool) {
	for _, v := range s {
		if pred(v) {
			return v, true
		}
	}
	return *new(T), false
}
