// Package datastore is the public CRUD and query surface on top of the
// storage adapter: item lifecycle, tag resolution and frecency, visits,
// settings, and stats. Every public operation returns a uniform Result
// shape instead of panicking, per the service's never-panic contract.
package datastore

// Result is the uniform shape every public datastore operation returns.
type Result[T any] struct {
	Success bool
	Data    T
	Err     error
}

// Ok wraps a successful result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail wraps a failed result. Data is the zero value of T.
func Fail[T any](err error) Result[T] {
	var zero T
	return Result[T]{Success: false, Data: zero, Err: err}
}
