// Package static holds small process-lifetime helpers.
package static

import "sync"

// CreateOnce wraps a fallible constructor so that it runs at most once; every
// call returns the same value and error.
func CreateOnce[T any](creator func() (T, error)) func() (T, error) {
	var value T
	var err error
	var once sync.Once

	return func() (T, error) {
		once.Do(func() {
			value, err = creator()
		})

		return value, err
	}
}
