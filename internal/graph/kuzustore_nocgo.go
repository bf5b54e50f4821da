//go:build !cgo

package graph

import "context"

// OpenFileStore always fails in builds without cgo.
func OpenFileStore(_ context.Context, _ string) (Store, error) {
	return nil, ErrStoreUnavailable
}
