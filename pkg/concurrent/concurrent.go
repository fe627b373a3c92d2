package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/zecs/pkg/sequence"
)

// Concurrent runs action for every element of i, at most limit at a time
// (limit <= 0 means unbounded), and waits for all of them. The first failure
// cancels the context handed to the remaining actions, stops scheduling new
// ones and is returned.
func Concurrent[T any](ctx context.Context, i *sequence.Iterator[T], limit int, action func(context.Context, T) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}

	for value := range i.Seq() {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			return action(groupCtx, value)
		})
	}
	return group.Wait()
}
