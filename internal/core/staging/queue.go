package staging

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/pkg/concurrent"
	"github.com/zeusync/zecs/pkg/sequence"
)

// Command is a scene mutation prepared off the simulation goroutine.
type Command func(s *ecs.Scene) error

// Queue hands work from background goroutines to the goroutine that owns a
// scene. Push is safe from any goroutine; Drain must only be called by the
// scene owner, between frames.
type Queue struct {
	mu       sync.Mutex
	commands []Command
	spare    []Command
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push enqueues commands in order.
func (q *Queue) Push(commands ...Command) {
	q.mu.Lock()
	q.commands = append(q.commands, commands...)
	q.mu.Unlock()
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}

// Drain applies every pending command to s in push order. A failing command
// does not stop the rest; all errors are returned together.
func (q *Queue) Drain(s *ecs.Scene) (int, error) {
	q.mu.Lock()
	pending := q.commands
	q.commands = q.spare[:0]
	q.spare = nil
	q.mu.Unlock()

	var err error
	for i, cmd := range pending {
		if cmdErr := cmd(s); cmdErr != nil {
			err = multierr.Append(err, fmt.Errorf("staged command %d: %w", i, cmdErr))
		}
	}
	applied := len(pending)

	clear(pending)
	q.mu.Lock()
	q.spare = pending[:0]
	q.mu.Unlock()
	return applied, err
}

// Loader produces commands, typically after slow work such as decoding assets.
type Loader func(ctx context.Context, q *Queue) error

// Load runs loaders concurrently, at most limit at a time, and waits for
// them. Loaders only push to q; nothing touches the scene until Drain.
func Load(ctx context.Context, q *Queue, limit int, loaders ...Loader) error {
	return concurrent.Concurrent(ctx, sequence.From(loaders), limit, func(ctx context.Context, load Loader) error {
		return load(ctx, q)
	})
}
