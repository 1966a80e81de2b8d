package world

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/midgard-walk/internal/logger"
)

// Task is a background build. The frame loop polls Ready instead of
// waiting on it.
type Task struct {
	ID   string
	name string
	done chan struct{}

	mu  sync.Mutex
	err error
}

// startTask runs parts concurrently. release is called once they all finish.
func startTask(ctx context.Context, release context.CancelFunc, name string, parts ...func(context.Context) error) *Task {
	t := &Task{ID: uuid.NewString(), name: name, done: make(chan struct{})}
	logger.Info("world load started", zap.String("task", t.ID), zap.String("scene", name))

	g, gctx := errgroup.WithContext(ctx)
	for _, part := range parts {
		part := part
		g.Go(func() error { return part(gctx) })
	}

	go func() {
		err := g.Wait()
		release()
		switch {
		case errors.Is(err, ErrSuperseded) || errors.Is(err, context.Canceled):
			logger.Info("world load abandoned", zap.String("task", t.ID), zap.String("scene", name), zap.Error(err))
		case err != nil:
			logger.Error("world load failed", zap.String("task", t.ID), zap.String("scene", name), zap.Error(err))
		default:
			logger.Info("world loaded", zap.String("task", t.ID), zap.String("scene", name))
		}

		t.mu.Lock()
		t.err = err
		t.mu.Unlock()
		close(t.done)
	}()
	return t
}

// Ready reports whether every part has finished, successfully or not.
func (t *Task) Ready() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Err returns the first failure, or nil while running or on success.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
