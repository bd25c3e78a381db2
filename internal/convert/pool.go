package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Pool executes conversion jobs on a fixed set of worker goroutines so a
// slow or CPU-bound conversion never stalls the request handling path.
// A job runs to completion once a worker picks it up; callers that stop
// waiting abandon the result, they do not cancel the work.
type Pool struct {
	jobs   chan job
	logger *slog.Logger

	closeOnce sync.Once
	wg        sync.WaitGroup
}

type job struct {
	ctx  context.Context
	run  func(ctx context.Context) ([]byte, error)
	done chan outcome
}

type outcome struct {
	data []byte
	err  error
}

// NewPool starts workers goroutines ready to execute jobs.
func NewPool(workers int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &Pool{
		jobs:   make(chan job),
		logger: logger.With(slog.String("component", "convert-pool")),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Do submits fn to the pool and blocks until it completes or ctx expires.
// Classified errors from fn propagate unchanged; panics and unclassified
// errors come back as Internal with the detail logged server-side only.
// When ctx expires while the job is queued or running, the job's eventual
// result is discarded but the job itself is never interrupted.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	j := job{ctx: ctx, run: fn, done: make(chan outcome, 1)}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return nil, Internal("pool", "conversion was not started before the request deadline", ctx.Err())
	}

	select {
	case res := <-j.done:
		return res.data, res.err
	case <-ctx.Done():
		return nil, Internal("pool", "conversion did not complete before the request deadline", ctx.Err())
	}
}

// Close stops accepting jobs and waits for in-flight work to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		j.done <- p.invoke(j)
	}
}

func (p *Pool) invoke(j job) (res outcome) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("conversion panic",
				append(contextArgs(j.ctx),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)...)
			res = outcome{err: Internal("pool", "unexpected conversion failure", fmt.Errorf("panic: %v", r))}
		}
	}()

	data, err := j.run(j.ctx)
	if err != nil && !IsClassified(err) {
		p.logger.Error("unclassified conversion error",
			append(contextArgs(j.ctx), slog.Any("error", err))...)
		err = Internal("pool", "unexpected conversion failure", err)
	}
	return outcome{data: data, err: err}
}

func contextArgs(ctx context.Context) []any {
	args := make([]any, 0, 2)
	if id, ok := RequestIDFromContext(ctx); ok {
		args = append(args, slog.String("request_id", id))
	}
	if name, ok := BackendFromContext(ctx); ok {
		args = append(args, slog.String("backend", name))
	}
	return args
}
