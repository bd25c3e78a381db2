package convert

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

// strategyFunc adapts a closure to the Strategy interface for tests.
type strategyFunc func() ([]byte, error)

func (f strategyFunc) Convert(context.Context, []byte, int) ([]byte, error) {
	return f()
}

func TestPool_RunsJobs(t *testing.T) {
	p := NewPool(2, nil)
	defer p.Close()

	data, err := p.Do(context.Background(), func(context.Context) ([]byte, error) {
		return []byte("ok"), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte("ok")) {
		t.Fatalf("data = %q", data)
	}
}

func TestPool_ConcurrentJobs(t *testing.T) {
	p := NewPool(4, nil)
	defer p.Close()

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.Do(context.Background(), func(context.Context) ([]byte, error) {
				time.Sleep(5 * time.Millisecond)
				return []byte("x"), nil
			})
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("job %d: %v", i, err)
		}
	}
}

func TestPool_PanicBecomesInternal(t *testing.T) {
	p := NewPool(1, nil)
	defer p.Close()

	_, err := p.Do(context.Background(), func(context.Context) ([]byte, error) {
		panic("converter exploded")
	})
	if err == nil {
		t.Fatal("expected error from panicking job")
	}
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("panic should classify as internal, got %v", err)
	}
	msg, _ := Details(err)
	if msg != "unexpected conversion failure" {
		t.Fatalf("panic detail leaked to caller: %q", msg)
	}
}

func TestPool_UnclassifiedErrorBecomesInternal(t *testing.T) {
	p := NewPool(1, nil)
	defer p.Close()

	_, err := p.Do(context.Background(), func(context.Context) ([]byte, error) {
		return nil, errors.New("stray failure")
	})
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("unclassified error should become internal, got %v", err)
	}
	msg, _ := Details(err)
	if msg != "unexpected conversion failure" {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}

func TestPool_ClassifiedErrorPassesThrough(t *testing.T) {
	p := NewPool(1, nil)
	defer p.Close()

	_, err := p.Do(context.Background(), func(context.Context) ([]byte, error) {
		return nil, Unprocessable("pytorch", "bad artifact", "", nil)
	})
	if !errors.Is(err, ErrUnprocessable) {
		t.Fatalf("classification changed in the pool: %v", err)
	}
	if HTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", HTTPStatus(err))
	}
}

func TestPool_DeadlineWhileQueued(t *testing.T) {
	p := NewPool(1, nil)
	defer p.Close()

	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = p.Do(context.Background(), func(context.Context) ([]byte, error) {
			<-release
			return nil, nil
		})
	}()
	// Let the blocker occupy the single worker.
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := p.Do(ctx, func(context.Context) ([]byte, error) {
		return []byte("late"), nil
	})
	close(release)
	wg.Wait()

	if !errors.Is(err, ErrInternal) {
		t.Fatalf("queued deadline should be internal, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("deadline cause missing: %v", err)
	}
}

func TestPool_AbandonedJobStillCompletes(t *testing.T) {
	p := NewPool(1, nil)
	defer p.Close()

	started := make(chan struct{})
	finished := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = p.Do(ctx, func(context.Context) ([]byte, error) {
			close(started)
			time.Sleep(20 * time.Millisecond)
			close(finished)
			return []byte("done"), nil
		})
	}()

	<-started
	cancel()
	wg.Wait()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("job was interrupted by caller cancellation")
	}
}
