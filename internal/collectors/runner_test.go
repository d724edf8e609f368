package collectors

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubLoader struct {
	calls int
	err   error
}

func (s *stubLoader) Name() string { return "stub" }

func (s *stubLoader) Load(context.Context) (Batch, error) {
	s.calls++
	if s.err != nil {
		return Batch{}, s.err
	}
	return Batch{Bookmakers: []Line{{Provider: "DK", EventID: "e1"}}}, nil
}

func TestRunLoopOnce(t *testing.T) {
	loader := &stubLoader{}
	var handled int
	RunLoop(context.Background(), loader, 0, func(_ context.Context, b Batch) error {
		handled += len(b.Bookmakers)
		return nil
	})
	if loader.calls != 1 || handled != 1 {
		t.Errorf("calls=%d handled=%d", loader.calls, handled)
	}
}

func TestRunLoopLoadErrorSkipsHandler(t *testing.T) {
	loader := &stubLoader{err: errors.New("missing file")}
	RunLoop(context.Background(), loader, 0, func(context.Context, Batch) error {
		t.Error("handler should not run after a load error")
		return nil
	})
}

func TestRunLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	loader := &stubLoader{}
	done := make(chan struct{})
	go func() {
		RunLoop(ctx, loader, time.Hour, func(context.Context, Batch) error {
			cancel()
			return nil
		})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("RunLoop did not return after cancel")
	}
	if loader.calls != 1 {
		t.Errorf("calls = %d", loader.calls)
	}
}
