package db

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestCollectPoolMetrics_ObservesOnInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observed := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		collectPoolMetrics(ctx, time.Millisecond, func() {
			select {
			case observed <- struct{}{}:
			default:
			}
		})
	}()

	select {
	case <-observed:
	case <-time.After(time.Second):
		t.Fatal("expected an observation before timeout")
	}

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after cancellation")
	}
}

func TestCollectPoolMetrics_StopsWithoutObservingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var observations int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		collectPoolMetrics(ctx, time.Hour, func() {
			atomic.AddInt64(&observations, 1)
		})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop for a cancelled context")
	}

	if n := atomic.LoadInt64(&observations); n != 0 {
		t.Errorf("expected no observations after cancellation, got %d", n)
	}
}
