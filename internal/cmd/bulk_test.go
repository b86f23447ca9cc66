package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunBulkOperation_Success(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e"}
	var callCount atomic.Int32

	results := runBulkOperation(
		context.Background(),
		ids,
		5,
		false,
		nil,
		func(ctx context.Context, id string) (string, error) {
			callCount.Add(1)
			return "user-" + id, nil
		},
	)

	if int(callCount.Load()) != 5 {
		t.Errorf("expected 5 calls, got %d", callCount.Load())
	}
	success, failure := countResults(results)
	if success != 5 || failure != 0 {
		t.Errorf("expected 5/0, got %d/%d", success, failure)
	}
}

func TestRunBulkOperation_PreservesArgumentOrder(t *testing.T) {
	ids := []string{"slow", "medium", "fast"}
	delays := map[string]time.Duration{
		"slow":   30 * time.Millisecond,
		"medium": 15 * time.Millisecond,
		"fast":   0,
	}

	results := runBulkOperation(
		context.Background(),
		ids,
		3,
		false,
		nil,
		func(ctx context.Context, id string) (string, error) {
			time.Sleep(delays[id])
			return id, nil
		},
	)

	for i, id := range ids {
		if results[i].ID != id || results[i].Data != id {
			t.Fatalf("results[%d] = %+v, want id %q", i, results[i], id)
		}
	}
}

func TestRunBulkOperation_PartialFailure(t *testing.T) {
	ids := []string{"1", "2", "3"}

	results := runBulkOperation(
		context.Background(),
		ids,
		5,
		false,
		nil,
		func(ctx context.Context, id string) (string, error) {
			if id == "2" {
				return "", errors.New("failed")
			}
			return "ok", nil
		},
	)

	success, failure := countResults(results)
	if success != 2 {
		t.Errorf("expected 2 successes, got %d", success)
	}
	if failure != 1 {
		t.Errorf("expected 1 failure, got %d", failure)
	}
	if results[1].Success || results[1].Error == nil {
		t.Errorf("expected results[1] to carry the failure, got %+v", results[1])
	}
}

func TestRunBulkOperation_Concurrency(t *testing.T) {
	ids := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	var current, peak atomic.Int32

	runBulkOperation(
		context.Background(),
		ids,
		3,
		false,
		nil,
		func(ctx context.Context, id string) (struct{}, error) {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
			return struct{}{}, nil
		},
	)

	if peak.Load() > 3 {
		t.Errorf("expected at most 3 concurrent operations, got %d", peak.Load())
	}
}

func TestRunBulkOperation_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := runBulkOperation(
		ctx,
		[]string{"a", "b"},
		1,
		false,
		nil,
		func(ctx context.Context, id string) (string, error) {
			return "ok", nil
		},
	)

	for _, r := range results {
		if r.Success {
			t.Fatalf("expected no successes after cancellation, got %+v", r)
		}
		if !errors.Is(r.Error, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", r.Error)
		}
	}
}

func TestRunBulkOperation_Progress(t *testing.T) {
	var buf bytes.Buffer
	runBulkOperation(
		context.Background(),
		[]string{"a", "b"},
		2,
		true,
		&buf,
		func(ctx context.Context, id string) (string, error) {
			return id, nil
		},
	)

	if !strings.Contains(buf.String(), "Fetched 2/2") {
		t.Errorf("expected progress output, got %q", buf.String())
	}
}
