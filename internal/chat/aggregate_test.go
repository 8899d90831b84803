package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/parlorchat/parlor/internal/agent"
)

func TestProgressApply(t *testing.T) {
	p := Progress{}

	p = p.Apply(agent.TraceEvent{Rationale: "first thought"})
	if p.Completed != 1 || p.Rationale != "first thought" {
		t.Fatalf("after first trace: %+v", p)
	}

	// A trace without a rationale still counts, and keeps the last one.
	p = p.Apply(agent.TraceEvent{})
	if p.Completed != 2 || p.Rationale != "first thought" {
		t.Fatalf("after empty trace: %+v", p)
	}

	p = p.Apply(agent.TraceEvent{Rationale: "second thought"})
	if p.Completed != 3 || p.Rationale != "second thought" {
		t.Fatalf("after second rationale: %+v", p)
	}
}

func TestAggregateFoldsInArrivalOrder(t *testing.T) {
	events := sliceStream(
		chunkEvent("a"),
		traceEvent("step one"),
		chunkEvent("b"),
		chunkEvent("c"),
		traceEvent(""),
	)

	var seen []int
	text, progress, err := Aggregate(context.Background(), events, func(p Progress) {
		seen = append(seen, p.Completed)
	})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if text != "abc" {
		t.Errorf("text = %q, want %q", text, "abc")
	}
	if progress.Completed != 2 || progress.Rationale != "step one" {
		t.Errorf("progress = %+v, want completed 2 with first rationale kept", progress)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("progress callbacks saw %v, want [1 2]", seen)
	}
}

func TestAggregateStreamError(t *testing.T) {
	streamErr := errors.New("stream broke")
	events := func(yield func(agent.Event, error) bool) {
		if !yield(chunkEvent("partial"), nil) {
			return
		}
		if !yield(traceEvent("working"), nil) {
			return
		}
		yield(agent.Event{}, streamErr)
	}

	text, progress, err := Aggregate(context.Background(), events, nil)
	if !errors.Is(err, streamErr) {
		t.Fatalf("Aggregate() error = %v, want %v", err, streamErr)
	}
	if text != "" {
		t.Errorf("text = %q, want empty on failure", text)
	}
	if progress.Completed != 1 {
		t.Errorf("progress.Completed = %d, want 1", progress.Completed)
	}
}

func TestAggregateContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	events := func(yield func(agent.Event, error) bool) {
		if !yield(chunkEvent("first"), nil) {
			return
		}
		cancel()
		if yield(chunkEvent("never folded"), nil) {
			t.Error("stream consumed past cancellation")
		}
	}

	_, _, err := Aggregate(ctx, events, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Aggregate() error = %v, want context.Canceled", err)
	}
}

func sliceStream(events ...agent.Event) func(yield func(agent.Event, error) bool) {
	return func(yield func(agent.Event, error) bool) {
		for _, ev := range events {
			if !yield(ev, nil) {
				return
			}
		}
	}
}
