package chat

import (
	"context"
	"iter"
	"strings"

	"github.com/parlorchat/parlor/internal/agent"
)

// Aggregate consumes an agent event stream in arrival order and folds it
// into the final response text and the progress state after the last
// trace. Chunk payloads are decoded as UTF-8 text and concatenated in
// order with no separators. Trace events fold into the progress value and,
// when onProgress is non-nil, each fold is reported through it before the
// next event is consumed.
//
// A stream error aborts the fold: the partial text is discarded and the
// error is returned along with the progress accumulated so far. A stream
// that ends without error yields whatever text accumulated, including the
// empty string for a stream with no chunk events.
func Aggregate(ctx context.Context, events iter.Seq2[agent.Event, error], onProgress func(Progress)) (string, Progress, error) {
	var (
		text     strings.Builder
		progress Progress
	)
	for ev, err := range events {
		if err != nil {
			return "", progress, err
		}
		if err := ctx.Err(); err != nil {
			return "", progress, err
		}
		switch {
		case ev.Trace != nil:
			progress = progress.Apply(*ev.Trace)
			if onProgress != nil {
				onProgress(progress)
			}
		case ev.Chunk != nil:
			text.Write(ev.Chunk.Bytes)
		}
	}
	return text.String(), progress, nil
}
