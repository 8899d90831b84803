package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// lambdaAPI is the slice of the Lambda client this package uses.
type lambdaAPI interface {
	InvokeWithResponseStream(ctx context.Context, params *lambda.InvokeWithResponseStreamInput, optFns ...func(*lambda.Options)) (*lambda.InvokeWithResponseStreamOutput, error)
}

// strandsRequest is the invocation payload. Field names are the wire
// contract with the Strands agent function and must be preserved exactly.
type strandsRequest struct {
	FunctionTarget string `json:"functionTarget"`
	SessionID      string `json:"sessionId"`
	InputText      string `json:"inputText"`
	EndSession     bool   `json:"endSession"`
}

// StrandsInvoker invokes a function-based agent through a Lambda response
// stream. Conversation continuity is the function's concern; the session
// id travels in the payload.
type StrandsInvoker struct {
	api      lambdaAPI
	identity Identity
}

// NewStrandsInvoker builds the invoker and its underlying service client.
func NewStrandsInvoker(identity Identity, creds aws.CredentialsProvider) *StrandsInvoker {
	client := lambda.New(lambda.Options{
		Region:      identity.Region,
		Credentials: creds,
	})
	return &StrandsInvoker{api: client, identity: identity}
}

// Invoke implements Invoker.
//
// The function emits newline-delimited JSON events of the same
// {trace?,chunk?} shape the hosted backend produces. A line that does not
// parse as such an event is carried through as raw answer text, so plainer
// streaming functions still work.
func (s *StrandsInvoker) Invoke(ctx context.Context, sessionID, inputText string) (iter.Seq2[Event, error], error) {
	payload, err := json.Marshal(strandsRequest{
		FunctionTarget: s.identity.FunctionTarget,
		SessionID:      sessionID,
		InputText:      inputText,
		EndSession:     false,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding strands request: %w", err)
	}

	out, err := s.api.InvokeWithResponseStream(ctx, &lambda.InvokeWithResponseStreamInput{
		FunctionName: aws.String(s.identity.FunctionTarget),
		Payload:      payload,
	})
	if err != nil {
		return nil, &InvocationError{Backend: BackendStrands, Err: err}
	}

	stream := out.GetStream()
	if stream == nil {
		return nil, ErrEmptyResponse
	}
	return strandsEvents(stream), nil
}

// strandsEvents adapts the Lambda response stream into the normalized
// iterator form, reassembling newline-delimited events that the service
// may split across payload chunks.
func strandsEvents(stream *lambda.InvokeWithResponseStreamEventStream) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		defer func() { _ = stream.Close() }()

		var buf []byte
		for raw := range stream.Events() {
			switch v := raw.(type) {
			case *types.InvokeWithResponseStreamResponseEventMemberPayloadChunk:
				buf = append(buf, v.Value.Payload...)
				var events []Event
				events, buf = decodeStrandsLines(buf)
				for _, ev := range events {
					if !yield(ev, nil) {
						return
					}
				}
			case *types.InvokeWithResponseStreamResponseEventMemberInvokeComplete:
				if code := aws.ToString(v.Value.ErrorCode); code != "" {
					yield(Event{}, &InvocationError{
						Backend: BackendStrands,
						Err:     fmt.Errorf("function error %s: %s", code, aws.ToString(v.Value.ErrorDetails)),
					})
					return
				}
			}
		}
		if err := stream.Err(); err != nil {
			yield(Event{}, &InvocationError{Backend: BackendStrands, Err: err})
			return
		}
		// Trailing bytes without a final newline are still answer text.
		if ev, ok := decodeStrandsLine(buf); ok {
			yield(ev, nil)
		}
	}
}

// decodeStrandsLines splits buf on newlines and decodes every complete
// line, returning the decoded events and the unconsumed remainder.
func decodeStrandsLines(buf []byte) ([]Event, []byte) {
	var events []Event
	for {
		idx := bytes.IndexByte(buf, '\n')
		if idx < 0 {
			return events, buf
		}
		line := buf[:idx]
		buf = buf[idx+1:]
		if ev, ok := decodeStrandsLine(line); ok {
			events = append(events, ev)
		}
	}
}

// decodeStrandsLine decodes one line. Blank lines are skipped; a line that
// is not a well-formed {trace?,chunk?} event is wrapped as a raw text
// chunk so the stream stays lossless.
func decodeStrandsLine(line []byte) (Event, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Event{}, false
	}

	var ev Event
	if err := json.Unmarshal(line, &ev); err == nil && ev.valid() {
		return ev, true
	}
	return Event{Chunk: &ChunkEvent{Bytes: append([]byte(nil), line...)}}, true
}

// Compile-time interface verification.
var _ Invoker = (*StrandsInvoker)(nil)
