package agent

import (
	"context"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

// bedrockAPI is the slice of the Bedrock agent runtime client this package
// uses. Consumer-side interface, so tests can substitute the remote call.
type bedrockAPI interface {
	InvokeAgent(ctx context.Context, params *bedrockagentruntime.InvokeAgentInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.InvokeAgentOutput, error)
}

// BedrockInvoker invokes a hosted Bedrock agent. The agent service keeps
// conversation state per session id, so each call carries the session id
// and endSession=false.
type BedrockInvoker struct {
	api      bedrockAPI
	identity Identity
}

// NewBedrockInvoker builds the invoker and its underlying service client.
func NewBedrockInvoker(identity Identity, creds aws.CredentialsProvider) *BedrockInvoker {
	client := bedrockagentruntime.New(bedrockagentruntime.Options{
		Region:      identity.Region,
		Credentials: creds,
	})
	return &BedrockInvoker{api: client, identity: identity}
}

// Invoke implements Invoker. Traces are enabled so the response stream
// interleaves sub-task progress with answer chunks.
func (b *BedrockInvoker) Invoke(ctx context.Context, sessionID, inputText string) (iter.Seq2[Event, error], error) {
	out, err := b.api.InvokeAgent(ctx, &bedrockagentruntime.InvokeAgentInput{
		AgentId:      aws.String(b.identity.AgentID),
		AgentAliasId: aws.String(b.identity.AgentAliasID),
		SessionId:    aws.String(sessionID),
		InputText:    aws.String(inputText),
		EnableTrace:  aws.Bool(true),
		EndSession:   aws.Bool(false),
	})
	if err != nil {
		return nil, &InvocationError{Backend: BackendBedrock, Err: err}
	}

	stream := out.GetStream()
	if stream == nil {
		return nil, ErrEmptyResponse
	}
	return bedrockEvents(stream), nil
}

// bedrockEvents adapts the service event stream into the normalized
// iterator form. The stream is closed when iteration stops, whether the
// consumer drains it or breaks early.
func bedrockEvents(stream *bedrockagentruntime.InvokeAgentEventStream) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		defer func() { _ = stream.Close() }()

		for raw := range stream.Events() {
			ev, ok := mapBedrockEvent(raw)
			if !ok {
				continue
			}
			if !yield(ev, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			yield(Event{}, &InvocationError{Backend: BackendBedrock, Err: err})
		}
	}
}

// mapBedrockEvent converts one service stream element into the normalized
// event shape. Stream members other than chunk and trace are skipped.
func mapBedrockEvent(raw types.ResponseStream) (Event, bool) {
	switch v := raw.(type) {
	case *types.ResponseStreamMemberChunk:
		return Event{Chunk: &ChunkEvent{Bytes: v.Value.Bytes}}, true
	case *types.ResponseStreamMemberTrace:
		return Event{Trace: &TraceEvent{Rationale: bedrockRationale(v.Value)}}, true
	default:
		return Event{}, false
	}
}

// bedrockRationale digs the orchestration rationale text out of a trace
// part. Most trace parts carry none; that is an empty rationale, not an
// error.
func bedrockRationale(part types.TracePart) string {
	orch, ok := part.Trace.(*types.TraceMemberOrchestrationTrace)
	if !ok {
		return ""
	}
	rationale, ok := orch.Value.(*types.OrchestrationTraceMemberRationale)
	if !ok {
		return ""
	}
	return aws.ToString(rationale.Value.Text)
}

// Compile-time interface verification.
var _ Invoker = (*BedrockInvoker)(nil)
