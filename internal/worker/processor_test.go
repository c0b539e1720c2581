package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/mohammad-safakhou/scout/internal/queue/streams"
	"github.com/mohammad-safakhou/scout/models"
)

type fakePipeline struct {
	processed []string
	err       error
}

func (f *fakePipeline) ProcessJob(ctx context.Context, jobID string) error {
	f.processed = append(f.processed, jobID)
	return f.err
}

// fakeConsumer serves one batch from Read, one from AutoClaim, then stops
// the processor.
type fakeConsumer struct {
	readMsgs  []streams.Message
	claimMsgs []streams.Message

	reads       int
	claims      int
	claimStarts []string
	acked       []string
	stop        context.CancelFunc
}

func (f *fakeConsumer) Read(ctx context.Context, stream string, opts ...streams.ConsumerOption) ([]streams.Message, error) {
	f.reads++
	if f.reads == 1 {
		return f.readMsgs, nil
	}
	return nil, nil
}

func (f *fakeConsumer) Ack(ctx context.Context, stream string, ids ...string) error {
	f.acked = append(f.acked, ids...)
	return nil
}

func (f *fakeConsumer) AutoClaim(ctx context.Context, stream string, minIdle time.Duration, start string, count int64) ([]streams.Message, string, error) {
	f.claimStarts = append(f.claimStarts, start)
	f.claims++
	if f.claims == 1 {
		return f.claimMsgs, "0-0", nil
	}
	f.stop()
	return nil, "0-0", nil
}

func testProcessor(p Pipeline) *Processor {
	logger := log.New(io.Discard, "", 0)
	return NewProcessor(logger, p, nil, "research.job.enqueued", nil, nil)
}

func jobMessage(t *testing.T, id string, payload interface{}) streams.Message {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return streams.Message{
		ID: id,
		Envelope: streams.Envelope{
			EventID:        "evt-" + id,
			EventType:      EventJobEnqueued,
			PayloadVersion: "v1",
			Data:           data,
		},
	}
}

func TestHandleJobEnqueuedRunsPipeline(t *testing.T) {
	pipe := &fakePipeline{}
	p := testProcessor(pipe)

	msg := jobMessage(t, "1-0", JobEnqueuedPayload{JobID: "job-1"})
	if err := p.handleJobEnqueued(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pipe.processed) != 1 || pipe.processed[0] != "job-1" {
		t.Fatalf("pipeline not invoked correctly: %v", pipe.processed)
	}
}

func TestHandleJobEnqueuedDropsMalformedPayload(t *testing.T) {
	pipe := &fakePipeline{}
	p := testProcessor(pipe)

	msg := streams.Message{ID: "1-0", Envelope: streams.Envelope{EventID: "evt-2", Data: []byte("not json")}}
	if err := p.handleJobEnqueued(context.Background(), msg); err != nil {
		t.Fatalf("malformed payload must be dropped, got %v", err)
	}
	if len(pipe.processed) != 0 {
		t.Fatalf("pipeline should not run for malformed payload")
	}
}

func TestHandleJobEnqueuedPropagatesMissingJob(t *testing.T) {
	pipe := &fakePipeline{err: models.ErrJobNotFound}
	p := testProcessor(pipe)

	msg := jobMessage(t, "1-0", JobEnqueuedPayload{JobID: "gone"})
	err := p.handleJobEnqueued(context.Background(), msg)
	if !errors.Is(err, models.ErrJobNotFound) {
		t.Fatalf("missing job must surface to the queue, got %v", err)
	}
}

func TestHandleJobEnqueuedPropagatesPipelineFailure(t *testing.T) {
	pipe := &fakePipeline{err: errors.New("store unreachable")}
	p := testProcessor(pipe)

	msg := jobMessage(t, "1-0", JobEnqueuedPayload{JobID: "job-2"})
	if err := p.handleJobEnqueued(context.Background(), msg); err == nil {
		t.Fatal("expected error so the message stays pending")
	}
}

func TestStartRedeliversPendingMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipe := &fakePipeline{}
	cons := &fakeConsumer{
		claimMsgs: []streams.Message{jobMessage(t, "5-0", JobEnqueuedPayload{JobID: "job-stuck"})},
		stop:      cancel,
	}

	logger := log.New(io.Discard, "", 0)
	p := NewProcessor(logger, pipe, cons, "research.job.enqueued", nil, nil)
	if err := p.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pipe.processed) != 1 || pipe.processed[0] != "job-stuck" {
		t.Fatalf("reclaimed message not processed: %v", pipe.processed)
	}
	if len(cons.acked) != 1 || cons.acked[0] != "5-0" {
		t.Fatalf("reclaimed message not acked: %v", cons.acked)
	}
	if len(cons.claimStarts) == 0 || cons.claimStarts[0] != "0-0" {
		t.Fatalf("auto-claim must scan from the start of the pending list, got %v", cons.claimStarts)
	}
}

func TestStartLeavesFailedMessagesPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipe := &fakePipeline{err: errors.New("store unreachable")}
	cons := &fakeConsumer{
		readMsgs: []streams.Message{jobMessage(t, "6-0", JobEnqueuedPayload{JobID: "job-6"})},
		stop:     cancel,
	}

	logger := log.New(io.Discard, "", 0)
	p := NewProcessor(logger, pipe, cons, "research.job.enqueued", nil, nil)
	if err := p.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pipe.processed) != 1 {
		t.Fatalf("message should have been attempted once, got %v", pipe.processed)
	}
	if len(cons.acked) != 0 {
		t.Fatalf("failed message must not be acked, got %v", cons.acked)
	}
}
