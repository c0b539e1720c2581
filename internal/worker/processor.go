package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohammad-safakhou/scout/internal/queue/streams"
)

// EventJobEnqueued is the event type published when a research job is
// created.
const EventJobEnqueued = "research.job.enqueued"

// autoClaimMinIdle is how long a message must sit unacked in another
// consumer's pending list before this processor reclaims it.
const autoClaimMinIdle = time.Minute

// Pipeline runs one research job to a terminal state.
type Pipeline interface {
	ProcessJob(ctx context.Context, jobID string) error
}

// StreamConsumer captures the queue operations the processor needs.
type StreamConsumer interface {
	Read(ctx context.Context, stream string, opts ...streams.ConsumerOption) ([]streams.Message, error)
	Ack(ctx context.Context, stream string, ids ...string) error
	AutoClaim(ctx context.Context, stream string, minIdle time.Duration, start string, count int64) ([]streams.Message, string, error)
}

// Processor consumes job-enqueued events and drives the research pipeline.
type Processor struct {
	logger         *log.Logger
	pipeline       Pipeline
	consumer       StreamConsumer
	stream         string
	tracer         trace.Tracer
	jobCounter     otelmetric.Int64Counter
	requeueCounter otelmetric.Int64Counter
}

// JobEnqueuedPayload mirrors the JSON payload published to the job stream.
type JobEnqueuedPayload struct {
	JobID string `json:"job_id"`
}

// NewProcessor constructs a Processor.
func NewProcessor(logger *log.Logger, pipeline Pipeline, cons StreamConsumer, stream string, meter otelmetric.Meter, tracer trace.Tracer) *Processor {
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("worker")
	}

	proc := &Processor{
		logger:   logger,
		pipeline: pipeline,
		consumer: cons,
		stream:   stream,
		tracer:   tracer,
	}
	if meter != nil {
		var err error
		proc.jobCounter, err = meter.Int64Counter("worker_jobs_processed")
		if err != nil {
			logger.Printf("warn: create job counter failed: %v", err)
		}
		proc.requeueCounter, err = meter.Int64Counter("worker_jobs_requeued")
		if err != nil {
			logger.Printf("warn: create requeue counter failed: %v", err)
		}
	}
	return proc
}

// Start blocks, continuously processing job events until the context is
// cancelled. Each pass also reclaims messages other consumers left pending
// past autoClaimMinIdle, so a crashed or store-blocked worker's jobs are
// eventually redelivered.
func (p *Processor) Start(ctx context.Context) error {
	p.logger.Printf("worker processor starting; consuming stream %s", p.stream)

	claimStart := "0-0"
	for {
		select {
		case <-ctx.Done():
			p.logger.Printf("worker processor stopping: %v", ctx.Err())
			return nil
		default:
		}

		msgs, err := p.consumer.Read(ctx, p.stream, streams.WithBlock(5*time.Second), streams.WithCount(16))
		if err != nil {
			p.logger.Printf("error reading stream: %v", err)
			time.Sleep(time.Second)
			continue
		}
		p.dispatch(ctx, msgs)

		reclaimed, next, err := p.consumer.AutoClaim(ctx, p.stream, autoClaimMinIdle, claimStart, 16)
		if err != nil {
			p.logger.Printf("error auto-claiming pending messages: %v", err)
			continue
		}
		claimStart = next
		p.dispatch(ctx, reclaimed)
	}
}

// dispatch handles a batch, acking each message only once it was brought to
// an outcome. A failed message stays in the pending list for auto-claim.
func (p *Processor) dispatch(ctx context.Context, msgs []streams.Message) {
	for _, msg := range msgs {
		if err := p.handleJobEnqueued(ctx, msg); err != nil {
			p.logger.Printf("error handling job message %s: %v", msg.ID, err)
			if p.requeueCounter != nil {
				p.requeueCounter.Add(ctx, 1)
			}
			continue
		}
		if err := p.consumer.Ack(ctx, p.stream, msg.ID); err != nil {
			p.logger.Printf("warn: failed to ack message %s: %v", msg.ID, err)
		}
	}
}

func (p *Processor) handleJobEnqueued(ctx context.Context, msg streams.Message) error {
	ctx, span := p.tracer.Start(ctx, "worker.handle_job")
	defer span.End()

	var payload JobEnqueuedPayload
	if err := json.Unmarshal(msg.Envelope.Data, &payload); err != nil {
		// Malformed payloads never become valid; drop by acking.
		p.logger.Printf("skip event %s: unmarshal job payload: %v", msg.Envelope.EventID, err)
		return nil
	}
	if payload.JobID == "" {
		p.logger.Printf("skip event %s: empty job id", msg.Envelope.EventID)
		return nil
	}

	if err := p.pipeline.ProcessJob(ctx, payload.JobID); err != nil {
		return fmt.Errorf("process job %s: %w", payload.JobID, err)
	}
	if p.jobCounter != nil {
		p.jobCounter.Add(ctx, 1)
	}
	return nil
}
