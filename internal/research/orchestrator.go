package research

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mohammad-safakhou/scout/internal/telemetry"
	"github.com/mohammad-safakhou/scout/models"
)

// JobStore is the persistence surface the orchestrator needs. The Postgres
// store satisfies it; tests substitute an in-memory fake.
type JobStore interface {
	GetJob(ctx context.Context, id string) (models.ResearchJob, error)
	UpdateJobStatus(ctx context.Context, id string, status models.JobStatus, result []models.ArticleSummary) error
	AppendLog(ctx context.Context, jobID string, message string) error
}

// Orchestrator drives one research job through the full pipeline.
type Orchestrator struct {
	store         JobStore
	expander      *Expander
	summarizer    *Summarizer
	sources       []Source
	topK          int
	fanoutTimeout time.Duration
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(store JobStore, expander *Expander, summarizer *Summarizer, sources []Source, topK int, fanoutTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		store:         store,
		expander:      expander,
		summarizer:    summarizer,
		sources:       sources,
		topK:          topK,
		fanoutTimeout: fanoutTimeout,
	}
}

// ProcessJob executes the pipeline for one job id. A returned error means
// the job could not be brought to a terminal state it earned: the caller
// decides whether to retry delivery. A job that legitimately fails (no
// relevant articles) is persisted FAILED and reported as nil.
func (o *Orchestrator) ProcessJob(ctx context.Context, jobID string) error {
	job, err := o.store.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job.Status.Terminal() {
		log.Printf("[ORCH] job %s already %s, skipping", jobID, job.Status)
		return nil
	}

	if err := o.store.UpdateJobStatus(ctx, jobID, models.JobStatusProcessing, nil); err != nil {
		return fmt.Errorf("mark job %s processing: %w", jobID, err)
	}
	o.log(ctx, jobID, fmt.Sprintf("Started processing topic: %q", job.Topic))

	result, procErr := o.runPipeline(ctx, jobID, job.Topic)
	if procErr != nil {
		o.log(ctx, jobID, fmt.Sprintf("Job failed: %v", procErr))
		if err := o.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed, nil); err != nil {
			return fmt.Errorf("mark job %s failed: %w", jobID, err)
		}
		telemetry.JobsProcessed.WithLabelValues("failed").Inc()
		return nil
	}

	if err := o.store.UpdateJobStatus(ctx, jobID, models.JobStatusCompleted, result); err != nil {
		return fmt.Errorf("persist job %s result: %w", jobID, err)
	}
	o.log(ctx, jobID, "Job completed.")
	telemetry.JobsProcessed.WithLabelValues("completed").Inc()
	return nil
}

// runPipeline produces the summarized result set for a topic. An error
// means the job reached a legitimate FAILED outcome.
func (o *Orchestrator) runPipeline(ctx context.Context, jobID, topic string) ([]models.ArticleSummary, error) {
	start := time.Now()
	keywords := o.expander.Expand(ctx, topic)
	telemetry.ObserveStage("expand", time.Since(start))
	o.log(ctx, jobID, fmt.Sprintf("Expanded topic into %d keywords: %s", len(keywords), strings.Join(keywords, ", ")))

	start = time.Now()
	raw := o.fanOut(ctx, keywords)
	telemetry.ObserveStage("fanout", time.Since(start))

	unique := Deduplicate(raw)
	o.log(ctx, jobID, fmt.Sprintf("Found %d unique articles across %d sources", len(unique), len(o.sources)))

	ranked := Rank(unique, keywords)
	if len(ranked) == 0 {
		return nil, fmt.Errorf("no relevant articles found")
	}
	if len(ranked) > o.topK {
		ranked = ranked[:o.topK]
	}

	start = time.Now()
	result := make([]models.ArticleSummary, 0, len(ranked))
	for _, article := range ranked {
		o.log(ctx, jobID, fmt.Sprintf("Summarizing: %s", article.Title))
		result = append(result, o.summarizer.Summarize(ctx, article))
	}
	telemetry.ObserveStage("summarize", time.Since(start))
	return result, nil
}

// fanOut queries every source for every keyword concurrently. Results are
// collected in completion order; a slow or failing source contributes
// nothing past the fan-out timeout.
func (o *Orchestrator) fanOut(ctx context.Context, keywords []string) []RawArticle {
	fanCtx := ctx
	if o.fanoutTimeout > 0 {
		var cancel context.CancelFunc
		fanCtx, cancel = context.WithTimeout(ctx, o.fanoutTimeout)
		defer cancel()
	}

	var (
		mu  sync.Mutex
		out []RawArticle
		wg  sync.WaitGroup
	)
	for _, src := range o.sources {
		for _, kw := range keywords {
			wg.Add(1)
			go func(src Source, kw string) {
				defer wg.Done()
				articles := src.Fetch(fanCtx, kw)
				if len(articles) == 0 {
					return
				}
				telemetry.ArticlesFetched.WithLabelValues(src.Name()).Add(float64(len(articles)))
				mu.Lock()
				out = append(out, articles...)
				mu.Unlock()
			}(src, kw)
		}
	}
	wg.Wait()
	return out
}

func (o *Orchestrator) log(ctx context.Context, jobID, message string) {
	if err := o.store.AppendLog(ctx, jobID, message); err != nil {
		log.Printf("[ORCH] append log for %s: %v", jobID, err)
	}
}
