package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mohammad-safakhou/scout/internal/queue/streams"
	"github.com/mohammad-safakhou/scout/internal/worker"
	"github.com/mohammad-safakhou/scout/models"
)

// apiResponse is the envelope every endpoint returns.
type apiResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Success    bool        `json:"success"`
}

func okResponse(code int, data interface{}, message string) apiResponse {
	return apiResponse{StatusCode: code, Data: data, Message: message, Success: true}
}

func errorResponse(code int, message string) apiResponse {
	return apiResponse{StatusCode: code, Message: message, Success: false}
}

// JobStore is the persistence surface the API needs.
type JobStore interface {
	CreateJob(ctx context.Context, topic string) (models.ResearchJob, error)
	GetJob(ctx context.Context, id string) (models.ResearchJob, error)
	ListJobs(ctx context.Context) ([]models.ResearchJob, error)
	ListLogs(ctx context.Context, jobID string) ([]models.JobLogEntry, error)
}

// JobPublisher enqueues a created job for a worker to pick up.
type JobPublisher interface {
	PublishRaw(ctx context.Context, stream, eventType, version string, payload interface{}, opts ...streams.PublishOption) (string, error)
}

// ResearchHandler serves the research job endpoints.
type ResearchHandler struct {
	Store     JobStore
	Publisher JobPublisher
	Stream    string
}

// Register mounts the research routes on the given group.
func (h *ResearchHandler) Register(g *echo.Group) {
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

type createResearchRequest struct {
	Topic string `json:"topic"`
}

type jobSummaryView struct {
	ID        string           `json:"id"`
	Topic     string           `json:"topic"`
	Status    models.JobStatus `json:"status"`
	CreatedAt string           `json:"createdAt"`
}

type jobLogView struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type jobDetailView struct {
	ID        string                  `json:"id"`
	Topic     string                  `json:"topic"`
	Status    models.JobStatus        `json:"status"`
	Result    []models.ArticleSummary `json:"result"`
	CreatedAt string                  `json:"createdAt"`
	UpdatedAt string                  `json:"updatedAt"`
	Logs      []jobLogView            `json:"logs"`
}

func (h *ResearchHandler) create(c echo.Context) error {
	var req createResearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "topic is required")
	}

	ctx := c.Request().Context()
	job, err := h.Store.CreateJob(ctx, topic)
	if err != nil {
		return err
	}

	payload := worker.JobEnqueuedPayload{JobID: job.ID}
	if _, err := h.Publisher.PublishRaw(ctx, h.Stream, worker.EventJobEnqueued, "v1", payload); err != nil {
		// The job row exists; a stuck PENDING job beats a lost one.
		log.Printf("[HTTP] enqueue job %s: %v", job.ID, err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "failed to enqueue research job")
	}

	return c.JSON(http.StatusAccepted, okResponse(http.StatusAccepted, jobSummaryView{
		ID:        job.ID,
		Topic:     job.Topic,
		Status:    job.Status,
		CreatedAt: job.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}, "research job accepted"))
}

func (h *ResearchHandler) list(c echo.Context) error {
	jobs, err := h.Store.ListJobs(c.Request().Context())
	if err != nil {
		return err
	}
	views := make([]jobSummaryView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, jobSummaryView{
			ID:        job.ID,
			Topic:     job.Topic,
			Status:    job.Status,
			CreatedAt: job.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	return c.JSON(http.StatusOK, okResponse(http.StatusOK, views, ""))
}

func (h *ResearchHandler) get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	job, err := h.Store.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "research job not found")
		}
		return err
	}

	logs, err := h.Store.ListLogs(ctx, id)
	if err != nil {
		return err
	}
	logViews := make([]jobLogView, 0, len(logs))
	for _, entry := range logs {
		logViews = append(logViews, jobLogView{
			Message:   entry.Message,
			Timestamp: entry.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}

	return c.JSON(http.StatusOK, okResponse(http.StatusOK, jobDetailView{
		ID:        job.ID,
		Topic:     job.Topic,
		Status:    job.Status,
		Result:    job.Result,
		CreatedAt: job.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UpdatedAt: job.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Logs:      logViews,
	}, ""))
}
